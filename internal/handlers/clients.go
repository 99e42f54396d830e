package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tbuchert/accounting-api/internal/models"
	"github.com/tbuchert/accounting-api/internal/search"
	"github.com/tbuchert/accounting-api/internal/service/vat"
	"github.com/tbuchert/accounting-api/internal/util"
)

type ClientHandler struct {
	DB  *gorm.DB
	VAT *vat.Validator
	ES  *elasticsearch.Client
}

type contactRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Position  string `json:"position"`
}

type attachmentRequest struct {
	FileName   string `json:"file_name"`
	FileType   string `json:"file_type"`
	FileURL    string `json:"file_url"`
	UploadedBy string `json:"uploaded_by"`
	Notes      string `json:"notes"`
}

type clientCreateRequest struct {
	Name         string            `json:"name"`
	Type         models.ClientType `json:"type"`
	UstID        string            `json:"ust_id"`
	Notes        string            `json:"notes"`
	DunningLevel int               `json:"dunning_level"`
	IsActive     *bool             `json:"is_active"`
	Contacts     []contactRequest  `json:"contacts"`
}

type clientUpdateRequest struct {
	Name         *string            `json:"name"`
	Type         *models.ClientType `json:"type"`
	UstID        *string            `json:"ust_id"`
	Notes        *string            `json:"notes"`
	DunningLevel *int               `json:"dunning_level"`
	IsActive     *bool              `json:"is_active"`
}

func (h *ClientHandler) List(c echo.Context) error {
	skip, limit := util.SkipLimit(c)
	var clients []models.Client
	if err := h.DB.WithContext(c.Request().Context()).Offset(skip).Limit(limit).Find(&clients).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, clients)
}

func (h *ClientHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid id")
	}
	var client models.Client
	err = h.DB.WithContext(c.Request().Context()).Preload("Contacts").Where("id = ?", id).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Client not found")
	}
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) Create(c echo.Context) error {
	var req clientCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "name is required")
	}

	client := models.Client{
		Name:         req.Name,
		Type:         req.Type,
		UstID:        req.UstID,
		Notes:        req.Notes,
		DunningLevel: req.DunningLevel,
		IsActive:     true,
	}
	if client.Type == "" {
		client.Type = models.ClientTypeClient
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}
	for _, contact := range req.Contacts {
		client.Contacts = append(client.Contacts, models.ContactPerson{
			FirstName: contact.FirstName,
			LastName:  contact.LastName,
			Email:     contact.Email,
			Phone:     contact.Phone,
			Position:  contact.Position,
		})
	}

	if client.UstID != "" {
		h.applyVATCheck(c, &client)
	}

	if err := h.DB.WithContext(c.Request().Context()).Create(&client).Error; err != nil {
		return httpError(err)
	}

	search.Index(c.Request().Context(), h.ES, search.IndexClients, client.ID.String(), client)
	return c.JSON(http.StatusCreated, client)
}

func (h *ClientHandler) Patch(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid id")
	}
	var req clientUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}

	var client models.Client
	err = h.DB.WithContext(c.Request().Context()).Where("id = ?", id).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Client not found")
	}
	if err != nil {
		return httpError(err)
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Type != nil {
		client.Type = *req.Type
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}
	if req.DunningLevel != nil {
		client.DunningLevel = *req.DunningLevel
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}
	if req.UstID != nil && *req.UstID != client.UstID {
		client.UstID = *req.UstID
		client.UstIDValidated = false
		client.UstIDCheckedAt = nil
		if client.UstID != "" {
			h.applyVATCheck(c, &client)
		}
	}

	if err := h.DB.WithContext(c.Request().Context()).Save(&client).Error; err != nil {
		return httpError(err)
	}

	search.Index(c.Request().Context(), h.ES, search.IndexClients, client.ID.String(), client)
	return c.JSON(http.StatusOK, client)
}

// ValidateVAT re-checks the stored VAT number on demand and persists the
// outcome. The response is the structured check result, valid or not.
func (h *ClientHandler) ValidateVAT(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid id")
	}
	var client models.Client
	err = h.DB.WithContext(c.Request().Context()).Where("id = ?", id).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Client not found")
	}
	if err != nil {
		return httpError(err)
	}

	result := h.VAT.Validate(c.Request().Context(), client.UstID)
	client.UstIDValidated = result.Valid
	checkedAt := result.CheckedAt
	client.UstIDCheckedAt = &checkedAt

	if err := h.DB.WithContext(c.Request().Context()).Save(&client).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *ClientHandler) applyVATCheck(c echo.Context, client *models.Client) {
	result := h.VAT.Validate(c.Request().Context(), client.UstID)
	client.UstIDValidated = result.Valid
	checkedAt := result.CheckedAt
	client.UstIDCheckedAt = &checkedAt
}

// --- contact persons ---

func (h *ClientHandler) ListContacts(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid id")
	}
	var contacts []models.ContactPerson
	if err := h.DB.WithContext(c.Request().Context()).Where("client_id = ?", id).Find(&contacts).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, contacts)
}

func (h *ClientHandler) AddContact(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid id")
	}
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}

	var count int64
	if err := h.DB.WithContext(c.Request().Context()).Model(&models.Client{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return httpError(err)
	}
	if count == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Client not found")
	}

	contact := models.ContactPerson{
		ClientID:  id,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Position:  req.Position,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&contact).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, contact)
}

func (h *ClientHandler) UpdateContact(c echo.Context) error {
	id, err := uuid.Parse(c.Param("contact_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid id")
	}
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}

	var contact models.ContactPerson
	err = h.DB.WithContext(c.Request().Context()).Where("id = ?", id).First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Contact person not found")
	}
	if err != nil {
		return httpError(err)
	}

	contact.FirstName = req.FirstName
	contact.LastName = req.LastName
	contact.Email = req.Email
	contact.Phone = req.Phone
	contact.Position = req.Position

	if err := h.DB.WithContext(c.Request().Context()).Save(&contact).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, contact)
}

func (h *ClientHandler) DeleteContact(c echo.Context) error {
	id, err := uuid.Parse(c.Param("contact_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid id")
	}
	res := h.DB.WithContext(c.Request().Context()).Delete(&models.ContactPerson{}, "id = ?", id)
	if res.Error != nil {
		return httpError(res.Error)
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Contact person not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// --- document attachments ---

func (h *ClientHandler) ListAttachments(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid id")
	}
	var attachments []models.DocumentAttachment
	if err := h.DB.WithContext(c.Request().Context()).Where("client_id = ?", id).Find(&attachments).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, attachments)
}

func (h *ClientHandler) AddAttachment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid id")
	}
	var req attachmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}
	if req.FileName == "" || req.FileURL == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "file_name and file_url are required")
	}

	var count int64
	if err := h.DB.WithContext(c.Request().Context()).Model(&models.Client{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return httpError(err)
	}
	if count == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Client not found")
	}

	attachment := models.DocumentAttachment{
		ClientID:   id,
		FileName:   req.FileName,
		FileType:   req.FileType,
		FileURL:    req.FileURL,
		UploadedBy: req.UploadedBy,
		UploadedAt: time.Now().UTC(),
		Notes:      req.Notes,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&attachment).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, attachment)
}

func (h *ClientHandler) GetAttachment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("attachment_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid id")
	}
	var attachment models.DocumentAttachment
	err = h.DB.WithContext(c.Request().Context()).Where("id = ?", id).First(&attachment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Attachment not found")
	}
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, attachment)
}

func (h *ClientHandler) DeleteAttachment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("attachment_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid id")
	}
	res := h.DB.WithContext(c.Request().Context()).Delete(&models.DocumentAttachment{}, "id = ?", id)
	if res.Error != nil {
		return httpError(res.Error)
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Attachment not found")
	}
	return c.NoContent(http.StatusNoContent)
}
