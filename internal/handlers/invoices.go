package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tbuchert/accounting-api/internal/models"
	"github.com/tbuchert/accounting-api/internal/util"
)

type InvoiceHandler struct {
	DB       *gorm.DB
	Producer EventProducer
}

type invoiceItemRequest struct {
	ItemID      *uuid.UUID `json:"item_id"`
	Description string     `json:"description"`
	Quantity    float64    `json:"quantity"`
	Unit        string     `json:"unit"`
	UnitPrice   float64    `json:"unit_price"`
	VATRate     float64    `json:"vat_rate"`
	Position    int        `json:"position"`
}

type invoiceCreateRequest struct {
	Number        string               `json:"number"`
	ClientID      uuid.UUID            `json:"client_id"`
	IssueDate     time.Time            `json:"issue_date"`
	DueDate       time.Time            `json:"due_date"`
	Status        models.InvoiceStatus `json:"status"`
	Currency      models.Currency      `json:"currency"`
	Language      models.Language      `json:"language"`
	Subtotal      float64              `json:"subtotal"`
	VAT           float64              `json:"vat"`
	Total         float64              `json:"total"`
	ReverseCharge bool                 `json:"reverse_charge"`
	OSS           bool                 `json:"oss"`
	Notes         string               `json:"notes"`
	Terms         string               `json:"terms"`
	Items         []invoiceItemRequest `json:"items"`
}

type invoiceUpdateRequest struct {
	Status  *models.InvoiceStatus `json:"status"`
	DueDate *time.Time            `json:"due_date"`
	PaidAt  *time.Time            `json:"paid_at"`
	Notes   *string               `json:"notes"`
	Terms   *string               `json:"terms"`
}

func (h *InvoiceHandler) List(c echo.Context) error {
	skip, limit := util.SkipLimit(c)
	var invoices []models.Invoice
	if err := h.DB.WithContext(c.Request().Context()).Offset(skip).Limit(limit).Find(&invoices).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid id")
	}
	var invoice models.Invoice
	err = h.DB.WithContext(c.Request().Context()).
		Preload("Items").Preload("Payments").
		Where("id = ?", id).First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Invoice not found")
	}
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) Create(c echo.Context) error {
	var req invoiceCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}
	if req.Number == "" || req.ClientID == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "number and client_id are required")
	}

	var count int64
	if err := h.DB.WithContext(c.Request().Context()).Model(&models.Invoice{}).
		Where("number = ?", req.Number).Count(&count).Error; err != nil {
		return httpError(err)
	}
	if count > 0 {
		return echo.NewHTTPError(http.StatusConflict, "Invoice number already in use")
	}

	invoice := models.Invoice{
		Number:        req.Number,
		ClientID:      req.ClientID,
		IssueDate:     req.IssueDate,
		DueDate:       req.DueDate,
		Status:        req.Status,
		Currency:      req.Currency,
		Language:      req.Language,
		Subtotal:      req.Subtotal,
		VAT:           req.VAT,
		Total:         req.Total,
		ReverseCharge: req.ReverseCharge,
		OSS:           req.OSS,
		Notes:         req.Notes,
		Terms:         req.Terms,
	}
	if invoice.Status == "" {
		invoice.Status = models.InvoiceStatusDraft
	}
	for _, item := range req.Items {
		invoice.Items = append(invoice.Items, models.InvoiceItem{
			ItemID:      item.ItemID,
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			VATRate:     item.VATRate,
			Position:    item.Position,
		})
	}

	if err := h.DB.WithContext(c.Request().Context()).Create(&invoice).Error; err != nil {
		return httpError(err)
	}

	publishEvent(c, h.Producer, "invoice.created", invoice.ID.String(), map[string]any{
		"number":    invoice.Number,
		"client_id": invoice.ClientID,
		"total":     invoice.Total,
	})
	return c.JSON(http.StatusCreated, invoice)
}

func (h *InvoiceHandler) Patch(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid id")
	}
	var req invoiceUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}

	var invoice models.Invoice
	err = h.DB.WithContext(c.Request().Context()).Where("id = ?", id).First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Invoice not found")
	}
	if err != nil {
		return httpError(err)
	}

	if req.Status != nil {
		invoice.Status = *req.Status
	}
	if req.DueDate != nil {
		invoice.DueDate = *req.DueDate
	}
	if req.PaidAt != nil {
		invoice.PaidAt = req.PaidAt
	}
	if req.Notes != nil {
		invoice.Notes = *req.Notes
	}
	if req.Terms != nil {
		invoice.Terms = *req.Terms
	}

	if err := h.DB.WithContext(c.Request().Context()).Save(&invoice).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid id")
	}
	res := h.DB.WithContext(c.Request().Context()).Delete(&models.Invoice{}, "id = ?", id)
	if res.Error != nil {
		return httpError(res.Error)
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Invoice not found")
	}
	return c.NoContent(http.StatusNoContent)
}
