package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tbuchert/accounting-api/internal/hash"
	authmw "github.com/tbuchert/accounting-api/internal/middleware/auth"
	"github.com/tbuchert/accounting-api/internal/models"
	"github.com/tbuchert/accounting-api/internal/util"
)

// UserHandler covers the admin user management surface plus the self-service
// profile routes.
type UserHandler struct {
	DB       *gorm.DB
	Producer EventProducer
}

type userCreateRequest struct {
	Email             string          `json:"email"`
	Password          string          `json:"password"`
	FirstName         string          `json:"first_name"`
	LastName          string          `json:"last_name"`
	PreferredLanguage models.Language `json:"preferred_language"`
	PreferredCurrency models.Currency `json:"preferred_currency"`
	Role              models.Role     `json:"role"`
	IsActive          *bool           `json:"is_active"`
}

type userAdminUpdateRequest struct {
	FirstName         *string          `json:"first_name"`
	LastName          *string          `json:"last_name"`
	PreferredLanguage *models.Language `json:"preferred_language"`
	PreferredCurrency *models.Currency `json:"preferred_currency"`
	Role              *models.Role     `json:"role"`
	IsActive          *bool            `json:"is_active"`
}

type profileUpdateRequest struct {
	FirstName         *string          `json:"first_name"`
	LastName          *string          `json:"last_name"`
	PreferredLanguage *models.Language `json:"preferred_language"`
	PreferredCurrency *models.Currency `json:"preferred_currency"`
	Preferences       *string          `json:"preferences"`
}

func (h *UserHandler) List(c echo.Context) error {
	skip, limit := util.SkipLimit(c)
	var users []models.User
	if err := h.DB.WithContext(c.Request().Context()).Offset(skip).Limit(limit).Find(&users).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid id")
	}
	var user models.User
	err = h.DB.WithContext(c.Request().Context()).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Create(c echo.Context) error {
	var req userCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}
	if req.Email == "" || len(req.Password) < 8 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "email and a password of at least 8 characters are required")
	}

	var count int64
	if err := h.DB.WithContext(c.Request().Context()).Model(&models.User{}).
		Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return httpError(err)
	}
	if count > 0 {
		return echo.NewHTTPError(http.StatusConflict, "Email already in use")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return httpError(err)
	}

	user := models.User{
		Email:             req.Email,
		PasswordHash:      pwHash,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		PreferredLanguage: req.PreferredLanguage,
		PreferredCurrency: req.PreferredCurrency,
		Role:              req.Role,
		IsActive:          true,
	}
	if user.Role == "" {
		user.Role = models.RoleAccountant
	}
	if user.PreferredLanguage == "" {
		user.PreferredLanguage = models.LanguageEN
	}
	if user.PreferredCurrency == "" {
		user.PreferredCurrency = models.CurrencyEUR
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.DB.WithContext(c.Request().Context()).Create(&user).Error; err != nil {
		return httpError(err)
	}

	publishEvent(c, h.Producer, "user.created", user.ID.String(), map[string]any{
		"email": user.Email,
		"role":  user.Role,
	})
	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Patch(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid id")
	}
	var req userAdminUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}

	var user models.User
	err = h.DB.WithContext(c.Request().Context()).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	if err != nil {
		return httpError(err)
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.PreferredLanguage != nil {
		user.PreferredLanguage = *req.PreferredLanguage
	}
	if req.PreferredCurrency != nil {
		user.PreferredCurrency = *req.PreferredCurrency
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.DB.WithContext(c.Request().Context()).Save(&user).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid id")
	}
	res := h.DB.WithContext(c.Request().Context()).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return httpError(res.Error)
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// --- self-service profile ---

func (h *UserHandler) Profile(c echo.Context) error {
	return c.JSON(http.StatusOK, authmw.CurrentUser(c))
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req profileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}

	user := authmw.CurrentUser(c)
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.PreferredLanguage != nil {
		user.PreferredLanguage = *req.PreferredLanguage
	}
	if req.PreferredCurrency != nil {
		user.PreferredCurrency = *req.PreferredCurrency
	}
	if req.Preferences != nil {
		user.Preferences = *req.Preferences
	}

	if err := h.DB.WithContext(c.Request().Context()).Save(user).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}
