package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tbuchert/accounting-api/internal/models"
)

// PreferencesHandler serves the single system-preferences row.
type PreferencesHandler struct {
	DB *gorm.DB
}

type preferencesRequest struct {
	CompanyName         string           `json:"company_name"`
	CompanyLogoURL      string           `json:"company_logo_url"`
	DefaultCurrency     models.Currency  `json:"default_currency"`
	DefaultLanguage     models.Language  `json:"default_language"`
	TaxScheme           models.TaxScheme `json:"tax_scheme"`
	InvoicePrefix       string           `json:"invoice_prefix"`
	EnableReverseCharge bool             `json:"enable_reverse_charge"`
	EnableOSS           bool             `json:"enable_oss"`
}

func (h *PreferencesHandler) Get(c echo.Context) error {
	var prefs models.SystemPreferences
	err := h.DB.WithContext(c.Request().Context()).
		Where("id = ?", models.SystemPreferencesID).First(&prefs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "System preferences not configured")
	}
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, prefs)
}

// Put creates or replaces the singleton row.
func (h *PreferencesHandler) Put(c echo.Context) error {
	var req preferencesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}
	if req.CompanyName == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "company_name is required")
	}

	prefs := models.SystemPreferences{
		ID:                  models.SystemPreferencesID,
		CompanyName:         req.CompanyName,
		CompanyLogoURL:      req.CompanyLogoURL,
		DefaultCurrency:     req.DefaultCurrency,
		DefaultLanguage:     req.DefaultLanguage,
		TaxScheme:           req.TaxScheme,
		InvoicePrefix:       req.InvoicePrefix,
		EnableReverseCharge: req.EnableReverseCharge,
		EnableOSS:           req.EnableOSS,
	}
	if prefs.DefaultCurrency == "" {
		prefs.DefaultCurrency = models.CurrencyEUR
	}
	if prefs.DefaultLanguage == "" {
		prefs.DefaultLanguage = models.LanguageEN
	}
	if prefs.TaxScheme == "" {
		prefs.TaxScheme = models.TaxSchemeStandard
	}
	if prefs.InvoicePrefix == "" {
		prefs.InvoicePrefix = "INV"
	}

	if err := h.DB.WithContext(c.Request().Context()).Save(&prefs).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, prefs)
}
