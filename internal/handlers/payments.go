package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tbuchert/accounting-api/internal/models"
)

type PaymentHandler struct {
	DB       *gorm.DB
	Producer EventProducer
}

type paymentRequest struct {
	Method        models.PaymentMethod `json:"method"`
	TransactionID string               `json:"transaction_id"`
	Amount        float64              `json:"amount"`
	ReceivedAt    *time.Time           `json:"received_at"`
	Notes         string               `json:"notes"`
}

func (h *PaymentHandler) ListForInvoice(c echo.Context) error {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid id")
	}
	var payments []models.Payment
	if err := h.DB.WithContext(c.Request().Context()).Where("invoice_id = ?", invoiceID).Find(&payments).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, payments)
}

func (h *PaymentHandler) Record(c echo.Context) error {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid id")
	}
	var req paymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}
	if req.Amount <= 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "amount must be positive")
	}

	var invoice models.Invoice
	err = h.DB.WithContext(c.Request().Context()).Where("id = ?", invoiceID).First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Invoice not found")
	}
	if err != nil {
		return httpError(err)
	}

	receivedAt := time.Now().UTC()
	if req.ReceivedAt != nil {
		receivedAt = *req.ReceivedAt
	}
	payment := models.Payment{
		InvoiceID:     invoice.ID,
		Method:        req.Method,
		TransactionID: req.TransactionID,
		Amount:        req.Amount,
		ReceivedAt:    receivedAt,
		Notes:         req.Notes,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&payment).Error; err != nil {
		return httpError(err)
	}

	publishEvent(c, h.Producer, "payment.recorded", payment.ID.String(), map[string]any{
		"invoice_id": invoice.ID,
		"amount":     payment.Amount,
	})
	return c.JSON(http.StatusCreated, payment)
}

func (h *PaymentHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("payment_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid id")
	}
	res := h.DB.WithContext(c.Request().Context()).Delete(&models.Payment{}, "id = ?", id)
	if res.Error != nil {
		return httpError(res.Error)
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Payment not found")
	}
	return c.NoContent(http.StatusNoContent)
}
