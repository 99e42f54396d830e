package handlers

import (
	"errors"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tbuchert/accounting-api/internal/models"
	"github.com/tbuchert/accounting-api/internal/search"
	"github.com/tbuchert/accounting-api/internal/util"
)

type ItemHandler struct {
	DB *gorm.DB
	ES *elasticsearch.Client
}

type itemRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Type        *models.ItemType `json:"type"`
	Unit        *string          `json:"unit"`
	UnitPrice   *float64         `json:"unit_price"`
	CostPrice   *float64         `json:"cost_price"`
	VATRate     *float64         `json:"vat_rate"`
	ExternalID  *string          `json:"external_id"`
	IsActive    *bool            `json:"is_active"`
}

func (h *ItemHandler) List(c echo.Context) error {
	skip, limit := util.SkipLimit(c)
	var items []models.Item
	if err := h.DB.WithContext(c.Request().Context()).Offset(skip).Limit(limit).Find(&items).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ItemHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid id")
	}
	var item models.Item
	err = h.DB.WithContext(c.Request().Context()).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Item not found")
	}
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) Create(c echo.Context) error {
	var req itemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}
	if req.Name == nil || *req.Name == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "name is required")
	}

	item := models.Item{
		Name:     *req.Name,
		Type:     models.ItemTypeService,
		Unit:     "hour",
		VATRate:  19,
		IsActive: true,
	}
	applyItemFields(&item, &req)

	if err := h.DB.WithContext(c.Request().Context()).Create(&item).Error; err != nil {
		return httpError(err)
	}

	search.Index(c.Request().Context(), h.ES, search.IndexItems, item.ID.String(), item)
	return c.JSON(http.StatusCreated, item)
}

func (h *ItemHandler) Patch(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid id")
	}
	var req itemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}

	var item models.Item
	err = h.DB.WithContext(c.Request().Context()).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Item not found")
	}
	if err != nil {
		return httpError(err)
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	applyItemFields(&item, &req)

	if err := h.DB.WithContext(c.Request().Context()).Save(&item).Error; err != nil {
		return httpError(err)
	}

	search.Index(c.Request().Context(), h.ES, search.IndexItems, item.ID.String(), item)
	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid id")
	}
	res := h.DB.WithContext(c.Request().Context()).Delete(&models.Item{}, "id = ?", id)
	if res.Error != nil {
		return httpError(res.Error)
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Item not found")
	}
	search.Delete(c.Request().Context(), h.ES, search.IndexItems, id.String())
	return c.NoContent(http.StatusNoContent)
}

func applyItemFields(item *models.Item, req *itemRequest) {
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Type != nil {
		item.Type = *req.Type
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	if req.UnitPrice != nil {
		item.UnitPrice = *req.UnitPrice
	}
	if req.CostPrice != nil {
		item.CostPrice = *req.CostPrice
	}
	if req.VATRate != nil {
		item.VATRate = *req.VATRate
	}
	if req.ExternalID != nil {
		item.ExternalID = *req.ExternalID
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
}
