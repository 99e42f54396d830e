package handlers

import (
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/tbuchert/accounting-api/internal/search"
	"github.com/tbuchert/accounting-api/internal/util"
)

type SearchHandler struct {
	ES *elasticsearch.Client
}

// Search queries the clients and items indexes. An optional kind param
// restricts the result to one of them.
func (h *SearchHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}
	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
	}

	indexes := []string{search.IndexClients, search.IndexItems}
	switch c.QueryParam("kind") {
	case "clients":
		indexes = []string{search.IndexClients}
	case "items":
		indexes = []string{search.IndexItems}
	case "":
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "kind must be clients or items")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := util.PageSize(page, size)

	total, hits, err := search.Query(c.Request().Context(), h.ES, indexes, q, from, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "results": hits})
}
