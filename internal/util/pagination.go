package util

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// SkipLimit reads skip/limit query params with the API defaults (skip 0,
// limit 100, capped at 1000).
func SkipLimit(c echo.Context) (skip, limit int) {
	skip, _ = strconv.Atoi(c.QueryParam("skip"))
	if skip < 0 {
		skip = 0
	}
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	return skip, limit
}

// PageSize converts page/size search params into from/size for Elasticsearch.
func PageSize(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 10
	}
	return (page - 1) * size, size
}
