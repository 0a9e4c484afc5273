package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jobassist/backend/pkg/catalog"
	"github.com/jobassist/backend/pkg/status"
)

func parseLimitOffset(c *fiber.Ctx, defLimit int) (limit, offset int) {
	limit = defLimit
	offset = 0
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := strings.TrimSpace(c.Query("offset")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

func parseFilters(c *fiber.Ctx) catalog.Filters {
	return catalog.Filters{
		Search:    strings.TrimSpace(c.Query("search")),
		Status:    status.Status(strings.ToLower(strings.TrimSpace(c.Query("status")))),
		Highlight: catalog.Highlight(strings.ToLower(strings.TrimSpace(c.Query("highlight")))),
	}
}

func parseSort(c *fiber.Ctx) (catalog.SortKey, catalog.SortOrder) {
	key := catalog.SortByScore
	switch strings.ToLower(strings.TrimSpace(c.Query("sort_by"))) {
	case "title":
		key = catalog.SortByTitle
	case "company":
		key = catalog.SortByCompany
	case "date":
		key = catalog.SortByDate
	}
	order := catalog.OrderDesc
	if strings.EqualFold(strings.TrimSpace(c.Query("order")), "asc") {
		order = catalog.OrderAsc
	}
	return key, order
}
