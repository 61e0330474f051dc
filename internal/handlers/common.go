package handlers

import (
	"strconv"

	"github.com/gmbs/interventions-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

// parseListQuery extracts the filter, sort and pagination query parameters
// of a list request, clamped to their allowed ranges.
func parseListQuery(c *fiber.Ctx) services.ListQuery {
	q := services.ListQuery{
		Page:          c.QueryInt("page", 1),
		Limit:         c.QueryInt("limit", 20),
		Status:        c.Query("status"),
		ArtisanID:     queryUint(c, "artisan_id"),
		AgencyID:      queryUint(c, "agency_id"),
		UserID:        queryUint(c, "user_id"),
		Search:        c.Query("search"),
		SortField:     c.Query("sort_field", "created_at"),
		SortDirection: c.Query("sort_direction", "desc"),
	}
	q.Normalize()
	return q
}

// queryUint parses an optional positive integer query parameter.
// Missing or malformed values resolve to nil (filter not applied).
func queryUint(c *fiber.Ctx, key string) *uint {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || value == 0 {
		return nil
	}
	v := uint(value)
	return &v
}

// paramID parses the :id path parameter.
func paramID(c *fiber.Ctx) (uint, error) {
	value, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}
