package utils

import (
	"math"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta is the pagination block returned next to list results.
func (p Page) Meta(total int64) fiber.Map {
	return fiber.Map{
		"total":       total,
		"page":        p.Page,
		"limit":       p.Limit,
		"total_pages": int(math.Ceil(float64(total) / float64(p.Limit))),
	}
}

// ParsePage reads page and limit query params, clamping them to sane bounds.
func ParsePage(c *fiber.Ctx) Page {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", DefaultPageSize)
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return Page{Page: page, Limit: limit}
}
