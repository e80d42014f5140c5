// Package pagination parses the page/limit query window for the desk's
// listing endpoints and wraps one page of results with its metadata.
package pagination

import (
	"github.com/gofiber/fiber/v2"
)

// Desk listings are short; the cap is deliberately low.
const (
	DefaultLimit = 20
	MaxLimit     = 50
)

// Params is the normalized page window of a listing request.
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// Parse reads page and limit from the query string, clamping both into
// range. Missing or invalid values fall back to page 1 / DefaultLimit.
func Parse(c *fiber.Ctx) *Params {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", DefaultLimit)

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return &Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// Meta describes where a page sits within the full result set.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NewMeta computes paging metadata for a total row count.
func NewMeta(p *Params, total int64) *Meta {
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))

	return &Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: pages,
		HasNext:    p.Page < pages,
		HasPrev:    p.Page > 1,
	}
}

// Response is the envelope handlers hand to response.Success for
// paginated listings.
type Response struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta"`
}

// NewResponse wraps one page of data with its meta block.
func NewResponse(data interface{}, p *Params, total int64) *Response {
	return &Response{Data: data, Meta: NewMeta(p, total)}
}
