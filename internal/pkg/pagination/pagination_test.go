package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseQuery(t *testing.T, target string) *Params {
	t.Helper()

	app := fiber.New()
	var got *Params
	app.Get("/list", func(c *fiber.Ctx) error {
		got = Parse(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, got)
	return got
}

func TestParseDefaults(t *testing.T) {
	p := parseQuery(t, "/list")

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Zero(t, p.Offset)
}

func TestParseClampsOutOfRangeValues(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantPage  int
		wantLimit int
	}{
		{"negative page", "/list?page=-3", 1, DefaultLimit},
		{"zero limit", "/list?limit=0", 1, DefaultLimit},
		{"limit over cap", "/list?limit=500", 1, MaxLimit},
		{"garbage values", "/list?page=abc&limit=xyz", 1, DefaultLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := parseQuery(t, tt.target)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantLimit, p.Limit)
		})
	}
}

func TestParseOffset(t *testing.T) {
	p := parseQuery(t, "/list?page=3&limit=10")

	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 20, p.Offset)
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(&Params{Page: 2, Limit: 20}, 45)

	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, int64(45), meta.Total)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)
}

func TestNewMetaLastPage(t *testing.T) {
	meta := NewMeta(&Params{Page: 3, Limit: 20}, 45)

	assert.False(t, meta.HasNext)
	assert.True(t, meta.HasPrev)
}

func TestNewMetaEmptyResult(t *testing.T) {
	meta := NewMeta(&Params{Page: 1, Limit: 20}, 0)

	assert.Zero(t, meta.TotalPages)
	assert.False(t, meta.HasNext)
	assert.False(t, meta.HasPrev)
}
