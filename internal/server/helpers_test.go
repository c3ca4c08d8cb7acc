package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param string
		want  string
	}{
		{"id", "ID"},
		{"userId", "user ID"},
		{"carModelId", "car model ID"},
		{"slug", "slug"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, humanizeParam(tt.param))
	}
}

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	var got Pagination
	app.Get("/", func(c *fiber.Ctx) error {
		got = parsePagination(c, 20)
		return c.SendStatus(fiber.StatusOK)
	})

	tests := []struct {
		name   string
		target string
		want   Pagination
	}{
		{"Defaults", "/", Pagination{Limit: 20, Offset: 0}},
		{"Explicit", "/?limit=5&offset=10", Pagination{Limit: 5, Offset: 10}},
		{"Capped", "/?limit=5000", Pagination{Limit: 100, Offset: 0}},
		{"Negative falls back", "/?limit=-1&offset=-3", Pagination{Limit: 20, Offset: 0}},
		{"Garbage falls back", "/?limit=abc", Pagination{Limit: 20, Offset: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.Test(httptest.NewRequest(http.MethodGet, tt.target, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseID(t *testing.T) {
	app := fiber.New()
	app.Get("/things/:id", func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	t.Run("Valid", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/things/42", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Non-numeric", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/things/abc", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Zero", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/things/0", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestQueryHelpers(t *testing.T) {
	app := fiber.New()
	var gotUint *uint
	var gotFloat *float64
	app.Get("/", func(c *fiber.Ctx) error {
		gotUint = queryUint(c, "brand_id")
		gotFloat = queryFloat(c, "min_price")
		return c.SendStatus(fiber.StatusOK)
	})

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/?brand_id=3&min_price=99.5", nil))
	require.NoError(t, err)
	require.NotNil(t, gotUint)
	assert.Equal(t, uint(3), *gotUint)
	require.NotNil(t, gotFloat)
	assert.Equal(t, 99.5, *gotFloat)

	_, err = app.Test(httptest.NewRequest(http.MethodGet, "/?brand_id=abc&min_price=-5", nil))
	require.NoError(t, err)
	assert.Nil(t, gotUint)
	assert.Nil(t, gotFloat)
}
