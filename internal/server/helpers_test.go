package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

// --- humanizeParam (pure function, no HTTP) ---

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"postId", "post ID"},
		{"commentId", "comment ID"},
		{"something", "something"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

// --- parsePage ---

func TestParsePage(t *testing.T) {
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"page": parsePage(c)})
	})

	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"default", "/items", `{"page":1}`},
		{"explicit", "/items?page=3", `{"page":3}`},
		{"zero clamps to one", "/items?page=0", `{"page":1}`},
		{"negative clamps to one", "/items?page=-4", `{"page":1}`},
		{"garbage defaults to one", "/items?page=abc", `{"page":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			body := decodeBody(t, resp)
			assert.JSONEq(t, tt.expected, body)
		})
	}
}

// --- parseID ---

func TestParseID_InvalidWritesBadRequest(t *testing.T) {
	s, _ := newTestServer(t)

	app := fiber.New()
	app.Get("/things/:id", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	tests := []struct {
		name           string
		url            string
		expectedStatus int
	}{
		{"valid", "/things/12", http.StatusOK},
		{"not a number", "/things/abc", http.StatusBadRequest},
		{"zero", "/things/0", http.StatusBadRequest},
		{"negative", "/things/-3", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}
