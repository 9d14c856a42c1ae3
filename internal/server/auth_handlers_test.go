package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ripple/internal/config"
	"ripple/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func signupBody(t *testing.T, username, email, password string) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(map[string]string{
		"name":     "Test User",
		"username": username,
		"email":    email,
		"password": password,
	})
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func TestSignup(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	app := fiber.New()
	app.Post("/signup", s.Signup)

	t.Run("creates user and returns token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/signup",
			signupBody(t, "alice", "alice@example.com", "Sup3r$ecretPass!"))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		envelope := decodeEnvelope(t, resp)
		assert.Equal(t, "success", envelope.Status)

		data := envelope.Data.(map[string]interface{})
		assert.NotEmpty(t, data["token"])

		var user models.User
		require.NoError(t, db.Where("username = ?", "alice").First(&user).Error)
		assert.Equal(t, models.RoleUser, user.Role)
		assert.Equal(t, models.UserStatusActive, user.Status)
		assert.NotEqual(t, "Sup3r$ecretPass!", user.Password)
	})

	t.Run("rejects weak password", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/signup",
			signupBody(t, "bob", "bob@example.com", "short"))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/signup",
			signupBody(t, "alice2", "alice@example.com", "Sup3r$ecretPass!"))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		envelope := decodeEnvelope(t, resp)
		assert.Equal(t, "failed", envelope.Status)
		assert.Equal(t, "User already exists", envelope.Message)
	})

	t.Run("rejects invalid username", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/signup",
			signupBody(t, "a", "short@example.com", "Sup3r$ecretPass!"))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	app := fiber.New()
	app.Post("/login", s.Login)

	hashed, err := bcrypt.GenerateFromPassword([]byte("Sup3r$ecretPass!"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Name: "Carol", Username: "carol", Email: "carol@example.com",
		Password: string(hashed), Role: models.RoleUser, Status: models.UserStatusActive,
	}).Error)
	require.NoError(t, db.Create(&models.User{
		Name: "Gone", Username: "gone", Email: "gone@example.com",
		Password: string(hashed), Role: models.RoleUser, Status: models.UserStatusDeleted,
	}).Error)

	login := func(email, password string) *http.Response {
		body, _ := json.Marshal(map[string]string{"email": email, "password": password})
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("valid credentials", func(t *testing.T) {
		resp := login("carol@example.com", "Sup3r$ecretPass!")
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		envelope := decodeEnvelope(t, resp)
		data := envelope.Data.(map[string]interface{})
		assert.NotEmpty(t, data["token"])
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := login("carol@example.com", "wrong")
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown email", func(t *testing.T) {
		resp := login("nobody@example.com", "whatever")
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("deleted account", func(t *testing.T) {
		resp := login("gone@example.com", "Sup3r$ecretPass!")
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)

	app := fiber.New()
	app.Get("/api/protected", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": currentUserID(c)})
	})

	token, err := s.generateToken(42, "deepthought")
	require.NoError(t, err)

	t.Run("valid bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		forger := &Server{config: &config.Config{JWTSecret: "other-secret"}}
		forged, err := forger.generateToken(42, "deepthought")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
		req.Header.Set("Authorization", "Bearer "+forged)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLogoutBlacklistsToken(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s, _ := newTestServer(t)
	withRedis(s, client)

	app := fiber.New()
	app.Post("/logout", s.Logout)
	app.Get("/api/protected", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	token, err := s.generateToken(7, "seven")
	require.NoError(t, err)

	// The token works before logout.
	req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The jti is blacklisted, so the same token is now refused.
	req = httptest.NewRequest(http.MethodGet, "/api/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWSTicketFlow(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s, _ := newTestServer(t)
	withRedis(s, client)

	app := newAuthedApp(9)
	app.Post("/api/ws/ticket", s.IssueWSTicket)

	wsApp := fiber.New()
	wsApp.Get("/api/ws/check", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": currentUserID(c)})
	})

	req := httptest.NewRequest(http.MethodPost, "/api/ws/ticket", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	data := envelope.Data.(map[string]interface{})
	ticket := data["ticket"].(string)
	require.NotEmpty(t, ticket)

	// First use succeeds.
	req = httptest.NewRequest(http.MethodGet, "/api/ws/check?ticket="+ticket, nil)
	wsResp, err := wsApp.Test(req)
	require.NoError(t, err)
	_ = wsResp.Body.Close()
	assert.Equal(t, http.StatusOK, wsResp.StatusCode)

	// Tickets are single use: the second attempt is refused.
	req = httptest.NewRequest(http.MethodGet, "/api/ws/check?ticket="+ticket, nil)
	wsResp, err = wsApp.Test(req)
	require.NoError(t, err)
	_ = wsResp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, wsResp.StatusCode)
}
