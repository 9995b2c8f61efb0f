package http

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/mynews/mynews-api/internal/auth"
	"github.com/mynews/mynews-api/internal/bookmark"
	"github.com/mynews/mynews-api/internal/config"
	"github.com/mynews/mynews-api/internal/database"
	"github.com/mynews/mynews-api/internal/logging"
	"github.com/mynews/mynews-api/internal/ratelimit"
	"github.com/mynews/mynews-api/internal/user"
)

// capturingMailer records the tokens from outbound emails so the test can
// follow the activation and reset links
type capturingMailer struct {
	mu              sync.Mutex
	activationToken string
	resetToken      string
	sent            chan struct{}
}

func newCapturingMailer() *capturingMailer {
	return &capturingMailer{sent: make(chan struct{}, 16)}
}

func (m *capturingMailer) SendActivationEmail(_ context.Context, _, token, _ string) error {
	m.mu.Lock()
	m.activationToken = token
	m.mu.Unlock()
	m.sent <- struct{}{}
	return nil
}

func (m *capturingMailer) SendPasswordResetEmail(_ context.Context, _, token, _ string) error {
	m.mu.Lock()
	m.resetToken = token
	m.mu.Unlock()
	m.sent <- struct{}{}
	return nil
}

func (m *capturingMailer) waitForSend(t *testing.T) {
	t.Helper()
	select {
	case <-m.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for email send")
	}
}

type testAPI struct {
	server *httptest.Server
	mailer *capturingMailer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	sqlDB, err := sql.Open(sqliteshim.ShimName, "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	require.NoError(t, database.CreateSchema(context.Background(), db))

	cfg := &config.Config{
		Server: config.ServerConfig{Env: "prod"},
		Auth: config.AuthConfig{
			JWTSecret:     []byte("test-secret"),
			TokenDuration: time.Hour,
		},
	}

	logger := logging.NewLogger(true)
	mailer := newCapturingMailer()

	// Rate limiter errors are advisory, so an unreachable redis lets the
	// flow run without a real instance
	redisClient := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	limiter := ratelimit.NewLimiter(redisClient)

	userRepo := user.NewRepository(db)
	bookmarkRepo := bookmark.NewRepository(db)

	tokens, err := auth.NewJWTService(cfg.Auth.JWTSecret)
	require.NoError(t, err)

	authService := auth.NewService(userRepo, tokens, mailer, logger, cfg.Auth.TokenDuration)
	bookmarkService := bookmark.NewService(bookmarkRepo)

	router := NewRouter(
		cfg,
		auth.NewHandler(authService, limiter, logger),
		auth.NewMiddleware(tokens),
		user.NewHandler(userRepo),
		bookmark.NewHandler(bookmarkService),
		logger,
	)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testAPI{server: server, mailer: mailer}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "api is running", body["status"])
}

func TestFullAccountAndBookmarkFlow(t *testing.T) {
	api := newTestAPI(t)

	// Register
	resp := api.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":      "alice@example.com",
		"password":   "password123",
		"first_name": "Alice",
		"last_name":  "Smith",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var msg map[string]string
	decodeBody(t, resp, &msg)
	assert.Contains(t, msg["message"], "Activation email has been sent")
	api.mailer.waitForSend(t)

	// Login before activation is forbidden
	resp = api.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Activate using the emailed token
	api.mailer.mu.Lock()
	activationToken := api.mailer.activationToken
	api.mailer.mu.Unlock()
	require.NotEmpty(t, activationToken)

	resp = api.do(t, http.MethodGet, "/auth/activate/"+activationToken, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// A credential mismatch is a 200 with a message, not a 401
	resp = api.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &msg)
	assert.Equal(t, "Invalid Credentials", msg["message"])

	// Login
	resp = api.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var login struct {
		AccessToken string `json:"access_token"`
		ID          int64  `json:"id"`
		FirstName   string `json:"first_name"`
		Email       string `json:"email"`
	}
	decodeBody(t, resp, &login)
	require.NotEmpty(t, login.AccessToken)
	assert.Equal(t, "Alice", login.FirstName)
	assert.Equal(t, "alice@example.com", login.Email)
	token := login.AccessToken

	// Bookmarks require authentication
	resp = api.do(t, http.MethodGet, "/bookmarks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Add a bookmark
	resp = api.do(t, http.MethodPost, "/bookmarks", token, map[string]string{
		"title": "Go 1.25 released",
		"url":   "https://example.com/go-1-25",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var created bookmark.Bookmark
	decodeBody(t, resp, &created)
	assert.NotZero(t, created.ID)
	assert.Equal(t, login.ID, created.UserID)

	// List it back
	resp = api.do(t, http.MethodGet, "/bookmarks", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var list []bookmark.Bookmark
	decodeBody(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Go 1.25 released", list[0].Title)

	// Remove it
	resp = api.do(t, http.MethodDelete, fmt.Sprintf("/bookmarks/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = api.do(t, http.MethodGet, "/bookmarks", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &list)
	assert.Empty(t, list)

	// Removing it again is a 404
	resp = api.do(t, http.MethodDelete, fmt.Sprintf("/bookmarks/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestRegisterValidationResponse(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "not-an-email",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, resp, &body)
	assert.Contains(t, body.Fields, "email")
	assert.Contains(t, body.Fields, "password")
	assert.Contains(t, body.Fields, "first_name")
	assert.Contains(t, body.Fields, "last_name")
}

func TestRegisterDuplicateEmailResponse(t *testing.T) {
	api := newTestAPI(t)

	payload := map[string]string{
		"email":      "alice@example.com",
		"password":   "password123",
		"first_name": "Alice",
		"last_name":  "Smith",
	}

	resp := api.do(t, http.MethodPost, "/auth/register", "", payload)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	api.mailer.waitForSend(t)

	resp = api.do(t, http.MethodPost, "/auth/register", "", payload)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "email_already_exists", body.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":      "alice@example.com",
		"password":   "password123",
		"first_name": "Alice",
		"last_name":  "Smith",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	api.mailer.waitForSend(t)

	api.mailer.mu.Lock()
	activationToken := api.mailer.activationToken
	api.mailer.mu.Unlock()
	resp = api.do(t, http.MethodGet, "/auth/activate/"+activationToken, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Request a reset for an unknown email
	resp = api.do(t, http.MethodPost, "/auth/forgot-password", "", map[string]string{
		"email": "nobody@example.com",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Request a reset
	resp = api.do(t, http.MethodPost, "/auth/forgot-password", "", map[string]string{
		"email": "alice@example.com",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	api.mailer.waitForSend(t)

	api.mailer.mu.Lock()
	resetToken := api.mailer.resetToken
	api.mailer.mu.Unlock()
	require.NotEmpty(t, resetToken)

	// Too-short replacement password
	resp = api.do(t, http.MethodPost, "/auth/reset-password", "", map[string]string{
		"token":       resetToken,
		"newPassword": "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Reset and log in with the new password
	resp = api.do(t, http.MethodPost, "/auth/reset-password", "", map[string]string{
		"token":       resetToken,
		"newPassword": "brand-new-password",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = api.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "brand-new-password",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var login struct {
		AccessToken string `json:"access_token"`
	}
	decodeBody(t, resp, &login)
	assert.NotEmpty(t, login.AccessToken)

	// The reset token is single-use
	resp = api.do(t, http.MethodPost, "/auth/reset-password", "", map[string]string{
		"token":       resetToken,
		"newPassword": "yet-another-password",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestUpdateProfile(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":      "alice@example.com",
		"password":   "password123",
		"first_name": "Alice",
		"last_name":  "Smith",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	api.mailer.waitForSend(t)

	api.mailer.mu.Lock()
	activationToken := api.mailer.activationToken
	api.mailer.mu.Unlock()
	resp = api.do(t, http.MethodGet, "/auth/activate/"+activationToken, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = api.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	var login struct {
		AccessToken string `json:"access_token"`
		ID          int64  `json:"id"`
	}
	decodeBody(t, resp, &login)

	// Without a token the update is rejected
	resp = api.do(t, http.MethodPatch, "/auth/user", "", map[string]string{
		"first_name": "Alicia",
		"last_name":  "Jones",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = api.do(t, http.MethodPatch, "/auth/user", login.AccessToken, map[string]string{
		"first_name": "Alicia",
		"last_name":  "Jones",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated user.Projection
	decodeBody(t, resp, &updated)
	assert.Equal(t, login.ID, updated.ID)
	assert.Equal(t, "Alicia", updated.FirstName)
	assert.Equal(t, "Jones", updated.LastName)
	assert.Equal(t, "alice@example.com", updated.Email)
}

func TestUsersReadSurface(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":      "alice@example.com",
		"password":   "password123",
		"first_name": "Alice",
		"last_name":  "Smith",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	api.mailer.waitForSend(t)

	// List never leaks credential material
	resp = api.do(t, http.MethodGet, "/users", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var raw []map[string]any
	decodeBody(t, resp, &raw)
	require.Len(t, raw, 1)
	assert.Equal(t, "alice@example.com", raw[0]["email"])
	assert.NotContains(t, raw[0], "password_hash")
	assert.NotContains(t, raw[0], "activation_token")
	assert.NotContains(t, raw[0], "reset_token")

	// Fetch by id
	resp = api.do(t, http.MethodGet, "/users/1", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var u map[string]any
	decodeBody(t, resp, &u)
	assert.Equal(t, "alice@example.com", u["email"])

	// A missing user is a 200 with a null body
	resp = api.do(t, http.MethodGet, "/users/999", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var missing any
	decodeBody(t, resp, &missing)
	assert.Nil(t, missing)
}
