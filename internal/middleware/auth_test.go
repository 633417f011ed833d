package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobboard/internal/auth"
	"jobboard/internal/config"
	"jobboard/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenManager() *auth.TokenManager {
	return auth.NewTokenManager(&config.Config{
		JWTSecret:   "test-secret-key-12345678901234567890123456789012",
		JWTIssuer:   "jobboard-api",
		JWTAudience: "jobboard-client",
		JWTTTLHours: 1,
	})
}

func TestAuthRequired(t *testing.T) {
	tokens := newTokenManager()
	mr := miniredis.RunT(t)
	revoker := auth.NewRedisRevoker(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	app := fiber.New()
	app.Get("/test", AuthRequired(tokens, revoker), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"accountID": c.Locals(LocalAccountID)})
	})

	valid, _, err := tokens.Issue(&models.Account{ID: 123, Email: "s@x.com", Role: models.RoleStudent})
	require.NoError(t, err)
	revokedToken, revokedClaims, err := tokens.Issue(&models.Account{ID: 124, Email: "r@x.com", Role: models.RoleStudent})
	require.NoError(t, err)
	require.NoError(t, revoker.Revoke(context.Background(), revokedClaims.ID, time.Hour))

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{"Happy Path", "Bearer " + valid, http.StatusOK},
		{"Lowercase Scheme", "bearer " + valid, http.StatusOK},
		{"Missing Header", "", http.StatusUnauthorized},
		{"Invalid Format", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"Invalid Token", "Bearer invalid.token.here", http.StatusUnauthorized},
		{"Revoked Token", "Bearer " + revokedToken, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestRoleRequired(t *testing.T) {
	tokens := newTokenManager()

	app := fiber.New()
	app.Post("/offers", AuthRequired(tokens, nil), RoleRequired(models.RoleCompany), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})
	// RoleRequired alone cannot see an identity.
	app.Post("/bare", RoleRequired(models.RoleCompany), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	company, _, err := tokens.Issue(&models.Account{ID: 1, Email: "c@x.com", Role: models.RoleCompany})
	require.NoError(t, err)
	student, _, err := tokens.Issue(&models.Account{ID: 2, Email: "s@x.com", Role: models.RoleStudent})
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"Company Allowed", "/offers", company, http.StatusCreated},
		{"Student Forbidden", "/offers", student, http.StatusForbidden},
		{"Unauthenticated Before Role", "/offers", "", http.StatusUnauthorized},
		{"No Identity", "/bare", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestWebSocketAuth(t *testing.T) {
	tokens := newTokenManager()
	mr := miniredis.RunT(t)
	tickets := auth.NewTicketStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	app := fiber.New()
	app.Get("/ws", WebSocketAuth(tickets, tokens, nil), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"accountID": c.Locals(LocalAccountID), "role": c.Locals(LocalRole)})
	})

	valid, claims, err := tokens.Issue(&models.Account{ID: 77, Email: "c@x.com", Role: models.RoleCompany})
	require.NoError(t, err)
	ticket, err := tickets.Issue(context.Background(), claims)
	require.NoError(t, err)

	tests := []struct {
		name           string
		query          string
		authHeader     string
		expectedStatus int
	}{
		{"Ticket", "?ticket=" + ticket, "", http.StatusOK},
		{"Ticket Reused", "?ticket=" + ticket, "", http.StatusUnauthorized},
		{"Unknown Ticket", "?ticket=nope", "Bearer " + valid, http.StatusUnauthorized},
		{"Bearer Header", "", "Bearer " + valid, http.StatusOK},
		{"Token In Query", "?token=" + valid, "", http.StatusUnauthorized},
		{"Nothing", "", "", http.StatusUnauthorized},
	}

	// Cases share the ticket, so they run in order.
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/ws"+tt.query, nil)
		if tt.authHeader != "" {
			req.Header.Set("Authorization", tt.authHeader)
		}
		resp, err := app.Test(req)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.expectedStatus, resp.StatusCode, tt.name)
		_ = resp.Body.Close()
	}
}
