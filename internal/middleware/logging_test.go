package middleware

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"

	"jobboard/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := Logger
	Logger = slog.New(&ctxHandler{slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})})
	t.Cleanup(func() { Logger = previous })
	return &buf
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	return lines
}

func TestCtxHandler_AddsIdentity(t *testing.T) {
	buf := captureLogs(t)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, AccountIDKey, uint(9))
	ctx = context.WithValue(ctx, RoleKey, models.RoleStudent)
	Logger.With("component", "test").InfoContext(ctx, "applied")

	lines := logLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "req-1", lines[0]["request_id"])
	assert.Equal(t, float64(9), lines[0]["account_id"])
	assert.Equal(t, "student", lines[0]["role"])
	assert.Equal(t, "test", lines[0]["component"])
}

func TestStructuredLogger_Levels(t *testing.T) {
	buf := captureLogs(t)
	tokens := newTokenManager()

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(ContextMiddleware())
	app.Use(StructuredLogger())
	app.Get("/api/offers/:id", AuthRequired(tokens, nil), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/api/broken", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadGateway, "upstream")
	})
	app.Get("/health/live", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	token, _, err := tokens.Issue(&models.Account{ID: 5, Email: "a@x.com", Role: models.RoleAdmin})
	require.NoError(t, err)
	req := httptest.NewRequest("GET", "/api/offers/3", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	_, err = app.Test(req)
	require.NoError(t, err)
	_, err = app.Test(httptest.NewRequest("GET", "/api/offers/3", nil))
	require.NoError(t, err)
	_, err = app.Test(httptest.NewRequest("GET", "/api/broken", nil))
	require.NoError(t, err)
	_, err = app.Test(httptest.NewRequest("GET", "/health/live", nil))
	require.NoError(t, err)

	lines := logLines(t, buf)
	require.Len(t, lines, 4)

	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "/api/offers/:id", lines[0]["route"])
	assert.Equal(t, "admin", lines[0]["role"])
	assert.Equal(t, float64(5), lines[0]["account_id"])
	assert.NotEmpty(t, lines[0]["request_id"])

	assert.Equal(t, "WARN", lines[1]["level"])
	assert.Equal(t, float64(401), lines[1]["status"])
	assert.NotContains(t, lines[1], "account_id")

	assert.Equal(t, "ERROR", lines[2]["level"])
	assert.Equal(t, float64(502), lines[2]["status"])
	assert.Equal(t, "upstream", lines[2]["error"])

	assert.Equal(t, "DEBUG", lines[3]["level"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}
