package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"jobboard/internal/auth"
	"jobboard/internal/config"
	"jobboard/internal/middleware"
	"jobboard/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockDB creates a GORM *gorm.DB backed by sqlmock that records pings.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return gormDB, mock
}

func decodeError(t *testing.T, resp *http.Response) models.ErrorResponse {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// --- humanizeParam (pure function, no HTTP) ---

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"offerId", "offer ID"},
		{"companyId", "company ID"},
		{"jobOfferId", "job offer ID"},
		{"something", "something"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

// --- statusForError ---

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", models.NewValidationError("bad"), http.StatusBadRequest},
		{"unauthorized", models.NewUnauthorizedError("who"), http.StatusUnauthorized},
		{"forbidden", models.NewForbiddenError("no"), http.StatusForbidden},
		{"not found", models.NewNotFoundError("Job offer", 1), http.StatusNotFound},
		{"conflict", models.NewConflictError("twice"), http.StatusConflict},
		{"internal", models.NewInternalError(errors.New("boom")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, statusForError(tt.err))
		})
	}
}

func TestRespondError_HidesInternalCauseInProduction(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		t.Run(env, func(t *testing.T) {
			s := &Server{config: &config.Config{Env: env}}
			app := fiber.New()
			app.Get("/fail", func(c *fiber.Ctx) error {
				return s.respondError(c, errors.New("pq: connection refused"))
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			body := decodeError(t, resp)
			assert.Equal(t, models.CodeInternal, body.Code)
			if env == "production" {
				assert.Equal(t, "Internal server error", body.Error)
			} else {
				assert.Contains(t, body.Error, "connection refused")
			}
		})
	}
}

func TestRespondError_CarriesFieldDetails(t *testing.T) {
	s := &Server{config: &config.Config{}}
	app := fiber.New()
	app.Get("/fail", func(c *fiber.Ctx) error {
		return s.respondError(c, models.NewFieldValidationError(map[string]string{"title": "Title is required"}))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, models.CodeValidation, body.Code)
	assert.Equal(t, "Title is required", body.Details["title"])
}

// --- parsePagination ---

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query       string
		page, limit int
	}{
		{"", 1, defaultPageLimit},
		{"?page=3&limit=10", 3, 10},
		{"?page=0&limit=-5", 1, defaultPageLimit},
		{"?limit=1000", 1, maxPageLimit},
		{"?page=abc", 1, defaultPageLimit},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			app := fiber.New()
			app.Get("/items", func(c *fiber.Ctx) error {
				p := parsePagination(c)
				return c.JSON(fiber.Map{"page": p.Page, "limit": p.Limit})
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items"+tt.query, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			var body map[string]int
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.page, body["page"])
			assert.Equal(t, tt.limit, body["limit"])
		})
	}
}

// --- parseID ---

func TestParseID_ValidID(t *testing.T) {
	app := fiber.New()
	s := &Server{}
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/42", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]uint
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, uint(42), body["id"])
}

func TestParseID_Rejects(t *testing.T) {
	tests := []struct {
		param       string
		value       string
		expectedMsg string
	}{
		{"id", "abc", "Invalid ID"},
		{"id", "0", "Invalid ID"},
		{"id", "-3", "Invalid ID"},
		{"offerId", "abc", "Invalid offer ID"},
		{"companyId", "x1", "Invalid company ID"},
	}
	for _, tt := range tests {
		t.Run(tt.param+"="+tt.value, func(t *testing.T) {
			app := fiber.New()
			s := &Server{}
			app.Get("/items/:"+tt.param, func(c *fiber.Ctx) error {
				_, _ = s.parseID(c, tt.param)
				return nil
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/"+tt.value, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body := decodeError(t, resp)
			assert.Equal(t, tt.expectedMsg, body.Error)
			assert.Equal(t, models.CodeValidation, body.Code)
		})
	}
}

// --- callerFrom ---

func TestCallerFrom(t *testing.T) {
	app := fiber.New()
	app.Get("/anon", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"nil": callerFrom(c) == nil})
	})
	app.Get("/authed", func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalClaims, &auth.Claims{AccountID: 9, Role: models.RoleCompany})
		caller := callerFrom(c)
		return c.JSON(fiber.Map{"id": caller.AccountID, "role": caller.Role})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/anon", nil))
	require.NoError(t, err)
	var anon map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&anon))
	_ = resp.Body.Close()
	assert.True(t, anon["nil"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/authed", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	var authed map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&authed))
	assert.Equal(t, float64(9), authed["id"])
	assert.Equal(t, "company", authed["role"])
}

func TestListOrEmpty(t *testing.T) {
	var none []models.JobOffer
	out, err := json.Marshal(listOrEmpty(none))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(out))

	assert.Len(t, listOrEmpty([]int{1, 2}), 2)
}

// --- ReadinessCheck ---

func TestReadinessCheck_DatabaseDown(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	s := &Server{db: gormDB}

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	app := fiber.New()
	app.Get("/health/ready", s.ReadinessCheck)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "unhealthy", body["status"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadinessCheck_DegradedWithoutRedis(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	s := &Server{db: gormDB}

	mock.ExpectPing()

	app := fiber.New()
	app.Get("/health/ready", s.ReadinessCheck)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "healthy", body.Checks["database"])
	assert.Equal(t, "unavailable", body.Checks["redis"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
