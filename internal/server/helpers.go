package server

import (
	"errors"
	"strings"
	"unicode"

	"jobboard/internal/authz"
	"jobboard/internal/middleware"
	"jobboard/internal/models"
	"jobboard/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// statusForError maps an AppError code to its HTTP status. Anything else is a 500.
func statusForError(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err with the status statusForError picks. Internal
// errors are logged with their cause and answered with a generic message.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := statusForError(err)
	if status != fiber.StatusInternalServerError {
		var appErr *models.AppError
		errors.As(err, &appErr)
		return models.RespondWithError(c, status, appErr)
	}

	middleware.Logger.ErrorContext(c.UserContext(), "request failed",
		"method", c.Method(), "path", c.Path(), "error", err)

	public := &models.AppError{Code: models.CodeInternal, Message: "Internal server error"}
	if s.config != nil && !s.config.IsProduction() {
		public.Message = err.Error()
	}
	return models.RespondWithError(c, status, public)
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "offerId" -> "offer ID", "companyId" -> "company ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}

// decodeBody strictly decodes the request body into dst and runs its
// validation tags. On failure it writes a 400 and returns errResponseWritten.
func (s *Server) decodeBody(c *fiber.Ctx, dst any) error {
	if err := validation.DecodeStrict(c.Body(), dst); err != nil {
		_ = s.respondError(c, err)
		return errResponseWritten
	}
	return nil
}

// callerFrom returns the identity AuthRequired stored, or nil on public routes.
func callerFrom(c *fiber.Ctx) *authz.Caller {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return nil
	}
	return &authz.Caller{AccountID: claims.AccountID, Role: claims.Role}
}

// Pagination holds parsed page/limit query parameters.
type Pagination struct {
	Page  int
	Limit int
}

// parsePagination reads ?page and ?limit, clamping limit to maxPageLimit.
func parsePagination(c *fiber.Ctx) Pagination {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", defaultPageLimit)
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return Pagination{Page: page, Limit: limit}
}

// listOrEmpty keeps list endpoints answering [] rather than null.
func listOrEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
