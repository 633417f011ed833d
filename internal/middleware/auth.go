package middleware

import (
	"context"
	"errors"
	"strings"

	"jobboard/internal/auth"
	"jobboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Fiber locals populated by AuthRequired.
const (
	LocalAccountID = "accountID"
	LocalRole      = "role"
	LocalClaims    = "claims"
)

// TokenParser verifies a bearer token and returns its claims.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// AuthRequired enforces a valid, unrevoked bearer token and stores the caller's
// identity in locals and in the user context. It always runs before any role check.
func AuthRequired(tokens TokenParser, revoker auth.Revoker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		if revoker != nil {
			revoked, rerr := revoker.IsRevoked(c.UserContext(), claims.ID)
			if rerr != nil {
				Logger.WarnContext(c.UserContext(), "token revocation check failed", "error", rerr)
			}
			if revoked {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError(auth.ErrRevokedToken.Error()))
			}
		}

		setIdentity(c, claims)
		return c.Next()
	}
}

// TicketRedeemer consumes single-use websocket tickets.
type TicketRedeemer interface {
	Redeem(ctx context.Context, ticket string) (*auth.Claims, error)
}

// WebSocketAuth authenticates a websocket handshake with either a ?ticket=
// query parameter or the usual bearer header. Tokens are never accepted in the
// query string.
func WebSocketAuth(tickets TicketRedeemer, tokens TokenParser, revoker auth.Revoker) fiber.Handler {
	bearer := AuthRequired(tokens, revoker)
	return func(c *fiber.Ctx) error {
		ticket := c.Query("ticket")
		if ticket == "" {
			return bearer(c)
		}
		claims, err := tickets.Redeem(c.UserContext(), ticket)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidTicket) {
				Logger.WarnContext(c.UserContext(), "websocket ticket redemption failed", "error", err)
			}
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired websocket ticket"))
		}
		setIdentity(c, claims)
		return c.Next()
	}
}

func setIdentity(c *fiber.Ctx, claims *auth.Claims) {
	c.Locals(LocalAccountID, claims.AccountID)
	c.Locals(LocalRole, claims.Role)
	c.Locals(LocalClaims, claims)

	ctx := context.WithValue(c.UserContext(), AccountIDKey, claims.AccountID)
	ctx = context.WithValue(ctx, RoleKey, claims.Role)
	c.SetUserContext(ctx)
}

// RoleRequired rejects authenticated callers whose role is not in roles with 403.
// It must be placed after AuthRequired.
func RoleRequired(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFrom(c)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}
		for _, r := range roles {
			if claims.Role == r {
				return c.Next()
			}
		}
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("This action requires the "+joinRoles(roles)+" role"))
	}
}

// ClaimsFrom returns the claims stored by AuthRequired.
func ClaimsFrom(c *fiber.Ctx) (*auth.Claims, bool) {
	claims, ok := c.Locals(LocalClaims).(*auth.Claims)
	return claims, ok && claims != nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func joinRoles(roles []models.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, " or ")
}
