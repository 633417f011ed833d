package server

import (
	"time"

	"jobboard/internal/middleware"
	"jobboard/internal/models"
	"jobboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// authResponse is returned by register, login and /users/profile. Token
// fields are omitted on profile reads.
type authResponse struct {
	Token     string          `json:"token,omitempty"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	Account   *models.Account `json:"account"`
	Profile   interface{}     `json:"profile"`
}

func newAuthResponse(res *service.AuthResult) authResponse {
	out := authResponse{Token: res.Token, Account: res.Account, Profile: res.Profile()}
	if !res.ExpiresAt.IsZero() {
		exp := res.ExpiresAt
		out.ExpiresAt = &exp
	}
	return out
}

// Register handles POST /api/auth/register
// @Summary Register an account
// @Description Creates a student or company account with its profile and returns a token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body registerRequest true "Registration"
// @Success 201 {object} authResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := s.decodeBody(c, &req); err != nil {
		return nil
	}

	res, err := s.authService.Register(c.UserContext(), req.input())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newAuthResponse(res))
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Authenticates with email and password and returns a token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Credentials"
// @Success 200 {object} authResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := s.decodeBody(c, &req); err != nil {
		return nil
	}

	res, err := s.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(newAuthResponse(res))
}

// Logout handles POST /api/auth/logout
// @Summary Log out
// @Description Revokes the presented token
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, _ := middleware.ClaimsFrom(c)
	if err := s.authService.Logout(c.UserContext(), claims); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetAccountProfile handles GET /api/users/profile
// @Summary Current account
// @Description Returns the caller's account and role profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} authResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /users/profile [get]
func (s *Server) GetAccountProfile(c *fiber.Ctx) error {
	caller := callerFrom(c)
	if caller == nil {
		return s.respondError(c, models.NewUnauthorizedError("Authentication required"))
	}
	res, err := s.authService.Me(c.UserContext(), caller.AccountID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(newAuthResponse(res))
}
