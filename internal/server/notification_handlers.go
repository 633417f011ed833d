package server

import (
	"context"
	"errors"

	"jobboard/internal/auth"
	"jobboard/internal/middleware"
	"jobboard/internal/models"
	"jobboard/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type ticketResponse struct {
	Ticket    string `json:"ticket"`
	ExpiresIn int    `json:"expires_in"`
}

// IssueNotificationTicket handles POST /api/notifications/ticket
// @Summary Issue a websocket ticket
// @Description Returns a single-use ticket for /notifications/ws, valid for 30 seconds
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 201 {object} ticketResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /notifications/ticket [post]
func (s *Server) IssueNotificationTicket(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return s.respondError(c, models.NewUnauthorizedError("Authorization required"))
	}
	ticket, err := s.tickets.Issue(c.UserContext(), claims)
	if errors.Is(err, auth.ErrTicketsUnavailable) {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			&models.AppError{Code: "SERVICE_UNAVAILABLE", Message: "Live notifications are unavailable"})
	}
	if err != nil {
		return s.respondError(c, models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(ticketResponse{
		Ticket:    ticket,
		ExpiresIn: int(auth.TicketTTL.Seconds()),
	})
}

// requireWebSocketUpgrade rejects plain HTTP requests to socket routes.
func requireWebSocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return models.RespondWithError(c, fiber.StatusUpgradeRequired,
			&models.AppError{Code: "UPGRADE_REQUIRED", Message: "This endpoint only accepts websocket connections"})
	}
	return c.Next()
}

// NotificationsSocket handles GET /api/notifications/ws
// @Summary Live application notifications
// @Description Websocket streaming the caller's application events as JSON. Authenticate with ?ticket= or a bearer header.
// @Tags notifications
// @Param ticket query string false "Ticket from POST /notifications/ticket"
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} models.ErrorResponse
// @Failure 426 {object} models.ErrorResponse
// @Router /notifications/ws [get]
func (s *Server) NotificationsSocket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		accountID, ok := conn.Locals(middleware.LocalAccountID).(uint)
		if !ok || accountID == 0 {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(accountID, conn)
		if err != nil {
			middleware.Logger.Warn("notification socket refused", "account_id", accountID, "error", err)
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()))
			_ = conn.Close()
			return
		}

		span, _ := observability.NewSpan(context.Background(), "notifications.socket")
		defer span.End()
		middleware.Logger.Info("notification socket opened", "account_id", accountID)

		go client.WritePump()
		client.ReadPump()

		middleware.Logger.Info("notification socket closed", "account_id", accountID)
	})
}
