package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jobboard/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TicketTTL bounds how long a websocket ticket can wait to be redeemed.
const TicketTTL = 30 * time.Second

var (
	// ErrInvalidTicket is returned for unknown, expired or already redeemed tickets.
	ErrInvalidTicket = errors.New("invalid or expired websocket ticket")
	// ErrTicketsUnavailable is returned when no Redis client is configured.
	ErrTicketsUnavailable = errors.New("websocket tickets require redis")
)

// TicketStore trades a verified bearer identity for a short-lived, single-use
// ticket that browsers can pass in the websocket URL.
type TicketStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewTicketStore(rdb *redis.Client) *TicketStore {
	return &TicketStore{rdb: rdb, ttl: TicketTTL}
}

type ticketPayload struct {
	AccountID uint   `json:"account_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	JTI       string `json:"jti"`
	ExpiresAt int64  `json:"exp"`
}

func ticketKey(ticket string) string {
	return "ws_ticket:" + ticket
}

// Issue stores claims under a fresh ticket.
func (s *TicketStore) Issue(ctx context.Context, claims *Claims) (string, error) {
	if s == nil || s.rdb == nil {
		return "", ErrTicketsUnavailable
	}
	payload, err := json.Marshal(ticketPayload{
		AccountID: claims.AccountID,
		Email:     claims.Email,
		Role:      string(claims.Role),
		JTI:       claims.ID,
		ExpiresAt: claims.ExpiresAt.Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal ticket: %w", err)
	}
	ticket := uuid.NewString()
	if err := s.rdb.Set(ctx, ticketKey(ticket), payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store ticket: %w", err)
	}
	return ticket, nil
}

// Redeem consumes a ticket atomically and returns the claims it was issued for.
func (s *TicketStore) Redeem(ctx context.Context, ticket string) (*Claims, error) {
	if s == nil || s.rdb == nil {
		return nil, ErrTicketsUnavailable
	}
	if ticket == "" {
		return nil, ErrInvalidTicket
	}
	raw, err := s.rdb.GetDel(ctx, ticketKey(ticket)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrInvalidTicket
	}
	if err != nil {
		return nil, fmt.Errorf("redeem ticket: %w", err)
	}

	var p ticketPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.AccountID == 0 {
		return nil, ErrInvalidTicket
	}
	return &Claims{
		AccountID: p.AccountID,
		Email:     p.Email,
		Role:      models.Role(p.Role),
		ID:        p.JTI,
		ExpiresAt: time.Unix(p.ExpiresAt, 0),
	}, nil
}
