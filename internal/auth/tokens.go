// Package auth issues and verifies bearer tokens, hashes passwords and tracks
// revoked token identifiers.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"jobboard/internal/config"
	"jobboard/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken covers malformed, expired, badly signed or mis-addressed tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrRevokedToken is returned for tokens whose jti has been revoked.
	ErrRevokedToken = errors.New("token has been revoked")
)

// Claims is the verified identity carried by a token.
type Claims struct {
	AccountID uint
	Email     string
	Role      models.Role
	ID        string
	ExpiresAt time.Time
}

// TokenManager signs and verifies HS256 tokens.
type TokenManager struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenManager builds a TokenManager from config.
func NewTokenManager(cfg *config.Config) *TokenManager {
	return &TokenManager{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
		ttl:      cfg.JWTTTL(),
		now:      time.Now,
	}
}

// Issue creates a signed token for the account.
func (m *TokenManager) Issue(account *models.Account) (string, *Claims, error) {
	if len(m.secret) == 0 {
		return "", nil, fmt.Errorf("JWT secret not configured")
	}

	now := m.now()
	claims := &Claims{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
		ID:        generateJTI(now),
		ExpiresAt: now.Add(m.ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(account.ID), 10),
		"email": account.Email,
		"role":  string(account.Role),
		"iss":   m.issuer,
		"aud":   m.audience,
		"exp":   claims.ExpiresAt.Unix(),
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"jti":   claims.ID,
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse verifies the signature, time window, issuer and audience of a token.
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if iss, _ := mc["iss"].(string); iss != m.issuer {
		return nil, ErrInvalidToken
	}
	if aud, _ := mc["aud"].(string); aud != m.audience {
		return nil, ErrInvalidToken
	}

	sub, _ := mc["sub"].(string)
	accountID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || accountID == 0 {
		return nil, ErrInvalidToken
	}

	role := models.Role(stringClaim(mc, "role"))
	if !role.Valid() {
		return nil, ErrInvalidToken
	}

	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}

	return &Claims{
		AccountID: uint(accountID),
		Email:     stringClaim(mc, "email"),
		Role:      role,
		ID:        stringClaim(mc, "jti"),
		ExpiresAt: exp.Time,
	}, nil
}

func stringClaim(mc jwt.MapClaims, key string) string {
	v, _ := mc[key].(string)
	return v
}

// generateJTI creates a unique token identifier used for revocation.
func generateJTI(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8])
}
