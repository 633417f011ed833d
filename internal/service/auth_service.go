// Package service holds the business rules of the job board. Services take
// repository interfaces and return AppErrors that handlers map to HTTP status codes.
package service

import (
	"context"
	"strings"
	"time"

	"jobboard/internal/auth"
	"jobboard/internal/middleware"
	"jobboard/internal/models"
	"jobboard/internal/observability"
	"jobboard/internal/repository"
	"jobboard/internal/validation"
)

const invalidCredentialsMsg = "Invalid credentials"

// TokenIssuer signs tokens for accounts.
type TokenIssuer interface {
	Issue(account *models.Account) (string, *auth.Claims, error)
}

// RegisterInput carries the account credentials plus the role profile fields.
type RegisterInput struct {
	Email    string
	Password string
	Role     models.Role

	FirstName  string
	LastName   string
	University string

	CompanyName    string
	Industry       string
	EnterpriseSize string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *models.Account
	Student   *models.StudentProfile
	Company   *models.CompanyProfile
}

// Profile returns whichever role profile is set, or nil.
func (r *AuthResult) Profile() interface{} {
	switch {
	case r.Student != nil:
		return r.Student
	case r.Company != nil:
		return r.Company
	}
	return nil
}

// AuthService registers accounts and issues and revokes tokens.
type AuthService struct {
	accounts   repository.AccountRepository
	students   repository.StudentRepository
	companies  repository.CompanyRepository
	tokens     TokenIssuer
	revoker    auth.Revoker
	bcryptCost int
	now        func() time.Time
}

// NewAuthService wires an AuthService. revoker may be nil.
func NewAuthService(
	accounts repository.AccountRepository,
	students repository.StudentRepository,
	companies repository.CompanyRepository,
	tokens TokenIssuer,
	revoker auth.Revoker,
	bcryptCost int,
) *AuthService {
	return &AuthService{
		accounts:   accounts,
		students:   students,
		companies:  companies,
		tokens:     tokens,
		revoker:    revoker,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

func (in *RegisterInput) normalize() {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	validation.SanitizeAll(
		&in.FirstName, &in.LastName, &in.University,
		&in.CompanyName, &in.Industry, &in.EnterpriseSize,
	)
}

func (in *RegisterInput) validate() error {
	fields := map[string]string{}
	if in.Email == "" {
		fields["email"] = "is required"
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		fields["password"] = err.Error()
	}
	switch in.Role {
	case models.RoleStudent:
		if in.FirstName == "" {
			fields["first_name"] = "is required"
		}
		if in.LastName == "" {
			fields["last_name"] = "is required"
		}
	case models.RoleCompany:
		if in.CompanyName == "" {
			fields["company_name"] = "is required"
		}
		if in.EnterpriseSize != "" && !validEnterpriseSize(in.EnterpriseSize) {
			fields["enterprise_size"] = "must be one of " + strings.Join(models.EnterpriseSizes, " ")
		}
	default:
		fields["role"] = "must be one of student company"
	}
	if len(fields) > 0 {
		return models.NewFieldValidationError(fields)
	}
	return nil
}

func validEnterpriseSize(size string) bool {
	for _, s := range models.EnterpriseSizes {
		if s == size {
			return true
		}
	}
	return false
}

// Register creates the account and its role profile in one transaction and
// returns a signed token. A used email is CONFLICT for either role.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	existing, err := s.accounts.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Email already registered")
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	account := &models.Account{Email: in.Email, PasswordHash: hash, Role: in.Role}
	result := &AuthResult{Account: account}

	switch in.Role {
	case models.RoleStudent:
		result.Student = &models.StudentProfile{
			FirstName:  in.FirstName,
			LastName:   in.LastName,
			University: in.University,
		}
	case models.RoleCompany:
		result.Company = &models.CompanyProfile{
			CompanyName:    in.CompanyName,
			Industry:       in.Industry,
			EnterpriseSize: in.EnterpriseSize,
		}
	}

	if err := s.accounts.CreateWithProfile(ctx, account, result.Student, result.Company); err != nil {
		return nil, err
	}

	if err := s.issue(result); err != nil {
		return nil, err
	}

	observability.RegistrationsTotal.WithLabelValues(string(in.Role)).Inc()
	middleware.Logger.InfoContext(ctx, "account registered",
		"account_id", account.ID, "role", string(account.Role))
	return result, nil
}

// CreateAdmin creates an admin account without a profile. It is used by
// operator tooling and the development bootstrap, never by the public API.
func (s *AuthService) CreateAdmin(ctx context.Context, email, password string) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, models.NewFieldValidationError(map[string]string{"email": "is required"})
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, models.NewFieldValidationError(map[string]string{"password": err.Error()})
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	account := &models.Account{Email: email, PasswordHash: hash, Role: models.RoleAdmin}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Login verifies credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		observability.LoginsTotal.WithLabelValues("unknown_email").Inc()
		return nil, models.NewUnauthorizedError(invalidCredentialsMsg)
	}

	ok, err := auth.CheckPassword(account.PasswordHash, password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !ok {
		observability.LoginsTotal.WithLabelValues("bad_password").Inc()
		return nil, models.NewUnauthorizedError(invalidCredentialsMsg)
	}

	result := &AuthResult{Account: account}
	if err := s.issue(result); err != nil {
		return nil, err
	}
	observability.LoginsTotal.WithLabelValues("success").Inc()
	return result, nil
}

func (s *AuthService) issue(result *AuthResult) error {
	token, claims, err := s.tokens.Issue(result.Account)
	if err != nil {
		return models.NewInternalError(err)
	}
	result.Token = token
	result.ExpiresAt = claims.ExpiresAt
	return nil
}

// Logout revokes the token for the rest of its lifetime. Without a revoker
// it succeeds and the token stays valid until it expires.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return models.NewUnauthorizedError("Authentication required")
	}
	if s.revoker == nil || claims.ID == "" {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Me returns the caller's account and its role profile, if one exists.
func (s *AuthService) Me(ctx context.Context, accountID uint) (*AuthResult, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	result := &AuthResult{Account: account}

	switch account.Role {
	case models.RoleStudent:
		profile, err := s.students.GetByAccountID(ctx, accountID)
		if err != nil && !isNotFound(err) {
			return nil, err
		}
		result.Student = profile
	case models.RoleCompany:
		profile, err := s.companies.GetByAccountID(ctx, accountID)
		if err != nil && !isNotFound(err) {
			return nil, err
		}
		result.Company = profile
	}
	return result, nil
}
