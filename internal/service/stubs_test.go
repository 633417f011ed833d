package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"jobboard/internal/auth"
	"jobboard/internal/authz"
	"jobboard/internal/models"
	"jobboard/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type accountRepoStub struct {
	getByIDFn           func(context.Context, uint) (*models.Account, error)
	getByEmailFn        func(context.Context, string) (*models.Account, error)
	createFn            func(context.Context, *models.Account) error
	createWithProfileFn func(context.Context, *models.Account, *models.StudentProfile, *models.CompanyProfile) error
	listByRoleFn        func(context.Context, models.Role) ([]models.Account, error)
}

func (s *accountRepoStub) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	return s.getByIDFn(ctx, id)
}
func (s *accountRepoStub) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *accountRepoStub) Create(ctx context.Context, a *models.Account) error {
	return s.createFn(ctx, a)
}
func (s *accountRepoStub) CreateWithProfile(ctx context.Context, a *models.Account, st *models.StudentProfile, co *models.CompanyProfile) error {
	return s.createWithProfileFn(ctx, a, st, co)
}
func (s *accountRepoStub) ListByRole(ctx context.Context, role models.Role) ([]models.Account, error) {
	return s.listByRoleFn(ctx, role)
}

func noopAccountRepo() *accountRepoStub {
	return &accountRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Account, error) {
			return nil, models.NewNotFoundError("Account", id)
		},
		getByEmailFn: func(context.Context, string) (*models.Account, error) { return nil, nil },
		createFn:     func(context.Context, *models.Account) error { return nil },
		createWithProfileFn: func(_ context.Context, a *models.Account, st *models.StudentProfile, co *models.CompanyProfile) error {
			a.ID = 1
			if st != nil {
				st.ID, st.AccountID = 1, a.ID
			}
			if co != nil {
				co.ID, co.AccountID = 1, a.ID
			}
			return nil
		},
		listByRoleFn: func(context.Context, models.Role) ([]models.Account, error) { return nil, nil },
	}
}

type studentRepoStub struct {
	getByIDFn        func(context.Context, uint) (*models.StudentProfile, error)
	getByAccountIDFn func(context.Context, uint) (*models.StudentProfile, error)
	updateFn         func(context.Context, *models.StudentProfile, repository.ChildSets) error
}

func (s *studentRepoStub) GetByID(ctx context.Context, id uint) (*models.StudentProfile, error) {
	return s.getByIDFn(ctx, id)
}
func (s *studentRepoStub) GetByAccountID(ctx context.Context, id uint) (*models.StudentProfile, error) {
	return s.getByAccountIDFn(ctx, id)
}
func (s *studentRepoStub) Update(ctx context.Context, p *models.StudentProfile, r repository.ChildSets) error {
	return s.updateFn(ctx, p, r)
}

type companyRepoStub struct {
	getByIDFn        func(context.Context, uint) (*models.CompanyProfile, error)
	getByAccountIDFn func(context.Context, uint) (*models.CompanyProfile, error)
	getVerifiedFn    func(context.Context, uint) (*models.CompanyProfile, error)
	listVerifiedFn   func(context.Context) ([]models.CompanyProfile, error)
	updateFn         func(context.Context, *models.CompanyProfile) error
	setVerifiedFn    func(context.Context, uint, bool) (*models.CompanyProfile, error)
}

func (s *companyRepoStub) GetByID(ctx context.Context, id uint) (*models.CompanyProfile, error) {
	return s.getByIDFn(ctx, id)
}
func (s *companyRepoStub) GetByAccountID(ctx context.Context, id uint) (*models.CompanyProfile, error) {
	return s.getByAccountIDFn(ctx, id)
}
func (s *companyRepoStub) GetVerified(ctx context.Context, id uint) (*models.CompanyProfile, error) {
	return s.getVerifiedFn(ctx, id)
}
func (s *companyRepoStub) ListVerified(ctx context.Context) ([]models.CompanyProfile, error) {
	return s.listVerifiedFn(ctx)
}
func (s *companyRepoStub) Update(ctx context.Context, p *models.CompanyProfile) error {
	return s.updateFn(ctx, p)
}
func (s *companyRepoStub) SetVerified(ctx context.Context, id uint, v bool) (*models.CompanyProfile, error) {
	return s.setVerifiedFn(ctx, id, v)
}

type offerRepoStub struct {
	createFn            func(context.Context, *models.JobOffer) error
	getByIDFn           func(context.Context, uint) (*models.JobOffer, error)
	getPublicFn         func(context.Context, uint, time.Time) (*models.JobOffer, error)
	listPublicFn        func(context.Context, repository.OfferFilter, time.Time) ([]models.JobOffer, int64, error)
	listByCompanyFn     func(context.Context, uint) ([]models.JobOffer, error)
	updateFn            func(context.Context, *models.JobOffer) error
	deleteFn            func(context.Context, uint) error
	deactivateExpiredFn func(context.Context, time.Time) (int64, error)
}

func (s *offerRepoStub) Create(ctx context.Context, o *models.JobOffer) error {
	return s.createFn(ctx, o)
}
func (s *offerRepoStub) GetByID(ctx context.Context, id uint) (*models.JobOffer, error) {
	return s.getByIDFn(ctx, id)
}
func (s *offerRepoStub) GetPublic(ctx context.Context, id uint, now time.Time) (*models.JobOffer, error) {
	return s.getPublicFn(ctx, id, now)
}
func (s *offerRepoStub) ListPublic(ctx context.Context, f repository.OfferFilter, now time.Time) ([]models.JobOffer, int64, error) {
	return s.listPublicFn(ctx, f, now)
}
func (s *offerRepoStub) ListByCompany(ctx context.Context, id uint) ([]models.JobOffer, error) {
	return s.listByCompanyFn(ctx, id)
}
func (s *offerRepoStub) Update(ctx context.Context, o *models.JobOffer) error {
	return s.updateFn(ctx, o)
}
func (s *offerRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *offerRepoStub) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	return s.deactivateExpiredFn(ctx, now)
}

type applicationRepoStub struct {
	createFn        func(context.Context, *models.Application) error
	getByIDFn       func(context.Context, uint) (*models.Application, error)
	existsFn        func(context.Context, uint, uint) (bool, error)
	listByStudentFn func(context.Context, uint) ([]models.Application, error)
	listByOfferFn   func(context.Context, uint) ([]models.Application, error)
	listByCompanyFn func(context.Context, uint) ([]models.Application, error)
	updateStatusFn  func(context.Context, uint, models.ApplicationStatus) error
}

func (s *applicationRepoStub) Create(ctx context.Context, a *models.Application) error {
	return s.createFn(ctx, a)
}
func (s *applicationRepoStub) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	return s.getByIDFn(ctx, id)
}
func (s *applicationRepoStub) Exists(ctx context.Context, studentID, offerID uint) (bool, error) {
	return s.existsFn(ctx, studentID, offerID)
}
func (s *applicationRepoStub) ListByStudent(ctx context.Context, id uint) ([]models.Application, error) {
	return s.listByStudentFn(ctx, id)
}
func (s *applicationRepoStub) ListByOffer(ctx context.Context, id uint) ([]models.Application, error) {
	return s.listByOfferFn(ctx, id)
}
func (s *applicationRepoStub) ListByCompany(ctx context.Context, id uint) ([]models.Application, error) {
	return s.listByCompanyFn(ctx, id)
}
func (s *applicationRepoStub) UpdateStatus(ctx context.Context, id uint, st models.ApplicationStatus) error {
	return s.updateStatusFn(ctx, id, st)
}

// guardStub records requests and answers with a fixed owner or error.
type guardStub struct {
	requests []authz.Request
	owner    uint
	err      error
}

func (g *guardStub) Authorize(_ context.Context, req authz.Request) (uint, error) {
	g.requests = append(g.requests, req)
	return g.owner, g.err
}

type tokenIssuerStub struct{}

func (tokenIssuerStub) Issue(a *models.Account) (string, *auth.Claims, error) {
	return "token-for-" + a.Email, &auth.Claims{
		AccountID: a.ID,
		Email:     a.Email,
		Role:      a.Role,
		ID:        "jti-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

type flagStub map[string]bool

func (f flagStub) Enabled(name string, _ uint) bool { return f[name] }

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
