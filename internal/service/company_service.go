package service

import (
	"context"
	"strings"

	"jobboard/internal/authz"
	"jobboard/internal/middleware"
	"jobboard/internal/models"
	"jobboard/internal/repository"
)

// CompanyPatch is a partial company profile update.
type CompanyPatch struct {
	CompanyName    *string
	Industry       *string
	Location       *string
	Website        *string
	Description    *string
	LogoURL        *string
	Phone          *string
	EnterpriseSize *string
}

type CompanyService struct {
	companies repository.CompanyRepository
	guard     Authorizer
}

func NewCompanyService(companies repository.CompanyRepository, guard Authorizer) *CompanyService {
	return &CompanyService{companies: companies, guard: guard}
}

func (s *CompanyService) GetProfile(ctx context.Context, caller *authz.Caller) (*models.CompanyProfile, error) {
	if err := requireRole(caller, models.RoleCompany); err != nil {
		return nil, err
	}
	return s.companies.GetByAccountID(ctx, caller.AccountID)
}

func (s *CompanyService) UpdateProfile(ctx context.Context, caller *authz.Caller, patch CompanyPatch) (*models.CompanyProfile, error) {
	if err := requireRole(caller, models.RoleCompany); err != nil {
		return nil, err
	}
	profile, err := s.companies.GetByAccountID(ctx, caller.AccountID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.Authorize(ctx, authz.Request{
		Kind:       authz.KindCompanyProfile,
		ResourceID: profile.ID,
		Role:       models.RoleCompany,
		Caller:     caller,
	}); err != nil {
		return nil, err
	}

	setText(&profile.CompanyName, patch.CompanyName)
	setText(&profile.Industry, patch.Industry)
	setText(&profile.Location, patch.Location)
	setURL(&profile.Website, patch.Website)
	setText(&profile.Description, patch.Description)
	setURL(&profile.LogoURL, patch.LogoURL)
	setText(&profile.Phone, patch.Phone)
	setText(&profile.EnterpriseSize, patch.EnterpriseSize)

	if strings.TrimSpace(profile.CompanyName) == "" {
		return nil, models.NewValidationError("Company name cannot be empty")
	}
	if profile.EnterpriseSize != "" && !validEnterpriseSize(profile.EnterpriseSize) {
		return nil, models.NewFieldValidationError(map[string]string{
			"enterprise_size": "must be one of " + strings.Join(models.EnterpriseSizes, " "),
		})
	}

	if err := s.companies.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// ListVerified is the public directory of verified companies.
func (s *CompanyService) ListVerified(ctx context.Context) ([]models.CompanyProfile, error) {
	return s.companies.ListVerified(ctx)
}

// GetPublic returns NOT_FOUND for companies that are not verified.
func (s *CompanyService) GetPublic(ctx context.Context, id uint) (*models.CompanyProfile, error) {
	return s.companies.GetVerified(ctx, id)
}

// SetVerified toggles public visibility. Admin only.
func (s *CompanyService) SetVerified(ctx context.Context, caller *authz.Caller, id uint, verified bool) (*models.CompanyProfile, error) {
	if err := requireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	profile, err := s.companies.SetVerified(ctx, id, verified)
	if err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "company verification changed",
		"company_id", id, "verified", verified, "admin_id", caller.AccountID)
	return profile, nil
}
