package service

import (
	"context"
	"strings"
	"time"

	"jobboard/internal/authz"
	"jobboard/internal/middleware"
	"jobboard/internal/models"
	"jobboard/internal/repository"
	"jobboard/internal/validation"
)

// OfferInput creates an offer. IsActive defaults to true when nil.
type OfferInput struct {
	Title          string
	Type           models.OfferType
	Description    string
	RequiredSkills string
	Location       string
	Salary         *float64
	Duration       string
	IsActive       *bool
	Deadline       *time.Time
}

// OfferPatch is a partial offer update.
type OfferPatch struct {
	Title          *string
	Type           *models.OfferType
	Description    *string
	RequiredSkills *string
	Location       *string
	Salary         *float64
	Duration       *string
	IsActive       *bool
	Deadline       *time.Time
}

// OfferQuery filters the public listing.
type OfferQuery struct {
	Type      string
	CompanyID uint
	Page      int
	Limit     int
}

type JobOfferService struct {
	offers    repository.JobOfferRepository
	companies repository.CompanyRepository
	guard     Authorizer
	now       func() time.Time
}

func NewJobOfferService(offers repository.JobOfferRepository, companies repository.CompanyRepository, guard Authorizer) *JobOfferService {
	return &JobOfferService{
		offers:    offers,
		companies: companies,
		guard:     guard,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func validateOffer(o *models.JobOffer) error {
	fields := map[string]string{}
	if strings.TrimSpace(o.Title) == "" {
		fields["title"] = "is required"
	}
	if strings.TrimSpace(o.Description) == "" {
		fields["description"] = "is required"
	}
	if !o.Type.Valid() {
		fields["type"] = "must be one of internship pfe job"
	}
	if o.Salary != nil && *o.Salary < 0 {
		fields["salary"] = "must be at least 0"
	}
	if len(fields) > 0 {
		return models.NewFieldValidationError(fields)
	}
	return nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// Create publishes a new offer for the caller's company.
func (s *JobOfferService) Create(ctx context.Context, caller *authz.Caller, in OfferInput) (*models.JobOffer, error) {
	if err := requireRole(caller, models.RoleCompany); err != nil {
		return nil, err
	}
	company, err := s.companies.GetByAccountID(ctx, caller.AccountID)
	if err != nil {
		return nil, err
	}

	offer := &models.JobOffer{
		CompanyID:      company.ID,
		Title:          validation.SanitizeText(in.Title),
		Type:           in.Type,
		Description:    validation.SanitizeText(in.Description),
		RequiredSkills: validation.SanitizeText(in.RequiredSkills),
		Location:       validation.SanitizeText(in.Location),
		Salary:         in.Salary,
		Duration:       validation.SanitizeText(in.Duration),
		IsActive:       in.IsActive == nil || *in.IsActive,
		Deadline:       utc(in.Deadline),
	}
	if err := validateOffer(offer); err != nil {
		return nil, err
	}

	if err := s.offers.Create(ctx, offer); err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "job offer created",
		"offer_id", offer.ID, "company_id", company.ID, "type", string(offer.Type))
	return offer, nil
}

// Update applies patch to an offer owned by the caller's company.
func (s *JobOfferService) Update(ctx context.Context, caller *authz.Caller, id uint, patch OfferPatch) (*models.JobOffer, error) {
	if _, err := s.guard.Authorize(ctx, authz.Request{
		Kind:       authz.KindJobOffer,
		ResourceID: id,
		Role:       models.RoleCompany,
		Caller:     caller,
	}); err != nil {
		return nil, err
	}

	offer, err := s.offers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	setText(&offer.Title, patch.Title)
	setText(&offer.Description, patch.Description)
	setText(&offer.RequiredSkills, patch.RequiredSkills)
	setText(&offer.Location, patch.Location)
	setText(&offer.Duration, patch.Duration)
	if patch.Type != nil {
		offer.Type = *patch.Type
	}
	if patch.Salary != nil {
		offer.Salary = patch.Salary
	}
	if patch.IsActive != nil {
		offer.IsActive = *patch.IsActive
	}
	if patch.Deadline != nil {
		offer.Deadline = utc(patch.Deadline)
	}
	if err := validateOffer(offer); err != nil {
		return nil, err
	}

	offer.Company = nil
	if err := s.offers.Update(ctx, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

// Delete removes an owned offer; its applications cascade.
func (s *JobOfferService) Delete(ctx context.Context, caller *authz.Caller, id uint) error {
	if _, err := s.guard.Authorize(ctx, authz.Request{
		Kind:       authz.KindJobOffer,
		ResourceID: id,
		Role:       models.RoleCompany,
		Caller:     caller,
	}); err != nil {
		return err
	}
	if err := s.offers.Delete(ctx, id); err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "job offer deleted", "offer_id", id)
	return nil
}

// ListPublic returns open offers only. An unknown type is a validation error.
func (s *JobOfferService) ListPublic(ctx context.Context, q OfferQuery) ([]models.JobOffer, int64, error) {
	filter := repository.OfferFilter{
		CompanyID: q.CompanyID,
		Page:      repository.Page{Page: q.Page, Limit: q.Limit},
	}
	if q.Type != "" {
		t := models.OfferType(strings.ToLower(q.Type))
		if !t.Valid() {
			return nil, 0, models.NewFieldValidationError(map[string]string{
				"type": "must be one of internship pfe job",
			})
		}
		filter.Type = t
	}
	return s.offers.ListPublic(ctx, filter, s.now())
}

// GetPublic returns NOT_FOUND for inactive or expired offers.
func (s *JobOfferService) GetPublic(ctx context.Context, id uint) (*models.JobOffer, error) {
	return s.offers.GetPublic(ctx, id, s.now())
}

// ListMine returns every offer of the caller's company, including closed ones.
func (s *JobOfferService) ListMine(ctx context.Context, caller *authz.Caller) ([]models.JobOffer, error) {
	if err := requireRole(caller, models.RoleCompany); err != nil {
		return nil, err
	}
	company, err := s.companies.GetByAccountID(ctx, caller.AccountID)
	if err != nil {
		return nil, err
	}
	return s.offers.ListByCompany(ctx, company.ID)
}

// ExpireOverdue deactivates offers past their deadline.
func (s *JobOfferService) ExpireOverdue(ctx context.Context) (int64, error) {
	return s.offers.DeactivateExpired(ctx, s.now())
}
