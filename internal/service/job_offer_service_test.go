package service

import (
	"context"
	"testing"
	"time"

	"jobboard/internal/authz"
	"jobboard/internal/models"
	"jobboard/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func companyByAccount() *companyRepoStub {
	return &companyRepoStub{
		getByAccountIDFn: func(_ context.Context, id uint) (*models.CompanyProfile, error) {
			if id != companyCaller.AccountID {
				return nil, models.NewNotFoundError("Company profile", id)
			}
			return &models.CompanyProfile{ID: 2, AccountID: id}, nil
		},
	}
}

func TestJobOfferService_Create(t *testing.T) {
	t.Parallel()
	var saved *models.JobOffer
	offers := &offerRepoStub{createFn: func(_ context.Context, o *models.JobOffer) error {
		o.ID = 11
		saved = o
		return nil
	}}
	svc := NewJobOfferService(offers, companyByAccount(), &guardStub{})

	local := time.Date(2030, 1, 2, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	offer, err := svc.Create(context.Background(), companyCaller, OfferInput{
		Title: " Go developer ", Type: models.OfferJob, Description: "Build APIs", Deadline: &local,
	})
	require.NoError(t, err)
	assert.Equal(t, uint(2), saved.CompanyID)
	assert.Equal(t, "Go developer", offer.Title)
	assert.True(t, offer.IsActive, "defaults to active")
	assert.Equal(t, time.UTC, offer.Deadline.Location())
	assert.True(t, offer.Deadline.Equal(local))

	inactive := false
	offer, err = svc.Create(context.Background(), companyCaller, OfferInput{
		Title: "PFE", Type: models.OfferPFE, Description: "Thesis", IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.False(t, offer.IsActive)
}

func TestJobOfferService_Create_Rejects(t *testing.T) {
	t.Parallel()
	svc := NewJobOfferService(&offerRepoStub{}, companyByAccount(), &guardStub{})
	ctx := context.Background()

	_, err := svc.Create(ctx, studentCaller, OfferInput{Title: "x", Type: models.OfferJob, Description: "y"})
	assertCode(t, err, models.CodeForbidden)

	negative := -1.0
	_, err = svc.Create(ctx, companyCaller, OfferInput{Type: "gig", Salary: &negative})
	assertCode(t, err, models.CodeValidation)
	fields := err.(*models.AppError).Fields
	for _, f := range []string{"title", "description", "type", "salary"} {
		assert.Contains(t, fields, f)
	}
}

func TestJobOfferService_UpdateAndDelete_UseGuard(t *testing.T) {
	t.Parallel()
	stored := &models.JobOffer{ID: 3, CompanyID: 2, Title: "Old", Type: models.OfferJob, Description: "d", IsActive: true,
		Company: &models.CompanyProfile{ID: 2}}
	var updated *models.JobOffer
	deleted := false
	offers := &offerRepoStub{
		getByIDFn: func(context.Context, uint) (*models.JobOffer, error) { return stored, nil },
		updateFn: func(_ context.Context, o *models.JobOffer) error {
			updated = o
			return nil
		},
		deleteFn: func(context.Context, uint) error {
			deleted = true
			return nil
		},
	}
	guard := &guardStub{}
	svc := NewJobOfferService(offers, companyByAccount(), guard)
	ctx := context.Background()

	title, closed := "New", false
	_, err := svc.Update(ctx, companyCaller, 3, OfferPatch{Title: &title, IsActive: &closed})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.False(t, updated.IsActive)
	assert.Nil(t, updated.Company)

	require.NoError(t, svc.Delete(ctx, companyCaller, 3))
	assert.True(t, deleted)

	require.Len(t, guard.requests, 2)
	for _, req := range guard.requests {
		assert.Equal(t, authz.KindJobOffer, req.Kind)
		assert.Equal(t, models.RoleCompany, req.Role)
		assert.Equal(t, uint(3), req.ResourceID)
	}

	guard.err = models.NewForbiddenError("You do not have access to this resource")
	deleted = false
	assertCode(t, svc.Delete(ctx, companyCaller, 3), models.CodeForbidden)
	assert.False(t, deleted)
}

func TestJobOfferService_ListPublic(t *testing.T) {
	t.Parallel()
	var got repository.OfferFilter
	offers := &offerRepoStub{listPublicFn: func(_ context.Context, f repository.OfferFilter, _ time.Time) ([]models.JobOffer, int64, error) {
		got = f
		return []models.JobOffer{{ID: 1}}, 1, nil
	}}
	svc := NewJobOfferService(offers, companyByAccount(), &guardStub{})

	list, total, err := svc.ListPublic(context.Background(), OfferQuery{Type: "PFE", CompanyID: 2, Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, models.OfferPFE, got.Type)
	assert.Equal(t, uint(2), got.CompanyID)
	assert.Equal(t, 2, got.Page.Page)

	_, _, err = svc.ListPublic(context.Background(), OfferQuery{Type: "gig"})
	assertCode(t, err, models.CodeValidation)
}

func TestJobOfferService_ExpireOverdue(t *testing.T) {
	t.Parallel()
	var at time.Time
	offers := &offerRepoStub{deactivateExpiredFn: func(_ context.Context, now time.Time) (int64, error) {
		at = now
		return 3, nil
	}}
	n, err := NewJobOfferService(offers, nil, nil).ExpireOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, time.UTC, at.Location())
}
