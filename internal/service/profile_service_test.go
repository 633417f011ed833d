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

func strPtr(s string) *string { return &s }

func TestStudentService_UpdateProfile(t *testing.T) {
	t.Parallel()
	var replaced repository.ChildSets
	students := &studentRepoStub{
		getByAccountIDFn: func(_ context.Context, id uint) (*models.StudentProfile, error) {
			return &models.StudentProfile{ID: 1, AccountID: id, FirstName: "Ada", LastName: "Lovelace",
				Skills: []models.Skill{{Name: "COBOL"}}}, nil
		},
		updateFn: func(_ context.Context, _ *models.StudentProfile, r repository.ChildSets) error {
			replaced = r
			return nil
		},
	}
	guard := &guardStub{}
	svc := NewStudentService(students, guard)

	skills := []models.Skill{{Name: "<i>Go</i>", Proficiency: "advanced"}}
	profile, err := svc.UpdateProfile(context.Background(), studentCaller, StudentPatch{
		Bio:    strPtr("Hi"),
		Skills: &skills,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi", profile.Bio)
	require.Len(t, profile.Skills, 1)
	assert.Equal(t, "Go", profile.Skills[0].Name)
	assert.Equal(t, repository.ChildSets{Skills: true}, replaced)

	require.Len(t, guard.requests, 1)
	assert.Equal(t, authz.KindStudentProfile, guard.requests[0].Kind)
	assert.Equal(t, uint(1), guard.requests[0].ResourceID)
}

func TestStudentService_UpdateProfile_Rejects(t *testing.T) {
	t.Parallel()
	students := &studentRepoStub{
		getByAccountIDFn: func(_ context.Context, id uint) (*models.StudentProfile, error) {
			return &models.StudentProfile{ID: 1, AccountID: id, FirstName: "Ada", LastName: "Lovelace"}, nil
		},
		updateFn: func(context.Context, *models.StudentProfile, repository.ChildSets) error {
			t.Fatal("update must not run")
			return nil
		},
	}
	svc := NewStudentService(students, &guardStub{})
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, companyCaller, StudentPatch{})
	assertCode(t, err, models.CodeForbidden)

	_, err = svc.UpdateProfile(ctx, studentCaller, StudentPatch{FirstName: strPtr("  ")})
	assertCode(t, err, models.CodeValidation)

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, -1, 0)
	exp := []models.Experience{{Title: "Intern", Company: "Acme", StartDate: &start, EndDate: &end}}
	_, err = svc.UpdateProfile(ctx, studentCaller, StudentPatch{Experiences: &exp})
	assertCode(t, err, models.CodeValidation)
}

func TestCompanyService_UpdateProfile(t *testing.T) {
	t.Parallel()
	var saved *models.CompanyProfile
	companies := companyByAccount()
	companies.updateFn = func(_ context.Context, p *models.CompanyProfile) error {
		saved = p
		return nil
	}
	guard := &guardStub{}
	svc := NewCompanyService(companies, guard)
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, companyCaller, CompanyPatch{CompanyName: strPtr("Acme"), EnterpriseSize: strPtr("51-200")})
	require.NoError(t, err)
	assert.Equal(t, "51-200", saved.EnterpriseSize)
	assert.Equal(t, authz.KindCompanyProfile, guard.requests[0].Kind)

	_, err = svc.UpdateProfile(ctx, companyCaller, CompanyPatch{CompanyName: strPtr("")})
	assertCode(t, err, models.CodeValidation)
	_, err = svc.UpdateProfile(ctx, companyCaller, CompanyPatch{CompanyName: strPtr("Acme"), EnterpriseSize: strPtr("lots")})
	assertCode(t, err, models.CodeValidation)
}

func TestCompanyService_SetVerified_AdminOnly(t *testing.T) {
	t.Parallel()
	calls := 0
	companies := &companyRepoStub{setVerifiedFn: func(_ context.Context, id uint, v bool) (*models.CompanyProfile, error) {
		calls++
		return &models.CompanyProfile{ID: id, IsVerified: v}, nil
	}}
	svc := NewCompanyService(companies, &guardStub{})
	ctx := context.Background()

	_, err := svc.SetVerified(ctx, companyCaller, 2, true)
	assertCode(t, err, models.CodeForbidden)
	_, err = svc.SetVerified(ctx, nil, 2, true)
	assertCode(t, err, models.CodeUnauthorized)
	assert.Zero(t, calls)

	profile, err := svc.SetVerified(ctx, &authz.Caller{AccountID: 1, Role: models.RoleAdmin}, 2, true)
	require.NoError(t, err)
	assert.True(t, profile.IsVerified)
}
