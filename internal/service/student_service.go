package service

import (
	"context"
	"strings"

	"jobboard/internal/authz"
	"jobboard/internal/models"
	"jobboard/internal/repository"
	"jobboard/internal/validation"
)

// StudentPatch is a partial profile update. Nil fields are left untouched;
// a non-nil list replaces the whole child set.
type StudentPatch struct {
	FirstName       *string
	LastName        *string
	University      *string
	Phone           *string
	Location        *string
	Bio             *string
	PortfolioURL    *string
	GithubURL       *string
	LinkedinURL     *string
	ProfileImageURL *string

	Skills      *[]models.Skill
	Experiences *[]models.Experience
	Education   *[]models.Education
}

type StudentService struct {
	students repository.StudentRepository
	guard    Authorizer
}

func NewStudentService(students repository.StudentRepository, guard Authorizer) *StudentService {
	return &StudentService{students: students, guard: guard}
}

// GetProfile returns the caller's own profile.
func (s *StudentService) GetProfile(ctx context.Context, caller *authz.Caller) (*models.StudentProfile, error) {
	if err := requireRole(caller, models.RoleStudent); err != nil {
		return nil, err
	}
	return s.students.GetByAccountID(ctx, caller.AccountID)
}

// GetByID is the public profile lookup.
func (s *StudentService) GetByID(ctx context.Context, id uint) (*models.StudentProfile, error) {
	return s.students.GetByID(ctx, id)
}

// UpdateProfile merges patch into the caller's profile.
func (s *StudentService) UpdateProfile(ctx context.Context, caller *authz.Caller, patch StudentPatch) (*models.StudentProfile, error) {
	if err := requireRole(caller, models.RoleStudent); err != nil {
		return nil, err
	}
	profile, err := s.students.GetByAccountID(ctx, caller.AccountID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.Authorize(ctx, authz.Request{
		Kind:       authz.KindStudentProfile,
		ResourceID: profile.ID,
		Role:       models.RoleStudent,
		Caller:     caller,
	}); err != nil {
		return nil, err
	}

	setText(&profile.FirstName, patch.FirstName)
	setText(&profile.LastName, patch.LastName)
	setText(&profile.University, patch.University)
	setText(&profile.Phone, patch.Phone)
	setText(&profile.Location, patch.Location)
	setText(&profile.Bio, patch.Bio)
	setURL(&profile.PortfolioURL, patch.PortfolioURL)
	setURL(&profile.GithubURL, patch.GithubURL)
	setURL(&profile.LinkedinURL, patch.LinkedinURL)
	setURL(&profile.ProfileImageURL, patch.ProfileImageURL)

	if profile.FirstName == "" || profile.LastName == "" {
		return nil, models.NewValidationError("First and last name cannot be empty")
	}

	var replace repository.ChildSets
	if patch.Skills != nil {
		replace.Skills = true
		profile.Skills = append([]models.Skill{}, (*patch.Skills)...)
		for i := range profile.Skills {
			validation.SanitizeAll(&profile.Skills[i].Name, &profile.Skills[i].Proficiency)
		}
	}
	if patch.Experiences != nil {
		replace.Experiences = true
		profile.Experiences = append([]models.Experience{}, (*patch.Experiences)...)
		for i := range profile.Experiences {
			e := &profile.Experiences[i]
			validation.SanitizeAll(&e.Title, &e.Company, &e.Description)
			if e.StartDate != nil && e.EndDate != nil && e.EndDate.Before(*e.StartDate) {
				return nil, models.NewValidationError("Experience end date must not precede its start date")
			}
		}
	}
	if patch.Education != nil {
		replace.Education = true
		profile.Education = append([]models.Education{}, (*patch.Education)...)
		for i := range profile.Education {
			e := &profile.Education[i]
			validation.SanitizeAll(&e.School, &e.Degree, &e.FieldOfStudy)
			if e.StartDate != nil && e.EndDate != nil && e.EndDate.Before(*e.StartDate) {
				return nil, models.NewValidationError("Education end date must not precede its start date")
			}
		}
	}

	if err := s.students.Update(ctx, profile, replace); err != nil {
		return nil, err
	}
	return profile, nil
}

// setText sanitizes and assigns v when present.
func setText(dst *string, v *string) {
	if v == nil {
		return
	}
	*dst = validation.SanitizeText(*v)
}

// setURL stores a url-tagged field verbatim. Markup stripping would rewrite
// query strings.
func setURL(dst *string, v *string) {
	if v == nil {
		return
	}
	*dst = strings.TrimSpace(*v)
}
