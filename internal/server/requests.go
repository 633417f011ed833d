package server

import (
	"time"

	"jobboard/internal/models"
	"jobboard/internal/service"
)

// Request bodies. Each endpoint has its own struct so unknown fields are
// rejected by the strict decoder instead of silently ignored.

type registerRequest struct {
	Email          string `json:"email" validate:"required,email,max=255"`
	Password       string `json:"password" validate:"required,strongpassword"`
	Role           string `json:"role" validate:"required,oneof=student company"`
	FirstName      string `json:"first_name" validate:"required_if=Role student,max=50"`
	LastName       string `json:"last_name" validate:"required_if=Role student,max=50"`
	University     string `json:"university" validate:"max=100"`
	CompanyName    string `json:"company_name" validate:"required_if=Role company,max=150"`
	Industry       string `json:"industry" validate:"max=100"`
	EnterpriseSize string `json:"enterprise_size" validate:"omitempty,oneof=1-10 11-50 51-200 201-500 501-1000 1000+"`
}

func (r registerRequest) input() service.RegisterInput {
	return service.RegisterInput{
		Email:          r.Email,
		Password:       r.Password,
		Role:           models.Role(r.Role),
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		University:     r.University,
		CompanyName:    r.CompanyName,
		Industry:       r.Industry,
		EnterpriseSize: r.EnterpriseSize,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type skillRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Proficiency string `json:"proficiency" validate:"max=50"`
}

type experienceRequest struct {
	Title       string     `json:"title" validate:"required,max=100"`
	Company     string     `json:"company" validate:"max=100"`
	Description string     `json:"description" validate:"max=2000"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

type educationRequest struct {
	School       string     `json:"school" validate:"required,max=150"`
	Degree       string     `json:"degree" validate:"max=100"`
	FieldOfStudy string     `json:"field_of_study" validate:"max=100"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
}

type updateStudentRequest struct {
	FirstName       *string `json:"first_name" validate:"omitempty,min=2,max=50"`
	LastName        *string `json:"last_name" validate:"omitempty,min=2,max=50"`
	University      *string `json:"university" validate:"omitempty,max=100"`
	Phone           *string `json:"phone" validate:"omitempty,min=10,max=20"`
	Location        *string `json:"location" validate:"omitempty,max=100"`
	Bio             *string `json:"bio" validate:"omitempty,max=2000"`
	PortfolioURL    *string `json:"portfolio_url" validate:"omitempty,url"`
	GithubURL       *string `json:"github_url" validate:"omitempty,url"`
	LinkedinURL     *string `json:"linkedin_url" validate:"omitempty,url"`
	ProfileImageURL *string `json:"profile_image_url" validate:"omitempty,url"`

	Skills      *[]skillRequest      `json:"skills" validate:"omitempty,max=50,dive"`
	Experiences *[]experienceRequest `json:"experiences" validate:"omitempty,max=50,dive"`
	Education   *[]educationRequest  `json:"education" validate:"omitempty,max=20,dive"`
}

func (r updateStudentRequest) patch() service.StudentPatch {
	p := service.StudentPatch{
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		University:      r.University,
		Phone:           r.Phone,
		Location:        r.Location,
		Bio:             r.Bio,
		PortfolioURL:    r.PortfolioURL,
		GithubURL:       r.GithubURL,
		LinkedinURL:     r.LinkedinURL,
		ProfileImageURL: r.ProfileImageURL,
	}
	if r.Skills != nil {
		skills := make([]models.Skill, len(*r.Skills))
		for i, s := range *r.Skills {
			skills[i] = models.Skill{Name: s.Name, Proficiency: s.Proficiency}
		}
		p.Skills = &skills
	}
	if r.Experiences != nil {
		exps := make([]models.Experience, len(*r.Experiences))
		for i, e := range *r.Experiences {
			exps[i] = models.Experience{
				Title: e.Title, Company: e.Company, Description: e.Description,
				StartDate: e.StartDate, EndDate: e.EndDate,
			}
		}
		p.Experiences = &exps
	}
	if r.Education != nil {
		edus := make([]models.Education, len(*r.Education))
		for i, e := range *r.Education {
			edus[i] = models.Education{
				School: e.School, Degree: e.Degree, FieldOfStudy: e.FieldOfStudy,
				StartDate: e.StartDate, EndDate: e.EndDate,
			}
		}
		p.Education = &edus
	}
	return p
}

type updateCompanyRequest struct {
	CompanyName    *string `json:"company_name" validate:"omitempty,min=2,max=150"`
	Industry       *string `json:"industry" validate:"omitempty,max=100"`
	Location       *string `json:"location" validate:"omitempty,max=100"`
	Website        *string `json:"website" validate:"omitempty,url"`
	Description    *string `json:"description" validate:"omitempty,max=5000"`
	LogoURL        *string `json:"logo_url" validate:"omitempty,url"`
	Phone          *string `json:"phone" validate:"omitempty,min=10,max=20"`
	EnterpriseSize *string `json:"enterprise_size" validate:"omitempty,oneof=1-10 11-50 51-200 201-500 501-1000 1000+"`
}

func (r updateCompanyRequest) patch() service.CompanyPatch {
	return service.CompanyPatch{
		CompanyName:    r.CompanyName,
		Industry:       r.Industry,
		Location:       r.Location,
		Website:        r.Website,
		Description:    r.Description,
		LogoURL:        r.LogoURL,
		Phone:          r.Phone,
		EnterpriseSize: r.EnterpriseSize,
	}
}

type createOfferRequest struct {
	Title          string     `json:"title" validate:"required,max=200"`
	Type           string     `json:"type" validate:"required,offertype"`
	Description    string     `json:"description" validate:"required,max=10000"`
	RequiredSkills string     `json:"required_skills" validate:"max=2000"`
	Location       string     `json:"location" validate:"max=100"`
	Salary         *float64   `json:"salary" validate:"omitempty,gte=0"`
	Duration       string     `json:"duration" validate:"max=50"`
	IsActive       *bool      `json:"is_active"`
	Deadline       *time.Time `json:"deadline"`
}

func (r createOfferRequest) input() service.OfferInput {
	return service.OfferInput{
		Title:          r.Title,
		Type:           models.OfferType(r.Type),
		Description:    r.Description,
		RequiredSkills: r.RequiredSkills,
		Location:       r.Location,
		Salary:         r.Salary,
		Duration:       r.Duration,
		IsActive:       r.IsActive,
		Deadline:       r.Deadline,
	}
}

type updateOfferRequest struct {
	Title          *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Type           *string    `json:"type" validate:"omitempty,offertype"`
	Description    *string    `json:"description" validate:"omitempty,min=1,max=10000"`
	RequiredSkills *string    `json:"required_skills" validate:"omitempty,max=2000"`
	Location       *string    `json:"location" validate:"omitempty,max=100"`
	Salary         *float64   `json:"salary" validate:"omitempty,gte=0"`
	Duration       *string    `json:"duration" validate:"omitempty,max=50"`
	IsActive       *bool      `json:"is_active"`
	Deadline       *time.Time `json:"deadline"`
}

func (r updateOfferRequest) patch() service.OfferPatch {
	p := service.OfferPatch{
		Title:          r.Title,
		Description:    r.Description,
		RequiredSkills: r.RequiredSkills,
		Location:       r.Location,
		Salary:         r.Salary,
		Duration:       r.Duration,
		IsActive:       r.IsActive,
		Deadline:       r.Deadline,
	}
	if r.Type != nil {
		t := models.OfferType(*r.Type)
		p.Type = &t
	}
	return p
}

type applyRequest struct {
	JobOfferID  uint   `json:"job_offer_id" validate:"required,gt=0"`
	CoverLetter string `json:"cover_letter" validate:"max=5000"`
	CVURL       string `json:"cv_url" validate:"omitempty,url"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,appstatus"`
}

type verificationRequest struct {
	Verified *bool `json:"verified" validate:"required"`
}
