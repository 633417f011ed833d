// Package seed provides factories that create realistic job board entities
// for tests and local development.
package seed

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"jobboard/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword satisfies the strong password rule and is used for every seeded account.
const DefaultPassword = "Passw0rd!"

var emailSeq atomic.Uint64

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	hash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) (*Factory, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash default password: %w", err)
	}
	return &Factory{db: db, hash: string(hash)}, nil
}

// UniqueEmail returns a fake email that never repeats within the process.
func UniqueEmail() string {
	n := emailSeq.Add(1)
	return strings.ToLower(fmt.Sprintf("%d.%s", n, gofakeit.Email()))
}

func (f *Factory) account(role models.Role) *models.Account {
	return &models.Account{
		Email:        UniqueEmail(),
		PasswordHash: f.hash,
		Role:         role,
	}
}

// CreateAdmin persists an admin account.
func (f *Factory) CreateAdmin() (*models.Account, error) {
	acc := f.account(models.RoleAdmin)
	if err := f.db.Create(acc).Error; err != nil {
		return nil, err
	}
	return acc, nil
}

// CreateStudent persists a student account with a populated profile.
func (f *Factory) CreateStudent(overrides ...func(*models.StudentProfile)) (*models.Account, *models.StudentProfile, error) {
	acc := f.account(models.RoleStudent)
	if err := f.db.Create(acc).Error; err != nil {
		return nil, nil, err
	}

	profile := &models.StudentProfile{
		AccountID:  acc.ID,
		FirstName:  gofakeit.FirstName(),
		LastName:   gofakeit.LastName(),
		University: gofakeit.Company() + " University",
		Location:   gofakeit.City(),
		Bio:        gofakeit.Sentence(12),
		GithubURL:  "https://github.com/" + gofakeit.Username(),
		Skills: []models.Skill{
			{Name: gofakeit.ProgrammingLanguage(), Proficiency: "advanced"},
			{Name: gofakeit.ProgrammingLanguage(), Proficiency: "intermediate"},
		},
	}
	for _, override := range overrides {
		override(profile)
	}
	if err := f.db.Create(profile).Error; err != nil {
		return nil, nil, err
	}
	return acc, profile, nil
}

// CreateCompany persists a company account with its profile.
func (f *Factory) CreateCompany(verified bool, overrides ...func(*models.CompanyProfile)) (*models.Account, *models.CompanyProfile, error) {
	acc := f.account(models.RoleCompany)
	if err := f.db.Create(acc).Error; err != nil {
		return nil, nil, err
	}

	profile := &models.CompanyProfile{
		AccountID:      acc.ID,
		CompanyName:    gofakeit.Company(),
		Industry:       gofakeit.JobDescriptor(),
		Location:       gofakeit.City(),
		Website:        gofakeit.URL(),
		Description:    gofakeit.Paragraph(1, 2, 8, " "),
		EnterpriseSize: gofakeit.RandomString(models.EnterpriseSizes),
	}
	for _, override := range overrides {
		override(profile)
	}
	if err := f.db.Create(profile).Error; err != nil {
		return nil, nil, err
	}
	// is_verified has a database default, so false must be written explicitly.
	if err := f.db.Model(profile).Update("is_verified", verified).Error; err != nil {
		return nil, nil, err
	}
	return acc, profile, nil
}

// CreateOffer persists an active offer for the company.
func (f *Factory) CreateOffer(company *models.CompanyProfile, overrides ...func(*models.JobOffer)) (*models.JobOffer, error) {
	salary := float64(gofakeit.Number(800, 4000))
	offer := &models.JobOffer{
		CompanyID:      company.ID,
		Title:          gofakeit.JobTitle(),
		Type:           models.OfferInternship,
		Description:    gofakeit.Paragraph(1, 3, 10, " "),
		RequiredSkills: strings.Join([]string{gofakeit.ProgrammingLanguage(), gofakeit.ProgrammingLanguage()}, ", "),
		Location:       gofakeit.City(),
		Salary:         &salary,
		Duration:       fmt.Sprintf("%d months", gofakeit.Number(2, 6)),
		IsActive:       true,
	}
	for _, override := range overrides {
		override(offer)
	}
	active := offer.IsActive
	if err := f.db.Omit("Company").Create(offer).Error; err != nil {
		return nil, err
	}
	if !active {
		if err := f.db.Model(offer).Update("is_active", false).Error; err != nil {
			return nil, err
		}
	}
	return offer, nil
}

// CreateApplication persists a pending application.
func (f *Factory) CreateApplication(student *models.StudentProfile, offer *models.JobOffer) (*models.Application, error) {
	app := &models.Application{
		StudentID:   student.ID,
		JobOfferID:  offer.ID,
		Status:      models.StatusPending,
		CoverLetter: gofakeit.Paragraph(1, 2, 10, " "),
	}
	if err := f.db.Omit("Student", "JobOffer").Create(app).Error; err != nil {
		return nil, err
	}
	return app, nil
}

// Deadline returns a deadline offset from now, truncated to the second.
func Deadline(offset time.Duration) *time.Time {
	t := time.Now().UTC().Add(offset).Truncate(time.Second)
	return &t
}
