package repository

import (
	"context"

	"jobboard/internal/models"

	"gorm.io/gorm"
)

// OwnershipRepository resolves the account that owns a resource by walking
// its foreign-key chain. Every lookup returns NOT_FOUND when any link is missing.
type OwnershipRepository interface {
	StudentProfileOwner(ctx context.Context, studentID uint) (uint, error)
	CompanyProfileOwner(ctx context.Context, companyID uint) (uint, error)
	// JobOfferOwner walks JobOffer -> CompanyProfile -> Account.
	JobOfferOwner(ctx context.Context, offerID uint) (uint, error)
	// ApplicationOwners walks Application -> StudentProfile -> Account and
	// Application -> JobOffer -> CompanyProfile -> Account.
	ApplicationOwners(ctx context.Context, applicationID uint) (studentAccountID, companyAccountID uint, err error)
}

type ownershipRepository struct {
	db *gorm.DB
}

// NewOwnershipRepository returns a new OwnershipRepository implementation.
func NewOwnershipRepository(db *gorm.DB) OwnershipRepository {
	return &ownershipRepository{db: db}
}

func (r *ownershipRepository) StudentProfileOwner(ctx context.Context, studentID uint) (uint, error) {
	var row struct{ AccountID uint }
	err := r.db.WithContext(ctx).Model(&models.StudentProfile{}).
		Select("account_id").
		Where("id = ?", studentID).
		Take(&row).Error
	if err != nil {
		return 0, translate(err, "StudentProfile", studentID, "")
	}
	return row.AccountID, nil
}

func (r *ownershipRepository) CompanyProfileOwner(ctx context.Context, companyID uint) (uint, error) {
	var row struct{ AccountID uint }
	err := r.db.WithContext(ctx).Model(&models.CompanyProfile{}).
		Select("account_id").
		Where("id = ?", companyID).
		Take(&row).Error
	if err != nil {
		return 0, translate(err, "CompanyProfile", companyID, "")
	}
	return row.AccountID, nil
}

func (r *ownershipRepository) JobOfferOwner(ctx context.Context, offerID uint) (uint, error) {
	var row struct{ AccountID uint }
	err := r.db.WithContext(ctx).Table("job_offers").
		Select("company_profiles.account_id").
		Joins("JOIN company_profiles ON company_profiles.id = job_offers.company_id").
		Where("job_offers.id = ?", offerID).
		Take(&row).Error
	if err != nil {
		return 0, translate(err, "JobOffer", offerID, "")
	}
	return row.AccountID, nil
}

func (r *ownershipRepository) ApplicationOwners(ctx context.Context, applicationID uint) (uint, uint, error) {
	var row struct {
		StudentAccountID uint
		CompanyAccountID uint
	}
	err := r.db.WithContext(ctx).Table("applications").
		Select("student_profiles.account_id AS student_account_id, company_profiles.account_id AS company_account_id").
		Joins("JOIN student_profiles ON student_profiles.id = applications.student_id").
		Joins("JOIN job_offers ON job_offers.id = applications.job_offer_id").
		Joins("JOIN company_profiles ON company_profiles.id = job_offers.company_id").
		Where("applications.id = ?", applicationID).
		Take(&row).Error
	if err != nil {
		return 0, 0, translate(err, "Application", applicationID, "")
	}
	return row.StudentAccountID, row.CompanyAccountID, nil
}
