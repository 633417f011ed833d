package repository

import (
	"context"

	"jobboard/internal/cache"
	"jobboard/internal/models"

	"gorm.io/gorm"
)

// CompanyRepository defines persistence operations for company profiles.
type CompanyRepository interface {
	GetByID(ctx context.Context, id uint) (*models.CompanyProfile, error)
	GetByAccountID(ctx context.Context, accountID uint) (*models.CompanyProfile, error)
	// GetVerified returns NOT_FOUND for unverified companies.
	GetVerified(ctx context.Context, id uint) (*models.CompanyProfile, error)
	ListVerified(ctx context.Context) ([]models.CompanyProfile, error)
	Update(ctx context.Context, profile *models.CompanyProfile) error
	SetVerified(ctx context.Context, id uint, verified bool) (*models.CompanyProfile, error)
}

type companyRepository struct {
	db    *gorm.DB
	cache *cache.Store
}

// NewCompanyRepository returns a CompanyRepository. Public reads go through
// store, which may wrap a nil client.
func NewCompanyRepository(db *gorm.DB, store *cache.Store) CompanyRepository {
	return &companyRepository{db: db, cache: store}
}

func (r *companyRepository) GetByID(ctx context.Context, id uint) (*models.CompanyProfile, error) {
	var profile models.CompanyProfile
	if err := r.db.WithContext(ctx).First(&profile, id).Error; err != nil {
		return nil, translate(err, "CompanyProfile", id, "")
	}
	return &profile, nil
}

func (r *companyRepository) GetByAccountID(ctx context.Context, accountID uint) (*models.CompanyProfile, error) {
	var profile models.CompanyProfile
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&profile).Error; err != nil {
		return nil, translate(err, "CompanyProfile", accountID, "")
	}
	return &profile, nil
}

func (r *companyRepository) GetVerified(ctx context.Context, id uint) (*models.CompanyProfile, error) {
	var profile models.CompanyProfile
	key := cache.CompanyKey(r.cache.Version(ctx, cache.NamespaceCompanies), id)

	err := r.cache.Aside(ctx, cache.NamespaceCompanies, key, &profile, cache.CompanyTTL, func() error {
		err := r.db.WithContext(ctx).
			Where("id = ? AND is_verified = ?", id, true).
			First(&profile).Error
		return translate(err, "CompanyProfile", id, "")
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *companyRepository) ListVerified(ctx context.Context) ([]models.CompanyProfile, error) {
	companies := []models.CompanyProfile{}
	key := cache.CompanyListKey(r.cache.Version(ctx, cache.NamespaceCompanies))

	err := r.cache.Aside(ctx, cache.NamespaceCompanies, key, &companies, cache.CompanyListTTL, func() error {
		if err := r.db.WithContext(ctx).
			Where("is_verified = ?", true).
			Order("company_name ASC").
			Find(&companies).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *companyRepository) Update(ctx context.Context, profile *models.CompanyProfile) error {
	if err := r.db.WithContext(ctx).Omit("Account", "is_verified").Save(profile).Error; err != nil {
		return translate(err, "CompanyProfile", profile.ID, "Profile conflict")
	}
	r.invalidate(ctx)
	return nil
}

func (r *companyRepository) SetVerified(ctx context.Context, id uint, verified bool) (*models.CompanyProfile, error) {
	res := r.db.WithContext(ctx).Model(&models.CompanyProfile{}).
		Where("id = ?", id).
		Update("is_verified", verified)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("CompanyProfile", id)
	}
	r.invalidate(ctx)
	return r.GetByID(ctx, id)
}

// Offers embed their company, so company changes also orphan cached offers.
func (r *companyRepository) invalidate(ctx context.Context) {
	r.cache.Bump(ctx, cache.NamespaceCompanies)
	r.cache.Bump(ctx, cache.NamespaceOffers)
}
