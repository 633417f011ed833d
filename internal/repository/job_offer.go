package repository

import (
	"context"
	"time"

	"jobboard/internal/cache"
	"jobboard/internal/models"

	"gorm.io/gorm"
)

// OfferFilter narrows public offer listings. Zero fields do not filter.
type OfferFilter struct {
	Type      models.OfferType
	CompanyID uint
	Page      Page
}

// JobOfferRepository defines persistence operations for job offers.
type JobOfferRepository interface {
	Create(ctx context.Context, offer *models.JobOffer) error
	GetByID(ctx context.Context, id uint) (*models.JobOffer, error)
	// GetPublic returns NOT_FOUND unless the offer is open at now.
	GetPublic(ctx context.Context, id uint, now time.Time) (*models.JobOffer, error)
	ListPublic(ctx context.Context, filter OfferFilter, now time.Time) ([]models.JobOffer, int64, error)
	ListByCompany(ctx context.Context, companyID uint) ([]models.JobOffer, error)
	Update(ctx context.Context, offer *models.JobOffer) error
	Delete(ctx context.Context, id uint) error
	// DeactivateExpired flips is_active off for offers whose deadline passed.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type jobOfferRepository struct {
	db    *gorm.DB
	cache *cache.Store
}

// NewJobOfferRepository returns a new JobOfferRepository implementation.
func NewJobOfferRepository(db *gorm.DB, store *cache.Store) JobOfferRepository {
	return &jobOfferRepository{db: db, cache: store}
}

func publicOffers(db *gorm.DB, now time.Time) *gorm.DB {
	return db.Where("job_offers.is_active = ?", true).
		Where("job_offers.deadline IS NULL OR job_offers.deadline > ?", now)
}

func (r *jobOfferRepository) Create(ctx context.Context, offer *models.JobOffer) error {
	active := offer.IsActive
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Company").Create(offer).Error; err != nil {
			return err
		}
		// GORM skips zero values on columns with a default, so false needs its own write.
		if !active {
			offer.IsActive = false
			return tx.Model(offer).Update("is_active", false).Error
		}
		return nil
	})
	if err != nil {
		return translate(err, "JobOffer", offer.ID, "Offer conflict")
	}
	r.cache.Bump(ctx, cache.NamespaceOffers)
	return nil
}

func (r *jobOfferRepository) GetByID(ctx context.Context, id uint) (*models.JobOffer, error) {
	var offer models.JobOffer
	if err := r.db.WithContext(ctx).Preload("Company").First(&offer, id).Error; err != nil {
		return nil, translate(err, "JobOffer", id, "")
	}
	return &offer, nil
}

func (r *jobOfferRepository) GetPublic(ctx context.Context, id uint, now time.Time) (*models.JobOffer, error) {
	var offer models.JobOffer
	key := cache.OfferKey(r.cache.Version(ctx, cache.NamespaceOffers), id)

	err := r.cache.Aside(ctx, cache.NamespaceOffers, key, &offer, cache.OfferTTL, func() error {
		err := publicOffers(r.db.WithContext(ctx), now).
			Preload("Company").
			Where("job_offers.id = ?", id).
			First(&offer).Error
		return translate(err, "JobOffer", id, "")
	})
	if err != nil {
		return nil, err
	}
	// A cached copy can outlive its deadline.
	if !offer.OpenAt(now) {
		return nil, models.NewNotFoundError("JobOffer", id)
	}
	return &offer, nil
}

func (r *jobOfferRepository) ListPublic(ctx context.Context, filter OfferFilter, now time.Time) ([]models.JobOffer, int64, error) {
	q := publicOffers(r.db.WithContext(ctx).Model(&models.JobOffer{}), now)
	if filter.Type != "" {
		q = q.Where("job_offers.type = ?", filter.Type)
	}
	if filter.CompanyID != 0 {
		q = q.Where("job_offers.company_id = ?", filter.CompanyID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	limit, offset := filter.Page.Normalize()
	offers := []models.JobOffer{}
	if err := q.Preload("Company").
		Order("job_offers.created_at DESC").
		Order("job_offers.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&offers).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return offers, total, nil
}

func (r *jobOfferRepository) ListByCompany(ctx context.Context, companyID uint) ([]models.JobOffer, error) {
	offers := []models.JobOffer{}
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&offers).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return offers, nil
}

func (r *jobOfferRepository) Update(ctx context.Context, offer *models.JobOffer) error {
	if err := r.db.WithContext(ctx).Omit("Company").Save(offer).Error; err != nil {
		return translate(err, "JobOffer", offer.ID, "Offer conflict")
	}
	r.cache.Bump(ctx, cache.NamespaceOffers)
	return nil
}

func (r *jobOfferRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.JobOffer{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("JobOffer", id)
	}
	r.cache.Bump(ctx, cache.NamespaceOffers)
	return nil
}

func (r *jobOfferRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.JobOffer{}).
		Where("is_active = ? AND deadline IS NOT NULL AND deadline <= ?", true, now).
		Update("is_active", false)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		r.cache.Bump(ctx, cache.NamespaceOffers)
	}
	return res.RowsAffected, nil
}
