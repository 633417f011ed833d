package repository

import (
	"context"

	"jobboard/internal/models"

	"gorm.io/gorm"
)

const alreadyAppliedMsg = "You have already applied to this job offer"

// ApplicationRepository defines persistence operations for applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id uint) (*models.Application, error)
	Exists(ctx context.Context, studentID, jobOfferID uint) (bool, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Application, error)
	ListByOffer(ctx context.Context, jobOfferID uint) ([]models.Application, error)
	ListByCompany(ctx context.Context, companyID uint) ([]models.Application, error)
	UpdateStatus(ctx context.Context, id uint, status models.ApplicationStatus) error
}

type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository returns a new ApplicationRepository implementation.
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

// Create inserts a pending application. The (student_id, job_offer_id) unique
// index turns a concurrent duplicate into CONFLICT.
func (r *applicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.Status == "" {
		app.Status = models.StatusPending
	}
	if err := r.db.WithContext(ctx).Omit("Student", "JobOffer").Create(app).Error; err != nil {
		return translate(err, "Application", app.ID, alreadyAppliedMsg)
	}
	return nil
}

func (r *applicationRepository) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("JobOffer").
		Preload("JobOffer.Company").
		First(&app, id).Error
	if err != nil {
		return nil, translate(err, "Application", id, "")
	}
	return &app, nil
}

func (r *applicationRepository) Exists(ctx context.Context, studentID, jobOfferID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("student_id = ? AND job_offer_id = ?", studentID, jobOfferID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *applicationRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Application, error) {
	apps := []models.Application{}
	err := r.db.WithContext(ctx).
		Preload("JobOffer").
		Preload("JobOffer.Company").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&apps).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return apps, nil
}

func (r *applicationRepository) ListByOffer(ctx context.Context, jobOfferID uint) ([]models.Application, error) {
	apps := []models.Application{}
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("job_offer_id = ?", jobOfferID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&apps).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return apps, nil
}

func (r *applicationRepository) ListByCompany(ctx context.Context, companyID uint) ([]models.Application, error) {
	apps := []models.Application{}
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("JobOffer").
		Joins("JOIN job_offers ON job_offers.id = applications.job_offer_id").
		Where("job_offers.company_id = ?", companyID).
		Order("applications.created_at DESC").
		Order("applications.id DESC").
		Find(&apps).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return apps, nil
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id uint, status models.ApplicationStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Application", id)
	}
	return nil
}
