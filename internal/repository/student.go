package repository

import (
	"context"

	"jobboard/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChildSets selects which student child collections an update replaces.
type ChildSets struct {
	Skills      bool
	Experiences bool
	Education   bool
}

// StudentRepository defines persistence operations for student profiles.
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (*models.StudentProfile, error)
	GetByAccountID(ctx context.Context, accountID uint) (*models.StudentProfile, error)
	Update(ctx context.Context, profile *models.StudentProfile, replace ChildSets) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository returns a new StudentRepository implementation.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func withStudentChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Skills", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Experiences", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Education", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (*models.StudentProfile, error) {
	var profile models.StudentProfile
	if err := withStudentChildren(r.db.WithContext(ctx)).First(&profile, id).Error; err != nil {
		return nil, translate(err, "StudentProfile", id, "")
	}
	return &profile, nil
}

func (r *studentRepository) GetByAccountID(ctx context.Context, accountID uint) (*models.StudentProfile, error) {
	var profile models.StudentProfile
	err := withStudentChildren(r.db.WithContext(ctx)).
		Where("account_id = ?", accountID).
		First(&profile).Error
	if err != nil {
		return nil, translate(err, "StudentProfile", accountID, "")
	}
	return &profile, nil
}

// Update saves scalar fields and swaps out every selected child collection in
// one transaction. The profile is reloaded with its children afterwards.
func (r *studentRepository) Update(ctx context.Context, profile *models.StudentProfile, replace ChildSets) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(profile).Error; err != nil {
			return err
		}
		if replace.Skills {
			if err := tx.Where("student_id = ?", profile.ID).Delete(&models.Skill{}).Error; err != nil {
				return err
			}
			for i := range profile.Skills {
				profile.Skills[i].ID = 0
				profile.Skills[i].StudentID = profile.ID
			}
			if len(profile.Skills) > 0 {
				if err := tx.Create(&profile.Skills).Error; err != nil {
					return err
				}
			}
		}
		if replace.Experiences {
			if err := tx.Where("student_id = ?", profile.ID).Delete(&models.Experience{}).Error; err != nil {
				return err
			}
			for i := range profile.Experiences {
				profile.Experiences[i].ID = 0
				profile.Experiences[i].StudentID = profile.ID
			}
			if len(profile.Experiences) > 0 {
				if err := tx.Create(&profile.Experiences).Error; err != nil {
					return err
				}
			}
		}
		if replace.Education {
			if err := tx.Where("student_id = ?", profile.ID).Delete(&models.Education{}).Error; err != nil {
				return err
			}
			for i := range profile.Education {
				profile.Education[i].ID = 0
				profile.Education[i].StudentID = profile.ID
			}
			if len(profile.Education) > 0 {
				if err := tx.Create(&profile.Education).Error; err != nil {
					return err
				}
			}
		}
		return withStudentChildren(tx).First(profile, profile.ID).Error
	})
	if err != nil {
		return translate(err, "StudentProfile", profile.ID, "Profile conflict")
	}
	return nil
}
