package database

import "jobboard/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models,
// parents before children so AutoMigrate can create foreign keys in order.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Account{},
		&models.StudentProfile{},
		&models.Skill{},
		&models.Experience{},
		&models.Education{},
		&models.CompanyProfile{},
		&models.JobOffer{},
		&models.Application{},
	}
}
