package models

import "time"

// ApplicationStatus is the lifecycle state of an application.
type ApplicationStatus string

const (
	StatusPending   ApplicationStatus = "pending"
	StatusViewed    ApplicationStatus = "viewed"
	StatusAccepted  ApplicationStatus = "accepted"
	StatusRejected  ApplicationStatus = "rejected"
	StatusWithdrawn ApplicationStatus = "withdrawn"
)

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusViewed, StatusAccepted, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// Application links one student profile to one job offer.
// The composite unique index enforces a single application per pair.
type Application struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	StudentID   uint              `gorm:"not null;uniqueIndex:idx_applications_student_offer,priority:1" json:"student_id"`
	Student     *StudentProfile   `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	JobOfferID  uint              `gorm:"not null;index;uniqueIndex:idx_applications_student_offer,priority:2" json:"job_offer_id"`
	JobOffer    *JobOffer         `gorm:"foreignKey:JobOfferID;constraint:OnDelete:CASCADE" json:"job_offer,omitempty"`
	Status      ApplicationStatus `gorm:"size:16;not null;default:pending;index" json:"status"`
	CoverLetter string            `gorm:"type:text" json:"cover_letter"`
	CVURL       string            `gorm:"column:cv_url" json:"cv_url"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (Application) TableName() string {
	return "applications"
}
