package models

import "time"

// OfferType classifies a job offer.
type OfferType string

const (
	OfferInternship OfferType = "internship"
	OfferPFE        OfferType = "pfe"
	OfferJob        OfferType = "job"
)

// Valid reports whether t is a known offer type.
func (t OfferType) Valid() bool {
	switch t {
	case OfferInternship, OfferPFE, OfferJob:
		return true
	}
	return false
}

// JobOffer is a posting owned by exactly one company profile.
type JobOffer struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	CompanyID      uint            `gorm:"index;not null" json:"company_id"`
	Company        *CompanyProfile `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"company,omitempty"`
	Title          string          `gorm:"size:200;not null" json:"title"`
	Type           OfferType       `gorm:"size:16;not null;index" json:"type"`
	Description    string          `gorm:"type:text;not null" json:"description"`
	RequiredSkills string          `gorm:"type:text" json:"required_skills"`
	Location       string          `gorm:"size:100" json:"location"`
	Salary         *float64        `json:"salary"`
	Duration       string          `gorm:"size:50" json:"duration"`
	IsActive       bool            `gorm:"not null;default:true;index" json:"is_active"`
	Deadline       *time.Time      `json:"deadline"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (JobOffer) TableName() string {
	return "job_offers"
}

// OpenAt reports whether the offer accepts applications at the given time.
func (o *JobOffer) OpenAt(now time.Time) bool {
	if !o.IsActive {
		return false
	}
	return o.Deadline == nil || o.Deadline.After(now)
}
