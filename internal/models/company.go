package models

import "time"

// CompanyProfile holds company data attached 1:1 to an Account with role company.
// IsVerified gates visibility on public listings.
type CompanyProfile struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	AccountID      uint      `gorm:"uniqueIndex;not null" json:"account_id"`
	Account        *Account  `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"-"`
	CompanyName    string    `gorm:"size:150;not null" json:"company_name"`
	Industry       string    `gorm:"size:100" json:"industry"`
	Location       string    `gorm:"size:100" json:"location"`
	Website        string    `json:"website"`
	Description    string    `gorm:"type:text" json:"description"`
	LogoURL        string    `json:"logo_url"`
	Phone          string    `gorm:"size:20" json:"phone"`
	EnterpriseSize string    `gorm:"size:16" json:"enterprise_size"`
	IsVerified     bool      `gorm:"not null;default:false;index" json:"is_verified"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (CompanyProfile) TableName() string {
	return "company_profiles"
}

// EnterpriseSizes lists the accepted head-count brackets.
var EnterpriseSizes = []string{"1-10", "11-50", "51-200", "201-500", "501-1000", "1000+"}
