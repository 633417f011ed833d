package models

import "time"

// StudentProfile holds student data attached 1:1 to an Account with role student.
type StudentProfile struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	AccountID       uint         `gorm:"uniqueIndex;not null" json:"account_id"`
	Account         *Account     `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"-"`
	FirstName       string       `gorm:"size:50" json:"first_name"`
	LastName        string       `gorm:"size:50" json:"last_name"`
	University      string       `gorm:"size:100" json:"university"`
	Phone           string       `gorm:"size:20" json:"phone"`
	Location        string       `gorm:"size:100" json:"location"`
	Bio             string       `gorm:"type:text" json:"bio"`
	PortfolioURL    string       `json:"portfolio_url"`
	GithubURL       string       `json:"github_url"`
	LinkedinURL     string       `json:"linkedin_url"`
	ProfileImageURL string       `json:"profile_image_url"`
	Skills          []Skill      `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"skills"`
	Experiences     []Experience `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"experiences"`
	Education       []Education  `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"education"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

func (StudentProfile) TableName() string {
	return "student_profiles"
}

// Skill is an unordered {name, proficiency} entry on a student profile.
type Skill struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	StudentID   uint   `gorm:"index;not null" json:"-"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Proficiency string `gorm:"size:50" json:"proficiency"`
}

func (Skill) TableName() string {
	return "student_skills"
}

// Experience is a past or current position held by a student.
type Experience struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	StudentID   uint       `gorm:"index;not null" json:"-"`
	Title       string     `gorm:"size:100;not null" json:"title"`
	Company     string     `gorm:"size:100" json:"company"`
	Description string     `gorm:"type:text" json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

func (Experience) TableName() string {
	return "student_experiences"
}

type Education struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	StudentID    uint       `gorm:"index;not null" json:"-"`
	School       string     `gorm:"size:150;not null" json:"school"`
	Degree       string     `gorm:"size:100" json:"degree"`
	FieldOfStudy string     `gorm:"size:100" json:"field_of_study"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
}

func (Education) TableName() string {
	return "student_educations"
}
