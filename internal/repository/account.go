package repository

import (
	"context"
	"errors"
	"strings"

	"jobboard/internal/models"

	"gorm.io/gorm"
)

const emailTakenMsg = "Email already registered"

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	// CreateWithProfile inserts the account and its role profile atomically.
	// Exactly one of student or company should be non-nil for non-admin roles.
	CreateWithProfile(ctx context.Context, account *models.Account, student *models.StudentProfile, company *models.CompanyProfile) error
	ListByRole(ctx context.Context, role models.Role) ([]models.Account, error)
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository returns a new AccountRepository implementation.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, translate(err, "Account", id, "")
	}
	return &account, nil
}

// GetByEmail returns (nil, nil) when no account uses the email.
func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	email = strings.ToLower(strings.TrimSpace(email))
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &account, nil
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return translate(err, "Account", account.Email, emailTakenMsg)
	}
	return nil
}

func (r *accountRepository) CreateWithProfile(ctx context.Context, account *models.Account, student *models.StudentProfile, company *models.CompanyProfile) error {
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(account).Error; err != nil {
			return translate(err, "Account", account.Email, emailTakenMsg)
		}
		if student != nil {
			student.AccountID = account.ID
			if err := tx.Create(student).Error; err != nil {
				return translate(err, "StudentProfile", account.ID, "Profile already exists")
			}
		}
		if company != nil {
			company.AccountID = account.ID
			if err := tx.Create(company).Error; err != nil {
				return translate(err, "CompanyProfile", account.ID, "Profile already exists")
			}
		}
		return nil
	})
	if err != nil {
		account.ID = 0
		return err
	}
	return nil
}

func (r *accountRepository) ListByRole(ctx context.Context, role models.Role) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.WithContext(ctx).Where("role = ?", role).Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return accounts, nil
}
