package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"jobboard/internal/models"
	"jobboard/internal/seed"
	"jobboard/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestAccountRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	tests := []struct {
		name         string
		id           uint
		mockBehavior func()
		wantCode     string
	}{
		{
			name: "Success",
			id:   1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "email", "role"}).
					AddRow(1, "ada@example.com", "student")
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "accounts" WHERE "accounts"."id" = $1 ORDER BY "accounts"."id" LIMIT $2`)).
					WithArgs(1, 1).
					WillReturnRows(rows)
			},
		},
		{
			name: "Not Found",
			id:   99,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "accounts" WHERE "accounts"."id" = $1 ORDER BY "accounts"."id" LIMIT $2`)).
					WithArgs(99, 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			wantCode: models.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			account, err := repo.GetByID(ctx, tt.id)

			if tt.wantCode != "" {
				requireCode(t, err, tt.wantCode)
			} else if assert.NoError(t, err) {
				assert.Equal(t, "ada@example.com", account.Email)
				assert.Equal(t, models.RoleStudent, account.Role)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAccountRepository_GetByEmail_NormalizesAndMisses(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "accounts" WHERE email = $1 ORDER BY "accounts"."id" LIMIT $2`)).
		WithArgs("ada@example.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	account, err := repo.GetByEmail(context.Background(), "  Ada@Example.com ")
	require.NoError(t, err)
	assert.Nil(t, account)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_Create_PostgresUniqueViolationIsConflict(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "accounts"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Account{Email: "dup@example.com", PasswordHash: "x", Role: models.RoleStudent})
	requireCode(t, err, models.CodeConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_UpdateStatus_MissingRowIsNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewApplicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "applications" SET "status"=\$1,"updated_at"=\$2 WHERE id = \$3`).
		WithArgs("accepted", sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.UpdateStatus(context.Background(), 7, models.StatusAccepted)
	requireCode(t, err, models.CodeNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueConstraintError(t *testing.T) {
	assert.True(t, isUniqueConstraintError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueConstraintError(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isUniqueConstraintError(errors.New("UNIQUE constraint failed: applications.student_id, applications.job_offer_id")))
	assert.True(t, isUniqueConstraintError(gorm.ErrDuplicatedKey))
	assert.False(t, isUniqueConstraintError(errors.New("connection reset")))
	assert.False(t, isUniqueConstraintError(nil))
}

func TestPage_Normalize(t *testing.T) {
	tests := []struct {
		in            Page
		limit, offset int
	}{
		{Page{}, 20, 0},
		{Page{Page: 3, Limit: 10}, 10, 20},
		{Page{Page: -1, Limit: 500}, 100, 0},
	}
	for _, tt := range tests {
		limit, offset := tt.in.Normalize()
		assert.Equal(t, tt.limit, limit)
		assert.Equal(t, tt.offset, offset)
	}
}

// SQLite-backed tests exercise real constraints and joins.

func newFactory(t *testing.T) (*gorm.DB, *seed.Factory) {
	t.Helper()
	db := testutil.OpenSQLite(t)
	f, err := seed.NewFactory(db)
	require.NoError(t, err)
	return db, f
}

func TestAccountRepository_CreateWithProfile_RollsBackOnProfileFailure(t *testing.T) {
	db, _ := newFactory(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	acc := &models.Account{Email: "Grace@Example.com", PasswordHash: "h", Role: models.RoleCompany}
	company := &models.CompanyProfile{CompanyName: "Hopper Labs"}
	require.NoError(t, repo.CreateWithProfile(ctx, acc, nil, company))
	assert.Equal(t, "grace@example.com", acc.Email)
	assert.Equal(t, acc.ID, company.AccountID)

	dup := &models.Account{Email: "grace@example.com", PasswordHash: "h", Role: models.RoleStudent}
	err := repo.CreateWithProfile(ctx, dup, &models.StudentProfile{FirstName: "G"}, nil)
	requireCode(t, err, models.CodeConflict)

	var students int64
	require.NoError(t, db.Model(&models.StudentProfile{}).Count(&students).Error)
	assert.Zero(t, students)

	// A profile insert failure must not leave the account behind.
	broken := &models.Account{Email: "orphan@example.com", PasswordHash: "h", Role: models.RoleCompany}
	require.NoError(t, db.Exec("CREATE TRIGGER fail_company BEFORE INSERT ON company_profiles BEGIN SELECT RAISE(ABORT, 'boom'); END").Error)
	err = repo.CreateWithProfile(ctx, broken, nil, &models.CompanyProfile{CompanyName: "Nope"})
	requireCode(t, err, models.CodeInternal)

	found, err := repo.GetByEmail(ctx, "orphan@example.com")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestApplicationRepository_UniquePairIsConflict(t *testing.T) {
	db, f := newFactory(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	_, student, err := f.CreateStudent()
	require.NoError(t, err)
	_, company, err := f.CreateCompany(true)
	require.NoError(t, err)
	offer, err := f.CreateOffer(company)
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, &models.Application{StudentID: student.ID, JobOfferID: offer.ID}))
	err = repo.Create(ctx, &models.Application{StudentID: student.ID, JobOfferID: offer.ID})
	requireCode(t, err, models.CodeConflict)

	exists, err := repo.Exists(ctx, student.ID, offer.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	byCompany, err := repo.ListByCompany(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, byCompany, 1)
	assert.Equal(t, models.StatusPending, byCompany[0].Status)
	require.NotNil(t, byCompany[0].Student)
}

func TestJobOfferRepository_PublicVisibility(t *testing.T) {
	db, f := newFactory(t)
	repo := NewJobOfferRepository(db, testutil.NewCacheStore(t))
	ctx := context.Background()
	now := time.Now().UTC()

	_, company, err := f.CreateCompany(true)
	require.NoError(t, err)

	open, err := f.CreateOffer(company, func(o *models.JobOffer) { o.Deadline = seed.Deadline(48 * time.Hour) })
	require.NoError(t, err)
	pfe, err := f.CreateOffer(company, func(o *models.JobOffer) { o.Type = models.OfferPFE })
	require.NoError(t, err)
	inactive, err := f.CreateOffer(company, func(o *models.JobOffer) { o.IsActive = false })
	require.NoError(t, err)
	expired, err := f.CreateOffer(company, func(o *models.JobOffer) { o.Deadline = seed.Deadline(-time.Hour) })
	require.NoError(t, err)

	offers, total, err := repo.ListPublic(ctx, OfferFilter{}, now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	ids := []uint{}
	for _, o := range offers {
		ids = append(ids, o.ID)
	}
	assert.ElementsMatch(t, []uint{open.ID, pfe.ID}, ids)

	byType, _, err := repo.ListPublic(ctx, OfferFilter{Type: models.OfferPFE}, now)
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, pfe.ID, byType[0].ID)

	_, err = repo.GetPublic(ctx, inactive.ID, now)
	requireCode(t, err, models.CodeNotFound)
	_, err = repo.GetPublic(ctx, expired.ID, now)
	requireCode(t, err, models.CodeNotFound)

	got, err := repo.GetPublic(ctx, open.ID, now)
	require.NoError(t, err)
	require.NotNil(t, got.Company)
	assert.Equal(t, company.CompanyName, got.Company.CompanyName)

	// The cached copy must still honour the deadline.
	_, err = repo.GetPublic(ctx, open.ID, now.Add(72*time.Hour))
	requireCode(t, err, models.CodeNotFound)

	mine, err := repo.ListByCompany(ctx, company.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 4)

	n, err := repo.DeactivateExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestJobOfferRepository_DeleteCascadesApplications(t *testing.T) {
	db, f := newFactory(t)
	repo := NewJobOfferRepository(db, testutil.NewCacheStore(t))
	ctx := context.Background()

	_, student, err := f.CreateStudent()
	require.NoError(t, err)
	_, company, err := f.CreateCompany(true)
	require.NoError(t, err)
	offer, err := f.CreateOffer(company)
	require.NoError(t, err)
	_, err = f.CreateApplication(student, offer)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, offer.ID))
	requireCode(t, repo.Delete(ctx, offer.ID), models.CodeNotFound)

	var apps int64
	require.NoError(t, db.Model(&models.Application{}).Count(&apps).Error)
	assert.Zero(t, apps)
}

func TestCompanyRepository_VerifiedOnlyAndCacheInvalidation(t *testing.T) {
	db, f := newFactory(t)
	repo := NewCompanyRepository(db, testutil.NewCacheStore(t))
	ctx := context.Background()

	_, verified, err := f.CreateCompany(true)
	require.NoError(t, err)
	_, pending, err := f.CreateCompany(false)
	require.NoError(t, err)

	list, err := repo.ListVerified(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, verified.ID, list[0].ID)

	_, err = repo.GetVerified(ctx, pending.ID)
	requireCode(t, err, models.CodeNotFound)

	updated, err := repo.SetVerified(ctx, pending.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsVerified)

	list, err = repo.ListVerified(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = repo.SetVerified(ctx, 9999, true)
	requireCode(t, err, models.CodeNotFound)

	// Profile updates never touch verification.
	updated.IsVerified = false
	updated.Industry = "Robotics"
	require.NoError(t, repo.Update(ctx, updated))
	fresh, err := repo.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.True(t, fresh.IsVerified)
	assert.Equal(t, "Robotics", fresh.Industry)
}

func TestStudentRepository_UpdateReplacesSelectedChildren(t *testing.T) {
	db, f := newFactory(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	acc, student, err := f.CreateStudent(func(p *models.StudentProfile) {
		p.Education = []models.Education{{School: "ENSI", Degree: "Engineering"}}
	})
	require.NoError(t, err)

	profile, err := repo.GetByAccountID(ctx, acc.ID)
	require.NoError(t, err)
	require.Len(t, profile.Skills, 2)
	require.Len(t, profile.Education, 1)

	profile.Bio = "Updated bio"
	profile.Skills = []models.Skill{{Name: "Go", Proficiency: "expert"}}
	require.NoError(t, repo.Update(ctx, profile, ChildSets{Skills: true}))

	reloaded, err := repo.GetByID(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated bio", reloaded.Bio)
	require.Len(t, reloaded.Skills, 1)
	assert.Equal(t, "Go", reloaded.Skills[0].Name)
	assert.Len(t, reloaded.Education, 1, "education untouched when not replaced")

	var skillRows int64
	require.NoError(t, db.Model(&models.Skill{}).Count(&skillRows).Error)
	assert.EqualValues(t, 1, skillRows)
}

func TestOwnershipRepository_Chains(t *testing.T) {
	db, f := newFactory(t)
	repo := NewOwnershipRepository(db)
	ctx := context.Background()

	studentAcc, student, err := f.CreateStudent()
	require.NoError(t, err)
	companyAcc, company, err := f.CreateCompany(true)
	require.NoError(t, err)
	offer, err := f.CreateOffer(company)
	require.NoError(t, err)
	app, err := f.CreateApplication(student, offer)
	require.NoError(t, err)

	owner, err := repo.StudentProfileOwner(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, studentAcc.ID, owner)

	owner, err = repo.CompanyProfileOwner(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, companyAcc.ID, owner)

	owner, err = repo.JobOfferOwner(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, companyAcc.ID, owner)

	s, c, err := repo.ApplicationOwners(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, studentAcc.ID, s)
	assert.Equal(t, companyAcc.ID, c)

	_, err = repo.JobOfferOwner(ctx, 424242)
	requireCode(t, err, models.CodeNotFound)
	_, _, err = repo.ApplicationOwners(ctx, 424242)
	requireCode(t, err, models.CodeNotFound)
}
