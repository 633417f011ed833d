package service

import (
	"context"
	"strings"
	"time"

	"jobboard/internal/authz"
	"jobboard/internal/featureflags"
	"jobboard/internal/middleware"
	"jobboard/internal/models"
	"jobboard/internal/notifications"
	"jobboard/internal/observability"
	"jobboard/internal/repository"
	"jobboard/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// ApplyInput is a student's application to one offer.
type ApplyInput struct {
	JobOfferID  uint
	CoverLetter string
	CVURL       string
}

// FlagSource reports feature flags for an account.
type FlagSource interface {
	Enabled(name string, accountID uint) bool
}

type ApplicationService struct {
	applications repository.ApplicationRepository
	students     repository.StudentRepository
	companies    repository.CompanyRepository
	offers       repository.JobOfferRepository
	accounts     repository.AccountRepository
	guard        Authorizer
	flags        FlagSource
	events       *notifications.Dispatcher
	now          func() time.Time
}

// ApplicationDeps groups the collaborators of ApplicationService. Flags and
// Events may be nil.
type ApplicationDeps struct {
	Applications repository.ApplicationRepository
	Students     repository.StudentRepository
	Companies    repository.CompanyRepository
	Offers       repository.JobOfferRepository
	Accounts     repository.AccountRepository
	Guard        Authorizer
	Flags        FlagSource
	Events       *notifications.Dispatcher
}

func NewApplicationService(deps ApplicationDeps) *ApplicationService {
	return &ApplicationService{
		applications: deps.Applications,
		students:     deps.Students,
		companies:    deps.Companies,
		offers:       deps.Offers,
		accounts:     deps.Accounts,
		guard:        deps.Guard,
		flags:        deps.Flags,
		events:       deps.Events,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Policy returns the transition policy in force for an account.
func (s *ApplicationService) Policy(accountID uint) StatusPolicy {
	if s.flags != nil && s.flags.Enabled(featureflags.StrictStatusTransitions, accountID) {
		return StrictTransitions
	}
	return PermissiveTransitions
}

// Apply submits a pending application. One application per student and offer.
func (s *ApplicationService) Apply(ctx context.Context, caller *authz.Caller, in ApplyInput) (*models.Application, error) {
	span, ctx := observability.NewSpan(ctx, "application.apply",
		attribute.Int64("job_offer.id", int64(in.JobOfferID)))
	defer span.End()

	app, err := s.apply(ctx, caller, in)
	span.SetError(err)
	return app, err
}

func (s *ApplicationService) apply(ctx context.Context, caller *authz.Caller, in ApplyInput) (*models.Application, error) {
	if err := requireRole(caller, models.RoleStudent); err != nil {
		return nil, err
	}
	student, err := s.students.GetByAccountID(ctx, caller.AccountID)
	if err != nil {
		return nil, err
	}
	offer, err := s.offers.GetByID(ctx, in.JobOfferID)
	if err != nil {
		return nil, err
	}
	if !offer.OpenAt(s.now()) {
		return nil, models.NewValidationError("This job offer is no longer accepting applications")
	}

	exists, err := s.applications.Exists(ctx, student.ID, offer.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewConflictError("You have already applied to this job offer")
	}

	app := &models.Application{
		StudentID:   student.ID,
		JobOfferID:  offer.ID,
		Status:      models.StatusPending,
		CoverLetter: validation.SanitizeText(in.CoverLetter),
		CVURL:       strings.TrimSpace(in.CVURL),
	}
	if err := s.applications.Create(ctx, app); err != nil {
		return nil, err
	}

	observability.ApplicationsSubmitted.WithLabelValues(string(offer.Type)).Inc()
	middleware.Logger.InfoContext(ctx, "application submitted",
		"application_id", app.ID, "offer_id", offer.ID, "student_id", student.ID)

	if offer.Company != nil {
		s.events.Notify(ctx, offer.Company.AccountID, notifications.Event{
			Type:          notifications.EventApplicationSubmitted,
			ApplicationID: app.ID,
			JobOfferID:    offer.ID,
			OfferTitle:    offer.Title,
			Status:        string(app.Status),
		})
	}
	return app, nil
}

// UpdateStatus lets the owning company move an application. Withdrawal is
// reserved to the student.
func (s *ApplicationService) UpdateStatus(ctx context.Context, caller *authz.Caller, id uint, status models.ApplicationStatus) (*models.Application, error) {
	span, ctx := observability.NewSpan(ctx, "application.update_status",
		attribute.Int64("application.id", int64(id)),
		attribute.String("application.status", string(status)))
	defer span.End()

	app, err := s.updateStatus(ctx, caller, id, status)
	span.SetError(err)
	return app, err
}

func (s *ApplicationService) updateStatus(ctx context.Context, caller *authz.Caller, id uint, status models.ApplicationStatus) (*models.Application, error) {
	if _, err := s.guard.Authorize(ctx, authz.Request{
		Kind:       authz.KindApplicationCompany,
		ResourceID: id,
		Role:       models.RoleCompany,
		Caller:     caller,
	}); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, models.NewFieldValidationError(map[string]string{
			"status": "must be one of pending viewed accepted rejected withdrawn",
		})
	}
	if status == models.StatusWithdrawn {
		return nil, models.NewValidationError("Only the student can withdraw an application")
	}

	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Policy(caller.AccountID)(app.Status, status); err != nil {
		return nil, err
	}
	if err := s.applications.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	from := app.Status
	app.Status = status

	observability.ApplicationStatusChanges.WithLabelValues(string(status)).Inc()
	middleware.Logger.InfoContext(ctx, "application status changed",
		"application_id", id, "from", string(from), "to", string(status))

	s.notifyStudent(ctx, app, notifications.EventApplicationStatus)
	return app, nil
}

// Withdraw marks the caller's own application as withdrawn.
func (s *ApplicationService) Withdraw(ctx context.Context, caller *authz.Caller, id uint) (*models.Application, error) {
	if _, err := s.guard.Authorize(ctx, authz.Request{
		Kind:       authz.KindApplicationStudent,
		ResourceID: id,
		Role:       models.RoleStudent,
		Caller:     caller,
	}); err != nil {
		return nil, err
	}

	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Policy(caller.AccountID)(app.Status, models.StatusWithdrawn); err != nil {
		return nil, err
	}
	if err := s.applications.UpdateStatus(ctx, id, models.StatusWithdrawn); err != nil {
		return nil, err
	}
	app.Status = models.StatusWithdrawn

	observability.ApplicationStatusChanges.WithLabelValues(string(models.StatusWithdrawn)).Inc()
	middleware.Logger.InfoContext(ctx, "application withdrawn", "application_id", id)

	if app.JobOffer != nil && app.JobOffer.Company != nil {
		s.events.Notify(ctx, app.JobOffer.Company.AccountID, notifications.Event{
			Type:          notifications.EventApplicationWithdrawn,
			ApplicationID: app.ID,
			JobOfferID:    app.JobOfferID,
			OfferTitle:    app.JobOffer.Title,
			Status:        string(app.Status),
		})
	}
	return app, nil
}

func (s *ApplicationService) notifyStudent(ctx context.Context, app *models.Application, eventType string) {
	if app.Student == nil {
		return
	}
	event := notifications.Event{
		Type:          eventType,
		ApplicationID: app.ID,
		JobOfferID:    app.JobOfferID,
		Status:        string(app.Status),
	}
	if app.JobOffer != nil {
		event.OfferTitle = app.JobOffer.Title
	}
	s.events.Notify(ctx, app.Student.AccountID, event)

	if s.accounts == nil {
		return
	}
	account, err := s.accounts.GetByID(ctx, app.Student.AccountID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "status email skipped", "application_id", app.ID, "error", err)
		return
	}
	s.events.EmailStatusChange(account.Email, event)
}

// Get returns an application to its student or to the owning company.
func (s *ApplicationService) Get(ctx context.Context, caller *authz.Caller, id uint) (*models.Application, error) {
	if _, err := s.guard.Authorize(ctx, authz.Request{
		Kind:       authz.KindApplication,
		ResourceID: id,
		Caller:     caller,
	}); err != nil {
		return nil, err
	}
	return s.applications.GetByID(ctx, id)
}

// ListMine returns the calling student's applications, newest first.
func (s *ApplicationService) ListMine(ctx context.Context, caller *authz.Caller) ([]models.Application, error) {
	if err := requireRole(caller, models.RoleStudent); err != nil {
		return nil, err
	}
	student, err := s.students.GetByAccountID(ctx, caller.AccountID)
	if err != nil {
		return nil, err
	}
	return s.applications.ListByStudent(ctx, student.ID)
}

// ListForOffer returns applications to an offer the caller's company owns.
func (s *ApplicationService) ListForOffer(ctx context.Context, caller *authz.Caller, offerID uint) ([]models.Application, error) {
	if _, err := s.guard.Authorize(ctx, authz.Request{
		Kind:       authz.KindJobOffer,
		ResourceID: offerID,
		Role:       models.RoleCompany,
		Caller:     caller,
	}); err != nil {
		return nil, err
	}
	return s.applications.ListByOffer(ctx, offerID)
}

// ListForCompany returns applications across all of the caller's offers.
func (s *ApplicationService) ListForCompany(ctx context.Context, caller *authz.Caller) ([]models.Application, error) {
	if err := requireRole(caller, models.RoleCompany); err != nil {
		return nil, err
	}
	company, err := s.companies.GetByAccountID(ctx, caller.AccountID)
	if err != nil {
		return nil, err
	}
	return s.applications.ListByCompany(ctx, company.ID)
}
