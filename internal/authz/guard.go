// Package authz is the single authorization and ownership gate. Every
// resource-scoped operation goes through Guard.Authorize, which applies the
// checks in a fixed order: authentication, role, existence, ownership.
package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"jobboard/internal/middleware"
	"jobboard/internal/models"
	"jobboard/internal/observability"
)

// Kind names a protected resource type.
type Kind string

const (
	KindStudentProfile     Kind = "student_profile"
	KindCompanyProfile     Kind = "company_profile"
	KindJobOffer           Kind = "job_offer"
	KindApplication        Kind = "application"
	KindApplicationStudent Kind = "application_student"
	KindApplicationCompany Kind = "application_company"
)

// Caller is the authenticated identity making a request.
type Caller struct {
	AccountID uint
	Role      models.Role
}

// Request describes one authorization decision. Role is the required caller
// role; empty means any role. A nil Caller is unauthenticated.
type Request struct {
	Kind       Kind
	ResourceID uint
	Role       models.Role
	Caller     *Caller
}

// OwnerStore walks foreign-key chains from a resource to its owning account(s).
type OwnerStore interface {
	StudentProfileOwner(ctx context.Context, studentID uint) (uint, error)
	CompanyProfileOwner(ctx context.Context, companyID uint) (uint, error)
	JobOfferOwner(ctx context.Context, offerID uint) (uint, error)
	ApplicationOwners(ctx context.Context, applicationID uint) (studentAccountID, companyAccountID uint, err error)
}

// OwnerResolver returns every account allowed to act on the resource.
// A missing resource must surface as a NOT_FOUND AppError.
type OwnerResolver func(ctx context.Context, id uint) ([]uint, error)

// Guard evaluates Requests against a resolver per Kind.
type Guard struct {
	resolvers map[Kind]OwnerResolver
}

// NewGuard wires the standard resolver chain for every Kind.
func NewGuard(store OwnerStore) *Guard {
	single := func(fn func(context.Context, uint) (uint, error)) OwnerResolver {
		return func(ctx context.Context, id uint) ([]uint, error) {
			owner, err := fn(ctx, id)
			if err != nil {
				return nil, err
			}
			return []uint{owner}, nil
		}
	}

	return &Guard{resolvers: map[Kind]OwnerResolver{
		KindStudentProfile: single(store.StudentProfileOwner),
		KindCompanyProfile: single(store.CompanyProfileOwner),
		KindJobOffer:       single(store.JobOfferOwner),
		KindApplicationStudent: func(ctx context.Context, id uint) ([]uint, error) {
			student, _, err := store.ApplicationOwners(ctx, id)
			if err != nil {
				return nil, err
			}
			return []uint{student}, nil
		},
		KindApplicationCompany: func(ctx context.Context, id uint) ([]uint, error) {
			_, company, err := store.ApplicationOwners(ctx, id)
			if err != nil {
				return nil, err
			}
			return []uint{company}, nil
		},
		KindApplication: func(ctx context.Context, id uint) ([]uint, error) {
			student, company, err := store.ApplicationOwners(ctx, id)
			if err != nil {
				return nil, err
			}
			return []uint{student, company}, nil
		},
	}}
}

// WithResolver overrides the resolver for a Kind and returns the guard.
func (g *Guard) WithResolver(kind Kind, resolver OwnerResolver) *Guard {
	g.resolvers[kind] = resolver
	return g
}

// Authorize returns the owning account id on success. The first failing
// check wins: 401, then role 403, then 404, then ownership 403.
func (g *Guard) Authorize(ctx context.Context, req Request) (uint, error) {
	if req.Caller == nil || req.Caller.AccountID == 0 {
		g.deny(ctx, req, "unauthenticated")
		return 0, models.NewUnauthorizedError("Authentication required")
	}

	if req.Role != "" && req.Caller.Role != req.Role {
		g.deny(ctx, req, "role")
		return 0, models.NewForbiddenError("Insufficient permissions")
	}

	resolve, ok := g.resolvers[req.Kind]
	if !ok {
		return 0, models.NewInternalError(fmt.Errorf("no owner resolver for kind %q", req.Kind))
	}

	owners, err := resolve(ctx, req.ResourceID)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
			g.deny(ctx, req, "not_found")
		}
		return 0, err
	}

	for _, owner := range owners {
		if owner != 0 && owner == req.Caller.AccountID {
			return owner, nil
		}
	}

	g.deny(ctx, req, "ownership")
	return 0, models.NewForbiddenError("You do not have access to this resource")
}

func (g *Guard) deny(ctx context.Context, req Request, reason string) {
	observability.AuthorizationDenials.WithLabelValues(string(req.Kind), reason).Inc()

	attrs := []any{
		slog.String("kind", string(req.Kind)),
		slog.Uint64("resource_id", uint64(req.ResourceID)),
		slog.String("reason", reason),
	}
	if req.Caller != nil {
		attrs = append(attrs, slog.Uint64("caller", uint64(req.Caller.AccountID)))
	}
	middleware.Logger.DebugContext(ctx, "authorization denied", attrs...)
}
