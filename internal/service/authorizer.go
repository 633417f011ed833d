package service

import (
	"context"

	"jobboard/internal/authz"
	"jobboard/internal/models"
)

// Authorizer is the ownership gate every resource-scoped operation consults.
type Authorizer interface {
	Authorize(ctx context.Context, req authz.Request) (uint, error)
}

func requireRole(caller *authz.Caller, role models.Role) error {
	if caller == nil || caller.AccountID == 0 {
		return models.NewUnauthorizedError("Authentication required")
	}
	if caller.Role != role {
		return models.NewForbiddenError("Insufficient permissions")
	}
	return nil
}
