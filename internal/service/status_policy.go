package service

import (
	"fmt"

	"jobboard/internal/models"
)

// StatusPolicy decides whether an application may move from one status to another.
type StatusPolicy func(from, to models.ApplicationStatus) error

// PermissiveTransitions lets any valid status overwrite any other, including
// itself and terminal states.
func PermissiveTransitions(_, to models.ApplicationStatus) error {
	if !to.Valid() {
		return models.NewValidationError(fmt.Sprintf("Invalid status %q", to))
	}
	return nil
}

var strictTable = map[models.ApplicationStatus][]models.ApplicationStatus{
	models.StatusPending: {models.StatusViewed, models.StatusAccepted, models.StatusRejected, models.StatusWithdrawn},
	models.StatusViewed:  {models.StatusAccepted, models.StatusRejected, models.StatusWithdrawn},
}

// StrictTransitions only allows forward moves: pending -> viewed|accepted|rejected,
// viewed -> accepted|rejected, and withdrawal from any open state. Accepted,
// rejected and withdrawn are final.
func StrictTransitions(from, to models.ApplicationStatus) error {
	if err := PermissiveTransitions(from, to); err != nil {
		return err
	}
	for _, allowed := range strictTable[from] {
		if allowed == to {
			return nil
		}
	}
	return models.NewValidationError(fmt.Sprintf("Cannot change application status from %s to %s", from, to))
}
