package aggregates

import (
	"fmt"

	"github.com/yungbote/batchprocess-backend/internal/domain/jobs"
)

// RequireTransitionAllowed checks the lifecycle allow-list.
func RequireTransitionAllowed(from, to jobs.State) error {
	if !to.Valid() {
		return ValidationError(fmt.Sprintf("unknown target state %d", int(to)))
	}
	if !jobs.CanTransition(from, to) {
		return InvalidTransitionError(fmt.Sprintf("transition %s -> %s not allowed", from, to))
	}
	return nil
}

// RequireFound turns an empty precondition read into an invalid transition.
func RequireFound(n int, message string) error {
	if n > 0 {
		return nil
	}
	return InvalidTransitionError(message)
}

// RequireRowsAffected converts a guarded update that matched nothing into a conflict.
func RequireRowsAffected(n int64, message string) error {
	if n > 0 {
		return nil
	}
	return ConflictError(message)
}

// timestampColumn names the date column set when a job enters s.
func timestampColumn(s jobs.State) string {
	switch s {
	case jobs.StateInterrupted:
		return "cancelled_at"
	case jobs.StateFailed:
		return "failed_at"
	case jobs.StateCompleted:
		return "finished_at"
	default:
		return ""
	}
}
