package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	domainagg "github.com/yungbote/batchprocess-backend/internal/domain/aggregates"
	"gorm.io/gorm"
)

var (
	// ErrValidation indicates caller input validation failure.
	ErrValidation = errors.New("aggregate validation")
	// ErrInvalidTransition indicates the job was not in the expected state.
	ErrInvalidTransition = errors.New("aggregate invalid transition")
	// ErrSequenceLookup indicates a successor step was requested for a job without steps.
	ErrSequenceLookup = errors.New("aggregate sequence lookup")
	// ErrConflict indicates a concurrent change won the race.
	ErrConflict = errors.New("aggregate conflict")
	// ErrRetryable indicates transient retryable failure.
	ErrRetryable = errors.New("aggregate retryable")
)

// taggedError keeps the caller-facing message intact while matching its sentinel.
type taggedError struct {
	kind error
	msg  string
}

func (e *taggedError) Error() string { return e.msg }

func (e *taggedError) Unwrap() error { return e.kind }

func tag(kind error, msg string) error {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		msg = kind.Error()
	}
	return &taggedError{kind: kind, msg: msg}
}

func ValidationError(msg string) error { return tag(ErrValidation, msg) }

func InvalidTransitionError(msg string) error { return tag(ErrInvalidTransition, msg) }

func SequenceLookupError(msg string) error { return tag(ErrSequenceLookup, msg) }

func ConflictError(msg string) error { return tag(ErrConflict, msg) }

func RetryableError(msg string) error { return tag(ErrRetryable, msg) }

// sentinelCodes is checked in order; the first sentinel in err's chain wins.
var sentinelCodes = []struct {
	sentinel error
	code     domainagg.ErrorCode
}{
	{ErrValidation, domainagg.CodeValidation},
	{ErrInvalidTransition, domainagg.CodeInvalidTransition},
	{ErrSequenceLookup, domainagg.CodeSequenceLookup},
	{ErrConflict, domainagg.CodeConflict},
	{ErrRetryable, domainagg.CodeRetryable},
	{gorm.ErrRecordNotFound, domainagg.CodeNotFound},
	{context.Canceled, domainagg.CodeRetryable},
	{context.DeadlineExceeded, domainagg.CodeRetryable},
}

// MapError turns a failure from inside an aggregate transaction into a
// *domainagg.Error. Anything the store raised that is not recognized becomes CodeStore.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*domainagg.Error); ok {
		return err
	}
	return domainagg.Wrap(classify(err), op, err)
}

func classify(err error) domainagg.ErrorCode {
	for _, sc := range sentinelCodes {
		if errors.Is(err, sc.sentinel) {
			return sc.code
		}
	}
	if code, ok := classifyPostgres(err); ok {
		return code
	}
	if code, ok := classifySQLite(err); ok {
		return code
	}
	return classifyMessage(err.Error())
}

func classifyPostgres(err error) (domainagg.ErrorCode, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	switch pgErr.Code {
	case "23505": // unique_violation
		return domainagg.CodeConflict, true
	case "23503": // foreign_key_violation
		return domainagg.CodePreconditionFailed, true
	case "40001", "40P01", "55P03": // serialization_failure, deadlock_detected, lock_not_available
		return domainagg.CodeRetryable, true
	}
	return "", false
}

func classifySQLite(err error) (domainagg.ErrorCode, bool) {
	var liteErr sqlite3.Error
	if !errors.As(err, &liteErr) {
		return "", false
	}
	switch liteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return domainagg.CodeConflict, true
	case sqlite3.ErrConstraintForeignKey:
		return domainagg.CodePreconditionFailed, true
	}
	if liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked {
		return domainagg.CodeRetryable, true
	}
	return "", false
}

// classifyMessage covers drivers that surface errors only as text.
func classifyMessage(msg string) domainagg.ErrorCode {
	msg = strings.ToLower(msg)
	for _, frag := range []string{"duplicate key", "unique constraint"} {
		if strings.Contains(msg, frag) {
			return domainagg.CodeConflict
		}
	}
	for _, frag := range []string{"deadlock", "serialization", "database is locked", "timeout"} {
		if strings.Contains(msg, frag) {
			return domainagg.CodeRetryable
		}
	}
	return domainagg.CodeStore
}
