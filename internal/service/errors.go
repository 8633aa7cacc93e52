package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Validation errors, detected locally before any write
var (
	ErrCandidateNotFound  = errors.New("no church found for this code")
	ErrSelfLink           = errors.New("a church cannot be its own parent")
	ErrNoEligibleCategory = errors.New("candidate is at the lowest rank, nothing can link beneath it")
	ErrIneligibleCategory = errors.New("chosen category is not eligible under this parent")
	ErrChurchNotFound     = errors.New("church not found")
	ErrNotLinked          = errors.New("church is not linked to a parent")
)

// Store errors, classified at the boundary
var (
	// ErrStoreTransient marks a store failure that is safe to retry
	ErrStoreTransient = errors.New("transient store error")
	// ErrStoreAuthorization marks a store failure that must not be retried
	// without escalation
	ErrStoreAuthorization = errors.New("store rejected the operation")
	// ErrLinkPersistence wraps a failed link write; no partial state is
	// visible to readers since the write is a single-row update
	ErrLinkPersistence = errors.New("failed to persist link")
)

// pg error classes that indicate a permission or authentication problem
var authorizationSQLStates = []string{
	"28", // invalid authorization specification
	"42501",
}

// classifyStoreError folds a raw store error into the transient/authorization
// taxonomy. Unknown failures default to transient: callers may retry.
func classifyStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		for _, state := range authorizationSQLStates {
			if strings.HasPrefix(pgErr.Code, state) {
				return errors.Join(ErrStoreAuthorization, err)
			}
		}
		return errors.Join(ErrStoreTransient, err)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errors.Join(ErrStoreTransient, err)
	}

	return errors.Join(ErrStoreTransient, err)
}
