package uow

import (
	"database/sql/driver"
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrTxAlreadyActive is returned by Begin when the handle already holds
	// an open transaction.
	ErrTxAlreadyActive = errors.New("transaction already active")

	// ErrNoActiveTx is returned by operations that require Begin first.
	ErrNoActiveTx = errors.New("no active transaction")
)

// transientCodes are the Postgres error codes worth retrying: serialization
// failures, deadlocks, lock timeouts and statement cancellation. Connection
// failures are matched by class 08 below.
var transientCodes = map[pq.ErrorCode]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"55P03": {}, // lock_not_available
	"57014": {}, // query_canceled
}

const connectionExceptionClass = "08"

// isTransient reports whether a fresh transaction has a fair chance of
// succeeding where this one failed. Everything else is treated as fatal and
// surfaced to the caller untouched.
func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	if _, ok := transientCodes[pqErr.Code]; ok {
		return true
	}

	return pqErr.Code.Class() == connectionExceptionClass
}
