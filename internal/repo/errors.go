package repo

import (
	"database/sql"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
)

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrMemberNotFound       = errors.New("member not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrFeePlanNotFound      = errors.New("fee plan not found")

	ErrEventClosed           = errors.New("event has ended")
	ErrSoldOut               = errors.New("event is sold out")
	ErrDuplicateRegistration = errors.New("duplicate registration")
	ErrDuplicateMember       = errors.New("member already exists")
	ErrPaymentNotPending     = errors.New("payment is not pending")
	ErrMemberNotPending      = errors.New("member is not pending")
	ErrSeatsBelowRegistered  = errors.New("total seats below registered count")

	// ErrConflictRetryable and ErrStoreUnavailable are the only kinds a
	// caller may retry; everything above is terminal.
	ErrConflictRetryable = errors.New("transaction conflict, retry")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// Retryable reports whether the error is eligible for automatic retry.
func Retryable(err error) bool {
	return errors.Is(err, ErrConflictRetryable) || errors.Is(err, ErrStoreUnavailable)
}

// classify translates driver-level failures into the retryable sentinels.
// Terminal sentinels and sql.ErrNoRows pass through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) || Retryable(err) {
		return err
	}

	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %v", ErrConflictRetryable, err)
		case "57P01", "57P02", "57P03", "53300":
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if pgErr.Code.Class() == "08" { // connection exceptions
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pq.Error
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
