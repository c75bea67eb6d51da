package domain

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrRecordNotFound   = errors.New("outbox record not found")
)

type (
	// DomainRuleError marks a command rejected by an aggregate invariant.
	// The enqueue path rolls back and surfaces it; no outbox record is
	// created.
	DomainRuleError struct {
		Code    string
		Message string
		Cause   error
	}

	InvalidStateTransitionError struct {
		From string
		To   string
	}

	MaxAttemptsExceededError struct {
		RecordID    string
		Attempts    int
		MaxAttempts int
	}
)

func (e *DomainRuleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
	}

	return e.Message
}

func (e *DomainRuleError) Unwrap() error {
	return e.Cause
}

func NewDomainRuleError(code, message string, cause error) *DomainRuleError {
	return &DomainRuleError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func NewValidationError(field, reason string) *DomainRuleError {
	return NewDomainRuleError(
		"VALIDATION_FAILED",
		fmt.Sprintf("invalid %s: %s", field, reason),
		nil,
	)
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

func (e *MaxAttemptsExceededError) Error() string {
	return fmt.Sprintf("max attempts exceeded for record %s: %d/%d", e.RecordID, e.Attempts, e.MaxAttempts)
}

// IsDomainRule reports whether err is a command rejection rather than an
// infrastructure fault.
func IsDomainRule(err error) bool {
	var ruleErr *DomainRuleError
	if errors.As(err, &ruleErr) {
		return true
	}

	var transitionErr *InvalidStateTransitionError

	return errors.As(err, &transitionErr)
}
