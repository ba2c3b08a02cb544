package apperrors

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the caller is not allowed to perform the operation.
var ErrForbidden = errors.New("operation not allowed")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// Settlement conflict types carried in HTTP 409 responses. A conflict is
// informational rather than fatal: RECENT_SETTLEMENT means another client
// already completed the same settlement, SETTLEMENT_IN_PROGRESS means a
// concurrent attempt currently holds the room lock.
const (
	ConflictRecentSettlement     = "RECENT_SETTLEMENT"
	ConflictSettlementInProgress = "SETTLEMENT_IN_PROGRESS"
)

// SettlementConflictError carries the typed payload of a 409 response so
// callers can distinguish "already settled by someone else" from "another
// settlement is in flight".
type SettlementConflictError struct {
	Type                    string     `json:"type"`
	Suggestion              string     `json:"suggestion"`
	LastSettlement          *time.Time `json:"lastSettlement,omitempty"`
	TimeSinceLastSettlement string     `json:"timeSinceLastSettlement,omitempty"`
}

func (e *SettlementConflictError) Error() string {
	return fmt.Sprintf("settlement conflict (%s): %s", e.Type, e.Suggestion)
}

// AsSettlementConflict reports whether err wraps a SettlementConflictError
// and returns it when it does.
func AsSettlementConflict(err error) (*SettlementConflictError, bool) {
	var conflict *SettlementConflictError
	if errors.As(err, &conflict) {
		return conflict, true
	}
	return nil, false
}
