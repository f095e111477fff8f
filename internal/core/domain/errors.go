package domain

import (
	"errors"
	"fmt"
)

// Closed error taxonomy observed by the guard's callers.
var (
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrNetwork                = errors.New("network error")
	ErrSessionExpired         = errors.New("session expired")
	ErrInsufficientPermission = errors.New("insufficient permission")
	ErrStoreUnavailable       = errors.New("store unavailable")
)

var (
	ErrLoginInProgress      = errors.New("login already in progress")
	ErrAlreadyAuthenticated = errors.New("already signed in")
	ErrNotAuthenticated     = errors.New("not authenticated")

	// ErrSuperseded marks an operation whose result was discarded because a
	// later logout or login replaced the session it started on.
	ErrSuperseded = errors.New("session superseded")
)

const (
	MsgInvalidCredentials = "Invalid email or password."
	MsgNetwork            = "Unable to sign in right now. Check your connection and try again."
	MsgSessionExpired     = "Your session has expired. Please sign in again."
	MsgNoStore            = "No store associated with your account."
)

// StoreUnavailableError carries the gate verdict that blocked a merchant.
type StoreUnavailableError struct {
	State  StoreGateState
	Status StoreStatus
}

func (e *StoreUnavailableError) Error() string {
	return e.Message()
}

// Message is the explanation shown in place of the blocked screen.
func (e *StoreUnavailableError) Message() string {
	if e.State == StoreGateMissing {
		return MsgNoStore
	}
	return fmt.Sprintf("Your store is %s. Store management is unavailable until it is active.", e.Status)
}

// NextSteps lists what the merchant can do about it.
func (e *StoreUnavailableError) NextSteps() []string {
	switch {
	case e.State == StoreGateMissing:
		return []string{"Contact support to have a store provisioned for your account."}
	case e.Status == StorePending:
		return []string{"Wait for your store to be approved.", "Contact support if approval takes longer than expected."}
	default:
		return []string{"Contact support to reactivate your store."}
	}
}

func (e *StoreUnavailableError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// UserMessage maps an error from the taxonomy to the text shown near the
// login action.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return MsgInvalidCredentials
	case errors.Is(err, ErrSessionExpired):
		return MsgSessionExpired
	default:
		return MsgNetwork
	}
}
