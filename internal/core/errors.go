package core

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every storage backend and the remote service.
// Callers classify failures with errors.Is against these sentinels.
var (
	ErrValidation     = errors.New("invalid expense")
	ErrNotFound       = errors.New("expense not found")
	ErrNetwork        = errors.New("network failure")
	ErrStore          = errors.New("storage failure")
	ErrNotImplemented = errors.New("not implemented")
)

func validationError(detail string) error {
	return fmt.Errorf("%w: %s", ErrValidation, detail)
}

// StoreError wraps an underlying storage engine failure so it matches
// ErrStore while keeping the engine's message.
func StoreError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStore, op, err)
}

// NetworkError wraps a transport failure so it matches ErrNetwork.
func NetworkError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrNetwork, op, err)
}
