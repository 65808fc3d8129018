// Package backend selects and constructs a persistence backend at startup.
// Callers receive an explicitly owned Service handle plus its cleanup
// function; nothing here is a process-wide singleton.
package backend

import (
	"simplefinance/internal/persistence"
)

// CleanupFunc releases the resources behind a backend.
type CleanupFunc func() error

// Result contains the backend instance and optional cleanup function.
type Result struct {
	Service persistence.Service
	Cleanup CleanupFunc
}

// Config holds configuration for backend creation.
type Config struct {
	Kind Kind

	// Local key-value blob store
	LocalDBPath string

	// Embedded relational store
	SQLiteDBPath string

	// Remote CRUD service
	RemoteBaseURL string
}

// Kind identifies a persistence backend implementation.
type Kind string

const (
	LocalBackend  Kind = "local"
	SQLiteBackend Kind = "sqlite"
	RemoteBackend Kind = "remote"
)

// String implements fmt.Stringer
func (k Kind) String() string {
	return string(k)
}

// IsValid returns true if the backend kind is valid.
func (k Kind) IsValid() bool {
	switch k {
	case LocalBackend, SQLiteBackend, RemoteBackend:
		return true
	default:
		return false
	}
}
