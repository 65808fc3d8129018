package backend

import (
	"fmt"
	"log/slog"

	"simplefinance/internal/persistence/localstore"
	"simplefinance/internal/persistence/remote"
	"simplefinance/internal/persistence/sqlstore"
)

// Factory creates backends based on configuration.
type Factory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Create builds the backend named by config.Kind.
func (f *Factory) Create(config Config) (*Result, error) {
	if !config.Kind.IsValid() {
		return nil, fmt.Errorf("invalid backend kind: %s", config.Kind)
	}

	switch config.Kind {
	case LocalBackend:
		return f.createLocalBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case RemoteBackend:
		return f.createRemoteBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend kind: %s", config.Kind)
	}
}

func (f *Factory) createLocalBackend(config Config) (*Result, error) {
	store, err := localstore.Open(config.LocalDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize local store: %w", err)
	}

	f.logger.Info("Initialized local blob backend", "db_path", config.LocalDBPath)

	return &Result{Service: store, Cleanup: store.Close}, nil
}

func (f *Factory) createSQLiteBackend(config Config) (*Result, error) {
	store, err := sqlstore.Open(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite store: %w", err)
	}

	f.logger.Info("Initialized sqlite backend", "db_path", config.SQLiteDBPath)

	return &Result{Service: store, Cleanup: store.Close}, nil
}

func (f *Factory) createRemoteBackend(config Config) (*Result, error) {
	if config.RemoteBaseURL == "" {
		return nil, fmt.Errorf("remote backend requires a base URL")
	}
	store := remote.New(config.RemoteBaseURL, nil)

	f.logger.Info("Initialized remote backend", "base_url", config.RemoteBaseURL)

	return &Result{Service: store, Cleanup: nil}, nil
}
