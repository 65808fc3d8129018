package backend

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryCreatesEachKind(t *testing.T) {
	f := NewFactory(nil)
	dir := t.TempDir()

	cases := []Config{
		{Kind: LocalBackend, LocalDBPath: filepath.Join(dir, "expenses.kv")},
		{Kind: SQLiteBackend, SQLiteDBPath: ":memory:"},
		{Kind: RemoteBackend, RemoteBaseURL: "http://localhost:3000"},
	}
	for _, cfg := range cases {
		t.Run(cfg.Kind.String(), func(t *testing.T) {
			res, err := f.Create(cfg)
			require.NoError(t, err)
			require.NotNil(t, res.Service)
			assert.Empty(t, res.Service.Expenses())
			if res.Cleanup != nil {
				assert.NoError(t, res.Cleanup())
			}
		})
	}
}

func TestFactoryRejectsInvalidKind(t *testing.T) {
	f := NewFactory(nil)
	_, err := f.Create(Config{Kind: "sheets"})
	assert.Error(t, err)
}

func TestFactoryRemoteRequiresBaseURL(t *testing.T) {
	f := NewFactory(nil)
	_, err := f.Create(Config{Kind: RemoteBackend})
	assert.Error(t, err)
}

func TestKindIsValid(t *testing.T) {
	for _, k := range []Kind{LocalBackend, SQLiteBackend, RemoteBackend} {
		assert.True(t, k.IsValid(), k)
	}
	assert.False(t, Kind("").IsValid())
	assert.False(t, Kind("sheets").IsValid())
}
