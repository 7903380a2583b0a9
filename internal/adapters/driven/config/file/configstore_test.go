package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typetide/typetide/internal/core/domain"
	"github.com/typetide/typetide/internal/core/ports/driven"
)

func TestLoadDefaults(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	// No file yet: defaults apply.
	cfg, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultDebounce, cfg.Orchestrator.Debounce)
	assert.Equal(t, domain.DefaultBatchWindow, cfg.Loader.BatchWindow)
	assert.Equal(t, domain.DefaultInferenceTimeout, cfg.Resolver.InferenceTimeout)
	assert.False(t, cfg.Inference.IsConfigured())
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	want := driven.Config{
		Inference: domain.InferenceSettings{
			Provider: domain.AIProviderAnthropic,
			APIKey:   "test-key",
			Model:    "claude-3-5-haiku-latest",
			Timeout:  20 * time.Second,
		},
		Resolver: domain.ResolverSettings{
			CapSensitive:     true,
			CacheTTL:         24 * time.Hour,
			InferenceTimeout: 10 * time.Second,
			InferenceRPS:     2.5,
		},
		Orchestrator: domain.OrchestratorSettings{Debounce: 150 * time.Millisecond},
		Loader:       domain.LoaderSettings{BatchWindow: 25 * time.Millisecond},
		VettedPath:   "/tmp/vetted.toml",
		DataDir:      "/tmp/data",
	}

	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveRestrictsPermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Save(driven.Config{}))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadBadDuration(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
[orchestrator]
debounce = "soon"
`), 0o600))

	_, err = store.Load()
	assert.Error(t, err)
}

func TestLoadInvalidTOML(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not = [valid"), 0o600))

	_, err = store.Load()
	assert.Error(t, err)
}
