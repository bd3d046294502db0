package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeper_RemovesOnlyStaleFiles(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "spool-old.png")
	fresh := filepath.Join(dir, "spool-new.png")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("new"), 0o644))
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	sub := filepath.Join(dir, "keepdir")
	require.NoError(t, os.Mkdir(sub, 0o755))

	s, err := NewSweeper(dir, time.Hour, "@every 10m", zerolog.Nop())
	require.NoError(t, err)
	s.Sweep()

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale file should be removed")
	_, err = os.Stat(fresh)
	assert.NoError(t, err, "fresh file should survive")
	_, err = os.Stat(sub)
	assert.NoError(t, err, "directories are never swept")
}

func TestNewSweeper_BadSchedule(t *testing.T) {
	_, err := NewSweeper(t.TempDir(), time.Hour, "not a schedule", zerolog.Nop())
	assert.Error(t, err)
}

func TestSweeper_MissingDirIsHarmless(t *testing.T) {
	s, err := NewSweeper(filepath.Join(t.TempDir(), "gone"), time.Hour, "@hourly", zerolog.Nop())
	require.NoError(t, err)
	s.Sweep()
}
