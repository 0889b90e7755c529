package statefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreatesRunDirectoryAndEventsSubdir(t *testing.T) {
	root := t.TempDir()
	s, err := New(root, "wf_0101_abc")
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(s.Dir(), "events"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestMarkStartedThenCompletedOverwritesStatus(t *testing.T) {
	s, err := New(t.TempDir(), "wf_0101_abc")
	require.NoError(t, err)

	s.MarkStarted()
	body, err := os.ReadFile(filepath.Join(s.Dir(), "workflow_state.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(body), "started")

	s.MarkCompleted()
	body, err = os.ReadFile(filepath.Join(s.Dir(), "workflow_state.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(body), "completed")
}

func TestMarkErrorIncludesMessage(t *testing.T) {
	s, err := New(t.TempDir(), "wf_0101_abc")
	require.NoError(t, err)

	s.MarkError("team discovery failed")
	body, err := os.ReadFile(filepath.Join(s.Dir(), "workflow_state.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(body), "error: team discovery failed")
}

func TestWriteStageEventWritesNumberedFile(t *testing.T) {
	s, err := New(t.TempDir(), "wf_0101_abc")
	require.NoError(t, err)

	s.WriteStageEvent(1, "discovery", map[string]any{"success": true})

	body, err := os.ReadFile(filepath.Join(s.Dir(), "events", "01_discovery.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(body), "success: true")
}
