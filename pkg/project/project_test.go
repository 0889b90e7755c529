package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kadirpekel/refactorctl/pkg/configresolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromConfigCreatesWorkspaceAndOutput(t *testing.T) {
	root := t.TempDir()
	cfg := configresolver.NewNode(map[string]any{
		"project": map[string]any{
			"path":           root,
			"workspace_root": "ws",
			"output_root":    "out",
			"name":           "demo",
		},
	})

	p, err := FromConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "demo", p.Metadata.Name)
	assert.Equal(t, filepath.Join(root, "ws"), p.Paths.Workspace)
	assert.Equal(t, filepath.Join(root, "out"), p.Paths.Output)

	_, err = os.Stat(p.Paths.Workspace)
	assert.NoError(t, err)
	_, err = os.Stat(p.Paths.Output)
	assert.NoError(t, err)
}

func TestFromConfigDefaultsNameToRootBasename(t *testing.T) {
	root := t.TempDir()
	cfg := configresolver.NewNode(map[string]any{
		"project": map[string]any{"path": root},
	})

	p, err := FromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(root), p.Metadata.Name)
}

func TestResolvePathAndRelativePath(t *testing.T) {
	root := t.TempDir()
	cfg := configresolver.NewNode(map[string]any{
		"project": map[string]any{"path": root},
	})
	p, err := FromConfig(cfg)
	require.NoError(t, err)

	resolved := p.ResolvePath("src/main.go")
	assert.Equal(t, filepath.Join(root, "src/main.go"), resolved)
	assert.Equal(t, filepath.Join("src", "main.go"), p.RelativePath("src/main.go"))
}
