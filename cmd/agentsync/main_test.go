package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openmined/agentsync/internal/reconcile"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// subcommand attaches sub to a fresh root carrying the persistent flags and
// parses args against it.
func subcommand(t *testing.T, sub *cobra.Command, args ...string) *cobra.Command {
	t.Helper()
	root := &cobra.Command{Use: "agentsync"}
	addPersistentFlags(root)
	root.AddCommand(sub)
	require.NoError(t, sub.ParseFlags(args))
	return sub
}

func TestLoadConfig_FileEnvAndFlags(t *testing.T) {
	project := t.TempDir()
	configDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(`
strategy: priority
priority: [claude, project]
backup_suffix: .bak
`), 0o644))

	t.Setenv("AGENTSYNC_CONFIG_DIR", configDir)
	t.Setenv("AGENTSYNC_LINK", "true")

	cmd := subcommand(t, newSyncCmd(), "--project", project, "--strategy", "merge")
	cfg, err := loadConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(configDir, "config.yaml"), cfg.Path)
	assert.Equal(t, project, cfg.ProjectDir)
	assert.Equal(t, "merge", cfg.Strategy, "flag beats config file")
	assert.Equal(t, []string{"claude", "project"}, cfg.Priority)
	assert.Equal(t, ".bak", cfg.BackupSuffix)
	assert.True(t, cfg.Link, "env applies")
	assert.Equal(t, filepath.Join(configDir, "clients.yaml"), cfg.ClientsFile)
	assert.Equal(t, filepath.Join(configDir, "manifest.db"), cfg.ManifestPath)
	assert.Equal(t, "project", cfg.LocalClient)
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	project := t.TempDir()
	file := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte("local_client: claude\n"), 0o644))
	t.Setenv("AGENTSYNC_CONFIG_DIR", t.TempDir())

	cmd := subcommand(t, newPlanCmd(), "--project", project, "--config", file)
	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, file, cfg.Path)
	assert.Equal(t, "claude", cfg.LocalClient)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("AGENTSYNC_CONFIG_DIR", t.TempDir())

	cmd := subcommand(t, newPlanCmd(), "--project", t.TempDir(), "--strategy", "coin-flip")
	_, err := loadConfig(cmd)
	require.ErrorIs(t, err, reconcile.ErrInvalidOptions)

	cmd = subcommand(t, newPlanCmd(), "--project", filepath.Join(t.TempDir(), "missing"))
	_, err = loadConfig(cmd)
	require.Error(t, err)
}

func TestResolveProjectDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	nested := filepath.Join(root, "pkg", "deep")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cmd := subcommand(t, newScanCmd())
	got, err := resolveProjectDir(cmd)
	require.NoError(t, err)
	want, _ := filepath.EvalSymlinks(root)
	gotReal, _ := filepath.EvalSymlinks(got)
	assert.Equal(t, want, gotReal)

	t.Setenv("AGENTSYNC_PROJECT_DIR", nested)
	got, err = resolveProjectDir(cmd)
	require.NoError(t, err)
	assert.Equal(t, nested, got)

	explicit := t.TempDir()
	cmd = subcommand(t, newScanCmd(), "--project", explicit)
	got, err = resolveProjectDir(cmd)
	require.NoError(t, err)
	assert.Equal(t, explicit, got)
}
