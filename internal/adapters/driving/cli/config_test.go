package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/glaximini/internal/adapters/driven/config/file"
)

func TestConfigCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0, len(configCmd.Commands()))
	for _, cmd := range configCmd.Commands() {
		names = append(names, cmd.Name())
	}

	assert.ElementsMatch(t, []string{"init", "show"}, names)
}

func TestConfigInit_WritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glaximini", "config.toml")

	out, err := execute(t, "--config", path, "config", "init")

	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)
	loaded, err := file.Load(path)
	require.NoError(t, err)
	assert.Equal(t, file.Defaults(), loaded)
}

func TestConfigInit_RefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nlisten = \":1234\"\n"), 0600))

	_, err := execute(t, "--config", path, "config", "init")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), ":1234")
}

func TestConfigInit_Force(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nlisten = \":1234\"\n"), 0600))

	_, err := execute(t, "--config", path, "config", "init", "--force")

	require.NoError(t, err)
	loaded, err := file.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", loaded.Server.Listen)
}

func TestConfigShow_PrintsEffectiveSettings(t *testing.T) {
	t.Setenv("GLAXIMINI_DISCOVERY_INSTANCE", "studio-b")

	out, err := execute(t, "--config", filepath.Join(t.TempDir(), "none.toml"), "config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "[server]")
	assert.Contains(t, out, "studio-b")
	assert.Contains(t, out, "none.toml")
}
