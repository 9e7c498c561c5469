package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pijn/portmanager/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loadTarget struct {
	Name string `mapstructure:"name" validate:"required"`
	Web  struct {
		Port int `mapstructure:"port" validate:"gte=0,lte=65535"`
	} `mapstructure:"web"`
	Log struct {
		OutputPath string `mapstructure:"output_path"`
	} `mapstructure:"log"`
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigArgs(t *testing.T) {
	path := writeFile(t, "config.yaml", "name: pm\nweb:\n  port: 1030\n")
	t.Setenv(EnvPrefix+"_WEB_PORT", "2040")

	var cfg loadTarget
	err := LoadConfigArgs([]string{"-c", path, "--log.path", "/tmp/pm/pm"}, &cfg,
		config.WithDefaults(map[string]any{"log.output_path": ""}),
	)
	require.NoError(t, err)

	assert.Equal(t, "pm", cfg.Name)
	assert.Equal(t, 2040, cfg.Web.Port)
	assert.Equal(t, "/tmp/pm/pm", cfg.Log.OutputPath)
	assert.Equal(t, path, GetConfigPath())
	assert.Equal(t, "/tmp/pm/pm", GetLogPath())
}

func TestLoadConfigArgs_ConfigFromEnv(t *testing.T) {
	path := writeFile(t, "config.json", `{"name":"from-env"}`)
	t.Setenv(EnvPrefix+"_CONFIG", path)

	var cfg loadTarget
	require.NoError(t, LoadConfigArgs(nil, &cfg))
	assert.Equal(t, "from-env", cfg.Name)
}

func TestLoadConfigArgs_Errors(t *testing.T) {
	var cfg loadTarget

	err := LoadConfigArgs([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, &cfg)
	assert.ErrorIs(t, err, config.ErrConfigFileNotFound)

	path := writeFile(t, "config.yaml", "web:\n  port: 1030\n")
	err = LoadConfigArgs([]string{"--config", path}, &cfg)
	assert.ErrorIs(t, err, config.ErrValidationFailed)

	err = LoadConfigArgs([]string{"--bogus"}, &cfg)
	assert.Error(t, err)
}
