package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type managerTestConfig struct {
	Name    string `mapstructure:"name"`
	LogsDir string `mapstructure:"logs_dir"`
	Web     struct {
		Host        string        `mapstructure:"host"`
		Port        int           `mapstructure:"port"`
		Workers     int           `mapstructure:"workers"`
		ReadTimeout time.Duration `mapstructure:"read_timeout"`
	} `mapstructure:"web"`
	Registry struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"registry"`
}

// writeConfigFile 在临时目录中写入配置文件
func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestManager_LoadYAML(t *testing.T) {
	path := writeConfigFile(t, "config.yaml", `
name: port_manager
logs_dir: /var/log/pm
web:
  host: 127.0.0.1
  port: 1030
  workers: 4
  read_timeout: 10s
registry:
  path: ./ports.json
`)

	mgr := NewManager()
	require.NoError(t, mgr.LoadFile(path))

	var cfg managerTestConfig
	require.NoError(t, mgr.Unmarshal(&cfg))
	assert.Equal(t, "port_manager", cfg.Name)
	assert.Equal(t, "/var/log/pm", cfg.LogsDir)
	assert.Equal(t, 1030, cfg.Web.Port)
	assert.Equal(t, 4, cfg.Web.Workers)
	assert.Equal(t, 10*time.Second, cfg.Web.ReadTimeout)
	assert.Equal(t, "./ports.json", cfg.Registry.Path)
}

func TestManager_LoadJSON(t *testing.T) {
	path := writeConfigFile(t, "config.json", `{"name":"pm","web":{"host":"0.0.0.0","port":1031,"workers":8}}`)

	mgr := NewManager()
	require.NoError(t, mgr.LoadFile(path))
	assert.Equal(t, "pm", mgr.GetString("name"))
	assert.Equal(t, 1031, mgr.GetInt("web.port"))

	var web struct {
		Host    string `mapstructure:"host"`
		Workers int    `mapstructure:"workers"`
	}
	require.NoError(t, mgr.UnmarshalKey("web", &web))
	assert.Equal(t, "0.0.0.0", web.Host)
	assert.Equal(t, 8, web.Workers)
}

func TestManager_LoadFileErrors(t *testing.T) {
	mgr := NewManager()

	err := mgr.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfigFileNotFound)

	err = mgr.LoadFile(writeConfigFile(t, "config.ini", "name=pm"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	err = mgr.LoadFile(writeConfigFile(t, "broken.json", "{not json"))
	assert.Error(t, err)
}

func TestManager_DefaultsEnvAndSet(t *testing.T) {
	path := writeConfigFile(t, "config.yaml", "web:\n  port: 1030\n")
	t.Setenv("PMTEST_WEB_WORKERS", "16")

	mgr := NewManager(
		WithDefaults(map[string]any{"web.workers": 4, "web.host": "127.0.0.1"}),
		WithEnvPrefix("PMTEST"),
	)
	require.NoError(t, mgr.LoadFile(path))
	mgr.Set("web.port", 2040)

	var cfg managerTestConfig
	require.NoError(t, mgr.Unmarshal(&cfg))
	assert.Equal(t, "127.0.0.1", cfg.Web.Host)
	assert.Equal(t, 16, cfg.Web.Workers)
	assert.Equal(t, 2040, cfg.Web.Port)
	assert.True(t, mgr.IsSet("web.host"))
	assert.Contains(t, mgr.AllSettings(), "web")
}
