package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pijn/portmanager/pkg/config"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，如 PORTMANAGER_WEB_PORT 覆盖 web.port
const EnvPrefix = "PORTMANAGER"

var (
	configPath string
	logPath    string
)

// LoadConfig 从命令行参数加载配置
// 优先级：1. 命令行显式参数 > 2. 环境变量 > 3. 配置文件 > 4. 默认值
func LoadConfig(target any, opts ...config.Option) error {
	return LoadConfigArgs(os.Args[1:], target, opts...)
}

// LoadConfigArgs 同 LoadConfig，参数由调用方提供
// 支持 --config/-c 指定配置文件，--log.path 覆盖 log.output_path
func LoadConfigArgs(args []string, target any, opts ...config.Option) error {
	execDir, err := GetExecDir()
	if err != nil {
		return fmt.Errorf("failed to get executable directory: %w", err)
	}

	flags := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	cfgFlag := flags.StringP("config", "c", filepath.Join(execDir, "config.yaml"), "path to config file")
	logFlag := flags.String("log.path", "", "output path for logs")
	if err := flags.Parse(args); err != nil {
		return err
	}

	// Flag 显式指定 > 环境变量 PORTMANAGER_CONFIG > 可执行文件目录
	path := *cfgFlag
	if !flags.Changed("config") {
		if env := os.Getenv(EnvPrefix + "_CONFIG"); env != "" {
			path = env
		}
	}

	v := viper.New()
	base := []config.Option{config.WithViper(v), config.WithEnvPrefix(EnvPrefix)}
	mgr := config.NewManager(append(base, opts...)...)

	if err := mgr.LoadFile(path); err != nil {
		return err
	}
	if flags.Changed("log.path") {
		mgr.Set("log.output_path", *logFlag)
	}

	if err := mgr.Unmarshal(target); err != nil {
		return err
	}
	if err := config.Validate(target); err != nil {
		return err
	}

	configPath = path
	logPath = v.GetString("log.output_path")
	return nil
}

// GetExecDir 获取可执行文件所在目录（处理符号链接）
func GetExecDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	realPath, err := filepath.EvalSymlinks(execPath)
	if err != nil {
		return filepath.Dir(execPath), nil
	}
	return filepath.Dir(realPath), nil
}

// GetConfigPath 最终使用的配置文件路径
func GetConfigPath() string {
	return configPath
}

// GetLogPath 最终生效的日志路径
func GetLogPath() string {
	return logPath
}
