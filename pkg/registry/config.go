package registry

import "os"

// defaultFileMode 文档不存在且未配置权限时使用
const defaultFileMode os.FileMode = 0o644

// Config 注册表存储配置
type Config struct {
	// Path 注册表文档路径
	Path string `mapstructure:"path" json:"path" validate:"required"`
	// FileMode 重写文档时设置的权限，为 0 时沿用现有文件的权限
	FileMode uint32 `mapstructure:"file_mode" json:"file_mode" validate:"lte=511"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Path: "ports.json",
	}
}
