package prometheus

// Config Prometheus 配置
type Config struct {
	// 命名空间（应用名称）
	Namespace string `mapstructure:"namespace" json:"namespace" validate:"required"`

	// 子系统（可选）
	Subsystem string `mapstructure:"subsystem" json:"subsystem"`

	// 指标路径
	Path string `mapstructure:"path" json:"path"`

	// 是否注册 Go 运行时采集器
	EnableGoCollector bool `mapstructure:"enable_go_collector" json:"enable_go_collector"`

	// 是否注册进程采集器
	EnableProcessCollector bool `mapstructure:"enable_process_collector" json:"enable_process_collector"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Namespace:              "portmanager",
		Path:                   "/metrics",
		EnableGoCollector:      true,
		EnableProcessCollector: true,
	}
}
