package main

import (
	"path/filepath"

	"github.com/pijn/portmanager/pkg/logger"
	"github.com/pijn/portmanager/pkg/metrics/system"
	"github.com/pijn/portmanager/pkg/prometheus"
	"github.com/pijn/portmanager/pkg/registry"
	"github.com/pijn/portmanager/pkg/security"
	"github.com/pijn/portmanager/pkg/web"
)

// Config 端口注册服务配置，启动时加载一次
type Config struct {
	// 进程名称，同时作为日志文件名前缀
	Name string `mapstructure:"name" validate:"required"`
	// 日志目录
	LogsDir string `mapstructure:"logs_dir"`

	Log        logger.Config         `mapstructure:"log"`
	Web        web.Config            `mapstructure:"web"`
	Registry   registry.Config       `mapstructure:"registry"`
	Access     security.OriginConfig `mapstructure:"access"`
	Status     system.Config         `mapstructure:"status"`
	Prometheus prometheus.Config     `mapstructure:"prometheus"`
}

// defaults 最低优先级的默认值，同时声明了可被 PORTMANAGER_* 环境变量覆盖的配置项
func defaults() map[string]any {
	webCfg := web.DefaultConfig()
	logCfg := logger.DefaultConfig()
	regCfg := registry.DefaultConfig()
	accessCfg := security.DefaultOriginConfig()
	statusCfg := system.DefaultConfig()
	promCfg := prometheus.DefaultConfig()

	return map[string]any{
		"name":     "port_manager_microservice",
		"logs_dir": "./logs",

		"log.level":                     string(logCfg.Level),
		"log.format":                    string(logger.JSONFormat),
		"log.enable_console":            true,
		"log.enable_file":               true,
		"log.output_path":               "",
		"log.rotation.type":             string(logger.RotationByTime),
		"log.rotation.rotation_time":    logCfg.Rotation.RotationTime,
		"log.rotation.max_age_time":     logCfg.Rotation.MaxAgeTime,
		"log.rotation.rotation_pattern": "_%d_%m_%Y.log",

		"web.host":                           webCfg.Host,
		"web.port":                           webCfg.Port,
		"web.workers":                        webCfg.Workers,
		"web.mode":                           webCfg.Mode,
		"web.read_timeout":                   webCfg.ReadTimeout,
		"web.write_timeout":                  webCfg.WriteTimeout,
		"web.shutdown_grace":                 webCfg.ShutdownGrace,
		"web.stop_timeout":                   webCfg.StopTimeout,
		"web.enable_cors":                    webCfg.EnableCORS,
		"web.rate_limit.enabled":             webCfg.RateLimit.Enabled,
		"web.rate_limit.requests_per_second": webCfg.RateLimit.RequestsPerSecond,
		"web.rate_limit.burst":               webCfg.RateLimit.Burst,
		"web.rate_limit.per_ip":              webCfg.RateLimit.PerIP,
		"web.rate_limit.max_limiters":        webCfg.RateLimit.MaxLimiters,
		"web.rate_limit.limiter_ttl":         webCfg.RateLimit.LimiterTTL,
		"web.enable_tls":                     false,

		"registry.path":      regCfg.Path,
		"registry.file_mode": regCfg.FileMode,

		"access.trust_proxy":   accessCfg.TrustProxy,
		"access.proxy_headers": accessCfg.ProxyHeaders,
		"access.extra_cidrs":   []string{},

		"status.collect_interval":  statusCfg.CollectInterval,
		"status.cpu_sample_window": statusCfg.CPUSampleWindow,
		"status.disk_paths":        []string{},

		"prometheus.namespace":                promCfg.Namespace,
		"prometheus.path":                     promCfg.Path,
		"prometheus.enable_go_collector":      promCfg.EnableGoCollector,
		"prometheus.enable_process_collector": promCfg.EnableProcessCollector,
	}
}

// logOutputPath 未显式配置时日志写入 <logs_dir>/<name>，按天轮换为 <name>_DD_MM_YYYY.log
func (c *Config) logOutputPath() string {
	if c.Log.OutputPath != "" {
		return c.Log.OutputPath
	}
	return filepath.Join(c.LogsDir, c.Name)
}
