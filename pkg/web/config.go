package web

import (
	"net"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pijn/portmanager/pkg/web/middleware"
)

// Config Web 服务配置
type Config struct {
	Host          string        `mapstructure:"host" json:"host"`
	Port          int           `mapstructure:"port" json:"port" validate:"gte=0,lte=65535"`
	Workers       int           `mapstructure:"workers" json:"workers" validate:"gte=0"`
	Mode          string        `mapstructure:"mode" json:"mode" validate:"omitempty,oneof=debug release test"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout" json:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout" json:"write_timeout"`
	ShutdownGrace time.Duration `mapstructure:"shutdown_grace" json:"shutdown_grace"`
	StopTimeout   time.Duration `mapstructure:"stop_timeout" json:"stop_timeout"`
	EnableCORS    bool          `mapstructure:"enable_cors" json:"enable_cors"`

	RateLimit middleware.RateLimitConfig `mapstructure:"rate_limit" json:"rate_limit"`

	EnableTLS bool   `mapstructure:"enable_tls" json:"enable_tls"`
	CertFile  string `mapstructure:"cert_file" json:"cert_file"`
	KeyFile   string `mapstructure:"key_file" json:"key_file"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Host:          "127.0.0.1",
		Port:          1030,
		Workers:       4,
		Mode:          gin.ReleaseMode,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		ShutdownGrace: time.Second,
		StopTimeout:   5 * time.Second,
		RateLimit:     *middleware.DefaultRateLimitConfig(),
	}
}

// Addr 监听地址
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// withDefaults 返回副本，未设置的模式与超时取默认值
// Port 为 0 表示随机端口，Workers 为 0 表示不使用协程池
func (c *Config) withDefaults() *Config {
	out := *c
	def := DefaultConfig()
	if out.Mode == "" {
		out.Mode = def.Mode
	}
	if out.StopTimeout <= 0 {
		out.StopTimeout = def.StopTimeout
	}
	if out.ShutdownGrace < 0 {
		out.ShutdownGrace = 0
	}
	return &out
}
