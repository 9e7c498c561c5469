// Package prometheus 独立 Registry 的 Prometheus 客户端，指标通过 Handler 挂到业务 HTTP 服务
package prometheus

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/pijn/portmanager/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Client Prometheus 客户端
type Client struct {
	config   *Config
	registry *prometheus.Registry

	mu      sync.Mutex
	metrics map[string]prometheus.Collector

	closed atomic.Bool
}

// New 创建 Prometheus 客户端
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if cfg.Path == "" {
		cfg.Path = DefaultConfig().Path
	}

	c := &Client{
		config:   cfg,
		registry: prometheus.NewRegistry(),
		metrics:  make(map[string]prometheus.Collector),
	}

	if cfg.EnableGoCollector {
		c.registry.MustRegister(collectors.NewGoCollector())
	}
	if cfg.EnableProcessCollector {
		c.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	return c, nil
}

// Registry 底层 Registry，用于注册自定义采集器
func (c *Client) Registry() *prometheus.Registry {
	return c.registry
}

// Handler 返回暴露指标的 HTTP Handler
func (c *Client) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Config 获取配置
func (c *Client) Config() *Config {
	return c.config
}

// Close 关闭客户端，之后不能再创建指标
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}
	return nil
}

// IsClosed 检查客户端是否已关闭
func (c *Client) IsClosed() bool {
	return c.closed.Load()
}
