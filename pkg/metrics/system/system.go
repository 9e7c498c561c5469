// Package system 主机资源采样：运行时长、CPU、内存、磁盘使用率
package system

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/pijn/portmanager/pkg/config"
	"github.com/pijn/portmanager/pkg/logger"
	"github.com/pijn/portmanager/pkg/util/conc"
)

// Config 采样配置
type Config struct {
	// CollectInterval 后台采样周期，Start 之后 Sample 返回最近一次结果
	CollectInterval time.Duration `mapstructure:"collect_interval" json:"collect_interval"`
	// CPUSampleWindow CPU 使用率的测量窗口
	CPUSampleWindow time.Duration `mapstructure:"cpu_sample_window" json:"cpu_sample_window"`
	// DiskPaths 参与统计的挂载点，为空时统计全部物理分区
	DiskPaths []string `mapstructure:"disk_paths" json:"disk_paths"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		CollectInterval: 5 * time.Second,
		CPUSampleWindow: 200 * time.Millisecond,
	}
}

// Stats 采样结果，百分比取整到 0-100
type Stats struct {
	// Uptime 进程运行秒数
	Uptime uint64 `json:"uptime"`
	CPU    uint64 `json:"cpu"`
	RAM    uint64 `json:"ram"`
	Disk   uint64 `json:"disk"`
}

// Option 采集器选项
type Option func(*Collector)

// WithSource 替换数据源
func WithSource(src Source) Option {
	return func(c *Collector) { c.source = src }
}

// WithStartTime 设置运行时长的起点
func WithStartTime(t time.Time) Option {
	return func(c *Collector) { c.startedAt = t }
}

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(c *Collector) { c.logger = l }
}

// Collector 系统指标采集器
type Collector struct {
	config    *Config
	source    Source
	logger    logger.Logger
	startedAt time.Time

	mu      sync.RWMutex
	last    Stats
	hasLast bool
	running bool
	stopCh  chan struct{}
	done    *conc.Future[struct{}]
}

// New 创建采集器
func New(cfg *Config, opts ...Option) *Collector {
	newCfg, _ := config.MergeConfig(DefaultConfig(), cfg)

	c := &Collector{
		config:    newCfg,
		source:    NewHostSource(),
		logger:    logger.NewNoop(),
		startedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sample 返回当前资源使用情况
// 后台采样运行中且已有结果时直接返回缓存（运行时长实时计算），否则同步采样
func (c *Collector) Sample(ctx context.Context) (Stats, error) {
	c.mu.RLock()
	if c.running && c.hasLast {
		stats := c.last
		c.mu.RUnlock()
		stats.Uptime = c.uptime()
		return stats, nil
	}
	c.mu.RUnlock()

	return c.collect(ctx)
}

// Uptime 进程运行时长
func (c *Collector) Uptime() time.Duration {
	return time.Since(c.startedAt)
}

// Start 启动后台定期采样，重复调用无副作用
func (c *Collector) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.stopCh = make(chan struct{})
	stopCh := c.stopCh
	c.mu.Unlock()

	c.done = conc.Go(func() (struct{}, error) {
		c.refresh(stopCh)

		ticker := time.NewTicker(c.config.CollectInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.refresh(stopCh)
			case <-stopCh:
				return struct{}{}, nil
			}
		}
	})
}

// Stop 停止后台采样
func (c *Collector) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.hasLast = false
	close(c.stopCh)
	done := c.done
	c.mu.Unlock()

	_, _ = done.Await()
}

// Close 实现 app.Closer
func (c *Collector) Close() error {
	c.Stop()
	return nil
}

// refresh 采样并更新缓存，失败时保留上一次结果
func (c *Collector) refresh(stopCh <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	conc.Go(func() (struct{}, error) {
		select {
		case <-stopCh:
			cancel()
		case <-ctx.Done():
		}
		return struct{}{}, nil
	})

	stats, err := c.collect(ctx)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Warn("system stats collection failed", "error", err)
		}
		return
	}

	c.mu.Lock()
	if c.running {
		c.last = stats
		c.hasLast = true
	}
	c.mu.Unlock()
}

func (c *Collector) collect(ctx context.Context) (Stats, error) {
	stats := Stats{Uptime: c.uptime()}

	cpuPct, cpuErr := c.source.CPUPercent(ctx, c.config.CPUSampleWindow)
	memPct, memErr := c.source.MemoryPercent(ctx)
	diskPct, diskErr := c.source.DiskPercent(ctx, c.config.DiskPaths)
	if err := errors.Join(cpuErr, memErr, diskErr); err != nil {
		return Stats{}, err
	}

	stats.CPU = roundPercent(cpuPct)
	stats.RAM = roundPercent(memPct)
	stats.Disk = roundPercent(diskPct)
	return stats, nil
}

func (c *Collector) uptime() uint64 {
	secs := time.Since(c.startedAt) / time.Second
	if secs < 0 {
		return 0
	}
	return uint64(secs)
}

// roundPercent 四舍五入并限制在 0-100
func roundPercent(p float64) uint64 {
	switch {
	case math.IsNaN(p) || p <= 0:
		return 0
	case p >= 100:
		return 100
	default:
		return uint64(math.Round(p))
	}
}
