// Package lru 带过期时间的 LRU 缓存，用于按 key 保存短生命周期对象（如限流器）
package lru

import (
	"container/list"
	"sync"
	"time"

	"github.com/pijn/portmanager/pkg/config"
	"github.com/pijn/portmanager/pkg/util/conc"
)

// Config LRU 配置
type Config struct {
	// MaxSize 最大条目数，超出后淘汰最久未访问的条目
	MaxSize int `mapstructure:"max_size"`
	// TTL 条目空闲过期时间，每次命中会续期
	TTL time.Duration `mapstructure:"ttl"`
	// CleanupInterval 后台清理周期
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		MaxSize:         10000,
		TTL:             10 * time.Minute,
		CleanupInterval: time.Minute,
	}
}

// Cache 内存 LRU 缓存
type Cache[K comparable, V any] struct {
	config *Config

	mu    sync.Mutex
	order *list.List
	items map[K]*list.Element

	onEvict func(key K, value V)

	stopOnce sync.Once
	stopCh   chan struct{}
	done     *conc.Future[struct{}]
}

type item[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

// Option 缓存选项
type Option[K comparable, V any] func(*Cache[K, V])

// WithOnEvict 设置淘汰回调（持锁调用，回调内不得访问缓存）
func WithOnEvict[K comparable, V any](fn func(key K, value V)) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.onEvict = fn
	}
}

// New 创建缓存并启动后台清理
func New[K comparable, V any](cfg *Config, opts ...Option[K, V]) *Cache[K, V] {
	newCfg, _ := config.MergeConfig(DefaultConfig(), cfg)

	c := &Cache[K, V]{
		config: newCfg,
		order:  list.New(),
		items:  make(map[K]*list.Element),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.done = conc.Go(func() (struct{}, error) {
		ticker := time.NewTicker(c.config.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				c.purge(now)
			case <-c.stopCh:
				return struct{}{}, nil
			}
		}
	})
	return c
}

// Get 获取值，过期条目视为不存在
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if elem, ok := c.items[key]; ok {
		it := elem.Value.(*item[K, V])
		if now.Before(it.expiresAt) {
			it.expiresAt = now.Add(c.config.TTL)
			c.order.MoveToFront(elem)
			return it.value, true
		}
		c.remove(elem)
	}

	var zero V
	return zero, false
}

// GetOrCreate 原子地获取或创建
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if elem, ok := c.items[key]; ok {
		it := elem.Value.(*item[K, V])
		if now.Before(it.expiresAt) {
			it.expiresAt = now.Add(c.config.TTL)
			c.order.MoveToFront(elem)
			return it.value
		}
		c.remove(elem)
	}

	value := create()
	c.items[key] = c.order.PushFront(&item[K, V]{
		key:       key,
		value:     value,
		expiresAt: now.Add(c.config.TTL),
	})
	for c.order.Len() > c.config.MaxSize {
		c.remove(c.order.Back())
	}
	return value
}

// Delete 删除条目
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
}

// Len 当前条目数（含尚未清理的过期条目）
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Close 停止后台清理，可重复调用
func (c *Cache[K, V]) Close() error {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
	_, err := c.done.Await()
	return err
}

func (c *Cache[K, V]) purge(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*item[K, V]).expiresAt) {
			c.remove(elem)
		}
		elem = prev
	}
}

func (c *Cache[K, V]) remove(elem *list.Element) {
	it := c.order.Remove(elem).(*item[K, V])
	delete(c.items, it.key)
	if c.onEvict != nil {
		c.onEvict(it.key, it.value)
	}
}
