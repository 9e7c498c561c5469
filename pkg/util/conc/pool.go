// Package conc 基于 ants 的协程池与 Future 封装
package conc

import (
	"runtime"

	"github.com/panjf2000/ants/v2"
)

// poolOption 协程池选项
type poolOption struct {
	preAlloc    bool
	nonblocking bool
}

// PoolOption 协程池配置函数
type PoolOption func(*poolOption)

// WithPreAlloc 是否预分配 worker 队列
func WithPreAlloc(preAlloc bool) PoolOption {
	return func(o *poolOption) { o.preAlloc = preAlloc }
}

// WithNonblocking 池满时是否立即返回错误（默认阻塞等待空闲 worker）
func WithNonblocking(nonblocking bool) PoolOption {
	return func(o *poolOption) { o.nonblocking = nonblocking }
}

// Pool 固定大小的协程池，任务结果通过 Future 返回
type Pool[T any] struct {
	inner *ants.Pool
}

// NewPool 创建容量为 size 的协程池
func NewPool[T any](size int, opts ...PoolOption) *Pool[T] {
	o := &poolOption{}
	for _, opt := range opts {
		opt(o)
	}
	if size <= 0 {
		size = runtime.NumCPU()
	}

	inner, err := ants.NewPool(size,
		ants.WithPreAlloc(o.preAlloc),
		ants.WithNonblocking(o.nonblocking),
	)
	if err != nil {
		// 仅在 size 非法时出错，上面已经兜底
		panic(err)
	}
	return &Pool[T]{inner: inner}
}

// NewDefaultPool 创建容量为 CPU 核数的协程池
func NewDefaultPool[T any]() *Pool[T] {
	return NewPool[T](runtime.NumCPU())
}

// Submit 提交任务
// 池已释放或非阻塞模式下池满时，返回的 Future 立即以错误完成
func (p *Pool[T]) Submit(fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	if err := p.inner.Submit(func() { f.run(fn) }); err != nil {
		var zero T
		f.complete(zero, err)
	}
	return f
}

// Cap 池容量
func (p *Pool[T]) Cap() int {
	return p.inner.Cap()
}

// Running 正在执行的任务数
func (p *Pool[T]) Running() int {
	return p.inner.Running()
}

// Release 释放协程池
func (p *Pool[T]) Release() {
	p.inner.Release()
}
