package conc

import (
	"fmt"
)

// PanicError 任务执行过程中发生的 panic
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("conc: task panicked: %v", e.Value)
}

// Future 异步任务结果
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) run(fn func() (T, error)) {
	var (
		value T
		err   error
	)
	defer func() {
		if r := recover(); r != nil {
			var zero T
			f.complete(zero, &PanicError{Value: r})
			return
		}
		f.complete(value, err)
	}()
	value, err = fn()
}

func (f *Future[T]) complete(value T, err error) {
	f.value = value
	f.err = err
	close(f.done)
}

// Inner 返回完成信号 channel
func (f *Future[T]) Inner() <-chan struct{} {
	return f.done
}

// Await 阻塞等待结果
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.value, f.err
}

// Go 在独立协程中执行任务
func Go[T any](fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	go f.run(fn)
	return f
}

// AwaitAll 等待所有 Future 完成，返回第一个错误
func AwaitAll[T any](futures ...*Future[T]) error {
	var firstErr error
	for _, f := range futures {
		if _, err := f.Await(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
