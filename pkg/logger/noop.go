package logger

import "context"

// nop 丢弃所有日志
type nop struct{}

var discard Logger = nop{}

// NewNoop 返回丢弃所有输出的 Logger
// 组件未注入 logger 时以它为默认值，测试中也用它屏蔽输出
func NewNoop() Logger {
	return discard
}

func (nop) Debug(string, ...interface{}) {}
func (nop) Info(string, ...interface{})  {}
func (nop) Warn(string, ...interface{})  {}
func (nop) Error(string, ...interface{}) {}

func (nop) DebugContext(context.Context, string, ...interface{}) {}
func (nop) InfoContext(context.Context, string, ...interface{})  {}
func (nop) WarnContext(context.Context, string, ...interface{})  {}
func (nop) ErrorContext(context.Context, string, ...interface{}) {}

func (n nop) Named(string) Logger              { return n }
func (n nop) WithFields(...interface{}) Logger { return n }
func (nop) Sync() error                        { return nil }
