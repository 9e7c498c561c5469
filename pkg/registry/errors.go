package registry

import (
	"github.com/cockroachdb/errors"
)

// 以下错误都通过 errors.Mark 附加到具体错误上，且可能叠加多层标记，
// 判断时须使用 github.com/cockroachdb/errors 的 errors.Is，
// 或 IsNotFound / IsPersistence / IsMalformed。标准库 errors.Is 无法识别内层标记。
var (
	// ErrNotFound 服务未注册
	ErrNotFound = errors.New("registry: service not found")

	// ErrPersistence 持久化存储不可读、不可写或内容损坏
	ErrPersistence = errors.New("registry: persistence failure")

	// ErrMalformed 注册表文档格式错误，同时带有 ErrPersistence 标记
	ErrMalformed = errors.New("registry: malformed document")

	// ErrClosed 存储已关闭
	ErrClosed = errors.New("registry: store closed")
)

// notFound 构造带服务名的 ErrNotFound
func notFound(name string) error {
	return errors.Mark(errors.Newf("service '%s' not found", name), ErrNotFound)
}

// persistenceError 包装存储层错误
func persistenceError(err error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrPersistence)
}

// malformed 构造文档格式错误
func malformed(format string, args ...interface{}) error {
	return errors.Mark(errors.Mark(errors.Newf(format, args...), ErrMalformed), ErrPersistence)
}

// IsNotFound 是否为服务未注册
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsPersistence 是否为持久化错误
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// IsMalformed 是否为文档格式错误
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformed)
}
