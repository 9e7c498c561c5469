package web

import "errors"

var (
	// ErrServerAlreadyStarted Server 已启动
	ErrServerAlreadyStarted = errors.New("web: server already started")

	// ErrTLSConfig TLS 已开启但证书未配置
	ErrTLSConfig = errors.New("web: tls enabled without cert_file/key_file")
)
