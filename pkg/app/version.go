package app

import "runtime"

// 构建时通过 -ldflags "-X github.com/pijn/portmanager/pkg/app.Version=v1.2.0" 注入
var (
	AppName = "portmanager"
	Version = "dev"
)

// versionFields 启动日志附带的版本字段
func versionFields() []interface{} {
	return []interface{}{
		"app", AppName,
		"version", Version,
		"go_version", runtime.Version(),
	}
}
