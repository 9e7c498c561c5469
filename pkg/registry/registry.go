// Package registry 服务端口注册表：服务名 -> 端点（IP + 端口）
package registry

import (
	"context"
	"net"
	"strconv"
)

// Endpoint 服务端点
type Endpoint struct {
	// Name 服务名称，注册表的 key，运行期不可变
	Name string `json:"name"`
	// IP 服务最近一次上报的地址，未上报时为 nil
	IP *string `json:"ip"`
	// Port 预分配端口，运行期不可变
	Port uint16 `json:"port"`
}

// HasIP 是否已上报地址
func (e Endpoint) HasIP() bool {
	return e.IP != nil && *e.IP != ""
}

// Address 返回 host:port，未上报地址时返回空串
func (e Endpoint) Address() string {
	if !e.HasIP() {
		return ""
	}
	return net.JoinHostPort(*e.IP, strconv.Itoa(int(e.Port)))
}

// Resolver 服务查询接口
type Resolver interface {
	// Resolve 查询服务端点，服务不存在时返回 ErrNotFound
	Resolve(ctx context.Context, name string) (Endpoint, error)
	// List 返回所有服务端点，按名称排序
	List(ctx context.Context) ([]Endpoint, error)
}

// Reporter 地址上报接口
type Reporter interface {
	// UpdateIP 覆盖服务的 IP 并同步落盘
	// 服务不存在返回 ErrNotFound，落盘失败返回 ErrPersistence，失败时注册表保持不变
	UpdateIP(ctx context.Context, name, ip string) (Endpoint, error)
}

// Store 注册表存储
type Store interface {
	Resolver
	Reporter
	// Len 已注册服务数量
	Len() int
	Close() error
}
