// Package metrics 注册表服务业务指标
package metrics

import (
	"fmt"

	"github.com/pijn/portmanager/pkg/prometheus"
	prom "github.com/prometheus/client_golang/prometheus"
)

// 操作结果标签
const (
	ResultOK          = "ok"
	ResultNotFound    = "not_found"
	ResultError       = "error"
	ResultUnavailable = "unavailable"
)

// Sizer 返回已注册服务数量
type Sizer interface {
	Len() int
}


// RegistryMetrics 注册表服务指标
type RegistryMetrics struct {
	// Lookups 纯查询次数
	Lookups *prom.CounterVec
	// Reports 地址上报次数
	Reports *prom.CounterVec
	// AccessDenied 被来源过滤拒绝的请求数
	AccessDenied prom.Counter
}

// New 创建并注册指标
func New(client *prometheus.Client, store Sizer) (*RegistryMetrics, error) {
	lookups, err := client.NewCounter("lookups_total", "Service lookups by result.", []string{"result"})
	if err != nil {
		return nil, fmt.Errorf("register lookups_total: %w", err)
	}

	reports, err := client.NewCounter("reports_total", "Service IP reports by result.", []string{"result"})
	if err != nil {
		return nil, fmt.Errorf("register reports_total: %w", err)
	}

	denied, err := client.NewCounter("access_denied_total", "Requests rejected from untrusted origins.", nil)
	if err != nil {
		return nil, fmt.Errorf("register access_denied_total: %w", err)
	}

	if store != nil {
		if err := client.NewGaugeFunc("services", "Number of registered services.", func() float64 {
			return float64(store.Len())
		}); err != nil {
			return nil, fmt.Errorf("register services: %w", err)
		}
	}

	return &RegistryMetrics{
		Lookups:      lookups,
		Reports:      reports,
		AccessDenied: denied.WithLabelValues(),
	}, nil
}
