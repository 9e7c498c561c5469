package handler

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/pijn/portmanager/app/portmanager/internal/metrics"
	"github.com/pijn/portmanager/pkg/logger"
	"github.com/pijn/portmanager/pkg/metrics/system"
	"github.com/pijn/portmanager/pkg/registry"
	"github.com/pijn/portmanager/pkg/web"
	weberrors "github.com/pijn/portmanager/pkg/web/errors"
)

// StatusReporter 主机资源采样
type StatusReporter interface {
	Sample(ctx context.Context) (system.Stats, error)
}

// ShutdownScheduler 延迟停止进程
type ShutdownScheduler interface {
	ScheduleShutdown(delay time.Duration) bool
}

// RegistryHandler 注册表 HTTP 接口
type RegistryHandler struct {
	store   registry.Store
	status  StatusReporter
	control ShutdownScheduler
	grace   time.Duration
	metrics *metrics.RegistryMetrics
	logger  logger.Logger
}

// NewRegistryHandler 创建注册表处理器
// grace 为 /stop 响应之后到开始停止的间隔
func NewRegistryHandler(
	store registry.Store,
	status StatusReporter,
	control ShutdownScheduler,
	grace time.Duration,
	m *metrics.RegistryMetrics,
	l logger.Logger,
) *RegistryHandler {
	return &RegistryHandler{
		store:   store,
		status:  status,
		control: control,
		grace:   grace,
		metrics: m,
		logger:  l.Named("handler.registry"),
	}
}

// GetPortRequest 查询并上报请求
type GetPortRequest struct {
	ServiceName string `json:"service_name" binding:"required"`
	IP          string `json:"ip" binding:"required,ip|hostname_rfc1123"`
}

// Register 注册路由
func (h *RegistryHandler) Register(r gin.IRouter) {
	r.POST("/getport", h.GetPort)
	r.GET("/getport/:service_name", h.Lookup)
	r.GET("/services", h.List)
	r.GET("/status", h.Status)
	r.GET("/stop", h.Stop)
}

// GetPort 查询服务端口，同时记录调用方上报的 IP
// 服务不存在时不做任何修改；落盘成功后才返回成功
func (h *RegistryHandler) GetPort(c *gin.Context) {
	var req GetPortRequest
	if !web.BindJSON(c, &req) {
		return
	}

	ep, err := h.store.UpdateIP(c.Request.Context(), req.ServiceName, req.IP)
	if err != nil {
		h.metrics.Reports.WithLabelValues(resultOf(err)).Inc()
		h.fail(c, err, "service", req.ServiceName)
		return
	}
	h.metrics.Reports.WithLabelValues(metrics.ResultOK).Inc()

	h.logger.InfoContext(c.Request.Context(), "service reported",
		"service", ep.Name,
		"ip", req.IP,
		"port", ep.Port,
	)
	web.Success(c, ep.Port)
}

// Lookup 只查询服务端口，不修改注册表
func (h *RegistryHandler) Lookup(c *gin.Context) {
	name := c.Param("service_name")

	ep, err := h.store.Resolve(c.Request.Context(), name)
	if err != nil {
		h.metrics.Lookups.WithLabelValues(resultOf(err)).Inc()
		h.fail(c, err, "service", name)
		return
	}
	h.metrics.Lookups.WithLabelValues(metrics.ResultOK).Inc()
	web.Success(c, ep.Port)
}

// List 返回全部服务端点
func (h *RegistryHandler) List(c *gin.Context) {
	endpoints, err := h.store.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, endpoints)
}

// Status 返回运行时长与资源使用率
func (h *RegistryHandler) Status(c *gin.Context) {
	stats, err := h.status.Sample(c.Request.Context())
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "sample system status failed", "error", err)
		web.Error(c, weberrors.CodeInternalError, "status unavailable")
		return
	}
	web.Success(c, stats)
}

// Stop 先应答，再在 grace 之后优雅停止进程
func (h *RegistryHandler) Stop(c *gin.Context) {
	h.logger.WarnContext(c.Request.Context(), "stop requested",
		"peer", c.Request.RemoteAddr,
		"grace", h.grace.String(),
	)
	web.Success(c, nil)
	h.control.ScheduleShutdown(h.grace)
}

// fail 将存储错误映射为响应
func (h *RegistryHandler) fail(c *gin.Context, err error, kv ...interface{}) {
	ctx := c.Request.Context()
	fields := append(kv, "error", err)

	switch {
	case registry.IsNotFound(err):
		h.logger.InfoContext(ctx, "service not found", kv...)
		web.Error(c, weberrors.CodeNotFound, err.Error())
	case errors.Is(err, registry.ErrClosed):
		web.Error(c, weberrors.CodeUnavailable, "registry is shutting down")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.WarnContext(ctx, "request cancelled", fields...)
		web.Error(c, weberrors.CodeUnavailable, "request cancelled")
	case registry.IsPersistence(err):
		h.logger.ErrorContext(ctx, "registry persistence failed", fields...)
		web.Error(c, weberrors.CodeInternalError, "failed to persist registry, retry later")
	default:
		h.logger.ErrorContext(ctx, "registry operation failed", fields...)
		web.Error(c, weberrors.CodeInternalError, "internal error")
	}
}

func resultOf(err error) string {
	switch {
	case registry.IsNotFound(err):
		return metrics.ResultNotFound
	case errors.Is(err, registry.ErrClosed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return metrics.ResultUnavailable
	default:
		return metrics.ResultError
	}
}
