package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/pijn/portmanager/pkg/config"
	"github.com/pijn/portmanager/pkg/logger"
	"github.com/pijn/portmanager/pkg/util/conc"
	"github.com/pijn/portmanager/pkg/web/metrics"
	"github.com/pijn/portmanager/pkg/web/middleware"
	"github.com/pijn/portmanager/pkg/web/validator"
)

// Option Server 选项
type Option func(*Server)

// WithMetrics 挂载 HTTP 指标中间件
func WithMetrics(m *metrics.HTTPMetrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithMiddleware 在基础中间件之后、限流与协程池之前挂载的中间件
func WithMiddleware(mw ...gin.HandlerFunc) Option {
	return func(s *Server) { s.extra = append(s.extra, mw...) }
}

// Server Web 服务，实现 app.Server
//
// 中间件顺序：RequestID -> Logger -> Recovery -> Metrics -> CORS -> 自定义 -> RateLimit -> Workers
type Server struct {
	engine  *gin.Engine
	config  *Config
	logger  logger.Logger
	metrics *metrics.HTTPMetrics
	extra   []gin.HandlerFunc

	pool    *conc.Pool[struct{}]
	limiter *middleware.RateLimiter

	started  atomic.Bool
	server   *http.Server
	listener net.Listener
	serving  *conc.Future[struct{}]
}

// NewServer 创建 Web 服务
func NewServer(cfg *Config, l logger.Logger, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	newCfg := cfg.withDefaults()
	if err := config.Validate(newCfg); err != nil {
		return nil, err
	}
	if l == nil {
		l = logger.Default()
	}

	s := &Server{
		config: newCfg,
		logger: l.Named("web.server"),
	}
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(newCfg.Mode)
	validator.Init()

	engine := gin.New()
	// 不信任任何代理头，ClientIP 始终为传输层对端地址
	if err := engine.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(l.Named("web.access")))
	engine.Use(middleware.Recovery(l.Named("web.recovery"), true))
	if s.metrics != nil {
		engine.Use(middleware.Metrics(s.metrics))
	}
	if newCfg.EnableCORS {
		engine.Use(middleware.CORS())
	}
	engine.Use(s.extra...)
	if newCfg.RateLimit.Enabled {
		s.limiter = middleware.NewRateLimiter(l.Named("web.ratelimit"), &newCfg.RateLimit)
		engine.Use(middleware.RateLimit(s.limiter))
	}
	if newCfg.Workers > 0 {
		s.pool = conc.NewPool[struct{}](newCfg.Workers)
		engine.Use(middleware.Workers(s.pool, s.logger))
	}

	s.engine = engine
	return s, nil
}

// Router 返回 Gin 引擎，用于注册路由
func (s *Server) Router() *gin.Engine {
	return s.engine
}

// Handler 返回 http.Handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Config 返回生效配置
func (s *Server) Config() *Config {
	return s.config
}

// Addr 实际监听地址，未启动时返回 nil
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start 同步绑定端口后在后台处理请求，绑定失败直接返回错误
func (s *Server) Start() error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrServerAlreadyStarted
	}
	if s.config.EnableTLS && (s.config.CertFile == "" || s.config.KeyFile == "") {
		return ErrTLSConfig
	}

	addr := s.config.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("web: listen on %s: %w", addr, err)
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:        s.engine,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	s.serving = conc.Go(func() (struct{}, error) {
		var err error
		if s.config.EnableTLS {
			err = s.server.ServeTLS(ln, s.config.CertFile, s.config.KeyFile)
		} else {
			err = s.server.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped unexpectedly", "error", err)
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	s.logger.Info("http server listening",
		"addr", ln.Addr().String(),
		"tls", s.config.EnableTLS,
		"workers", s.config.Workers,
	)
	return nil
}

// Stop 优雅停止：等待进行中的请求完成（最长 StopTimeout），然后释放协程池
func (s *Server) Stop() error {
	var err error
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.StopTimeout)
		defer cancel()

		if shutdownErr := s.server.Shutdown(ctx); shutdownErr != nil {
			err = fmt.Errorf("web: forced shutdown: %w", shutdownErr)
			_ = s.server.Close()
		}
		if _, serveErr := s.serving.Await(); serveErr != nil && err == nil {
			err = serveErr
		}
	}

	if s.limiter != nil {
		_ = s.limiter.Close()
	}
	if s.pool != nil {
		s.pool.Release()
	}

	s.logger.Info("http server stopped")
	return err
}
