package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/pijn/portmanager/app/portmanager/internal/handler"
	"github.com/pijn/portmanager/app/portmanager/internal/metrics"
	"github.com/pijn/portmanager/pkg/app"
	"github.com/pijn/portmanager/pkg/config"
	"github.com/pijn/portmanager/pkg/logger"
	"github.com/pijn/portmanager/pkg/metrics/system"
	"github.com/pijn/portmanager/pkg/prometheus"
	"github.com/pijn/portmanager/pkg/registry"
	"github.com/pijn/portmanager/pkg/security"
	"github.com/pijn/portmanager/pkg/web"
	webmetrics "github.com/pijn/portmanager/pkg/web/metrics"
	"github.com/pijn/portmanager/pkg/web/middleware"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", app.AppName, err)
		os.Exit(1)
	}
}

func run() error {
	var cfg Config

	// 1. 加载配置
	if err := app.LoadConfig(&cfg, config.WithDefaults(defaults())); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. 初始化 Logger
	cfg.Log.OutputPath = cfg.logOutputPath()
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(l)

	a := app.NewBaseApp(
		app.WithName(cfg.Name),
		app.WithLogger(l),
		app.WithStopTimeout(cfg.Web.StopTimeout+cfg.Web.ShutdownGrace),
	)

	// 3. 加载注册表，失败即退出
	store, err := registry.Open(&cfg.Registry, registry.WithLogger(l))
	if err != nil {
		l.Error("failed to load registry", "path", cfg.Registry.Path, "error", err)
		_ = l.Sync()
		return err
	}

	// 4. 资源采样
	collector := system.New(&cfg.Status, system.WithLogger(l.Named("status")))
	collector.Start()

	// 5. 指标
	promClient, err := prometheus.New(&cfg.Prometheus)
	if err != nil {
		return fmt.Errorf("init prometheus: %w", err)
	}
	registryMetrics, err := metrics.New(promClient, store)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	// 6. 来源过滤
	filter, err := security.NewOriginFilter(&cfg.Access)
	if err != nil {
		return fmt.Errorf("init access filter: %w", err)
	}

	// 7. Web Server
	webServer, err := web.NewServer(&cfg.Web, l,
		web.WithMetrics(webmetrics.New(promClient.Registry())),
		web.WithMiddleware(middleware.TrustedOrigin(filter, l.Named("access"),
			middleware.WithOnDeny(func(*gin.Context) {
				registryMetrics.AccessDenied.Inc()
			}),
		)),
	)
	if err != nil {
		return fmt.Errorf("init web server: %w", err)
	}

	// 8. 注册路由
	handler.NewRegistryHandler(store, collector, a, cfg.Web.ShutdownGrace, registryMetrics, l).
		Register(webServer.Router())
	webServer.Router().GET(promClient.Config().Path, gin.WrapH(promClient.Handler()))

	// 9. 运行，停止时逆序关闭
	a.AppendServer(webServer)
	a.AppendCloser(promClient, collector, store)

	l.Info("port manager starting",
		"addr", cfg.Web.Addr(),
		"registry", cfg.Registry.Path,
		"services", store.Len(),
		"config", app.GetConfigPath(),
	)
	return a.Run()
}
