package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/taoyao-code/cij-gateway/internal/api"
	cfgpkg "github.com/taoyao-code/cij-gateway/internal/config"
	"github.com/taoyao-code/cij-gateway/internal/health"
	"github.com/taoyao-code/cij-gateway/internal/httpserver"
	"github.com/taoyao-code/cij-gateway/internal/logging"
	"github.com/taoyao-code/cij-gateway/internal/metrics"
	"github.com/taoyao-code/cij-gateway/internal/migrate"
	"github.com/taoyao-code/cij-gateway/internal/poller"
	"github.com/taoyao-code/cij-gateway/internal/printer"
	"github.com/taoyao-code/cij-gateway/internal/protocol/s8"
	"github.com/taoyao-code/cij-gateway/internal/storage"
	"github.com/taoyao-code/cij-gateway/internal/storage/gormrepo"
	pgstorage "github.com/taoyao-code/cij-gateway/internal/storage/pg"
	redisstorage "github.com/taoyao-code/cij-gateway/internal/storage/redis"
)

func main() {
	// 1) 加载配置
	cfg, err := cfgpkg.Load("")
	if err != nil {
		panic(err)
	}

	// 2) 初始化日志
	logger, err := logging.InitLogger(cfg.Logging, cfg.App.Name)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	log := zap.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3) 指标注册与处理器
	reg := metrics.NewRegistry()
	appm := metrics.NewAppMetrics(reg)
	metricsHandler := metrics.Handler(reg)

	// 4) 喷码机会话
	tr := printer.NewTCPTransport(cfg.Printer.Addr,
		cfg.Printer.DialTimeout, cfg.Printer.ReadTimeout, cfg.Printer.WriteTimeout)
	tr.SetLogger(log)
	tr.SetMetrics(appm)

	sess := printer.NewSession(tr, log)
	sess.SetMetrics(appm)
	sess.SetLimiter(rate.NewLimiter(rate.Limit(cfg.Printer.CommandRate), cfg.Printer.CommandBurst))

	// 5) 故障分级表
	sevMap := s8.DefaultSeverityMap()
	if cfg.Printer.SeverityMapFile != "" {
		sevMap, err = s8.LoadSeverityMap(cfg.Printer.SeverityMapFile)
		if err != nil {
			log.Fatal("severity map load error", zap.Error(err))
		}
	}

	agg := health.NewAggregator(health.NewPrinterChecker(sess))

	// 6) 数据库（可选）
	var repo storage.HistoryRepo
	var statsRepo *pgstorage.StatsRepo
	if cfg.Database.Enable {
		pool, err := pgstorage.NewPool(ctx, cfg.Database.DSN,
			cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, log)
		if err != nil {
			log.Fatal("db connect error", zap.Error(err))
		}
		defer pool.Close()

		if cfg.Database.AutoMigrate {
			if err := (migrate.Runner{Dir: cfg.Database.MigrationsDir}).Up(ctx, pool); err != nil {
				log.Fatal("db migrate error", zap.Error(err))
			}
			log.Info("db migrations applied")
		}

		gdb, err := gormrepo.Open(cfg.Database.DSN)
		if err != nil {
			log.Fatal("gorm open error", zap.Error(err))
		}
		repo = gormrepo.New(gdb)
		statsRepo = pgstorage.NewStatsRepo(pool)
		agg.AddChecker(health.NewDatabaseChecker(pool))
	}

	// 7) Redis 快照缓存（可选）
	var cache *redisstorage.SnapshotCache
	if cfg.Redis.Enable {
		rdb, err := redisstorage.NewClient(cfg.Redis)
		if err != nil {
			log.Fatal("redis connect error", zap.Error(err))
		}
		defer func() { _ = rdb.Close() }()
		cache = redisstorage.NewSnapshotCache(rdb, cfg.Redis.SnapshotTTL)
		agg.AddChecker(health.NewRedisChecker(rdb))
	}

	// 8) HTTP 服务与业务路由
	httpSrv := httpserver.New(cfg.HTTP, cfg.Metrics.Path, metricsHandler,
		func() bool { return agg.Ready(context.Background()) })

	ph := api.NewPrinterHandler(sess, log)
	hh := api.NewHistoryHandler(repo, cache, statsRepo, log)
	api.RegisterRoutes(httpSrv.Engine(), ph, hh, cfg.HTTP.APIKey, log)
	health.RegisterHTTPRoutes(httpSrv.Engine(), agg)

	// 9) 轮询采集
	if cfg.Poller.Enable {
		p := poller.New(sess, cfg.Poller.Interval, log)
		p.SetMetrics(appm)
		p.SetSeverityMap(sevMap)
		if repo != nil {
			p.SetRepo(repo)
		}
		if cache != nil {
			p.SetCache(cache)
		}
		go p.Run(ctx)
	}

	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := httpSrv.Start(); err != nil {
			log.Error("http server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
}
