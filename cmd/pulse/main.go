// pulse 弹性聚合服务入口。
//
// 启动顺序：配置 → 日志 → 指标 → 探测/缓存/熔断/重试 → 编排器 → HTTP 服务。
// 配置非法直接终止启动；运行期的依赖失败永远不会导致进程退出。
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ceyewan/pulse/aggregate"
	"github.com/ceyewan/pulse/breaker"
	"github.com/ceyewan/pulse/cache"
	"github.com/ceyewan/pulse/clog"
	"github.com/ceyewan/pulse/config"
	"github.com/ceyewan/pulse/metrics"
	"github.com/ceyewan/pulse/probe"
	"github.com/ceyewan/pulse/ratelimit"
	"github.com/ceyewan/pulse/retry"
	"github.com/ceyewan/pulse/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 配置加载失败是致命错误
	loader, err := config.New(nil)
	if err != nil {
		panic(err)
	}
	app, err := loader.Load(ctx)
	if err != nil {
		panic(err)
	}

	logger, err := clog.New(&app.Log)
	if err != nil {
		panic(err)
	}
	logger = logger.WithNamespace(app.Server.Name)

	meter := metrics.Noop()
	if app.Metrics.Enabled {
		m, err := metrics.New(&app.Metrics)
		if err != nil {
			logger.Fatal("init metrics failed", clog.Error(err))
		}
		meter = m
		defer func() {
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			_ = meter.Shutdown(shutdownCtx)
		}()
	}

	client, err := probe.New(&app.Probe, probe.WithLogger(logger))
	if err != nil {
		logger.Fatal("init probe client failed", clog.Error(err))
	}

	store, err := cache.New(&app.Cache, cache.WithLogger(logger))
	if err != nil {
		logger.Fatal("init cache failed", clog.Error(err))
	}
	defer store.Close()

	brk, err := breaker.New(&app.Breaker,
		breaker.WithLogger(logger), breaker.WithMeter(meter))
	if err != nil {
		logger.Fatal("init circuit breaker failed", clog.Error(err))
	}

	rtr, err := retry.New(&app.Retry, retry.WithLogger(logger))
	if err != nil {
		logger.Fatal("init retryer failed", clog.Error(err))
	}

	agg, err := aggregate.New(&app.Aggregate, app.Dependencies, client, store, brk, rtr,
		aggregate.WithLogger(logger), aggregate.WithMeter(meter))
	if err != nil {
		logger.Fatal("init aggregator failed", clog.Error(err))
	}

	serverOpts := []server.Option{server.WithLogger(logger), server.WithMeter(meter)}
	if app.RateLimit.Enabled {
		limiter, err := ratelimit.New(&app.RateLimit.Limiter, ratelimit.WithLogger(logger))
		if err != nil {
			logger.Fatal("init rate limiter failed", clog.Error(err))
		}
		defer limiter.Close()
		serverOpts = append(serverOpts, server.WithRateLimit(limiter, app.RateLimit.Limit))
	}

	srv, err := server.New(&server.Config{
		Listen:      app.Server.Listen,
		ServiceName: app.Server.Name,
	}, agg, serverOpts...)
	if err != nil {
		logger.Fatal("init http server failed", clog.Error(err))
	}

	// 日志级别支持热更新，其余配置变更需要重启生效
	if events, err := loader.Watch(ctx); err == nil {
		go func() {
			for event := range events {
				level, err := clog.ParseLevel(event.App.Log.Level)
				if err != nil {
					logger.Warn("invalid log level in reloaded config",
						clog.String("level", event.App.Log.Level))
					continue
				}
				if err := logger.SetLevel(level); err == nil {
					logger.Info("log level updated", clog.String("level", event.App.Log.Level))
				}
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info("pulse started",
		clog.String("listen", app.Server.Listen),
		clog.Int("dependencies", len(app.Dependencies)))

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("http server failed", clog.Error(err))
			os.Exit(1)
		}
		return
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", clog.Error(err))
	}
	logger.Info("pulse stopped")
}
