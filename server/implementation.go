package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ceyewan/pulse/aggregate"
	"github.com/ceyewan/pulse/clog"
	"github.com/ceyewan/pulse/metrics"
	"github.com/ceyewan/pulse/ratelimit"
	"github.com/ceyewan/pulse/xerrors"
)

// healthBody 存活探针的固定响应体
const healthBody = "pulse OK"

// httpServer 服务实现（非导出）
type httpServer struct {
	cfg    *Config
	agg    aggregate.Aggregator
	logger clog.Logger
	engine *gin.Engine
	srv    *http.Server
}

// newServer 创建服务实例（内部函数）
func newServer(cfg *Config, agg aggregate.Aggregator, opt *options) (Server, error) {
	logger := opt.logger
	if logger == nil {
		logger = clog.Discard()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestIDMiddleware())
	engine.Use(accessLogMiddleware(logger))

	if opt.meter != nil {
		httpMetrics, err := metrics.NewHTTPServerMetrics(opt.meter, cfg.ServiceName)
		if err != nil {
			return nil, xerrors.Wrap(err, "create http server metrics")
		}
		engine.Use(metrics.GinHTTPMiddleware(httpMetrics))
	}

	s := &httpServer{
		cfg:    cfg,
		agg:    agg,
		logger: logger,
		engine: engine,
	}

	statusHandlers := []gin.HandlerFunc{s.handleStatus}
	if opt.limiter != nil {
		statusHandlers = append([]gin.HandlerFunc{ratelimit.GinMiddleware(opt.limiter, opt.limit)}, statusHandlers...)
	}
	engine.GET("/status", statusHandlers...)
	engine.GET("/health", s.handleHealth)

	s.srv = &http.Server{
		Addr:    cfg.Listen,
		Handler: engine,
	}

	logger.Info("http server created", clog.String("listen", cfg.Listen))
	return s, nil
}

// handleStatus 触发一次聚合编排并返回完整报告
//
// 无论多少依赖失败，均返回 200 与结构化报告。
func (s *httpServer) handleStatus(c *gin.Context) {
	report := s.agg.Aggregate(c.Request.Context())
	c.JSON(http.StatusOK, report)
}

// handleHealth 进程存活探针
func (s *httpServer) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, healthBody)
}

// Start 启动 HTTP 监听
func (s *httpServer) Start() error {
	s.logger.Info("http server starting", clog.String("listen", s.cfg.Listen))
	if err := s.srv.ListenAndServe(); err != nil && !xerrors.Is(err, http.ErrServerClosed) {
		return xerrors.Wrap(err, "http server")
	}
	return nil
}

// Stop 优雅关闭
func (s *httpServer) Stop(ctx context.Context) error {
	s.logger.Info("http server stopping")
	return s.srv.Shutdown(ctx)
}

// Handler 返回底层 http.Handler
func (s *httpServer) Handler() http.Handler {
	return s.engine
}
