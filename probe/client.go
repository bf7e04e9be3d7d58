package probe

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/ceyewan/pulse/clog"
	"github.com/ceyewan/pulse/xerrors"
)

// httpClient Client 的 HTTP 实现（非导出）
type httpClient struct {
	cfg    *Config
	client *http.Client
	logger clog.Logger
}

// newClient 创建客户端实例（内部函数）
func newClient(cfg *Config, logger clog.Logger) (Client, error) {
	if logger == nil {
		logger = clog.Discard()
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConns,
		IdleConnTimeout:     90 * time.Second,
	}

	return &httpClient{
		cfg: cfg,
		// 单次调用超时由每个依赖的 Timeout 控制，客户端本身不设全局超时
		client: &http.Client{Transport: transport},
		logger: logger,
	}, nil
}

// Check 对依赖的健康端点发起一次调用
func (c *httpClient) Check(ctx context.Context, dep Dependency) (string, error) {
	if dep.Name == "" || dep.Endpoint == "" {
		return "", ErrDependencyInvalid
	}

	timeout := dep.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dep.Endpoint, nil)
	if err != nil {
		return "", xerrors.Wrapf(ErrDependencyInvalid, "build request for %s: %v", dep.Name, err)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("dependency check failed",
			clog.String("dependency", dep.Name),
			clog.Duration("elapsed", time.Since(start)),
			clog.Error(err))
		return "", xerrors.Wrapf(ErrNetwork, "call %s: %v", dep.Name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBodyBytes))
	if err != nil {
		return "", xerrors.Wrapf(ErrNetwork, "read response from %s: %v", dep.Name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("dependency returned non-2xx",
			clog.String("dependency", dep.Name),
			clog.Int("status", resp.StatusCode))
		return "", xerrors.Wrapf(ErrNetwork, "%s returned status %d", dep.Name, resp.StatusCode)
	}

	c.logger.Debug("dependency check ok",
		clog.String("dependency", dep.Name),
		clog.Duration("elapsed", time.Since(start)))

	return string(body), nil
}
