package config

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ceyewan/pulse/clog"
	"github.com/ceyewan/pulse/xerrors"
)

// loader 实现 Loader 接口
type loader struct {
	v      *viper.Viper
	cfg    *Config
	logger clog.Logger

	mu       sync.Mutex
	watchers []chan Event
	watching bool
}

// newLoader 创建配置加载器（内部函数）
func newLoader(cfg *Config, logger clog.Logger) (Loader, error) {
	if logger == nil {
		logger = clog.Discard()
	}

	return &loader{
		v:      viper.New(),
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Load 加载并校验配置
func (l *loader) Load(ctx context.Context) (*App, error) {
	l.v.SetConfigName(l.cfg.Name)
	l.v.SetConfigType(l.cfg.FileType)
	for _, path := range l.cfg.Paths {
		l.v.AddConfigPath(path)
	}

	// 环境变量优先级最高
	l.v.SetEnvPrefix(l.cfg.EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	// .env 文件次之，缺失不是错误
	l.loadDotEnv()

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, xerrors.Wrapf(err, "read config file %s", l.cfg.Name)
		}
		l.logger.Warn("no configuration file found, using defaults",
			clog.String("name", l.cfg.Name))
	}

	return l.unmarshal()
}

// unmarshal 反序列化、填默认值并校验
func (l *loader) unmarshal() (*App, error) {
	app := &App{}
	if err := l.v.Unmarshal(app); err != nil {
		return nil, xerrors.Wrap(err, "unmarshal config")
	}

	app.applyDefaults()
	if err := app.Validate(); err != nil {
		return nil, err
	}
	return app, nil
}

// loadDotEnv 尝试从搜索路径加载 .env 文件
func (l *loader) loadDotEnv() {
	if err := godotenv.Load(); err == nil {
		l.logger.Debug("loaded .env file", clog.String("path", ".env"))
	}
	for _, path := range l.cfg.Paths {
		envPath := filepath.Join(path, ".env")
		if err := godotenv.Load(envPath); err == nil {
			l.logger.Debug("loaded .env file", clog.String("path", envPath))
		}
	}
}

// Watch 监听配置文件变化
func (l *loader) Watch(ctx context.Context) (<-chan Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan Event, 1)
	l.watchers = append(l.watchers, ch)

	if !l.watching {
		l.v.OnConfigChange(func(e fsnotify.Event) {
			l.onFileChange(e)
		})
		l.v.WatchConfig()
		l.watching = true
	}

	go func() {
		<-ctx.Done()
		l.removeWatcher(ch)
	}()

	return ch, nil
}

// onFileChange 文件变更回调：重载校验通过才通知，失败保持旧配置
func (l *loader) onFileChange(e fsnotify.Event) {
	app, err := l.unmarshal()
	if err != nil {
		l.logger.Error("config reload rejected, keeping previous configuration",
			clog.String("file", e.Name),
			clog.Error(err))
		return
	}

	l.logger.Info("configuration reloaded", clog.String("file", e.Name))

	event := Event{App: app, Timestamp: time.Now()}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ch := range l.watchers {
		select {
		case ch <- event:
		default:
			// 订阅者未消费上一个事件时丢弃，避免阻塞回调
		}
	}
}

// removeWatcher 取消订阅
func (l *loader) removeWatcher(ch chan Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, c := range l.watchers {
		if c == ch {
			l.watchers = append(l.watchers[:i], l.watchers[i+1:]...)
			close(c)
			return
		}
	}
}
