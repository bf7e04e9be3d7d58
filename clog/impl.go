package clog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// New 创建一个新的 Logger 实例
//
// config - 日志配置，如果为 nil 会使用默认配置
func New(config *Config) (Logger, error) {
	if config == nil {
		config = &Config{Level: "info", Format: "console", Output: "stdout"}
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var out io.Writer
	switch config.Output {
	case "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	default:
		f, err := os.OpenFile(config.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log output: %w", err)
		}
		out = f
	}

	level, _ := ParseLevel(config.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level.toSlog())

	opts := &slog.HandlerOptions{Level: levelVar}
	var handler slog.Handler
	if config.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return &loggerImpl{
		s:     slog.New(handler),
		level: levelVar,
	}, nil
}

// logger Logger 的 slog 实现
type loggerImpl struct {
	s         *slog.Logger
	level     *slog.LevelVar
	namespace string
}

func (l *loggerImpl) Debug(msg string, fields ...Field) { l.log(context.Background(), slog.LevelDebug, msg, fields) }
func (l *loggerImpl) Info(msg string, fields ...Field)  { l.log(context.Background(), slog.LevelInfo, msg, fields) }
func (l *loggerImpl) Warn(msg string, fields ...Field)  { l.log(context.Background(), slog.LevelWarn, msg, fields) }
func (l *loggerImpl) Error(msg string, fields ...Field) { l.log(context.Background(), slog.LevelError, msg, fields) }

// Fatal 记录错误日志并退出进程
func (l *loggerImpl) Fatal(msg string, fields ...Field) {
	l.log(context.Background(), slog.LevelError, msg, fields)
	os.Exit(1)
}

func (l *loggerImpl) DebugContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelDebug, msg, fields)
}

func (l *loggerImpl) InfoContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelInfo, msg, fields)
}

func (l *loggerImpl) WarnContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelWarn, msg, fields)
}

func (l *loggerImpl) ErrorContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelError, msg, fields)
}

func (l *loggerImpl) With(fields ...Field) Logger {
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, f)
	}
	return &loggerImpl{
		s:         l.s.With(args...),
		level:     l.level,
		namespace: l.namespace,
	}
}

func (l *loggerImpl) WithNamespace(parts ...string) Logger {
	ns := l.namespace
	for _, p := range parts {
		if p == "" {
			continue
		}
		if ns == "" {
			ns = p
		} else {
			ns = ns + "." + p
		}
	}
	return &loggerImpl{
		s:         l.s,
		level:     l.level,
		namespace: ns,
	}
}

func (l *loggerImpl) SetLevel(level Level) error {
	if level < DebugLevel || level > ErrorLevel {
		return fmt.Errorf("invalid level: %d", level)
	}
	l.level.Set(level.toSlog())
	return nil
}

// log 统一的日志记录入口，自动追加命名空间字段
func (l *loggerImpl) log(ctx context.Context, level slog.Level, msg string, fields []Field) {
	if !l.s.Enabled(ctx, level) {
		return
	}
	attrs := fields
	if l.namespace != "" {
		attrs = make([]Field, 0, len(fields)+1)
		attrs = append(attrs, slog.String("namespace", l.namespace))
		attrs = append(attrs, fields...)
	}
	l.s.LogAttrs(ctx, level, msg, attrs...)
}

// 接口实现检查
var _ Logger = (*loggerImpl)(nil)
