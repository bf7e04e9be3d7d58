package clog

import (
	"fmt"
	"log/slog"
	"strings"
)

// Config 日志配置
type Config struct {
	// Level 日志级别："debug" | "info" | "warn" | "error"（默认 "info"）
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format 输出格式："console" | "json"（默认 "console"）
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	// Output 输出目标："stdout" | "stderr" | 文件路径（默认 "stdout"）
	Output string `json:"output" yaml:"output" mapstructure:"output"`
}

// Level 日志级别
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLevel 解析日志级别字符串
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level: %q", s)
	}
}

// toSlog 转换为 slog.Level
func (l Level) toSlog() slog.Level {
	switch l {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// validate 设置默认值并验证配置
func (c *Config) validate() error {
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Format != "console" && c.Format != "json" {
		return fmt.Errorf("unknown log format: %q", c.Format)
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}
	return nil
}
