// Package logger 构建 zap 日志器
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/palemoky/ludo-rooms/internal/config"
)

const maxLogFileSize = 10 * 1024 * 1024

// New 按配置创建日志器，json 使用生产配置，console 使用开发配置
func New(cfg config.LogConfig) (*zap.Logger, error) {
	zapCfg, err := baseConfig(cfg)
	if err != nil {
		return nil, err
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// NewFile 创建写入 ~/.ludo-rooms/debug.log 的日志器，供终端客户端使用
// 文件超过 10MB 时先改名备份
func NewFile(cfg config.LogConfig) (*zap.Logger, string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	logDir := filepath.Join(homeDir, ".ludo-rooms")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, "", fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(logDir, "debug.log")
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogFileSize {
		backupPath := filepath.Join(logDir, fmt.Sprintf("debug.log.%d", time.Now().Unix()))
		_ = os.Rename(logPath, backupPath)
	}

	zapCfg, err := baseConfig(cfg)
	if err != nil {
		return nil, "", err
	}
	zapCfg.OutputPaths = []string{logPath}
	zapCfg.ErrorOutputPaths = []string{logPath}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, "", fmt.Errorf("building logger: %w", err)
	}
	return logger, logPath, nil
}

func baseConfig(cfg config.LogConfig) (zap.Config, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return zap.Config{}, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return zap.Config{}, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapCfg, nil
}

// LogPanic 记录 recover 到的 panic 及调用栈
func LogPanic(logger *zap.Logger, r any) {
	logger.Error("[PANIC] recovered", zap.Any("panic", r), zap.Stack("stack"))
}
