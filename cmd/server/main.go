package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/palemoky/ludo-rooms/internal/config"
	"github.com/palemoky/ludo-rooms/internal/logger"
	"github.com/palemoky/ludo-rooms/internal/server"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("ludo-server", pflag.ContinueOnError)
	configPath := flags.String("config", "", "配置文件路径（默认查找 configs/config.yaml）")
	printConfig := flags.Bool("print-config", false, "输出生效配置后退出")
	flags.String("host", "0.0.0.0", "监听地址")
	flags.Int("port", 3000, "监听端口")
	flags.String("log-level", "info", "日志级别 debug/info/warn/error")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		return err
	}

	if *printConfig {
		data, err := cfg.Dump()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	srv, err := server.NewServer(cfg, log)
	if err != nil {
		return fmt.Errorf("创建服务器失败: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("🎲 Ludo 房间服务启动中...")
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("服务器启动失败: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("正在关闭服务器...", zap.Duration("timeout", cfg.Server.ShutdownTimeoutDuration()))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("关闭过程中出现错误", zap.Error(err))
	}
	return <-errCh
}
