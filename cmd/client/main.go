package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/palemoky/ludo-rooms/internal/config"
	"github.com/palemoky/ludo-rooms/internal/logger"
	"github.com/palemoky/ludo-rooms/internal/ui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "启动客户端时出错: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("ludo-client", pflag.ContinueOnError)
	serverAddr := flags.String("server", "localhost:3000", "服务器地址")
	logLevel := flags.String("log-level", "debug", "日志级别 debug/info/warn/error")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	// 终端被 UI 占用，日志写入文件
	log, logPath, err := logger.NewFile(config.LogConfig{Level: *logLevel, Format: "json"})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	serverURL := fmt.Sprintf("ws://%s/ws", *serverAddr)
	log.Info("🎲 客户端启动", zap.String("server", serverURL), zap.String("log", logPath))

	p := tea.NewProgram(ui.NewOnlineModel(serverURL, log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
