// Package cmd 命令行入口：serve / migrate / version
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"budget/config"
	"budget/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configFile string
	version    = "dev"

	rootCmd = &cobra.Command{
		Use:           "budget",
		Short:         "Personal budget tracker backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "外部配置文件路径（可选）")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(versionCmd())
}

// Execute 运行根命令，收到中断信号时取消 context
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig 加载配置并按配置初始化日志
func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}
	logger := logging.Setup(cfg.Log)
	return cfg, logger, nil
}
