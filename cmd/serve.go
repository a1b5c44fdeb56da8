package cmd

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"budget/config"
	"budget/database"
	"budget/middleware"
	"budget/router"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			// 命令行参数覆盖端口配置
			if port != "" {
				if !strings.HasPrefix(port, ":") {
					port = ":" + port
				}
				cfg.Server.Port = port
			}
			config.PrintConfig(cfg)

			if err := database.Init(cfg); err != nil {
				return err
			}
			middleware.InitJWT(cfg)

			srv := &http.Server{
				Addr:              cfg.Server.Port,
				Handler:           router.SetupRouter(cfg, database.GetDB(), logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.WithField("addr", cfg.Server.Port).Info("服务已启动")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-cmd.Context().Done():
			}

			logger.Info("收到退出信号，正在关闭服务")
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "监听端口，如: 8080 或 :8080")
	return cmd
}
