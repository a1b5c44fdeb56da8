package cmd

import (
	"budget/database"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "创建或更新数据表后退出",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if err := database.Init(cfg); err != nil {
				return err
			}
			logger.Info("数据表已是最新")

			sqlDB, err := database.GetDB().DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}
