package logging

import (
	"io"
	"os"
	"strings"

	"budget/config"

	"github.com/sirupsen/logrus"
)

// Setup 按配置初始化全局 logrus，并返回同一个 logger
func Setup(cfg config.LogConfig) *logrus.Logger {
	return configure(logrus.StandardLogger(), cfg, os.Stdout)
}

// New 创建独立 logger，测试中可指定输出
func New(cfg config.LogConfig, out io.Writer) *logrus.Logger {
	return configure(logrus.New(), cfg, out)
}

func configure(logger *logrus.Logger, cfg config.LogConfig, out io.Writer) *logrus.Logger {
	logger.SetOutput(out)

	if strings.EqualFold(cfg.Format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyLevel: "loglevel",
			},
		})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
