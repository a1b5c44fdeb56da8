package config

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	Report    ReportConfig    `mapstructure:"report"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Email     EmailConfig     `mapstructure:"email"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    string `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
	BaseURL string `mapstructure:"base_url"`
}

// DatabaseConfig 数据库配置，driver 可选 mysql / sqlite
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	Charset      string `mapstructure:"charset"`
	Path         string `mapstructure:"path"` // sqlite 文件路径
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret      string        `mapstructure:"secret"`
	ExpireHours int           `mapstructure:"expire_hours"`
	ExpireTime  time.Duration `mapstructure:"-"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json / text
}

// ReportConfig 报表分页配置
type ReportConfig struct {
	DefaultPageSize int `mapstructure:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"`
}

// RateLimitConfig 登录限流配置
type RateLimitConfig struct {
	LoginAttempts      int `mapstructure:"login_attempts"`
	LoginWindowSeconds int `mapstructure:"login_window_seconds"`
}

// LoginWindow 登录限流窗口
func (r RateLimitConfig) LoginWindow() time.Duration {
	return time.Duration(r.LoginWindowSeconds) * time.Second
}

// EmailConfig 邮件配置
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

var (
	// GlobalConfig 全局配置实例
	GlobalConfig *Config
)

// LoadConfig 加载配置
// 优先级: 环境变量 > 外部配置文件 > 嵌入的默认配置
// configPath: 可选的外部配置文件路径
func LoadConfig(configPath string) (*Config, error) {
	// .env 文件可选，不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")

	// 1. 首先加载嵌入的默认配置
	if err := v.ReadConfig(bytes.NewReader(DefaultConfigYAML)); err != nil {
		return nil, fmt.Errorf("读取内置配置失败: %w", err)
	}
	logrus.Debug("已加载内置默认配置")

	// 2. 尝试加载外部配置文件（可选，用于覆盖默认配置）
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.MergeInConfig(); err != nil {
			logrus.WithError(err).Warnf("无法读取指定配置文件 %s", configPath)
		} else {
			logrus.Infof("已合并外部配置文件: %s", configPath)
		}
	} else {
		externalViper := viper.New()
		externalViper.SetConfigName("config")
		externalViper.SetConfigType("yaml")
		externalViper.AddConfigPath(".")
		externalViper.AddConfigPath("./config")
		externalViper.AddConfigPath("/etc/budget")
		externalViper.AddConfigPath("$HOME/.budget")

		if err := externalViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(externalViper.AllSettings()); err != nil {
				logrus.WithError(err).Warn("合并外部配置失败")
			} else {
				logrus.Infof("已合并外部配置文件: %s", externalViper.ConfigFileUsed())
			}
		}
	}

	// 3. 环境变量覆盖，如 BUDGET_DATABASE_DRIVER=mysql
	v.SetEnvPrefix("BUDGET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	cfg.applyDefaults()

	GlobalConfig = &cfg

	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.JWT.ExpireHours <= 0 {
		cfg.JWT.ExpireHours = 24
	}
	cfg.JWT.ExpireTime = time.Duration(cfg.JWT.ExpireHours) * time.Hour

	if cfg.Report.DefaultPageSize <= 0 {
		cfg.Report.DefaultPageSize = 10
	}
	if cfg.Report.MaxPageSize < cfg.Report.DefaultPageSize {
		cfg.Report.MaxPageSize = 100
	}
	if cfg.RateLimit.LoginAttempts <= 0 {
		cfg.RateLimit.LoginAttempts = 10
	}
	if cfg.RateLimit.LoginWindowSeconds <= 0 {
		cfg.RateLimit.LoginWindowSeconds = 60
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
}

// GetConfig 获取全局配置，未初始化时返回 nil
func GetConfig() *Config {
	return GlobalConfig
}

// PrintConfig 打印当前配置（隐藏敏感信息）
func PrintConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	fields := logrus.Fields{
		"port":      cfg.Server.Port,
		"mode":      cfg.Server.Mode,
		"db_driver": cfg.Database.Driver,
		"email":     cfg.Email.Enabled,
	}
	if cfg.Database.Driver == "mysql" {
		fields["db"] = fmt.Sprintf("%s@%s:%s/%s", cfg.Database.Username, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	} else {
		fields["db"] = cfg.Database.Path
	}
	logrus.WithFields(fields).Info("当前配置")
}
