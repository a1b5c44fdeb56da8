package database

import (
	"fmt"
	"os"
	"path/filepath"

	"budget/config"
	"budget/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init 初始化数据库连接并自动迁移
func Init(cfg *config.Config) error {
	db, err := Open(cfg.Database, gormLogLevel(cfg.Server.Mode))
	if err != nil {
		return err
	}
	if err := Migrate(db); err != nil {
		return fmt.Errorf("自动迁移失败: %w", err)
	}

	DB = db
	logrus.WithField("driver", cfg.Database.Driver).Info("数据库初始化成功")
	return nil
}

// Open 按 driver 建立连接，不做迁移
func Open(cfg config.DatabaseConfig, level logger.LogLevel) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
		// 类别删除不级联，账目可以悬空引用类别，所以不建外键
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	return db, nil
}

// Migrate 自动迁移数据库表
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Transaction{},
	)
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
			cfg.Username,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
		)
		return mysql.Open(dsn), nil
	case "sqlite", "":
		path := cfg.Path
		if path == "" {
			path = "budget.db"
		}
		if path != ":memory:" {
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("创建数据目录失败: %w", err)
				}
			}
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
	}
}

func gormLogLevel(mode string) logger.LogLevel {
	if mode == "release" {
		return logger.Warn
	}
	return logger.Info
}

// GetDB 获取数据库连接
func GetDB() *gorm.DB {
	return DB
}
