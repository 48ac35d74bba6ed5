// Package db opens the gorm connection used by the bar repository.
package db

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	baradapters "intradaybar/internal/feature/intradaybar/adapters"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultSQLitePath = "intradaybar.db"
	retryInterval     = 3 * time.Second
)

// Config holds database connection settings.
type Config struct {
	Driver       string // "postgres" or "sqlite"
	User         string
	Password     string
	Name         string
	Host         string
	Port         string
	SSLMode      string
	InstanceName string // Cloud SQL instance; takes precedence over Host/Port
	Path         string // sqlite file path
}

// LoadConfigFromEnv はデータベース設定を環境変数から読み込みます。
func LoadConfigFromEnv() Config {
	cfg := Config{
		Driver:       os.Getenv("DB_DRIVER"),
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		Name:         os.Getenv("DB_NAME"),
		Host:         os.Getenv("DB_HOST"),
		Port:         os.Getenv("DB_PORT"),
		SSLMode:      os.Getenv("DB_SSLMODE"),
		InstanceName: os.Getenv("INSTANCE_CONNECTION_NAME"),
		Path:         os.Getenv("DB_PATH"),
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if cfg.Path == "" {
		cfg.Path = defaultSQLitePath
	}
	return cfg
}

// BuildDSN は設定から接続文字列を生成します。
// postgres は key=value 形式、sqlite はファイルパスをそのまま返します。
func BuildDSN(cfg Config) string {
	if cfg.Driver == DriverSQLite {
		return cfg.Path
	}
	host, port := cfg.Host, cfg.Port
	if cfg.InstanceName != "" {
		host = "/cloudsql/" + cfg.InstanceName
		port = ""
	}
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s", host, cfg.User, cfg.Password, cfg.Name)
	if port != "" {
		dsn += " port=" + port
	}
	return dsn + fmt.Sprintf(" sslmode=%s TimeZone=UTC", cfg.SSLMode)
}

// Opener opens a gorm connection for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

// OpenerFor はドライバ名に対応する Opener を返します。
func OpenerFor(driver string) (Opener, error) {
	switch driver {
	case DriverPostgres:
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), &gorm.Config{})
		}, nil
	case DriverSQLite:
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
		}, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

// ConnectWithRetry は timeout に達するまで retryInterval 間隔で接続を試みます。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err)
		time.Sleep(retryInterval)
	}
}

// Migrate はバーテーブルを作成・更新します。
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&baradapters.BarModel{})
}

// OpenDB は環境変数の設定でデータベースに接続します。
// sqlite の場合、または RUN_MIGRATIONS=true の場合はマイグレーションも実行します。
func OpenDB() (*gorm.DB, error) {
	cfg := LoadConfigFromEnv()
	open, err := OpenerFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := ConnectWithRetry(BuildDSN(cfg), 60*time.Second, open)
	if err != nil {
		return nil, err
	}

	if cfg.Driver == DriverSQLite || os.Getenv("RUN_MIGRATIONS") == "true" {
		if err := Migrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}
	slog.Info("database ready", "driver", cfg.Driver)
	return db, nil
}
