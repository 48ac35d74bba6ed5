package db

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"
)

// TestBuildDSN_TCP はTCP接続用のDSN文字列が正しく生成されることを検証します。
func TestBuildDSN_TCP(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Driver:   DriverPostgres,
		User:     "testuser",
		Password: "testpass",
		Name:     "testdb",
		Host:     "localhost",
		Port:     "5432",
		SSLMode:  "disable",
	}

	dsn := BuildDSN(cfg)

	expected := "host=localhost user=testuser password=testpass dbname=testdb port=5432 sslmode=disable TimeZone=UTC"
	if dsn != expected {
		t.Errorf("expected DSN %q, got %q", expected, dsn)
	}
}

// TestBuildDSN_CloudSQLTakesPrecedence はInstanceNameとHost/Portが両方設定されている場合にInstanceNameが優先されることを検証します。
func TestBuildDSN_CloudSQLTakesPrecedence(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Driver:       DriverPostgres,
		User:         "testuser",
		Password:     "testpass",
		Name:         "testdb",
		Host:         "localhost",
		Port:         "5432",
		SSLMode:      "disable",
		InstanceName: "project:region:instance",
	}

	dsn := BuildDSN(cfg)

	expected := "host=/cloudsql/project:region:instance user=testuser password=testpass dbname=testdb sslmode=disable TimeZone=UTC"
	if dsn != expected {
		t.Errorf("expected DSN %q, got %q", expected, dsn)
	}
}

// TestBuildDSN_SQLite はsqliteの場合にファイルパスが返ることを検証します。
func TestBuildDSN_SQLite(t *testing.T) {
	t.Parallel()

	dsn := BuildDSN(Config{Driver: DriverSQLite, Path: "/tmp/bars.db", Host: "ignored"})
	if dsn != "/tmp/bars.db" {
		t.Errorf("expected sqlite path, got %q", dsn)
	}
}

func TestOpenerFor(t *testing.T) {
	t.Parallel()

	for _, d := range []string{DriverPostgres, DriverSQLite} {
		if open, err := OpenerFor(d); err != nil || open == nil {
			t.Errorf("driver %q: expected opener, got err %v", d, err)
		}
	}
	if _, err := OpenerFor("mysql"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

// TestOpenerFor_SQLiteMigrate はsqliteのメモリDBに接続してマイグレーションできることを検証します。
func TestOpenerFor_SQLiteMigrate(t *testing.T) {
	t.Parallel()

	open, err := OpenerFor(DriverSQLite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	db, err := ConnectWithRetry(":memory:", time.Second, open)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !db.Migrator().HasTable("bars") {
		t.Error("expected bars table to exist")
	}
}

// TestConnectWithRetry_SuccessOnFirstTry は初回接続成功時にリトライせずDBを返すことを検証します。
func TestConnectWithRetry_SuccessOnFirstTry(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	opener := func(dsn string) (*gorm.DB, error) {
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", 5*time.Second, opener)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db != mockDB {
		t.Error("expected mock DB to be returned")
	}
}

// TestConnectWithRetry_RetriesOnFailure は接続失敗時にリトライして最終的に成功することを検証します。
func TestConnectWithRetry_RetriesOnFailure(t *testing.T) {
	// Not parallel because this test takes time due to retry sleeps

	mockDB := &gorm.DB{}
	attemptCount := 0

	opener := func(dsn string) (*gorm.DB, error) {
		attemptCount++
		if attemptCount < 3 {
			return nil, errors.New("connection refused")
		}
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", 10*time.Second, opener)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db != mockDB {
		t.Error("expected mock DB to be returned")
	}
	if attemptCount != 3 {
		t.Errorf("expected 3 attempts, got %d", attemptCount)
	}
}

// TestConnectWithRetry_TimeoutAfterRetries はタイムアウト後にエラーが返されることを検証します。
func TestConnectWithRetry_TimeoutAfterRetries(t *testing.T) {
	t.Parallel()

	attemptCount := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attemptCount++
		return nil, errors.New("connection refused")
	}

	_, err := ConnectWithRetry("test-dsn", 100*time.Millisecond, opener)

	if err == nil {
		t.Fatal("expected error after timeout, got nil")
	}
	if attemptCount != 1 {
		t.Errorf("expected a single attempt, got %d", attemptCount)
	}
}

// TestLoadConfigFromEnv は環境変数からデータベース設定が正しく読み込まれることを検証します。
func TestLoadConfigFromEnv(t *testing.T) {
	// Not parallel: modifies environment variables
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_USER", "envuser")
	t.Setenv("DB_PASSWORD", "envpass")
	t.Setenv("DB_NAME", "envdb")
	t.Setenv("DB_HOST", "envhost")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_SSLMODE", "")
	t.Setenv("INSTANCE_CONNECTION_NAME", "")

	cfg := LoadConfigFromEnv()

	if cfg.Driver != DriverPostgres {
		t.Errorf("expected Driver 'postgres', got %q", cfg.Driver)
	}
	if cfg.User != "envuser" || cfg.Password != "envpass" || cfg.Name != "envdb" {
		t.Errorf("unexpected credentials %+v", cfg)
	}
	if cfg.Host != "envhost" || cfg.Port != "5433" {
		t.Errorf("unexpected host/port %q %q", cfg.Host, cfg.Port)
	}
	if cfg.SSLMode != "disable" {
		t.Errorf("expected default sslmode 'disable', got %q", cfg.SSLMode)
	}
}

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_PATH", "")

	cfg := LoadConfigFromEnv()

	if cfg.Driver != DriverSQLite {
		t.Errorf("expected default driver sqlite, got %q", cfg.Driver)
	}
	if cfg.Path != defaultSQLitePath {
		t.Errorf("expected default path %q, got %q", defaultSQLitePath, cfg.Path)
	}
}
