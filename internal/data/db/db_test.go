package db

import (
	"path/filepath"
	"testing"

	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
	gormLogger "gorm.io/gorm/logger"
)

func TestNewDatabaseServiceSQLiteMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.db")
	svc, err := NewDatabaseService(Config{Driver: "sqlite", SQLitePath: path, LogLevel: "silent"}, logger.NewNop())
	if err != nil {
		t.Fatalf("NewDatabaseService: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })

	if err := AutoMigrateAll(svc.DB()); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	for _, table := range []string{"bap", "bap_n"} {
		if !svc.DB().Migrator().HasTable(table) {
			t.Fatalf("expected table %s", table)
		}
	}
	if svc.Driver() != DriverSQLite {
		t.Fatalf("driver: got=%q", svc.Driver())
	}
}

func TestNewDatabaseServiceRejectsUnknownDriver(t *testing.T) {
	if _, err := NewDatabaseService(Config{Driver: "mysql"}, logger.NewNop()); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestPostgresDSN(t *testing.T) {
	got := postgresDSN(Config{PostgresUser: "u", PostgresPassword: "p", PostgresHost: "h", PostgresPort: "5432", PostgresName: "batch"})
	if got != "postgres://u:p@h:5432/batch?sslmode=disable" {
		t.Fatalf("dsn: got=%q", got)
	}
	if parseGormLogLevel("SILENT") != gormLogger.Silent {
		t.Fatalf("expected silent level")
	}
}
