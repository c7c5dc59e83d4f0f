package database

import (
	"path/filepath"
	"testing"

	"pennywise/internal/config"
	"pennywise/internal/models"
)

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{
		Driver:   DriverPostgres,
		Host:     "db",
		Port:     "5432",
		User:     "u",
		Password: "p",
		DBName:   "pennywise",
		SSLMode:  "disable",
	}
	if got, want := cfg.DSN(), "host=db port=5432 user=u password=p dbname=pennywise sslmode=disable"; got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
	if got, want := cfg.MigrateURL(), "postgres://u:p@db:5432/pennywise?sslmode=disable"; got != want {
		t.Errorf("MigrateURL() = %q, want %q", got, want)
	}

	cfg.Driver = DriverSQLite
	cfg.SQLitePath = "local.db"
	if cfg.DSN() != "local.db" {
		t.Errorf("sqlite DSN() = %q, want local.db", cfg.DSN())
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(&config.Config{DBDriver: DriverSQLite, SQLitePath: "x.db", DBName: "n"})
	if cfg.Driver != DriverSQLite || cfg.SQLitePath != "x.db" || cfg.DBName != "n" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestNewManager_UnsupportedDriver(t *testing.T) {
	if _, err := NewManager(&Config{Driver: "oracle"}); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestManager_SQLiteMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pennywise.db")
	m, err := NewManager(&Config{Driver: DriverSQLite, SQLitePath: path})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer func() { _ = m.Close() }()

	if err := m.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	for _, model := range models.All() {
		if !m.DB().Migrator().HasTable(model) {
			t.Errorf("expected table for %T", model)
		}
	}
}
