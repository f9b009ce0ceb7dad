package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := Config{}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing addrs")
	}
}

func TestValidate_AddrWithoutPort(t *testing.T) {
	cfg := Config{Database: DatabaseConfig{Addrs: []string{"localhost"}}}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for addr without port")
	}
	expected := `database.addrs: "localhost" must be host:port`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_EncounterBounds(t *testing.T) {
	cfg := Config{
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Factory:  FactoryConfig{MinEncounters: 5, MaxEncounters: 2},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for min > max encounters")
	}
}

func TestValidate_LogLevel(t *testing.T) {
	for _, level := range []string{"", "debug", "info", "warn", "error"} {
		t.Run("level="+level, func(t *testing.T) {
			cfg := Config{
				Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
				Logging:  LoggingConfig{Level: level},
			}
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for level %q: %v", level, err)
			}
		})
	}

	cfg := Config{Database: DatabaseConfig{Addrs: []string{"localhost:6379"}}, Logging: LoggingConfig{Level: "loud"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if len(cfg.Database.Addrs) != 1 || cfg.Database.Addrs[0] != "localhost:6379" {
		t.Errorf("expected default addr, got %v", cfg.Database.Addrs)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Database.CommandTimeout != 300 {
		t.Errorf("expected CommandTimeout=300, got %d", cfg.Database.CommandTimeout)
	}
	if cfg.Storage.KeyPrefix != "gumby:" {
		t.Errorf("expected KeyPrefix='gumby:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Factory.Individuals != 50 || cfg.Factory.MinEncounters != 1 || cfg.Factory.MaxEncounters != 20 {
		t.Errorf("unexpected factory defaults: %+v", cfg.Factory)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		Database: DatabaseConfig{Addrs: []string{"es:9200"}, ReadinessTimeout: 15},
		Storage:  StorageConfig{KeyPrefix: "custom:"},
		Factory:  FactoryConfig{Individuals: 3},
	}
	cfg.ApplyDefaults()

	if cfg.Database.Addrs[0] != "es:9200" {
		t.Errorf("expected addr kept, got %v", cfg.Database.Addrs)
	}
	if cfg.Database.ReadinessTimeout != 15 {
		t.Errorf("expected ReadinessTimeout=15, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Factory.Individuals != 3 {
		t.Errorf("expected Individuals=3, got %d", cfg.Factory.Individuals)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvHosts, "a:6379, b:6380,")
	t.Setenv(EnvUsername, "gumby")
	t.Setenv(EnvPassword, "secret")

	cfg := Config{Database: DatabaseConfig{Addrs: []string{"localhost:6379"}, Password: "from-yaml"}}
	cfg.ApplyEnv()

	if len(cfg.Database.Addrs) != 2 || cfg.Database.Addrs[1] != "b:6380" {
		t.Errorf("unexpected addrs: %v", cfg.Database.Addrs)
	}
	if cfg.Database.Username != "gumby" || cfg.Database.Password != "secret" {
		t.Errorf("unexpected credentials: %+v", cfg.Database)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	yaml := `
database:
  addrs: ["${GUMBY_TEST_HOST:-cache}:6379"]
  command_timeout_sec: 5
storage:
  key_prefix: "test-"
factory:
  individuals: 4
  seed: 42
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Addrs[0] != "cache:6379" {
		t.Errorf("expected expanded default, got %v", cfg.Database.Addrs)
	}
	if cfg.Database.CommandTimeout != 5 || cfg.Storage.KeyPrefix != "test-" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Factory.Individuals != 4 || cfg.Factory.Seed != 42 || cfg.Factory.MaxEncounters != 20 {
		t.Errorf("unexpected factory: %+v", cfg.Factory)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file must fall back to defaults: %v", err)
	}
	if cfg.Storage.KeyPrefix != "gumby:" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("GUMBY_DOTENV_PROBE=loaded\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("GUMBY_DOTENV_PROBE", "")
	os.Unsetenv("GUMBY_DOTENV_PROBE")

	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("GUMBY_DOTENV_PROBE"); got != "loaded" {
		t.Errorf("expected variable from .env, got %q", got)
	}
}
