package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Snapshot.Driver != "sqlite" || cfg.Snapshot.Path != "data/app.db" {
		t.Errorf("snapshot defaults = %+v", cfg.Snapshot)
	}
	if cfg.Notifier.Channel != "routes.events" {
		t.Errorf("channel = %q, want routes.events", cfg.Notifier.Channel)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
snapshot:
  driver: postgres
  databaseURL: postgres://localhost/routes
notifier:
  redisAddr: localhost:6379
  channel: routes.dev
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Snapshot.Driver != "postgres" {
		t.Errorf("driver = %q, want postgres", cfg.Snapshot.Driver)
	}
	if cfg.Notifier.RedisAddr != "localhost:6379" {
		t.Errorf("redisAddr = %q", cfg.Notifier.RedisAddr)
	}
}

func TestLoadPartialFileKeepsRemainingDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 3000\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Snapshot.Driver != "sqlite" {
		t.Errorf("driver = %q, want default sqlite", cfg.Snapshot.Driver)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"bad port":       "server:\n  port: 99999\n",
		"bad driver":     "snapshot:\n  driver: mongo\n",
		"bad redis addr": "notifier:\n  redisAddr: not-an-addr\n",
		"bad yaml":       "server: [\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, content)); err == nil {
				t.Fatal("expected a load error")
			}
		})
	}
}

func TestGetEnvFallback(t *testing.T) {
	t.Setenv("ROUTES_TEST_KEY", "set")
	if got := Get("ROUTES_TEST_KEY", "fallback"); got != "set" {
		t.Errorf("Get = %q, want set", got)
	}
	if got := Get("ROUTES_TEST_KEY_UNSET", "fallback"); got != "fallback" {
		t.Errorf("Get = %q, want fallback", got)
	}
}
