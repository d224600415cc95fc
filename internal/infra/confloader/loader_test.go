package confloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Server struct {
		Addr            string        `koanf:"addr"`
		MaxOutputBuffer int           `koanf:"max_output_buffer"`
		PollTimeout     time.Duration `koanf:"poll_timeout"`
	} `koanf:"server"`
	AOF struct {
		Enabled bool   `koanf:"enabled"`
		Fsync   string `koanf:"fsync"`
	} `koanf:"aof"`
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}

	l = NewLoader(WithEnvPrefix("TEST_"), WithConfigFile("/etc/respkv.yaml"))
	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q", l.envPrefix)
	}
	if l.FilePath() != "/etc/respkv.yaml" {
		t.Errorf("FilePath = %q", l.FilePath())
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"RESPKV_SERVER_ADDR", "server.addr"},
		{"RESPKV_SERVER_MAX_OUTPUT_BUFFER", "server.max_output_buffer"},
		{"RESPKV_AOF_ENABLED", "aof.enabled"},
		{"RESPKV_LOG", "log"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := EnvKey("RESPKV_", tt.in); got != tt.want {
				t.Fatalf("EnvKey = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoader_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "respkv.yaml")
	writeFile(t, path, `
server:
  addr: "0.0.0.0:7000"
  max_output_buffer: 4096
  poll_timeout: 250ms
aof:
  enabled: true
`)

	var cfg testConfig
	if err := NewLoader(WithConfigFile(path), WithEnvPrefix("RESPKV_TEST_NONE_")).Load(&cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != "0.0.0.0:7000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.MaxOutputBuffer != 4096 {
		t.Errorf("MaxOutputBuffer = %d", cfg.Server.MaxOutputBuffer)
	}
	if cfg.Server.PollTimeout != 250*time.Millisecond {
		t.Errorf("PollTimeout = %v", cfg.Server.PollTimeout)
	}
	if !cfg.AOF.Enabled {
		t.Error("AOF.Enabled should be true")
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestLoader_DefaultsSurvive(t *testing.T) {
	var cfg testConfig
	cfg.Server.Addr = "127.0.0.1:6380"
	cfg.AOF.Fsync = "everysec"

	l := NewLoader(WithEnvPrefix("RESPKV_TEST_NONE_"))
	if err := l.LoadMap(map[string]any{"aof.enabled": true}); err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:6380" || cfg.AOF.Fsync != "everysec" {
		t.Fatalf("defaults overwritten: %+v", cfg)
	}
	if !cfg.AOF.Enabled {
		t.Fatal("map value not applied")
	}
}

func TestLoader_Priority(t *testing.T) {
	path := filepath.Join(t.TempDir(), "respkv.yaml")
	writeFile(t, path, "server:\n  addr: file:1\naof:\n  fsync: everysec\n")

	t.Setenv("RESPKV_SERVER_ADDR", "env:2")
	t.Setenv("RESPKV_SERVER_MAX_OUTPUT_BUFFER", "512")

	l := NewLoader(WithConfigFile(path))
	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != "env:2" {
		t.Errorf("env should override file: Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.MaxOutputBuffer != 512 {
		t.Errorf("MaxOutputBuffer = %d", cfg.Server.MaxOutputBuffer)
	}

	if err := l.LoadMap(map[string]any{"server.addr": "flag:3"}); err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if cfg.Server.Addr != "flag:3" {
		t.Errorf("flags should override env: Addr = %q", cfg.Server.Addr)
	}
	if cfg.AOF.Fsync != "everysec" {
		t.Errorf("Fsync = %q", cfg.AOF.Fsync)
	}
	if !l.IsLoaded() {
		t.Error("IsLoaded should be true")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	writeFile(t, envFile, "RESPKV_DOTENV_PROBE=from-dotenv\n")

	t.Setenv("RESPKV_DOTENV_PROBE", "")
	os.Unsetenv("RESPKV_DOTENV_PROBE")

	if err := LoadDotEnv(envFile, filepath.Join(dir, ".env.local")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("RESPKV_DOTENV_PROBE"); got != "from-dotenv" {
		t.Fatalf("RESPKV_DOTENV_PROBE = %q", got)
	}
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	writeFile(t, envFile, "RESPKV_DOTENV_KEEP=dotenv\n")
	t.Setenv("RESPKV_DOTENV_KEEP", "process")

	if err := LoadDotEnv(envFile); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("RESPKV_DOTENV_KEEP"); got != "process" {
		t.Fatalf("RESPKV_DOTENV_KEEP = %q, want process", got)
	}
}

func TestMapProvider_DottedKeys(t *testing.T) {
	m, err := mapProvider{"server.addr": "x", "log": map[string]any{"level": "debug"}}.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	server, ok := m["server"].(map[string]any)
	if !ok || server["addr"] != "x" {
		t.Fatalf("server = %#v", m["server"])
	}
	if _, err := (mapProvider{}).ReadBytes(); err != ErrReadBytesNotSupported {
		t.Fatalf("ReadBytes err = %v", err)
	}
}
