package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/pypeline/logger"
)

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
		if cfg.Logging.Level != "debug" {
			t.Errorf("expected debug logging in development, got %q", cfg.Logging.Level)
		}
	})

	t.Run("production environment keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("expected info logging, got %q", cfg.Logging.Level)
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr bool
		errMsg  string
	}{
		{"valid development", ServiceConfig{Name: "svc", Environment: "development"}, false, ""},
		{"valid production", ServiceConfig{Name: "svc", Environment: "production"}, false, ""},
		{"missing name", ServiceConfig{Environment: "production"}, true, "name: is required"},
		{"invalid environment", ServiceConfig{Name: "svc", Environment: "invalid"}, true, "environment: must be one of"},
		{"invalid log level", ServiceConfig{Name: "svc", Environment: "production", Logging: logger.Config{Level: "loud"}}, true, "logging.level: must be one of"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tc.errMsg) {
					t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestEngineConfigDefaults(t *testing.T) {
	var cfg EngineConfig
	cfg.ApplyDefaults()
	if cfg.Stderr != StderrInherit {
		t.Errorf("expected stderr default, got %q", cfg.Stderr)
	}
	if cfg.OutputMode != OutputTruncate {
		t.Errorf("expected truncate default, got %q", cfg.OutputMode)
	}
	if cfg.GracePeriod != DefaultGracePeriod {
		t.Errorf("expected default grace period, got %v", cfg.GracePeriod)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestEngineConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		cfg    EngineConfig
		errMsg string
	}{
		{"bad output mode", EngineConfig{Stderr: "stderr", OutputMode: "overwrite"}, "output_mode"},
		{"missing dir", EngineConfig{Stderr: "stderr", OutputMode: "append", Dir: "/does/not/exist"}, "dir"},
		{"negative grace", EngineConfig{Stderr: "stderr", OutputMode: "append", GracePeriod: -time.Second}, "grace_period"},
		{"missing stderr", EngineConfig{OutputMode: "append"}, "stderr: is required"},
		{"bad env pair", EngineConfig{Stderr: "stderr", OutputMode: "append", Env: []string{"PATH"}}, "env[0]"},
		{"stderr dir missing", EngineConfig{Stderr: "/does/not/exist/err.log", OutputMode: "append"}, "stderr"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
			}
		})
	}
}

func TestTelemetryConfig(t *testing.T) {
	var cfg TelemetryConfig
	cfg.ApplyDefaults()
	if cfg.Enabled() {
		t.Error("telemetry should be off without an endpoint")
	}
	if cfg.SampleRate != 1.0 || cfg.Interval != 15*time.Second {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	cfg.Endpoint = "localhost:4318"
	if !cfg.Enabled() {
		t.Error("expected telemetry enabled")
	}
	cfg.SampleRate = 2
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "sample_rate") {
		t.Errorf("expected sample_rate error, got %v", err)
	}
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")

	yamlContent := `
name: nightly-report
environment: staging
engine:
  stderr: discard
  output_mode: append
  grace_period: 2s
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var cfg Config
	if err := LoadConfig("nightly-report", &cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	cfg.ApplyDefaults()

	if cfg.Name != "nightly-report" {
		t.Errorf("expected name 'nightly-report', got %q", cfg.Name)
	}
	if cfg.Environment != "staging" {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if cfg.Engine.Stderr != StderrDiscard {
		t.Errorf("expected discard stderr, got %q", cfg.Engine.Stderr)
	}
	if cfg.Engine.OutputMode != OutputAppend {
		t.Errorf("expected append, got %q", cfg.Engine.OutputMode)
	}
	if cfg.Engine.GracePeriod != 2*time.Second {
		t.Errorf("expected 2s grace period, got %v", cfg.Engine.GracePeriod)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(configPath, []byte("name: x\nengine:\n  stderr: stderr\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("ENGINE_STDERR", "/tmp/pypeline-errors.log")

	var cfg Config
	if err := LoadConfig("x", &cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Engine.Stderr != "/tmp/pypeline-errors.log" {
		t.Errorf("expected env override, got %q", cfg.Engine.Stderr)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg Config
	err := LoadConfig("nonexistent-service", &cfg, WithConfigFile("/nonexistent/path.yml"))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

func TestLoadConfigPrefixedEnvWins(t *testing.T) {
	t.Setenv("ENGINE_OUTPUT_MODE", "truncate")
	t.Setenv("PYPELINE_ENGINE_OUTPUT_MODE", "append")
	t.Setenv("PYPELINE_TELEMETRY_ENDPOINT", "collector:4318")

	var cfg Config
	if err := LoadConfig("x", &cfg, WithFileSystem(&mockFS{})); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Engine.OutputMode != OutputAppend {
		t.Errorf("expected prefixed variable to win, got %q", cfg.Engine.OutputMode)
	}
	if cfg.Telemetry.Endpoint != "collector:4318" {
		t.Errorf("expected telemetry endpoint from env, got %q", cfg.Telemetry.Endpoint)
	}
}

func TestLoadConfigDotenv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("PYPELINE_DOTENV_PROBE_DIR="+dir+"\n"), 0o644); err != nil {
		t.Fatalf("failed to write dotenv: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("PYPELINE_DOTENV_PROBE_DIR") })

	type probe struct {
		Dotenv struct {
			Probe struct {
				Dir string `mapstructure:"dir"`
			} `mapstructure:"probe"`
		} `mapstructure:"dotenv"`
	}
	var cfg probe
	if err := LoadConfig("x", &cfg, WithEnvFile(envPath), WithFileSystem(&mockFS{files: map[string]bool{envPath: true}, real: true})); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Dotenv.Probe.Dir != dir {
		t.Errorf("expected value from dotenv, got %q", cfg.Dotenv.Probe.Dir)
	}
}

func TestLoadConfigUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(configPath, []byte("engine: [unterminated"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	var cfg Config
	if err := LoadConfig("x", &cfg, WithConfigFile(configPath)); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}

func TestKeys(t *testing.T) {
	keys := Keys(&Config{})
	for _, want := range []string{
		"name", "environment", "logging.level", "engine.stderr",
		"engine.output_mode", "engine.grace_period", "telemetry.sample_rate",
	} {
		if !slices.Contains(keys, want) {
			t.Errorf("expected key %q in %v", want, keys)
		}
	}
	if slices.Contains(keys, "service_config.name") {
		t.Error("squashed struct must not add a prefix")
	}
	if Keys(42) != nil {
		t.Error("expected no keys for a non-struct")
	}
}

func TestResolverSearchOrder(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		env   string
		want  string
	}{
		{"env variable first", []string{"config.yml", "/etc/custom.yml"}, "/etc/custom.yml", "/etc/custom.yml"},
		{"tool named file", []string{"report.yml", "config.yml"}, "", "report.yml"},
		{"plain config", []string{"config.yml", filepath.Join("config", "config.yml")}, "", "config.yml"},
		{"cmd directory", []string{filepath.Join("cmd", "report", "config.yml")}, "", filepath.Join("cmd", "report", "config.yml")},
		{"user config dir", []string{filepath.Join("/home/u/.config", "report", "config.yml")}, "", filepath.Join("/home/u/.config", "report", "config.yml")},
		{"nothing", nil, "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fs := &mockFS{files: map[string]bool{}, env: map[string]string{EnvConfigFile: tc.env}}
			for _, f := range tc.files {
				fs.files[f] = true
			}
			got := (&Resolver{FileSystem: fs}).ResolveFiles("report", LoaderConfig{})
			if got.ConfigFile != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got.ConfigFile)
			}
		})
	}
}

func TestResolverEnvFiles(t *testing.T) {
	fs := &mockFS{files: map[string]bool{".env.report": true, ".env": true}}
	got := (&Resolver{FileSystem: fs}).ResolveFiles("report", LoaderConfig{})
	if got.EnvFile != ".env.report" {
		t.Errorf("expected tool specific dotenv, got %q", got.EnvFile)
	}

	explicit := (&Resolver{FileSystem: fs}).ResolveFiles("report", LoaderConfig{EnvFile: "custom.env"})
	if explicit.EnvFile != "custom.env" {
		t.Errorf("expected explicit dotenv, got %q", explicit.EnvFile)
	}
}

type mockFS struct {
	files map[string]bool
	env   map[string]string
	// real delegates LoadEnv to the OS implementation.
	real bool
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error {
	if m.real {
		return OSFileSystem{}.LoadEnv(path)
	}
	return nil
}
func (m *mockFS) Getenv(key string) string       { return m.env[key] }
func (m *mockFS) UserConfigDir() (string, error) { return "/home/u/.config", nil }

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	WithFileSystem(&mockFS{})(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	if lc.FileSystem == nil || lc.ConfigFile != "/path/to/config.yml" || lc.EnvFile != "/path/to/.env" {
		t.Errorf("unexpected loader config: %+v", lc)
	}
}
