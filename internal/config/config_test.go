package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse("test", nil)
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFlags(t *testing.T) {
	cfg, err := Parse("test", []string{
		"--http-addr=127.0.0.1:8080",
		"--log-level=DEBUG",
		"--tracing-enabled",
		"--tracing-exporter=otlp",
		"--tracing-environment=staging",
		"--otlp-endpoint=collector:4317",
		"--tracing-sample-ratio=0.25",
		"--seed=scenarios/globalwatch.yaml",
	})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "scenarios/globalwatch.yaml", cfg.Seed)
	assert.Equal(t, Tracing{
		Enabled:      true,
		ServiceName:  "mission-designer",
		Environment:  "staging",
		Exporter:     "otlp",
		OTLPEndpoint: "collector:4317",
		SampleRatio:  0.25,
	}, cfg.Tracing)
}

func TestEnvOverridesDefaultsButNotFlags(t *testing.T) {
	t.Setenv("MISSION_GRPC_ADDR", ":6000")
	t.Setenv("MISSION_LOG_FORMAT", "json")
	t.Setenv("MISSION_HTTP_ADDR", ":7000")

	cfg, err := Parse("test", []string{"--http-addr=:8000"})
	require.NoError(t, err)
	assert.Equal(t, ":6000", cfg.GRPCAddr)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, ":8000", cfg.HTTPAddr, "explicit flag wins over env")
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	body := "grpc-addr: \":7070\"\nlog-level: warn\ntracing-sample-ratio: 0.5\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Parse("test", []string{"--config", path})
	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, ":7070", cfg.GRPCAddr)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.InDelta(t, 0.5, cfg.Tracing.SampleRatio, 1e-9)
	assert.Equal(t, ":5000", cfg.HTTPAddr)
}

func TestConfigFileMissing(t *testing.T) {
	_, err := Parse("test", []string{"--config", filepath.Join(t.TempDir(), "absent.yaml")})
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"ratio above one":  func(c *Config) { c.Tracing.SampleRatio = 1.5 },
		"ratio negative":   func(c *Config) { c.Tracing.SampleRatio = -0.1 },
		"unknown exporter": func(c *Config) { c.Tracing.Exporter = "zipkin" },
		"unknown level":    func(c *Config) { c.LogLevel = "loud" },
		"unknown format":   func(c *Config) { c.LogFormat = "xml" },
		"no listeners":     func(c *Config) { c.HTTPAddr, c.GRPCAddr = "", "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Validate()=%v, want ErrInvalid", err)
			}
		})
	}
	require.NoError(t, Default().Validate())
}

func TestParseRejectsUnknownFlag(t *testing.T) {
	_, err := Parse("test", []string{"--no-such-flag"})
	assert.ErrorIs(t, err, ErrInvalid)
}
