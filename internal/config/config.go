// Package config resolves mission-server settings from flags, MISSION_*
// environment variables and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. MISSION_HTTP_ADDR.
const EnvPrefix = "MISSION"

const (
	keyConfig         = "config"
	keyHTTPAddr       = "http-addr"
	keyGRPCAddr       = "grpc-addr"
	keyMetricsAddr    = "metrics-addr"
	keyLogLevel       = "log-level"
	keyLogFormat      = "log-format"
	keySeed           = "seed"
	keyTracingEnabled = "tracing-enabled"
	keyTracingExp     = "tracing-exporter"
	keyTracingService = "tracing-service-name"
	keyTracingEnv     = "tracing-environment"
	keyOTLPEndpoint   = "otlp-endpoint"
	keySampleRatio    = "tracing-sample-ratio"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Tracing mirrors the knobs of observability.TracingConfig.
type Tracing struct {
	Enabled      bool
	ServiceName  string
	Environment  string
	Exporter     string
	OTLPEndpoint string
	SampleRatio  float64
}

// Config is the resolved server configuration.
type Config struct {
	HTTPAddr    string
	GRPCAddr    string
	MetricsAddr string

	LogLevel  string
	LogFormat string

	// Seed is an optional scenario file loaded into the store at startup.
	Seed string

	Tracing Tracing

	// File is the config file that was read, if any.
	File string
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		HTTPAddr:    ":5000",
		GRPCAddr:    ":50051",
		MetricsAddr: ":9090",
		LogLevel:    "info",
		LogFormat:   "text",
		Tracing: Tracing{
			ServiceName: "mission-designer",
			Exporter:    "stdout",
			SampleRatio: 1.0,
		},
	}
}

// RegisterFlags declares the server flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(keyConfig, "", "Path to a YAML config file")
	fs.String(keyHTTPAddr, d.HTTPAddr, "Address the REST API listens on")
	fs.String(keyGRPCAddr, d.GRPCAddr, "Address the gRPC evaluation service listens on")
	fs.String(keyMetricsAddr, d.MetricsAddr, "Address for Prometheus /metrics (empty disables)")
	fs.String(keyLogLevel, d.LogLevel, "Log level: debug, info, warn, error")
	fs.String(keyLogFormat, d.LogFormat, "Log format: text or json")
	fs.String(keySeed, "", "Scenario file loaded into the mission store at startup")
	fs.Bool(keyTracingEnabled, d.Tracing.Enabled, "Enable OpenTelemetry tracing")
	fs.String(keyTracingExp, d.Tracing.Exporter, "Tracing exporter: stdout or otlp")
	fs.String(keyTracingService, d.Tracing.ServiceName, "service.name resource attribute")
	fs.String(keyTracingEnv, "", "deployment.environment resource attribute (empty omits it)")
	fs.String(keyOTLPEndpoint, "", "OTLP gRPC collector endpoint")
	fs.Float64(keySampleRatio, d.Tracing.SampleRatio, "Trace sampling ratio in [0,1]")
}

// Parse builds a flag set named name, parses args and resolves the config.
func Parse(name string, args []string) (Config, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return Load(fs)
}

// Load resolves the config from an already parsed flag set. Precedence is
// explicit flag, environment, config file, flag default.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}

	cfg := Config{}
	if path := v.GetString(keyConfig); path != "" {
		v.SetConfigFile(path)
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		cfg.File = path
	}

	cfg.HTTPAddr = v.GetString(keyHTTPAddr)
	cfg.GRPCAddr = v.GetString(keyGRPCAddr)
	cfg.MetricsAddr = v.GetString(keyMetricsAddr)
	cfg.LogLevel = strings.ToLower(v.GetString(keyLogLevel))
	cfg.LogFormat = strings.ToLower(v.GetString(keyLogFormat))
	cfg.Seed = v.GetString(keySeed)
	cfg.Tracing = Tracing{
		Enabled:      v.GetBool(keyTracingEnabled),
		ServiceName:  v.GetString(keyTracingService),
		Environment:  v.GetString(keyTracingEnv),
		Exporter:     strings.ToLower(v.GetString(keyTracingExp)),
		OTLPEndpoint: v.GetString(keyOTLPEndpoint),
		SampleRatio:  v.GetFloat64(keySampleRatio),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.HTTPAddr == "" && c.GRPCAddr == "" {
		return fmt.Errorf("%w: at least one of http-addr and grpc-addr is required", ErrInvalid)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.LogFormat)
	}
	switch c.Tracing.Exporter {
	case "stdout", "otlp", "otlpgrpc":
	default:
		return fmt.Errorf("%w: tracing exporter %q", ErrInvalid, c.Tracing.Exporter)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("%w: tracing sample ratio %v outside [0,1]", ErrInvalid, c.Tracing.SampleRatio)
	}
	return nil
}
