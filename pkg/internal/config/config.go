// Package config loads sparsewave settings from defaults, an optional YAML
// file, SPARSEWAVE_* environment variables and bound command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/internal/recorder"
	"github.com/joeydtaylor/sparsewave/pkg/internal/signal"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. SPARSEWAVE_SESSION_WINDOW_SIZE.
const EnvPrefix = "SPARSEWAVE"

// Config is the complete application configuration.
type Config struct {
	LogLevel  string           `mapstructure:"log_level" yaml:"log_level"`
	LogFile   string           `mapstructure:"log_file" yaml:"log_file"`
	Session   SessionSection   `mapstructure:"session" yaml:"session"`
	Transport TransportSection `mapstructure:"transport" yaml:"transport"`
	Emulator  EmulatorSection  `mapstructure:"emulator" yaml:"emulator"`
	Analysis  AnalysisSection  `mapstructure:"analysis" yaml:"analysis"`
	Metrics   MetricsSection   `mapstructure:"metrics" yaml:"metrics"`
	Recorder  RecorderSection  `mapstructure:"recorder" yaml:"recorder"`
}

// SessionSection configures a streaming session.
type SessionSection struct {
	Signal           string        `mapstructure:"signal" yaml:"signal"`
	WindowSize       int           `mapstructure:"window_size" yaml:"window_size"`
	SamplingInterval time.Duration `mapstructure:"sampling_interval" yaml:"sampling_interval"`
	Start            time.Duration `mapstructure:"start" yaml:"start"`
	Stop             time.Duration `mapstructure:"stop" yaml:"stop"`
	WarmUp           time.Duration `mapstructure:"warm_up" yaml:"warm_up"`
	Streaming        bool          `mapstructure:"streaming" yaml:"streaming"`
	StreamingWindow  int           `mapstructure:"streaming_window" yaml:"streaming_window"`
	FrameInterval    time.Duration `mapstructure:"frame_interval" yaml:"frame_interval"`
	Threshold        float64       `mapstructure:"threshold" yaml:"threshold"`
	Verbose          bool          `mapstructure:"verbose" yaml:"verbose"`
	DrainTimeout     time.Duration `mapstructure:"drain_timeout" yaml:"drain_timeout"`
}

// TransportSection selects the link.
type TransportSection struct {
	URL                string        `mapstructure:"url" yaml:"url"`
	DialTimeout        time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	KafkaFlushInterval time.Duration `mapstructure:"kafka_flush_interval" yaml:"kafka_flush_interval"`
	KafkaGroupID       string        `mapstructure:"kafka_group_id" yaml:"kafka_group_id"`
}

// EmulatorSection configures the software device.
type EmulatorSection struct {
	Listen    string  `mapstructure:"listen" yaml:"listen"`
	Mode      string  `mapstructure:"mode" yaml:"mode"` // "tcp" or "ws"
	Threshold float64 `mapstructure:"threshold" yaml:"threshold"`
}

// AnalysisSection configures the offline cost model and its RPC server.
type AnalysisSection struct {
	Signal           string          `mapstructure:"signal" yaml:"signal"`
	WindowSize       int             `mapstructure:"window_size" yaml:"window_size"`
	SamplingInterval time.Duration   `mapstructure:"sampling_interval" yaml:"sampling_interval"`
	Start            time.Duration   `mapstructure:"start" yaml:"start"`
	Stop             time.Duration   `mapstructure:"stop" yaml:"stop"`
	Steps            int             `mapstructure:"steps" yaml:"steps"`
	SizeModel        string          `mapstructure:"size_model" yaml:"size_model"`
	Listen           string          `mapstructure:"listen" yaml:"listen"`
	AllowedOrigins   []string        `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	TLS              types.TLSConfig `mapstructure:"tls" yaml:"tls"`
}

// MetricsSection configures the Prometheus endpoint and progress logging.
type MetricsSection struct {
	Listen          string        `mapstructure:"listen" yaml:"listen"`
	MonitorInterval time.Duration `mapstructure:"monitor_interval" yaml:"monitor_interval"`
}

// RecorderSection configures where recordings go. File and S3 may both be set.
type RecorderSection struct {
	File        string            `mapstructure:"file" yaml:"file"`
	Compression string            `mapstructure:"compression" yaml:"compression"`
	S3          recorder.S3Config `mapstructure:"s3" yaml:"s3"`
}

// SetDefaults registers the default for every key so environment overrides
// resolve during Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := types.DefaultSessionConfig()

	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")

	v.SetDefault("session.signal", "stream")
	v.SetDefault("session.window_size", d.WindowSize)
	v.SetDefault("session.sampling_interval", d.SamplingInterval)
	v.SetDefault("session.start", d.Start)
	v.SetDefault("session.stop", d.Stop)
	v.SetDefault("session.warm_up", d.WarmUp)
	v.SetDefault("session.streaming", d.Streaming)
	v.SetDefault("session.streaming_window", d.StreamingWindow)
	v.SetDefault("session.frame_interval", d.FrameInterval)
	v.SetDefault("session.threshold", d.Threshold)
	v.SetDefault("session.verbose", d.Verbose)
	v.SetDefault("session.drain_timeout", time.Duration(0))

	v.SetDefault("transport.url", "loopback://")
	v.SetDefault("transport.dial_timeout", 5*time.Second)
	v.SetDefault("transport.kafka_flush_interval", 10*time.Millisecond)
	v.SetDefault("transport.kafka_group_id", "")

	v.SetDefault("emulator.listen", "127.0.0.1:7700")
	v.SetDefault("emulator.mode", "tcp")
	v.SetDefault("emulator.threshold", d.Threshold)

	v.SetDefault("analysis.signal", "analysis")
	v.SetDefault("analysis.window_size", d.WindowSize)
	v.SetDefault("analysis.sampling_interval", d.SamplingInterval)
	v.SetDefault("analysis.start", time.Duration(0))
	v.SetDefault("analysis.stop", 500*time.Millisecond)
	v.SetDefault("analysis.steps", 101)
	v.SetDefault("analysis.size_model", "analysis")
	v.SetDefault("analysis.listen", "127.0.0.1:7710")
	v.SetDefault("analysis.allowed_origins", []string{})
	v.SetDefault("analysis.tls.usetls", false)
	v.SetDefault("analysis.tls.certfile", "")
	v.SetDefault("analysis.tls.keyfile", "")
	v.SetDefault("analysis.tls.cafile", "")

	v.SetDefault("metrics.listen", "")
	v.SetDefault("metrics.monitor_interval", time.Second)

	v.SetDefault("recorder.file", "")
	v.SetDefault("recorder.compression", "snappy")
	v.SetDefault("recorder.s3.region", "")
	v.SetDefault("recorder.s3.bucket", "")
	v.SetDefault("recorder.s3.prefix", "sparsewave")
	v.SetDefault("recorder.s3.endpoint", "")
	v.SetDefault("recorder.s3.force_path_style", false)
	v.SetDefault("recorder.s3.access_key", "")
	v.SetDefault("recorder.s3.secret_key", "")
	v.SetDefault("recorder.s3.session_token", "")
	v.SetDefault("recorder.s3.role_arn", "")
	v.SetDefault("recorder.s3.external_id", "")
	v.SetDefault("recorder.s3.session_name", "sparsewave")
	v.SetDefault("recorder.s3.role_duration", time.Duration(0))
	v.SetDefault("recorder.s3.sse", "")
	v.SetDefault("recorder.s3.kms_key_id", "")
}

// SearchPaths are scanned for sparsewave.yaml when no file is named.
var SearchPaths = []string{".", "$HOME/.config/sparsewave", "/etc/sparsewave"}

// NewViper returns a viper instance with defaults and environment binding.
// A non-empty file is read as YAML and must exist; otherwise the first
// sparsewave.yaml found on SearchPaths is read, if any.
func NewViper(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
		return v, nil
	}

	v.SetConfigName("sparsewave")
	v.SetConfigType("yaml")
	for _, p := range SearchPaths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load decodes and validates v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile is NewViper followed by Load.
func LoadFile(file string) (*Config, error) {
	v, err := NewViper(file)
	if err != nil {
		return nil, err
	}
	return Load(v)
}

// SessionConfig converts the session section.
func (c *Config) SessionConfig() types.SessionConfig {
	s := c.Session
	return types.SessionConfig{
		WindowSize:       s.WindowSize,
		SamplingInterval: s.SamplingInterval,
		Start:            s.Start,
		Stop:             s.Stop,
		WarmUp:           s.WarmUp,
		Streaming:        s.Streaming,
		StreamingWindow:  s.StreamingWindow,
		FrameInterval:    s.FrameInterval,
		Threshold:        s.Threshold,
		Verbose:          s.Verbose,
	}
}

// Validate checks every section and joins the failures.
func (c *Config) Validate() error {
	var errs []error
	if err := c.SessionConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("session: %w", err))
	}
	if _, err := signal.ByName(c.Session.Signal); err != nil {
		errs = append(errs, fmt.Errorf("session: %w", err))
	}
	if c.Transport.URL == "" {
		errs = append(errs, types.InvalidConfig("transport: url is required"))
	}
	if c.Emulator.Threshold < 0 || c.Emulator.Threshold > 1 {
		errs = append(errs, types.InvalidConfig("emulator: threshold must be in [0,1], got %v", c.Emulator.Threshold))
	}
	if c.Emulator.Mode != "tcp" && c.Emulator.Mode != "ws" {
		errs = append(errs, types.InvalidConfig("emulator: mode must be tcp or ws, got %q", c.Emulator.Mode))
	}
	if _, err := signal.ByName(c.Analysis.Signal); err != nil {
		errs = append(errs, fmt.Errorf("analysis: %w", err))
	}
	if c.Analysis.WindowSize <= 0 || c.Analysis.WindowSize > types.MaxWindowSize {
		errs = append(errs, types.InvalidConfig("analysis: window size %d out of range", c.Analysis.WindowSize))
	}
	if c.Analysis.SamplingInterval <= 0 || c.Analysis.Stop <= c.Analysis.Start {
		errs = append(errs, types.InvalidConfig("analysis: need a positive sampling interval and stop after start"))
	}
	if c.Analysis.Steps < 2 {
		errs = append(errs, types.InvalidConfig("analysis: steps must be at least 2, got %d", c.Analysis.Steps))
	}
	if _, err := SizeModel(c.Analysis.SizeModel); err != nil {
		errs = append(errs, fmt.Errorf("analysis: %w", err))
	}
	if !validCompression(c.Recorder.Compression) {
		errs = append(errs, types.InvalidConfig("recorder: unknown compression %q", c.Recorder.Compression))
	}
	return errors.Join(errs...)
}

// SizeModel resolves a size model by name: "default", "analysis" or "wire".
func SizeModel(name string) (types.SizeModel, error) {
	switch strings.ToLower(name) {
	case "", "default":
		return types.DefaultSizeModel(), nil
	case "analysis":
		return types.AnalysisSizeModel(), nil
	case "wire":
		return types.WireSizeModel(), nil
	default:
		return types.SizeModel{}, types.InvalidConfig("unknown size model %q", name)
	}
}

func validCompression(name string) bool {
	for _, c := range recorder.Compressions {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return name == ""
}

// YAML renders the configuration; credentials are omitted.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteFile writes the configuration as YAML to name.
func (c *Config) WriteFile(name string) error {
	data, err := c.YAML()
	if err != nil {
		return err
	}
	return os.WriteFile(name, data, 0o600)
}
