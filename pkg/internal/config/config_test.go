package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/internal/config"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := config.LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got, want := cfg.SessionConfig(), types.DefaultSessionConfig(); got != want {
		t.Fatalf("session defaults %+v, want %+v", got, want)
	}
	if cfg.Transport.URL != "loopback://" || cfg.Analysis.Steps != 101 || cfg.Recorder.Compression != "snappy" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFile_YAMLThenEnv(t *testing.T) {
	name := filepath.Join(t.TempDir(), "sparsewave.yaml")
	yaml := `
session:
  window_size: 32
  sampling_interval: 2ms
  threshold: 0.25
transport:
  url: tcp://127.0.0.1:7700
recorder:
  s3:
    bucket: recordings
`
	if err := os.WriteFile(name, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("SPARSEWAVE_SESSION_THRESHOLD", "0.5")

	cfg, err := config.LoadFile(name)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	s := cfg.SessionConfig()
	if s.WindowSize != 32 || s.SamplingInterval != 2*time.Millisecond {
		t.Fatalf("file values not applied: %+v", s)
	}
	if s.Threshold != 0.5 {
		t.Fatalf("environment should win over file, threshold=%v", s.Threshold)
	}
	if s.Stop != 6*time.Second {
		t.Fatalf("unset keys keep defaults, stop=%v", s.Stop)
	}
	if cfg.Transport.URL != "tcp://127.0.0.1:7700" || cfg.Recorder.S3.Bucket != "recordings" || cfg.Recorder.S3.Prefix != "sparsewave" {
		t.Fatalf("unexpected nested values %+v / %+v", cfg.Transport, cfg.Recorder.S3)
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	if _, err := config.LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidate_JoinsFailures(t *testing.T) {
	cfg, err := config.LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	cfg.Session.Threshold = 2
	cfg.Session.Signal = "square"
	cfg.Analysis.SizeModel = "huge"
	err = cfg.Validate()
	if !errors.Is(err, types.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
	for _, want := range []string{"threshold", "square", "huge"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q should mention %q", err, want)
		}
	}
}

func TestSizeModel(t *testing.T) {
	m, err := config.SizeModel("wire")
	if err != nil || m != types.WireSizeModel() {
		t.Fatalf("SizeModel(wire) = %+v, %v", m, err)
	}
	if _, err := config.SizeModel("nope"); !errors.Is(err, types.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestWriteFile_RoundTrips(t *testing.T) {
	cfg, err := config.LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	cfg.Session.WindowSize = 128
	cfg.Session.FrameInterval = 45 * time.Millisecond
	cfg.Recorder.S3.SecretKey = "hunter2"

	name := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteFile(name); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	raw, _ := os.ReadFile(name)
	if strings.Contains(string(raw), "hunter2") {
		t.Fatalf("secret written to disk:\n%s", raw)
	}

	back, err := config.LoadFile(name)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if back.SessionConfig() != cfg.SessionConfig() {
		t.Fatalf("round trip changed session: %+v vs %+v", back.SessionConfig(), cfg.SessionConfig())
	}
}

func TestNewViper_SearchPaths(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sparsewave.yaml"), []byte("log_level: debug\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	saved := config.SearchPaths
	t.Cleanup(func() { config.SearchPaths = saved })

	config.SearchPaths = []string{filepath.Join(dir, "missing"), dir}
	cfg, err := config.LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("search path file not read, log_level=%q", cfg.LogLevel)
	}

	config.SearchPaths = []string{filepath.Join(dir, "missing")}
	if _, err := config.LoadFile(""); err != nil {
		t.Fatalf("no file on the search paths should fall back to defaults: %v", err)
	}
}
