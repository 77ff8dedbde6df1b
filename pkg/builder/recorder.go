package builder

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeydtaylor/sparsewave/pkg/internal/recorder"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

type Recorder = recorder.Recorder

type S3Config = recorder.S3Config

type WindowRow = recorder.WindowRow

type SweepRow = recorder.SweepRow

func NewRecorder(cli recorder.Uploader, bucket string, options ...types.Option[*recorder.Recorder]) (*Recorder, error) {
	return recorder.New(cli, bucket, options...)
}

func NewRecorderFromConfig(ctx context.Context, cfg S3Config, options ...types.Option[*recorder.Recorder]) (*Recorder, error) {
	return recorder.NewFromConfig(ctx, cfg, options...)
}

func RecorderWithPrefix(prefix string) types.Option[*recorder.Recorder] {
	return recorder.WithPrefix(prefix)
}

func RecorderWithCompression(name string) types.Option[*recorder.Recorder] {
	return recorder.WithCompression(name)
}

func RecorderWithLogger(l ...types.Logger) types.Option[*recorder.Recorder] {
	return recorder.WithLogger(l...)
}

func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	return recorder.NewS3Client(ctx, cfg)
}

// LocalstackS3Config fills LocalStack defaults around bucket: local endpoint,
// path-style addressing and test credentials.
func LocalstackS3Config(bucket string) S3Config {
	return S3Config{
		Region:         "us-east-1",
		Bucket:         bucket,
		Prefix:         "sparsewave",
		Endpoint:       EnvOr("LOCALSTACK_ENDPOINT", "http://localhost:4566"),
		ForcePathStyle: true,
		AccessKey:      "test",
		SecretKey:      "test",
		SessionName:    "sparsewave",
		RoleDuration:   15 * time.Minute,
	}
}

// SessionRows lays out a finished session's windows for recording.
func SessionRows(s *Session) []WindowRow {
	return recorder.WindowRows(s.ID(), s.Config(), s.Buffer().Windows())
}

// SweepRows lays out sweep results for recording.
func SweepRows(signal string, windowSize int, stats []CompressionStats) []SweepRow {
	return recorder.SweepRows(signal, windowSize, stats)
}

// WriteParquet writes rows to a local Parquet file.
func WriteParquet[T any](name string, rows []T, compression string) error {
	return recorder.WriteFile(name, rows, compression)
}

// ListRecordings lists Parquet recordings under prefix.
func ListRecordings(ctx context.Context, cli *s3.Client, bucket, prefix string) ([]string, error) {
	if cli == nil {
		return nil, fmt.Errorf("s3 client is required")
	}
	return recorder.ListRecordings(ctx, cli, bucket, prefix)
}

// DownloadSession fetches a session recording.
func DownloadSession(ctx context.Context, cli *s3.Client, bucket, key string) ([]WindowRow, error) {
	return recorder.Download[WindowRow](ctx, cli, bucket, key)
}

func RecorderWithServerSideEncryption(mode, kmsKeyID string) types.Option[*recorder.Recorder] {
	return recorder.WithServerSideEncryption(mode, kmsKeyID)
}

// RecordingCompressions lists the accepted Parquet compression names.
func RecordingCompressions() []string {
	return append([]string(nil), recorder.Compressions...)
}
