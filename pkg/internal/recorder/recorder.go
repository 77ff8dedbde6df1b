package recorder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/joeydtaylor/sparsewave/pkg/internal/internallogger"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

const parquetContentType = "application/vnd.apache.parquet"

// Uploader is the subset of the S3 API the recorder needs.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Recorder uploads Parquet recordings under bucket/prefix.
type Recorder struct {
	internallogger.Registry

	cli         Uploader
	bucket      string
	prefix      string
	compression string
	sse         string
	kmsKeyID    string
	now         func() time.Time

	componentMetadata types.ComponentMetadata
}

// New creates a recorder writing to bucket through cli.
func New(cli Uploader, bucket string, options ...types.Option[*Recorder]) (*Recorder, error) {
	if cli == nil {
		return nil, types.InvalidConfig("recorder needs an S3 client")
	}
	if bucket == "" {
		return nil, types.InvalidConfig("recorder needs a bucket")
	}
	r := &Recorder{
		cli:               cli,
		bucket:            bucket,
		compression:       "snappy",
		now:               time.Now,
		componentMetadata: types.ComponentMetadata{Type: "RECORDER"},
	}
	for _, option := range options {
		option(r)
	}
	if _, err := compressionOption(r.compression); err != nil {
		return nil, err
	}
	return r, nil
}

// NewFromConfig creates the S3 client described by cfg and a recorder on it.
func NewFromConfig(ctx context.Context, cfg S3Config, options ...types.Option[*Recorder]) (*Recorder, error) {
	cli, err := NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	opts := append([]types.Option[*Recorder]{WithPrefix(cfg.Prefix), WithServerSideEncryption(cfg.SSE, cfg.KMSKeyID)}, options...)
	return New(cli, cfg.Bucket, opts...)
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) types.Option[*Recorder] {
	return func(r *Recorder) { r.prefix = strings.Trim(prefix, "/") }
}

// WithCompression sets the Parquet page compression.
func WithCompression(name string) types.Option[*Recorder] {
	return func(r *Recorder) {
		if name != "" {
			r.compression = name
		}
	}
}

// WithServerSideEncryption requests SSE on upload; mode is "aes256" or "aws:kms".
func WithServerSideEncryption(mode, kmsKeyID string) types.Option[*Recorder] {
	return func(r *Recorder) {
		r.sse = strings.ToLower(mode)
		r.kmsKeyID = kmsKeyID
	}
}

// WithLogger attaches loggers.
func WithLogger(l ...types.Logger) types.Option[*Recorder] {
	return func(r *Recorder) { r.ConnectLogger(l...) }
}

// RecordSession uploads the reconstructed windows of one session and returns
// the object key.
func (r *Recorder) RecordSession(ctx context.Context, sessionID string, cfg types.SessionConfig, windows []types.Window) (string, error) {
	body, err := Encode(WindowRows(sessionID, cfg, windows), r.compression)
	if err != nil {
		return "", err
	}
	key := r.key("sessions", sessionID)
	if err := r.put(ctx, key, body, len(windows)); err != nil {
		return "", err
	}
	return key, nil
}

// RecordSweep uploads a compression sweep and returns the object key.
func (r *Recorder) RecordSweep(ctx context.Context, signal string, windowSize int, stats []types.CompressionStats) (string, error) {
	body, err := Encode(SweepRows(signal, windowSize, stats), r.compression)
	if err != nil {
		return "", err
	}
	key := r.key("sweeps", signal)
	if err := r.put(ctx, key, body, len(stats)); err != nil {
		return "", err
	}
	return key, nil
}

func (r *Recorder) key(kind, name string) string {
	ts := r.now().UTC()
	file := fmt.Sprintf("%s-%s.parquet", name, ts.Format("20060102T150405.000Z"))
	return path.Join(r.prefix, kind, ts.Format("2006/01/02"), file)
}

func (r *Recorder) put(ctx context.Context, key string, body []byte, rows int) error {
	put := &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(parquetContentType),
	}
	switch r.sse {
	case "aes256":
		put.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	case "aws:kms":
		put.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		if r.kmsKeyID != "" {
			put.SSEKMSKeyId = aws.String(r.kmsKeyID)
		}
	}
	if _, err := r.cli.PutObject(ctx, put); err != nil {
		r.NotifyLoggers(types.ErrorLevel, "upload failed", "component", r.componentMetadata, "event", "PutObject", "key", key, "error", err)
		return fmt.Errorf("upload s3://%s/%s: %w", r.bucket, key, err)
	}
	r.NotifyLoggers(types.InfoLevel, "recording uploaded", "component", r.componentMetadata, "event", "PutObject",
		"bucket", r.bucket, "key", key, "rows", rows, "bytes", len(body), "compression", r.compression)
	return nil
}

// WriteFile writes rows to a local Parquet file.
func WriteFile[T any](name string, rows []T, compression string) error {
	body, err := Encode(rows, compression)
	if err != nil {
		return err
	}
	return os.WriteFile(name, body, 0o644)
}
