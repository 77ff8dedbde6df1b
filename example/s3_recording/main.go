package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/builder"
)

// Requires LocalStack (or another S3-compatible endpoint) with the bucket created:
//
//	awslocal s3 mb s3://sparsewave-recordings
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := builder.NewLogger()
	defer logger.Flush()

	bucket := builder.EnvOr("S3_BUCKET", "sparsewave-recordings")
	s3cfg := builder.LocalstackS3Config(bucket)

	cfg := builder.DefaultSessionConfig()
	cfg.Stop = time.Second

	session, err := builder.NewSession(cfg,
		builder.NewTransportOpener("loopback://", builder.TransportWithFrameShape(cfg.WindowSize, cfg.Threshold)),
		builder.SessionWithLogger(logger),
	)
	if err != nil {
		panic(err)
	}
	if err := session.Run(ctx); err != nil {
		panic(err)
	}

	rec, err := builder.NewRecorderFromConfig(ctx, s3cfg,
		builder.RecorderWithCompression("zstd"),
		builder.RecorderWithLogger(logger),
	)
	if err != nil {
		panic(err)
	}
	key, err := rec.RecordSession(ctx, session.ID(), session.Config(), session.Buffer().Windows())
	if err != nil {
		panic(err)
	}
	fmt.Printf("uploaded s3://%s/%s\n", bucket, key)

	cli, err := builder.NewS3Client(ctx, s3cfg)
	if err != nil {
		panic(err)
	}
	rows, err := builder.DownloadSession(ctx, cli, bucket, key)
	if err != nil {
		panic(err)
	}
	fmt.Printf("read back %d windows\n", len(rows))
}
