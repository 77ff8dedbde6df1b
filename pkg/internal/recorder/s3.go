package recorder

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// S3Config locates the bucket recordings are uploaded to. Empty keys fall
// back to the default credential chain; a RoleARN is assumed through STS on
// top of whichever credentials were resolved.
type S3Config struct {
	Region         string        `mapstructure:"region" yaml:"region"`
	Bucket         string        `mapstructure:"bucket" yaml:"bucket"`
	Prefix         string        `mapstructure:"prefix" yaml:"prefix"`
	Endpoint       string        `mapstructure:"endpoint" yaml:"endpoint"` // LocalStack/MinIO
	ForcePathStyle bool          `mapstructure:"force_path_style" yaml:"force_path_style"`
	AccessKey      string        `mapstructure:"access_key" yaml:"access_key"`
	SecretKey      string        `mapstructure:"secret_key" yaml:"-"`
	SessionToken   string        `mapstructure:"session_token" yaml:"-"`
	RoleARN        string        `mapstructure:"role_arn" yaml:"role_arn"`
	ExternalID     string        `mapstructure:"external_id" yaml:"external_id"`
	SessionName    string        `mapstructure:"session_name" yaml:"session_name"`
	RoleDuration   time.Duration `mapstructure:"role_duration" yaml:"role_duration"`
	SSE            string        `mapstructure:"sse" yaml:"sse"` // "", "aes256" or "aws:kms"
	KMSKeyID       string        `mapstructure:"kms_key_id" yaml:"kms_key_id"`

	HTTPClient *http.Client `mapstructure:"-" yaml:"-"`
}

// NewS3Client builds an S3 client from cfg.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	var loaders []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loaders = append(loaders, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken)),
		))
	}
	if cfg.HTTPClient != nil {
		loaders = append(loaders, config.WithHTTPClient(cfg.HTTPClient))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, err
	}

	if cfg.RoleARN != "" {
		stsClient := sts.NewFromConfig(awsCfg, func(o *sts.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
		})
		provider := stscreds.NewAssumeRoleProvider(stsClient, cfg.RoleARN, func(o *stscreds.AssumeRoleOptions) {
			if cfg.SessionName != "" {
				o.RoleSessionName = cfg.SessionName
			}
			if cfg.RoleDuration > 0 {
				o.Duration = cfg.RoleDuration
			}
			if cfg.ExternalID != "" {
				o.ExternalID = aws.String(cfg.ExternalID)
			}
		})
		awsCfg.Credentials = aws.NewCredentialsCache(provider)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.ForcePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}
