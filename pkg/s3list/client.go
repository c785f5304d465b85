// Package s3list lists S3 objects page by page with the AWS SDK.
package s3list

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ClientConfig selects how the AWS SDK client is built. Empty fields fall
// back to the SDK's default resolution chain (environment, shared config,
// instance metadata).
type ClientConfig struct {
	// Region overrides the configured AWS region.
	Region string

	// Profile selects a shared config profile.
	Profile string

	// Endpoint points the client at an S3-compatible service. Path-style
	// addressing is enabled when it is set.
	Endpoint string
}

// NewClient creates an S3 client from the default AWS configuration,
// adjusted by cfg.
func NewClient(ctx context.Context, cfg ClientConfig) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
