package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// Options selects the region and, for LocalStack, a shared endpoint and static credentials.
type Options struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// LoadAWSConfig loads the default AWS config. When Endpoint is set every
// client built from the returned config targets it instead of AWS.
func LoadAWSConfig(ctx context.Context, opts Options) (sdkaws.Config, error) {
	loaders := []func(*config.LoadOptions) error{}
	if opts.Region != "" {
		loaders = append(loaders, config.WithRegion(opts.Region))
	}
	if opts.Endpoint != "" {
		loaders = append(loaders, config.WithBaseEndpoint(opts.Endpoint))
	}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return cfg, fmt.Errorf("failed to load aws config: %w", err)
	}
	return cfg, nil
}
