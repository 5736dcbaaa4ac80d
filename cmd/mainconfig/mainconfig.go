package mainconfig

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/joho/godotenv"

	"github.com/wolfman30/survey-assistant/internal/app/bootstrap"
	appconfig "github.com/wolfman30/survey-assistant/internal/config"
	"github.com/wolfman30/survey-assistant/pkg/logging"
)

// LoadEnv reads a local .env when present. Real environment variables win.
func LoadEnv() bool {
	return godotenv.Load() == nil
}

// LoadAWSConfig centralizes AWS SDK initialization so every binary shares the
// same LocalStack/production wiring.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, err
	}

	if endpoint := cfg.AWSEndpointOverride; endpoint != "" {
		awsCfg.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(
			func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
				switch service {
				case bedrockruntime.ServiceID, sesv2.ServiceID, s3.ServiceID:
					return aws.Endpoint{
						URL:           endpoint,
						PartitionID:   "aws",
						SigningRegion: cfg.AWSRegion,
					}, nil
				default:
					return aws.Endpoint{}, &aws.EndpointNotFoundError{}
				}
			},
		)
	}

	return awsCfg, nil
}

// OptionalAWSConfig loads AWS config only when a configured component needs
// it. A nil result means no AWS-backed component is enabled.
func OptionalAWSConfig(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*aws.Config, error) {
	if !bootstrap.NeedsAWS(cfg) {
		return nil, nil
	}
	awsCfg, err := LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("aws config loaded", "region", cfg.AWSRegion, "endpoint_override", cfg.AWSEndpointOverride != "")
	return &awsCfg, nil
}
