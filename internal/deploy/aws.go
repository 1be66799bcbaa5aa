package deploy

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"git.home.luguber.info/inful/sitegen/internal/config"
)

// NewFromEnv creates a deployer backed by real AWS clients using the default
// credential chain (environment, shared config, instance role).
func NewFromEnv(ctx context.Context, target config.Target, opts Options) (*Deployer, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS configuration: %w", err)
	}

	var cf CloudFrontAPI
	if target.DistributionID != "" {
		cf = cloudfront.NewFromConfig(awsCfg)
	}
	return New(s3.NewFromConfig(awsCfg), cf, target, opts), nil
}
