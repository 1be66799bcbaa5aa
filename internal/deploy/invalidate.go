package deploy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/google/uuid"
)

// invalidate creates a CloudFront invalidation for the whole distribution.
// The site is a handful of files, so invalidating /* is cheaper than
// tracking individual paths. Returns the empty string when no distribution
// is configured.
func (d *Deployer) invalidate(ctx context.Context) (string, error) {
	if d.target.DistributionID == "" {
		return "", nil
	}
	if d.cf == nil {
		return "", fmt.Errorf("distribution %s configured but no CloudFront client available", d.target.DistributionID)
	}

	callerReference := "sitegen-" + uuid.NewString()
	out, err := d.cf.CreateInvalidation(ctx, &cloudfront.CreateInvalidationInput{
		DistributionId: aws.String(d.target.DistributionID),
		InvalidationBatch: &cftypes.InvalidationBatch{
			CallerReference: aws.String(callerReference),
			Paths: &cftypes.Paths{
				Quantity: aws.Int32(1),
				Items:    []string{"/*"},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create invalidation for distribution %s: %w", d.target.DistributionID, err)
	}

	invalidationID := ""
	if out.Invalidation != nil && out.Invalidation.Id != nil {
		invalidationID = *out.Invalidation.Id
	}
	slog.Info("Invalidation created", "distribution", d.target.DistributionID, "id", invalidationID)
	return invalidationID, nil
}
