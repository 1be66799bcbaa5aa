package commands

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/deploy"
)

// DeployCmd implements the 'deploy' command. The target is read from
// AWS_S3_BUCKET, AWS_S3_PREFIX, and CLOUDFRONT_DIST_ID (with config
// deploy defaults as fallback).
type DeployCmd struct {
	Output string `short:"o" help:"Output directory to upload (defaults to output.directory)"`
	Force  bool   `help:"Upload every file even if unchanged"`
	DryRun bool   `name:"dry-run" help:"Log the upload plan without touching AWS"`
}

func (d *DeployCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	target, err := config.TargetFromEnv(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	opts := deploy.Options{Force: d.Force, DryRun: d.DryRun}

	// A dry run only lists the plan, so it needs neither clients nor credentials.
	var deployer *deploy.Deployer
	if d.DryRun {
		deployer = deploy.New(nil, nil, target, opts)
	} else {
		deployer, err = deploy.NewFromEnv(ctx, target, opts)
		if err != nil {
			return err
		}
	}

	outputDir := ResolveOutputDir(d.Output, cfg)
	slog.Info("Starting deploy",
		"output", outputDir,
		"bucket", target.Bucket,
		"prefix", target.Prefix,
		"distribution", target.DistributionID,
		"dry_run", d.DryRun)

	result, err := deployer.Deploy(ctx, outputDir)
	if err != nil {
		return err
	}

	fmt.Printf("Deploy complete: %d uploaded, %d skipped\n", result.Uploaded, result.Skipped)
	if result.InvalidationID != "" {
		fmt.Printf("Invalidation created: %s\n", result.InvalidationID)
	}
	return nil
}
