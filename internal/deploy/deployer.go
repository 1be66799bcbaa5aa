// Package deploy uploads a built output tree to S3 and optionally
// invalidates a CloudFront distribution afterwards.
//
// A manifest of the deployed tree is stored in the bucket itself, so repeat
// deploys skip files whose content has not changed while the local output
// directory stays free of deploy state. Redeploying is idempotent: the same
// output tree always produces the same keys and content.
package deploy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/manifest"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
)

// ManifestKey is the object key (relative to the prefix) under which the
// deployed-tree manifest is stored. It lives outside the site's URL space.
const ManifestKey = ".sitegen/manifest.json"

// S3API is the slice of the S3 client the deployer needs.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// CloudFrontAPI is the slice of the CloudFront client the deployer needs.
type CloudFrontAPI interface {
	CreateInvalidation(ctx context.Context, params *cloudfront.CreateInvalidationInput, optFns ...func(*cloudfront.Options)) (*cloudfront.CreateInvalidationOutput, error)
}

// Options control deploy behavior.
type Options struct {
	// Force uploads every file regardless of the remote manifest.
	Force bool
	// DryRun logs the upload plan without touching AWS.
	DryRun bool
}

// Result summarizes a completed deploy.
type Result struct {
	Uploaded       int
	Skipped        int
	InvalidationID string
	Duration       time.Duration
}

// Deployer uploads an output tree to a deploy target.
type Deployer struct {
	s3       S3API
	cf       CloudFrontAPI
	target   config.Target
	opts     Options
	recorder metrics.Recorder
}

// New creates a deployer. cf may be nil when the target has no distribution.
func New(s3Client S3API, cf CloudFrontAPI, target config.Target, opts Options) *Deployer {
	return &Deployer{
		s3:       s3Client,
		cf:       cf,
		target:   target,
		opts:     opts,
		recorder: metrics.NoopRecorder{},
	}
}

// SetRecorder injects a metrics recorder (optional). Returns the deployer for chaining.
func (d *Deployer) SetRecorder(r metrics.Recorder) *Deployer {
	if r == nil {
		d.recorder = metrics.NoopRecorder{}
		return d
	}
	d.recorder = r
	return d
}

// Deploy uploads the output directory to the target bucket.
func (d *Deployer) Deploy(ctx context.Context, outputDir string) (*Result, error) {
	start := time.Now()

	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("output directory %s not found, run a build first", outputDir)
	}

	local, err := manifest.FromDir(outputDir)
	if err != nil {
		return nil, err
	}

	// A dry run makes no AWS calls at all, so it cannot consult the remote
	// manifest and lists every file as a would-be upload.
	var previous *manifest.Manifest
	if !d.opts.Force && !d.opts.DryRun {
		previous = d.fetchRemoteManifest(ctx)
	}
	if d.opts.DryRun {
		slog.Info("Dry run, change detection skipped", "bucket", d.target.Bucket, "prefix", d.target.Prefix)
	}

	changed := make(map[string]bool)
	for _, p := range local.ChangedSince(previous) {
		changed[p] = true
	}

	result := &Result{}
	for _, relPath := range local.Paths() {
		if !changed[relPath] {
			result.Skipped++
			d.recorder.IncUploadResult(metrics.UploadSkipped)
			slog.Debug("Skipping unchanged file", "path", relPath)
			continue
		}

		key := d.target.Key(relPath)
		entry := local.Files[relPath]
		if d.opts.DryRun {
			slog.Info("Would upload file", "path", relPath, "key", key, "size", entry.Size)
			result.Uploaded++
			continue
		}

		if err := d.uploadFile(ctx, outputDir, relPath, entry); err != nil {
			d.recorder.IncUploadResult(metrics.UploadFailed)
			return result, fmt.Errorf("upload %s to %s: %w", relPath, key, err)
		}
		result.Uploaded++
		d.recorder.IncUploadResult(metrics.UploadUploaded)
		slog.Info("Uploaded file", "bucket", d.target.Bucket, "key", key, "size", entry.Size)
	}

	if !d.opts.DryRun {
		if err := d.putManifest(ctx, local); err != nil {
			return result, err
		}
		invalidationID, err := d.invalidate(ctx)
		if err != nil {
			return result, err
		}
		result.InvalidationID = invalidationID
	}

	result.Duration = time.Since(start)
	d.recorder.ObserveDeployDuration(result.Duration)

	slog.Info("Deploy complete",
		"bucket", d.target.Bucket,
		"prefix", d.target.Prefix,
		"uploaded", result.Uploaded,
		"skipped", result.Skipped,
		"dry_run", d.opts.DryRun,
		"duration", result.Duration)
	return result, nil
}

func (d *Deployer) uploadFile(ctx context.Context, outputDir, relPath string, entry manifest.Entry) error {
	data, err := os.ReadFile(filepath.Join(outputDir, filepath.FromSlash(relPath))) // #nosec G304
	if err != nil {
		return err
	}
	_, err = d.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(d.target.Bucket),
		Key:           aws.String(d.target.Key(relPath)),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(entry.ContentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	return err
}

// fetchRemoteManifest returns the manifest of the previous deploy, or nil
// when there is none (first deploy) or it cannot be read. A missing or
// unreadable manifest only costs re-uploading unchanged files.
func (d *Deployer) fetchRemoteManifest(ctx context.Context) *manifest.Manifest {
	out, err := d.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.target.Bucket),
		Key:    aws.String(d.target.Key(ManifestKey)),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if !errors.As(err, &noKey) {
			slog.Warn("Could not fetch remote manifest, uploading all files", "error", err)
		}
		return nil
	}
	defer func() {
		_ = out.Body.Close()
	}()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		slog.Warn("Could not read remote manifest, uploading all files", "error", err)
		return nil
	}
	m, err := manifest.FromJSON(data)
	if err != nil {
		slog.Warn("Could not parse remote manifest, uploading all files", "error", err)
		return nil
	}
	return m
}

func (d *Deployer) putManifest(ctx context.Context, m *manifest.Manifest) error {
	data, err := m.ToJSON()
	if err != nil {
		return err
	}
	_, err = d.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(d.target.Bucket),
		Key:           aws.String(d.target.Key(ManifestKey)),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("upload manifest: %w", err)
	}
	return nil
}
