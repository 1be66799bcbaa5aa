// Package build orchestrates a site build: clean the output directory, copy
// static assets, and render every configured page.
package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/assets"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/content"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/render"
)

// Builder renders a site into its output directory.
type Builder struct {
	cfg       *config.Config
	outputDir string
	recorder  metrics.Recorder
}

// Result summarizes a completed build.
type Result struct {
	OutputDir string
	Pages     int
	Assets    int
	Duration  time.Duration
}

// New creates a builder. outputDir overrides the configured output directory
// when non-empty.
func New(cfg *config.Config, outputDir string) *Builder {
	if outputDir == "" {
		outputDir = cfg.OutputDir()
	}
	return &Builder{
		cfg:       cfg,
		outputDir: filepath.Clean(outputDir),
		recorder:  metrics.NoopRecorder{},
	}
}

// SetRecorder injects a metrics recorder (optional). Returns the builder for chaining.
func (b *Builder) SetRecorder(r metrics.Recorder) *Builder {
	if r == nil {
		b.recorder = metrics.NoopRecorder{}
		return b
	}
	b.recorder = r
	return b
}

// OutputDir returns the resolved output directory.
func (b *Builder) OutputDir() string { return b.outputDir }

// Build runs a full build. The same inputs always produce byte-identical
// output, so rerunning after a failure is safe and cheap.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()

	if err := b.prepareOutputDir(); err != nil {
		return nil, err
	}

	copied, err := b.copyAssets()
	if err != nil {
		return nil, err
	}

	pages, err := b.renderPages(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{
		OutputDir: b.outputDir,
		Pages:     pages,
		Assets:    copied,
		Duration:  time.Since(start),
	}
	b.recorder.ObserveBuildDuration(result.Duration)
	b.recorder.AddPagesRendered(pages)
	b.recorder.AddAssetsCopied(copied)

	slog.Info("Build complete",
		"output", b.outputDir,
		"pages", pages,
		"assets", copied,
		"duration", result.Duration)
	return result, nil
}

func (b *Builder) prepareOutputDir() error {
	if b.cfg.Output.Clean {
		if err := os.RemoveAll(b.outputDir); err != nil {
			return fmt.Errorf("clean output directory: %w", err)
		}
	}
	if err := os.MkdirAll(b.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}

func (b *Builder) copyAssets() (int, error) {
	srcDir := b.cfg.AssetsDir()
	if srcDir == "" {
		slog.Debug("No asset directory configured, skipping asset copy")
		return 0, nil
	}
	copied, err := assets.CopyTree(srcDir, filepath.Join(b.outputDir, "assets"))
	if err != nil {
		return 0, fmt.Errorf("copy assets: %w", err)
	}
	slog.Debug("Assets copied", "count", copied, "source", srcDir)
	return copied, nil
}

func (b *Builder) renderPages(ctx context.Context) (int, error) {
	renderer, err := render.New(b.cfg.TemplatesDir())
	if err != nil {
		return 0, err
	}

	pageCtx, err := content.Context(b.cfg.Site)
	if err != nil {
		return 0, fmt.Errorf("build template context: %w", err)
	}

	rendered := 0
	for _, page := range b.cfg.Pages {
		if err := ctx.Err(); err != nil {
			return rendered, err
		}
		if err := renderer.WritePage(b.outputDir, page, pageCtx); err != nil {
			return rendered, err
		}
		rendered++
		slog.Debug("Page rendered", "template", page.Template, "output", page.Output)
	}
	return rendered, nil
}
