package commands

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/config"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Output directory for the generated site (defaults to output.directory)"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return RunBuild(context.Background(), cfg, ResolveOutputDir(b.Output, cfg))
}

// RunBuild executes a full site build into outputDir.
func RunBuild(ctx context.Context, cfg *config.Config, outputDir string) error {
	slog.Info("Starting site build",
		"output", outputDir,
		"pages", len(cfg.Pages),
		"templates", cfg.TemplatesDir())

	result, err := build.New(cfg, outputDir).Build(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Build complete: %s (%d pages, %d assets)\n", result.OutputDir, result.Pages, result.Assets)
	return nil
}
