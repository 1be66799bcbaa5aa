package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/server"
)

// ServeCmd implements the 'serve' command: a local preview server over the
// output directory with debounced rebuilds on source changes.
type ServeCmd struct {
	Output  string        `short:"o" help:"Output directory to serve (defaults to output.directory)"`
	Port    int           `short:"p" default:"8000" help:"Port to listen on"`
	Watch   bool          `negatable:"" default:"true" help:"Rebuild when templates, assets, or config change"`
	Quiet   time.Duration `default:"250ms" help:"Quiet window before a rebuild after a change burst"`
	Metrics bool          `help:"Expose Prometheus metrics on /metrics"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	recorder := metrics.Recorder(metrics.NoopRecorder{})
	var registry *prom.Registry
	if s.Metrics {
		registry = prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)
	}

	outputDir := ResolveOutputDir(s.Output, cfg)
	builder := build.New(cfg, outputDir).SetRecorder(recorder)

	// Always build up front so the server never serves a stale or missing tree.
	if _, err := builder.Build(ctx); err != nil {
		return err
	}

	srv := server.New(builder.OutputDir(), s.Port)
	if registry != nil {
		srv.SetMetricsHandler(metrics.HTTPHandler(registry))
	}

	if s.Watch {
		watcher, err := newSourceWatcher(ctx, root.Config, cfg, builder, s.Quiet)
		if err != nil {
			return err
		}
		go func() {
			if err := watcher.Run(ctx); err != nil {
				slog.Error("Watcher stopped", "error", err)
			}
		}()
	}

	fmt.Printf("Serving %s on http://localhost:%d\n", builder.OutputDir(), s.Port)
	return srv.Run(ctx)
}

// newSourceWatcher watches the template directory, asset directory, and the
// config file. A change reloads the config and rebuilds, so copy edits in
// site.yaml show up without restarting.
func newSourceWatcher(ctx context.Context, configPath string, cfg *config.Config, builder *build.Builder, quiet time.Duration) (*server.Watcher, error) {
	paths := []string{cfg.TemplatesDir(), configPath}
	if dir := cfg.AssetsDir(); dir != "" {
		if _, err := os.Stat(dir); err == nil {
			paths = append(paths, dir)
		}
	}

	outputDir := builder.OutputDir()
	rebuild := func() {
		fresh, err := config.Load(configPath)
		if err != nil {
			slog.Error("Rebuild skipped, config invalid", "error", err)
			return
		}
		if _, err := build.New(fresh, outputDir).Build(ctx); err != nil {
			slog.Error("Rebuild failed", "error", err)
			return
		}
		slog.Info("Site rebuilt after source change")
	}

	return server.NewWatcher(paths, quiet, rebuild)
}
