// Package render renders the configured pages through pongo2 templates.
//
// pongo2 uses Django/Jinja2 syntax, so template sources carry placeholders
// like {{ site_phone }} and blocks like {% for service in services %}. The
// engine substitutes every tag at render time; an unknown tag is a parse
// error, so rendered output never contains literal placeholder tokens.
package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/flosch/pongo2/v6"

	"git.home.luguber.info/inful/sitegen/internal/config"
)

// Renderer renders templates from a single template directory.
type Renderer struct {
	set *pongo2.TemplateSet
	dir string
}

// New creates a renderer for the given template directory.
func New(templatesDir string) (*Renderer, error) {
	info, err := os.Stat(templatesDir)
	if err != nil {
		return nil, fmt.Errorf("template directory %s: %w", templatesDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template directory %s is not a directory", templatesDir)
	}

	loader, err := pongo2.NewLocalFileSystemLoader(templatesDir)
	if err != nil {
		return nil, fmt.Errorf("create template loader: %w", err)
	}
	return &Renderer{set: pongo2.NewSet("sitegen", loader), dir: templatesDir}, nil
}

// RenderPage renders one page template with the given context.
func (r *Renderer) RenderPage(page config.Page, ctx pongo2.Context) ([]byte, error) {
	tpl, err := r.set.FromFile(page.Template)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", page.Template, err)
	}
	out, err := tpl.ExecuteBytes(ctx)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", page.Template, err)
	}
	return out, nil
}

// WritePage renders a page and writes it beneath outputDir, creating parent
// directories as needed.
func (r *Renderer) WritePage(outputDir string, page config.Page, ctx pongo2.Context) error {
	data, err := r.RenderPage(page, ctx)
	if err != nil {
		return err
	}

	outPath := filepath.Join(outputDir, filepath.FromSlash(page.Output))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output directory for %s: %w", page.Output, err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil { // #nosec G306 - site output is world-readable
		return fmt.Errorf("write %s: %w", page.Output, err)
	}
	return nil
}
