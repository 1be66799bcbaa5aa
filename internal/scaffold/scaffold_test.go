package scaffold

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/config"
)

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Extract(dir, false))

	for _, rel := range []string{
		"site.yaml",
		"templates/base.html",
		"templates/index.html",
		"templates/service.html",
		"templates/contact-form.html",
		"assets/css/site.css",
		"assets/js/site.js",
		"assets/img/specialist.svg",
	} {
		_, err := os.Stat(filepath.Join(dir, rel))
		assert.NoError(t, err, "missing scaffold file %s", rel)
	}
}

func TestExtract_RefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.yaml"), []byte("site: {}"), 0o600))

	err := Extract(dir, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	require.NoError(t, Extract(dir, true))
}

// The starter site must load and build out of the box.
func TestScaffoldedSiteBuilds(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Extract(dir, false))

	cfg, err := config.Load(filepath.Join(dir, "site.yaml"))
	require.NoError(t, err)

	result, err := build.New(cfg, "").Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, 3, result.Assets)

	index, err := os.ReadFile(filepath.Join(result.OutputDir, "index.html"))
	require.NoError(t, err)
	html := string(index)
	assert.Contains(t, html, "fade-in")
	assert.Contains(t, html, "modal-form")
	assert.Contains(t, html, "Tratamiento de Conductos")
	// The markdown bio renders to real HTML, not escaped entities.
	assert.Contains(t, html, "<strong>microscopio operatorio</strong>")
	assert.Contains(t, html, `data-src="/assets/img/specialist.svg"`)
	assert.NotContains(t, html, "{{")
	assert.NotContains(t, html, "{%")
}
