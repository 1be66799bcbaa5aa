// Package scaffold provides the embedded starter site written by the init
// command: configuration, pongo2 templates, stylesheet, and the browser
// script the template markup depends on.
package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Files contains the starter site tree.
//
//go:embed all:site
var Files embed.FS

// root is the embedded directory the starter tree lives under.
const root = "site"

// Extract writes the starter site into targetDir. Without force, an existing
// site.yaml aborts so a real site is never clobbered by accident.
func Extract(targetDir string, force bool) error {
	configPath := filepath.Join(targetDir, "site.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	}

	return fs.WalkDir(Files, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(targetDir, rel)

		if d.IsDir() {
			return os.MkdirAll(dest, 0o755)
		}

		data, err := Files.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read embedded %s: %w", path, err)
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil { // #nosec G306 - scaffold files are site sources
			return fmt.Errorf("write %s: %w", dest, err)
		}
		return nil
	})
}
