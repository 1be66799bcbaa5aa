// Package manifest records the content of a built output tree. The deployer
// compares the local manifest against the one stored alongside the deployed
// site to skip files that have not changed.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/assets"
)

// Manifest is a complete record of an output tree at a point in time.
type Manifest struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Files       map[string]Entry `json:"files"`
}

// Entry describes a single output file. Path keys are slash-separated
// relative paths, matching the object keys they deploy to.
type Entry struct {
	Hash        string `json:"hash"` // sha256, hex encoded
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// FromDir walks an output directory and builds its manifest.
func FromDir(dir string) (*Manifest, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("output directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("output directory %s is not a directory", dir)
	}

	m := &Manifest{
		GeneratedAt: time.Now().UTC(),
		Files:       make(map[string]Entry),
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path) // #nosec G304 - path comes from walking the output tree
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}
		sum := sha256.Sum256(data)
		m.Files[filepath.ToSlash(rel)] = Entry{
			Hash:        hex.EncodeToString(sum[:]),
			Size:        int64(len(data)),
			ContentType: assets.ContentTypeFor(rel),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk output directory: %w", err)
	}

	return m, nil
}

// Paths returns the manifest's file paths in sorted order.
func (m *Manifest) Paths() []string {
	paths := make([]string, 0, len(m.Files))
	for p := range m.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// ChangedSince returns the paths whose content differs from prev, in sorted
// order. A nil prev marks every file as changed (first deploy).
func (m *Manifest) ChangedSince(prev *Manifest) []string {
	var changed []string
	for _, p := range m.Paths() {
		if prev == nil {
			changed = append(changed, p)
			continue
		}
		if old, ok := prev.Files[p]; !ok || old.Hash != m.Files[p].Hash {
			changed = append(changed, p)
		}
	}
	return changed
}

// ToJSON serializes the manifest to JSON.
func (m *Manifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}
