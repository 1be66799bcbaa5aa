// Package assets copies static assets into the build output and resolves
// the content types the deployer tags uploads with.
package assets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// CopyTree recursively copies the asset directory tree into dst, preserving
// relative paths and file permissions. It returns the number of files copied.
func CopyTree(src, dst string) (int, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("asset directory %s: %w", src, err)
	}
	if !srcInfo.IsDir() {
		return 0, fmt.Errorf("asset directory %s is not a directory", src)
	}

	if err := os.MkdirAll(dst, srcInfo.Mode()); err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return 0, err
	}

	copied := 0
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			n, err := CopyTree(srcPath, dstPath)
			if err != nil {
				return copied, err
			}
			copied += n
		} else {
			if err := copyFile(srcPath, dstPath); err != nil {
				return copied, err
			}
			copied++
		}
	}

	return copied, nil
}

// copyFile copies a single file from src to dst preserving permissions.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src) // #nosec G304 - paths come from walking the asset tree
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	dstFile, err := os.Create(dst) // #nosec G304
	if err != nil {
		return err
	}
	defer func() {
		_ = dstFile.Close()
	}()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.Chmod(dst, srcInfo.Mode())
}

// contentTypes maps file extensions to upload content types. Text types
// carry an explicit charset so browsers render UTF-8 copy correctly.
var contentTypes = map[string]string{
	".html":  "text/html; charset=utf-8",
	".css":   "text/css; charset=utf-8",
	".js":    "application/javascript; charset=utf-8",
	".json":  "application/json",
	".xml":   "application/xml",
	".txt":   "text/plain; charset=utf-8",
	".svg":   "image/svg+xml",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".webp":  "image/webp",
	".ico":   "image/x-icon",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".pdf":   "application/pdf",
}

// ContentTypeFor returns the content type for a file path based on its
// extension, defaulting to application/octet-stream.
func ContentTypeFor(path string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return ct
	}
	return "application/octet-stream"
}
