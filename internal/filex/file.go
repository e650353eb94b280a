// Package filex holds small filesystem helpers for the client.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates dir (relative paths resolve against the working
// directory) and returns its absolute path.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}

	return abs, nil
}

// imageExts maps receipt image extensions to their content types.
var imageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// IsImage reports whether path has a receipt image extension.
func IsImage(path string) bool {
	_, ok := imageExts[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ExtFor returns the file extension used to store content of contentType.
func ExtFor(contentType string) string {
	for ext, ct := range imageExts {
		if ct == contentType && ext != ".jpeg" {
			return ext
		}
	}
	return ".bin"
}

// ReadImage loads a receipt image, refusing anything that is not one.
func ReadImage(path string) ([]byte, error) {
	if !IsImage(path) {
		return nil, fmt.Errorf("%s: not a receipt image", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
