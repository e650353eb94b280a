package images

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/contractorbook/internal/filex"
)

// LocalStore writes photos below a root directory and references them with
// file:// URLs.
type LocalStore struct {
	root string
	now  func() time.Time
}

func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filex.EnsureDir(root)
	if err != nil {
		return nil, err
	}
	return &LocalStore{root: abs, now: time.Now}, nil
}

func (s *LocalStore) Put(_ context.Context, data []byte) (string, error) {
	key, _ := storageKey(s.now(), data)
	path := filepath.Join(s.root, filepath.FromSlash(key))

	if _, err := filex.EnsureDir(filepath.Dir(path)); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String(), nil
}

func (s *LocalStore) Link(_ context.Context, ref string) (string, error) {
	if !strings.HasPrefix(ref, "file://") {
		return "", fmt.Errorf("not a local image reference: %q", ref)
	}
	return ref, nil
}
