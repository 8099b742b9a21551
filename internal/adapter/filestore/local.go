package filestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rl1809/micro-shop/internal/port"
)

var _ port.FileStore = (*Local)(nil)

// Local keeps uploads under a directory that the HTTP server exposes at baseURL.
type Local struct {
	root    string
	baseURL string
}

func NewLocal(root, baseURL string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Local{root: root, baseURL: baseURL}, nil
}

func (l *Local) Root() string {
	return l.root
}

func (l *Local) Save(ctx context.Context, folder, filename string, r io.Reader) (port.StoredFile, error) {
	key, err := cleanKey(folder, filename)
	if err != nil {
		return port.StoredFile{}, err
	}

	dst := filepath.Join(l.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return port.StoredFile{}, fmt.Errorf("create folder: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return port.StoredFile{}, fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return port.StoredFile{}, fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return port.StoredFile{}, fmt.Errorf("close file: %w", err)
	}

	return port.StoredFile{URL: l.baseURL + key, Key: key}, nil
}

func (l *Local) Delete(ctx context.Context, key string) error {
	clean := path.Clean("/" + key)[1:]
	if clean == "" {
		return fmt.Errorf("invalid key %q", key)
	}
	err := os.Remove(filepath.Join(l.root, filepath.FromSlash(clean)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// cleanKey joins folder and filename into a slash key that cannot escape
// the root.
func cleanKey(folder, filename string) (string, error) {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if name == "." || name == "/" || name == ".." {
		return "", fmt.Errorf("invalid file name %q", filename)
	}
	dir := path.Clean("/" + folder)[1:]
	if dir == "" {
		return name, nil
	}
	return dir + "/" + name, nil
}
