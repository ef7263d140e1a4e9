package assets

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"storycat.app/internal/ids"
)

var (
	ErrNotFound     = errors.New("assets: not found")
	ErrInvalidInput = errors.New("assets: invalid input")
)

// Bucket stores uploaded binary assets under a directory and serves them by
// public URL. Keys are ULIDs with the sanitized original filename appended,
// so object URLs stay stable and collision-free.
type Bucket struct {
	dir     string
	baseURL string
}

// NewBucket opens (and if needed creates) the bucket directory. baseURL is
// the public prefix objects are served under, e.g. "/assets".
func NewBucket(dir, baseURL string) (*Bucket, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("assets: bucket directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create bucket dir: %w", err)
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	if baseURL == "" {
		baseURL = "/assets"
	}
	return &Bucket{dir: dir, baseURL: baseURL}, nil
}

// Save streams the upload to disk and returns the object key.
func (b *Bucket) Save(filename string, r io.Reader) (string, error) {
	name := sanitize(filename)
	if name == "" {
		return "", fmt.Errorf("%w: filename is required", ErrInvalidInput)
	}
	key := ids.New() + "-" + name
	f, err := os.Create(filepath.Join(b.dir, key))
	if err != nil {
		return "", fmt.Errorf("create object: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write object: %w", err)
	}
	return key, nil
}

// PublicURL returns the URL an object is served under.
func (b *Bucket) PublicURL(key string) string {
	return b.baseURL + "/" + key
}

// Open returns a reader for a stored object.
func (b *Bucket) Open(key string) (io.ReadCloser, error) {
	key = sanitize(key)
	if key == "" {
		return nil, ErrNotFound
	}
	f, err := os.Open(filepath.Join(b.dir, key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Handler serves bucket objects over HTTP under baseURL.
func (b *Bucket) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, b.baseURL+"/")
		f, err := b.Open(key)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer f.Close()
		w.Header().Set("Cache-Control", "public, max-age=86400")
		_, _ = io.Copy(w, f)
	})
}

// sanitize reduces a filename to its base and a safe character set.
func sanitize(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	out := strings.Trim(sb.String(), "._")
	if out == "" || out == "." || out == ".." {
		return ""
	}
	return out
}
