// Package images decodes the images referenced by replaced boxes.
package images

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotDataURI is returned for a data URI without the "data:" scheme.
var ErrNotDataURI = errors.New("not a data URI")

// Loader decodes images from files or data URIs and caches them by source.
// Relative paths resolve against Dir.
type Loader struct {
	Dir string

	mu    sync.RWMutex
	cache map[string]image.Image
}

// NewLoader creates a loader resolving relative paths against dir.
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir, cache: map[string]image.Image{}}
}

// IsDataURI reports whether src is an inline data: URI.
func IsDataURI(src string) bool {
	return strings.HasPrefix(src, "data:")
}

// Load returns the decoded image for src.
func (l *Loader) Load(src string) (image.Image, error) {
	l.mu.RLock()
	img, ok := l.cache[src]
	l.mu.RUnlock()
	if ok {
		return img, nil
	}

	var err error
	if IsDataURI(src) {
		img, err = DecodeDataURI(src)
	} else {
		img, err = l.loadFile(src)
	}
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	if l.cache == nil {
		l.cache = map[string]image.Image{}
	}
	l.cache[src] = img
	l.mu.Unlock()
	return img, nil
}

func (l *Loader) loadFile(src string) (image.Image, error) {
	path := src
	if !filepath.IsAbs(path) && l.Dir != "" {
		path = filepath.Join(l.Dir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// Dimensions returns the natural size of src.
func (l *Loader) Dimensions(src string) (width, height int, err error) {
	img, err := l.Load(src)
	if err != nil {
		return 0, 0, err
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}

// DecodeDataURI decodes a base64 or percent-encoded data: URI.
func DecodeDataURI(uri string) (image.Image, error) {
	if !IsDataURI(uri) {
		return nil, ErrNotDataURI
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("data URI has no payload: %w", ErrNotDataURI)
	}

	var data []byte
	if strings.HasSuffix(meta, ";base64") {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode data URI: %w", err)
		}
		data = b
	} else {
		s, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode data URI: %w", err)
		}
		data = []byte(s)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode data URI image: %w", err)
	}
	return img, nil
}
