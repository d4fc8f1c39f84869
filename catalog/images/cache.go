package images

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"sync"
)

// CacheIndex is an in-memory view of the image cache directory, read once at
// session start so lookups never touch the filesystem. Writes go through
// Add so the index tracks files saved during the session.
type CacheIndex struct {
	mu    sync.Mutex
	dir   string
	names map[string]struct{}
}

// LoadCacheIndex lists dir and indexes its filenames, creating the directory
// if it does not exist yet.
func LoadCacheIndex(dir string) (*CacheIndex, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names[e.Name()] = struct{}{}
		}
	}

	// Parts without a photo resolve to DefaultImage, and the static file
	// route serves it from this directory, so it has to exist on disk.
	if _, ok := names[DefaultImage]; !ok {
		if err := writePlaceholder(filepath.Join(dir, DefaultImage)); err != nil {
			return nil, err
		}
		names[DefaultImage] = struct{}{}
	}

	return &CacheIndex{dir: dir, names: names}, nil
}

// writePlaceholder renders a flat grey square as the stand-in photo.
func writePlaceholder(path string) error {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}), image.Point{}, draw.Src)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Dir returns the cache directory path.
func (c *CacheIndex) Dir() string {
	return c.dir
}

// Has reports whether name is present in the cache.
func (c *CacheIndex) Has(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.names[name]
	return ok
}

// Save writes data to the cache directory under name and records it in the
// index.
func (c *CacheIndex) Save(name string, data []byte) error {
	if err := os.WriteFile(filepath.Join(c.dir, name), data, 0o644); err != nil {
		return err
	}

	c.mu.Lock()
	c.names[name] = struct{}{}
	c.mu.Unlock()
	return nil
}
