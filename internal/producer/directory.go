package producer

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// DirectorySource cycles through the images of a directory in name order.
type DirectorySource struct {
	files    []string
	next     int
	maxWidth int
	quality  int
	mu       sync.Mutex
}

// OpenDirectory lists the images in dir. A directory without images is an error.
func OpenDirectory(dir string, maxWidth, quality int) (*DirectorySource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if slices.Contains(imageExtensions, ext) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no images found in %s", dir)
	}

	return &DirectorySource{files: files, maxWidth: maxWidth, quality: quality}, nil
}

// Capture decodes the next image, scales it and re-encodes it as JPEG.
func (d *DirectorySource) Capture() ([]byte, error) {
	d.mu.Lock()
	path := d.files[d.next]
	d.next = (d.next + 1) % len(d.files)
	d.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	bounds := src.Bounds()
	if bounds.Empty() {
		return nil, ErrNotReady
	}

	var out image.Image = src
	if scale := scaleFor(bounds.Dx(), bounds.Dy(), d.maxWidth); scale < 1 {
		w := max(1, int(float64(bounds.Dx())*scale))
		h := max(1, int(float64(bounds.Dy())*scale))
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: d.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return buf.Bytes(), nil
}

// Len returns the number of images in rotation.
func (d *DirectorySource) Len() int {
	return len(d.files)
}

func (d *DirectorySource) Close() error {
	return nil
}
