// Package imaging prepares the pictures referenced by image fields: it reads
// the file, checks that it is an image, decodes it and fits it to a preview
// size.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"

	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxSize bounds the longest edge of a prepared image.
const DefaultMaxSize = 256

// ErrUnsupported is returned for files that are not a decodable image.
var ErrUnsupported = errors.New("unsupported image format")

// FileReader is the part of a filesystem the loader needs.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// Loader reads image files relative to a base directory, usually the folder
// holding the project file.
type Loader struct {
	fs      FileReader
	baseDir string
	maxSize int
}

// NewLoader creates a loader. maxSize <= 0 uses DefaultMaxSize.
func NewLoader(fs FileReader, baseDir string, maxSize int) *Loader {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Loader{fs: fs, baseDir: baseDir, maxSize: maxSize}
}

// LoadImage reads, decodes and fits the image at path.
func (l *Loader) LoadImage(path string) (image.Image, error) {
	if !filepath.IsAbs(path) && l.baseDir != "" {
		path = filepath.Join(l.baseDir, filepath.FromSlash(path))
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if !filetype.IsImage(data) {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, errors.Join(ErrUnsupported, err))
	}
	return Fit(img, l.maxSize), nil
}

// Fit scales img so its longest edge is at most target.
//
// Small images are enlarged by powers of two with nearest-neighbour sampling
// while doubling still fits, keeping pixel art crisp. Large images are halved
// until they fit and resampled with a Lanczos filter.
func Fit(img image.Image, target int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	axis := float64(max(w, h))
	if axis == 0 || target <= 0 {
		return img
	}

	t := float64(target)
	scale := 1.0
	filter := transform.NearestNeighbor
	for axis*scale < t && axis*scale*2 <= t {
		scale *= 2
	}
	for axis*scale > t {
		filter = transform.Lanczos
		scale /= 2
	}
	if scale == 1 {
		return img
	}

	nw := max(int(float64(w)*scale), 1)
	nh := max(int(float64(h)*scale), 1)
	return transform.Resize(img, nw, nh, filter)
}
