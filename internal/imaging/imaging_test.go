package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFit(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"upscale by powers of two", 64, 32, 256, 128},
		{"no upscale past target", 200, 100, 200, 100},
		{"exact size", 256, 256, 256, 256},
		{"halve large", 300, 150, 150, 75},
		{"halve twice", 1024, 512, 256, 128},
		{"tall", 10, 40, 40, 160},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, tt.w, tt.h))
			got := Fit(img, DefaultMaxSize).Bounds()
			assert.Equal(t, tt.wantW, got.Dx())
			assert.Equal(t, tt.wantH, got.Dy())
		})
	}
}

type mapFS map[string][]byte

func (m mapFS) ReadFile(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLoader(t *testing.T) {
	files := mapFS{
		"/proj/art/hero.png": encodePNG(t, 16, 16),
		"/proj/notes.txt":    []byte("not an image"),
	}
	l := NewLoader(files, "/proj", 0)

	img, err := l.LoadImage("art/hero.png")
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())

	_, err = l.LoadImage("notes.txt")
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = l.LoadImage("missing.png")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
