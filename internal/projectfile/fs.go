package projectfile

import (
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
)

// FS is the part of a filesystem that saving and opening projects needs.
type FS interface {
	DirExists(path string) bool
	MkdirAll(path string) error
	FileExists(path string) bool
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
}

// OSFS is the local filesystem.
type OSFS struct{}

func (OSFS) DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (OSFS) MkdirAll(path string) error { return os.MkdirAll(path, 0o755) }

func (OSFS) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (OSFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func (OSFS) WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

// MemFS keeps files in memory. Paths are slash-separated; a leading slash is
// optional.
type MemFS struct {
	fs *mem.FS
}

// NewMemFS creates an empty in-memory filesystem.
func NewMemFS() (*MemFS, error) {
	m, err := mem.NewFS()
	if err != nil {
		return nil, err
	}
	return &MemFS{fs: m}, nil
}

// memPath maps p onto the rooted, unprefixed form io/fs paths use.
func memPath(p string) string {
	p = path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	if p == "/" {
		return "."
	}
	return strings.TrimPrefix(p, "/")
}

func (m *MemFS) DirExists(p string) bool {
	info, err := hackpadfs.Stat(m.fs, memPath(p))
	return err == nil && info.IsDir()
}

func (m *MemFS) MkdirAll(p string) error {
	return hackpadfs.MkdirAll(m.fs, memPath(p), 0o755)
}

func (m *MemFS) FileExists(p string) bool {
	info, err := hackpadfs.Stat(m.fs, memPath(p))
	return err == nil && info.Mode().IsRegular()
}

func (m *MemFS) ReadFile(p string) ([]byte, error) {
	return hackpadfs.ReadFile(m.fs, memPath(p))
}

// WriteFile creates or truncates p. The parent directory must exist.
func (m *MemFS) WriteFile(p string, data []byte) error {
	name := memPath(p)
	if dir := path.Dir(name); dir != "." && !m.DirExists(dir) {
		return &fs.PathError{Op: "write", Path: p, Err: fs.ErrNotExist}
	}
	return hackpadfs.WriteFullFile(m.fs, name, data, 0o644)
}
