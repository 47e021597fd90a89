package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/glint-tools/carbon/internal/atomicfile"
	"github.com/glint-tools/carbon/internal/project"
	"github.com/glint-tools/carbon/internal/slugs"
)

// ErrNotStreamable is returned when a format that needs a file, such as
// SQLite, is written to a stream.
var ErrNotStreamable = errors.New("format cannot be written to a stream")

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteYAML writes v as YAML, keeping record key order.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Write encodes v to w in a streamable format.
func Write(w io.Writer, format Format, v any) error {
	switch format {
	case JSON, "":
		return WriteJSON(w, v)
	case YAML:
		return WriteYAML(w, v)
	}
	return fmt.Errorf("%s: %w", format, ErrNotStreamable)
}

// WriteFile writes v to path atomically.
func WriteFile(path string, format Format, v any) error {
	return atomicfile.Write(path, 0o644, func(w io.Writer) error {
		return Write(w, format, v)
	})
}

// WriteDir exports p into dir and returns the files written.
//
// JSON and YAML produce one file per collection, named after the collection.
// SQLite produces a single database holding every collection.
func WriteDir(ctx context.Context, p *project.Project, dir string, format Format) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	if !format.Streamable() {
		path := filepath.Join(dir, slugs.File(projectName(p), format.Ext()))
		if err := WriteSQLite(ctx, p, path); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	var written []string
	for _, c := range p.Collections() {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		path := filepath.Join(dir, slugs.File(c.Name().String(), format.Ext()))
		if err := WriteFile(path, format, Collection(c)); err != nil {
			return written, fmt.Errorf("failed to export %s: %w", c.Name(), err)
		}
		written = append(written, path)
	}
	return written, nil
}

func projectName(p *project.Project) string {
	if p.Path == "" {
		return "project"
	}
	base := filepath.Base(p.Path)
	return base[:len(base)-len(filepath.Ext(base))]
}
