// Package slugs turns collection and object names into file and URL segments.
package slugs

import (
	"strings"

	goslug "github.com/gosimple/slug"
)

// Component slugifies a single name. Names that slugify to nothing (all
// punctuation, for example) fall back to a lower-cased, dashed form so distinct
// names rarely collide on disk.
func Component(s string) string {
	slugged := goslug.Make(s)
	if slugged == "" {
		slugged = strings.ToLower(strings.Join(strings.Fields(s), "-"))
	}
	return slugged
}

// File returns the file name for name with the given extension, which should
// include its dot.
func File(name, ext string) string {
	base := Component(name)
	if base == "" {
		base = "untitled"
	}
	return base + ext
}

// Path slugifies each "/"-separated component of an object path.
func Path(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	for i, part := range parts {
		parts[i] = Component(part)
	}
	return strings.Join(parts, "/")
}
