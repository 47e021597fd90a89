package editor

import (
	"fmt"
	"slices"
	"strings"

	"github.com/glint-tools/carbon/internal/project"
)

// FindCollection returns the collection named name.
func FindCollection(p *project.Project, name string) (*project.Collection, error) {
	if p == nil {
		return nil, ErrNoProject
	}
	if c := p.CollectionNamed(name); c != nil {
		return c, nil
	}
	return nil, fmt.Errorf("collection %q: %w", name, ErrNotFound)
}

// FindObject resolves a slash-separated path of object names below the root of
// c ("Character/Hero/Hero1"). An empty path, or the collection's own name,
// resolves to the root.
func FindObject(c *project.Collection, path string) (*project.Object, error) {
	path = strings.Trim(path, "/")
	obj := c.Root()
	if path == "" || path == c.Name().String() {
		return obj, nil
	}

	for _, part := range strings.Split(path, "/") {
		var next *project.Object
		for _, child := range c.Children(obj) {
			if child.Name().String() == part {
				next = child
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("object %q in %s: %w", path, c.Name(), ErrNotFound)
		}
		obj = next
	}
	return obj, nil
}

// ObjectPath renders the path FindObject resolves back to obj. The root's path
// is empty.
func ObjectPath(c *project.Collection, obj *project.Object) string {
	var parts []string
	for o := obj; o != nil && o != c.Root(); o = c.Parent(o) {
		parts = append(parts, o.Name().String())
	}
	slices.Reverse(parts)
	return strings.Join(parts, "/")
}

// Locate resolves "Collection/Type/.../Object" to a collection and an object.
// A bare collection name resolves to its root.
func Locate(p *project.Project, ref string) (*project.Collection, *project.Object, error) {
	ref = strings.Trim(ref, "/")
	name, rest, _ := strings.Cut(ref, "/")
	c, err := FindCollection(p, name)
	if err != nil {
		return nil, nil, err
	}
	obj, err := FindObject(c, rest)
	if err != nil {
		return nil, nil, err
	}
	return c, obj, nil
}

// FindField returns the field visible at obj whose name or key is name.
func FindField(c *project.Collection, obj *project.Object, name string) (project.Resolved, error) {
	for _, r := range c.EffectiveFields(obj) {
		if r.Origin.Name().String() == name || r.Key == name {
			return r, nil
		}
	}
	return project.Resolved{}, fmt.Errorf("field %q on %s: %w", name, obj.Name(), ErrNotFound)
}
