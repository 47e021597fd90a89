// Package project implements the in-memory model of a carbon project: ordered
// collections of object hierarchies whose fields are inherited down the tree and
// can be overridden per object.
package project

import (
	"slices"

	"github.com/google/uuid"

	"github.com/glint-tools/carbon/internal/names"
)

// FormatVersion is the project file format written by this build.
const FormatVersion = "0.1"

// Project is an ordered list of collections plus the file it was loaded from.
type Project struct {
	// Path is the project file, empty until first saved or opened.
	Path string
	// Version is the format version read from or written to the file.
	Version string

	collections []*Collection
}

// New creates an empty project.
func New() *Project {
	return &Project{Version: FormatVersion}
}

// Collections returns the collections in order.
func (p *Project) Collections() []*Collection {
	return append([]*Collection(nil), p.collections...)
}

// Len returns the number of collections.
func (p *Project) Len() int { return len(p.collections) }

// Collection looks up a collection by ID.
func (p *Project) Collection(id uuid.UUID) (*Collection, bool) {
	for _, c := range p.collections {
		if c.id == id {
			return c, true
		}
	}
	return nil, false
}

// CollectionNamed returns the collection rendering as name.
func (p *Project) CollectionNamed(name string) *Collection {
	for _, c := range p.collections {
		if c.name.String() == name {
			return c
		}
	}
	return nil
}

// IndexOf returns the position of c, or -1.
func (p *Project) IndexOf(c *Collection) int {
	return slices.Index(p.collections, c)
}

// AddCollection appends c under a unique name.
func (p *Project) AddCollection(c *Collection) bool {
	if c == nil || p.IndexOf(c) >= 0 {
		return false
	}
	p.collections = append(p.collections, c)
	p.EnsureUniqueCollection(c)
	return true
}

// RestoreCollection inserts c at index. An out-of-range index appends.
func (p *Project) RestoreCollection(c *Collection, index int) bool {
	if c == nil || p.IndexOf(c) >= 0 {
		return false
	}
	if index < 0 || index > len(p.collections) {
		index = len(p.collections)
	}
	p.collections = slices.Insert(p.collections, index, c)
	p.EnsureUniqueCollection(c)
	return true
}

// RemoveCollection removes c and returns its former index, or -1.
func (p *Project) RemoveCollection(c *Collection) int {
	i := p.IndexOf(c)
	if i < 0 {
		return -1
	}
	p.collections = slices.Delete(p.collections, i, i+1)
	return i
}

// MoveCollection moves c to index. An out-of-range index moves it to the end.
func (p *Project) MoveCollection(c *Collection, index int) bool {
	i := p.IndexOf(c)
	if i < 0 {
		return false
	}
	p.collections = slices.Delete(p.collections, i, i+1)
	if index < 0 || index > len(p.collections) {
		index = len(p.collections)
	}
	p.collections = slices.Insert(p.collections, index, c)
	return true
}

// RenameCollection renames c and its root under a unique name.
func (p *Project) RenameCollection(c *Collection, name string) {
	if c == nil {
		return
	}
	c.SetName(names.Parse(name))
	p.EnsureUniqueCollection(c)
}

// EnsureUniqueCollection disambiguates c's name among the project's
// collections.
func (p *Project) EnsureUniqueCollection(c *Collection) {
	var others []names.Name
	for _, other := range p.collections {
		if other != c {
			others = append(others, other.name)
		}
	}
	c.SetName(names.Disambiguate(c.name, names.Scope(c.name, others)))
}
