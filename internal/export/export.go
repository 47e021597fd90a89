package export

import (
	"github.com/glint-tools/carbon/internal/project"
)

// Object returns the effective field values of obj keyed by field key, in
// inheritance order: the root's fields first, each with the nearest override
// applied.
func Object(c *project.Collection, obj *project.Object) *Record {
	rec := NewRecord()
	for _, r := range c.EffectiveFields(obj) {
		rec.Set(r.Key, r.Field.Data())
	}
	return rec
}

// Type expands the subtree below the type t: child types recurse and child
// instances flatten with Object. It returns nil if t is not a type.
func Type(c *project.Collection, t *project.Object) *Record {
	if t == nil || !t.IsType() {
		return nil
	}
	rec := NewRecord()
	for _, child := range c.Children(t) {
		if child.IsType() {
			rec.Set(child.Name().String(), Type(c, child))
		} else {
			rec.Set(child.Name().String(), Object(c, child))
		}
	}
	return rec
}

// Any exports obj with Type when it is a type and with Object otherwise.
func Any(c *project.Collection, obj *project.Object) *Record {
	if obj.IsType() {
		return Type(c, obj)
	}
	return Object(c, obj)
}

// Collection expands the whole collection from its root.
func Collection(c *project.Collection) *Record {
	return Type(c, c.Root())
}

// Project exports every collection keyed by collection name.
func Project(p *project.Project) *Record {
	rec := NewRecord()
	for _, c := range p.Collections() {
		rec.Set(c.Name().String(), Collection(c))
	}
	return rec
}
