package project

import (
	"slices"
	"strconv"

	"github.com/glint-tools/carbon/internal/names"
)

// Resolved is one entry of an object's effective field list.
type Resolved struct {
	// Origin is the field as declared on Owner.
	Origin *Field
	// Field is the value visible at the queried object: Origin itself or the
	// nearest override of it.
	Field *Field
	// Owner declares Origin.
	Owner *Object
	// OverriddenBy holds the override supplying Field, or nil when Field is Origin.
	OverriddenBy *Object
	// Key is Origin's export key, suffixed with a number when an earlier entry
	// already uses it (names differing only in case or spacing).
	Key string
}

// Overridden reports whether an override replaces the declared field.
func (r Resolved) Overridden() bool { return r.OverriddenBy != nil }

// EffectiveFields returns the fields visible at obj: every field declared from
// the root down to obj, in that order, each replaced by the nearest override.
func (c *Collection) EffectiveFields(obj *Object) []Resolved {
	if obj == nil {
		return nil
	}
	chain := c.Ancestors(obj)
	slices.Reverse(chain)
	chain = append(chain, obj)

	var out []Resolved
	for _, o := range chain {
		for _, f := range o.fields {
			out = append(out, Resolved{Origin: f, Field: f, Owner: o})
		}
		for _, ov := range o.overrides {
			for i := range out {
				if out[i].Origin.id == ov.Key || out[i].Field.id == ov.Key {
					out[i].Field = ov.Field
					out[i].OverriddenBy = o
					break
				}
			}
		}
	}
	assignKeys(out)
	return out
}

func assignKeys(rs []Resolved) {
	used := make(map[string]bool, len(rs))
	for i := range rs {
		key := rs[i].Origin.Key()
		if used[key] {
			base := key
			for n := 2; used[key]; n++ {
				key = base + strconv.Itoa(n)
			}
		}
		used[key] = true
		rs[i].Key = key
	}
}

// FieldAncestor returns the value of f that obj would inherit if it had no
// override of its own: the nearest ancestor override of f, or f itself.
func (c *Collection) FieldAncestor(obj *Object, f *Field) *Field {
	if f == nil {
		return nil
	}
	for p := c.Parent(obj); p != nil; p = c.Parent(p) {
		if ov, ok := p.Override(f.id); ok {
			return ov
		}
	}
	return f
}

// EffectiveField returns the value of f visible at obj, including obj's own
// override.
func (c *Collection) EffectiveField(obj *Object, f *Field) *Field {
	if obj != nil && f != nil {
		if ov, ok := obj.Override(f.id); ok {
			return ov
		}
	}
	return c.FieldAncestor(obj, f)
}

// OverrideField makes obj hold its own value for the inherited field f.
//
// If obj already overrides f the existing override is returned. A field obj
// does not inherit is refused with nil. Otherwise the override is provided, or
// a duplicate of the value obj currently inherits, and it is linked to f so
// renames of f reach it.
func (c *Collection) OverrideField(obj *Object, f, provided *Field) *Field {
	if obj == nil || f == nil {
		return nil
	}
	if ov, ok := obj.Override(f.id); ok {
		return ov
	}
	if !c.keyInherited(obj, f.id) {
		return nil
	}

	ov := provided
	if ov == nil {
		ov = c.FieldAncestor(obj, f).Duplicate()
	}
	obj.setOverride(f.id, ov)
	f.AddLink(ov.id)
	return ov
}

// RemoveFieldOverride drops obj's override of f and severs the link. It returns
// the removed override, or nil if there was none.
func (c *Collection) RemoveFieldOverride(obj *Object, f *Field) *Field {
	if obj == nil || f == nil {
		return nil
	}
	ov := obj.removeOverride(f.id)
	if ov != nil {
		f.RemoveLink(ov.id)
	}
	return ov
}

// FindFieldByID searches every attached object for a declared field or override
// value with the given ID.
func (c *Collection) FindFieldByID(id FieldID) *Field {
	for _, o := range c.objects {
		if f := o.FindField(id, true); f != nil {
			return f
		}
	}
	return nil
}

// FieldOwner returns the object declaring f or holding it as an override.
func (c *Collection) FieldOwner(f *Field) *Object {
	if f == nil {
		return nil
	}
	for _, o := range c.objects {
		if o.FindField(f.id, true) == f {
			return o
		}
	}
	return nil
}

// EnsureUniqueField disambiguates f's name against the fields declared on obj,
// its ancestors and its descendants.
func (c *Collection) EnsureUniqueField(f *Field, obj *Object) {
	if f == nil {
		return
	}
	var others []names.Name
	collect := func(o *Object) {
		for _, g := range o.fields {
			if g != f {
				others = append(others, g.name)
			}
		}
	}
	if obj != nil {
		collect(obj)
		for _, a := range c.Ancestors(obj) {
			collect(a)
		}
		for _, d := range c.Descendants(obj) {
			collect(d)
		}
	}
	f.SetName(names.Disambiguate(f.name, names.Scope(f.name, others)))
}

// RenameField renames f, makes the name unique in obj's scope and propagates it
// through f's links to every override copy.
func (c *Collection) RenameField(obj *Object, f *Field, name string) {
	if f == nil {
		return
	}
	f.SetName(names.Parse(name))
	if obj != nil {
		c.EnsureUniqueField(f, obj)
	}
	c.propagateName(f, map[FieldID]bool{f.id: true})
}

func (c *Collection) propagateName(f *Field, seen map[FieldID]bool) {
	for _, id := range f.links {
		if seen[id] {
			continue
		}
		seen[id] = true
		if linked := c.FindFieldByID(id); linked != nil {
			linked.SetName(f.name)
			c.propagateName(linked, seen)
		}
	}
}

// CreateField appends f to obj's declared fields under a unique name.
func (c *Collection) CreateField(obj *Object, f *Field) bool {
	if obj == nil || f == nil || obj.FieldIndex(f) >= 0 {
		return false
	}
	c.EnsureUniqueField(f, obj)
	obj.fields = append(obj.fields, f)
	return true
}

// RestoreField inserts f into obj's declared fields at localIndex. An
// out-of-range index appends.
func (c *Collection) RestoreField(obj *Object, f *Field, localIndex int) bool {
	if obj == nil || f == nil || obj.FieldIndex(f) >= 0 {
		return false
	}
	c.EnsureUniqueField(f, obj)
	obj.insertField(localIndex, f)
	return true
}

// DeleteField removes f from obj's declared fields and returns its former
// position, or -1 if obj does not declare f.
//
// Overrides of f held by descendants are left in place. Resolution ignores
// them and they are dropped the next time the project is read.
func (c *Collection) DeleteField(obj *Object, f *Field) int {
	if obj == nil || f == nil {
		return -1
	}
	return obj.removeField(f)
}

// MoveField moves f to localIndex within obj's declared fields.
func (c *Collection) MoveField(obj *Object, f *Field, localIndex int) bool {
	if obj == nil || obj.removeField(f) < 0 {
		return false
	}
	obj.insertField(localIndex, f)
	return true
}
