package project

import (
	"slices"

	"github.com/google/uuid"

	"github.com/glint-tools/carbon/internal/names"
)

// AddObject attaches obj as the last child of parent.
//
// Instances cannot hold children, so parent is resolved to its nearest type; a
// nil or detached parent means the root. obj is added as a leaf and its name is
// made unique among objects of the same kind.
func (c *Collection) AddObject(parent, obj *Object) bool {
	if obj == nil || c.Contains(obj) {
		return false
	}
	parent = c.ContainerFor(parent)

	pos := c.IndexOf(parent) + 1 + c.ChildCount(parent)
	obj.parent = parent.id
	obj.children = nil
	parent.children = append(parent.children, obj.id)
	c.insertBlock(pos, []*Object{obj})
	c.EnsureUniqueObject(obj)
	return true
}

// RemoveObject detaches obj and all its descendants and returns them as a
// pre-order block. The block keeps its internal structure and can be handed
// back to RestoreObject. The root cannot be removed.
func (c *Collection) RemoveObject(obj *Object) []*Object {
	if obj == nil || obj == c.root || !c.Contains(obj) {
		return nil
	}

	i := c.IndexOf(obj)
	n := 1 + c.ChildCount(obj)
	block := slices.Clone(c.objects[i : i+n])

	if p := c.Parent(obj); p != nil {
		p.children = removeID(p.children, obj.id)
	}
	obj.parent = uuid.Nil

	c.objects = slices.Delete(c.objects, i, i+n)
	for _, o := range block {
		delete(c.index, o.id)
	}
	return block
}

// RestoreObject re-inserts a block produced by RemoveObject under parent at the
// given child position. An out-of-range position appends. A nil or detached
// parent means the root.
func (c *Collection) RestoreObject(parent *Object, localIndex int, block []*Object) bool {
	if len(block) == 0 || c.Contains(block[0]) {
		return false
	}
	if !c.Contains(parent) {
		parent = c.root
	}
	obj := block[0]

	siblings := parent.children
	if localIndex < 0 || localIndex > len(siblings) {
		localIndex = len(siblings)
	}
	pos := c.IndexOf(parent) + 1
	for _, id := range siblings[:localIndex] {
		if sib := c.index[id]; sib != nil {
			pos += 1 + c.ChildCount(sib)
		}
	}

	obj.parent = parent.id
	parent.children = slices.Insert(parent.children, localIndex, obj.id)
	c.insertBlock(pos, block)
	c.EnsureUniqueObject(obj)
	c.syncOverrideNames(block)
	return true
}

// OverrideSnapshot holds the overrides of a moved block, keyed by object.
type OverrideSnapshot map[ObjectID][]Override

// SnapshotOverrides copies the overrides of obj and all its descendants.
func (c *Collection) SnapshotOverrides(obj *Object) OverrideSnapshot {
	if obj == nil || !c.Contains(obj) {
		return nil
	}
	snap := OverrideSnapshot{obj.id: slices.Clone(obj.overrides)}
	for _, d := range c.Descendants(obj) {
		snap[d.id] = slices.Clone(d.overrides)
	}
	return snap
}

// MoveObject reparents obj (with its subtree) under newParent at localIndex.
//
// Moving the root, or moving an object into itself or one of its descendants,
// is refused. newParent resolves to its nearest type and nil means the root.
//
// When the parent changes and snapshot is nil, every override in the moved
// block whose key no longer resolves through the new ancestors is dropped and
// its link severed. The dropped entries are returned. A non-nil snapshot is put
// back as-is instead; undo passes the one taken before the move.
func (c *Collection) MoveObject(obj, newParent *Object, localIndex int, snapshot OverrideSnapshot) ([]Override, bool) {
	if obj == nil || obj == c.root || !c.Contains(obj) {
		return nil, false
	}
	newParent = c.ContainerFor(newParent)
	if newParent == obj || c.IsAncestorOf(obj, newParent) {
		return nil, false
	}

	changed := c.Parent(obj) != newParent
	block := c.RemoveObject(obj)
	c.RestoreObject(newParent, localIndex, block)
	if !changed {
		return nil, true
	}

	if snapshot != nil {
		c.restoreOverrides(block, snapshot)
		c.syncOverrideNames(block)
		return nil, true
	}
	var dropped []Override
	for _, o := range block {
		dropped = append(dropped, c.pruneOverrides(o)...)
	}
	return dropped, true
}

// restoreOverrides replaces the overrides of every object in block with its
// snapshot entry and relinks them to their keys.
func (c *Collection) restoreOverrides(block []*Object, snapshot OverrideSnapshot) {
	for _, o := range block {
		for _, ov := range o.overrides {
			if key := c.FindFieldByID(ov.Key); key != nil {
				key.RemoveLink(ov.Field.id)
			}
		}
		o.overrides = slices.Clone(snapshot[o.id])
	}
	for _, o := range block {
		for _, ov := range o.overrides {
			if key := c.FindFieldByID(ov.Key); key != nil {
				key.AddLink(ov.Field.id)
			}
		}
	}
}

// pruneOverrides drops the overrides of obj that no ancestor resolves. Blocks
// are pruned in pre-order so a dropped ancestor override is already gone when
// its dependants are checked.
func (c *Collection) pruneOverrides(obj *Object) []Override {
	var kept, dropped []Override
	for _, ov := range obj.overrides {
		if c.keyInherited(obj, ov.Key) {
			kept = append(kept, ov)
			continue
		}
		dropped = append(dropped, ov)
		if key := c.FindFieldByID(ov.Key); key != nil {
			key.RemoveLink(ov.Field.id)
		}
	}
	obj.overrides = kept
	return dropped
}

// Inherits reports whether obj can see f through one of its ancestors, either
// as a declared field or as an ancestor's override value.
func (c *Collection) Inherits(obj *Object, f *Field) bool {
	return obj != nil && f != nil && c.keyInherited(obj, f.id)
}

func (c *Collection) keyInherited(obj *Object, key FieldID) bool {
	for p := c.Parent(obj); p != nil; p = c.Parent(p) {
		if p.declares(key) {
			return true
		}
	}
	return false
}

// RenameObject renames obj and makes the name unique among objects of the same
// kind. Renaming the root renames the collection; project-level uniqueness is
// then up to the caller.
func (c *Collection) RenameObject(obj *Object, name string) {
	if obj == nil {
		return
	}
	if obj == c.root {
		c.SetName(names.Parse(name))
		return
	}
	obj.name = names.Parse(name)
	c.EnsureUniqueObject(obj)
}

// EnsureUniqueObject disambiguates obj's name against every other object in the
// collection of the same kind (types against types, instances against
// instances).
func (c *Collection) EnsureUniqueObject(obj *Object) {
	if obj == nil {
		return
	}
	var others []names.Name
	for _, o := range c.objects {
		if o != obj && o.isType == obj.isType {
			others = append(others, o.name)
		}
	}
	obj.name = names.Disambiguate(obj.name, names.Scope(obj.name, others))
	if obj == c.root {
		c.name = obj.name
	}
}

// syncOverrideNames re-applies key names to the overrides of a restored block.
// Renames that happened while the block was detached could not reach them.
func (c *Collection) syncOverrideNames(block []*Object) {
	for _, o := range block {
		for _, ov := range o.overrides {
			if key := c.FindFieldByID(ov.Key); key != nil && key != ov.Field {
				ov.Field.SetName(key.name)
			}
		}
	}
}
