package project

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/glint-tools/carbon/internal/names"
)

// DefaultCollectionName is the name given to new collections.
const DefaultCollectionName = "New collection"

// Collection is a rooted hierarchy of objects.
//
// Objects are kept in a flat pre-order list where every object's descendants
// directly follow it, so a subtree is always a contiguous block. The root is a
// type, is always at index 0 and shares its name with the collection.
type Collection struct {
	id      uuid.UUID
	name    names.Name
	root    *Object
	objects []*Object
	index   map[ObjectID]*Object
}

// NewCollection creates a collection holding only its root type.
func NewCollection(name string) *Collection {
	if name == "" {
		name = DefaultCollectionName
	}
	n := names.Parse(name)
	root := NewObjectWithID(uuid.New(), n, true)
	return &Collection{
		id:      uuid.New(),
		name:    n,
		root:    root,
		objects: []*Object{root},
		index:   map[ObjectID]*Object{root.id: root},
	}
}

// AssembleCollection builds a collection from loaded objects.
//
// parents maps object IDs to the ID of their parent record. The first object
// without a parent becomes the root. Objects whose parent is missing, unknown or
// part of a cycle are attached to the root. Children keep the order in which
// they appear in objects.
func AssembleCollection(id uuid.UUID, name names.Name, objects []*Object, parents map[ObjectID]ObjectID) *Collection {
	if id == uuid.Nil {
		id = uuid.New()
	}
	c := &Collection{id: id, name: name.Normalize(), index: make(map[ObjectID]*Object, len(objects))}

	var loaded []*Object
	parentOf := make(map[*Object]ObjectID, len(objects))
	for _, o := range objects {
		if o == nil {
			continue
		}
		parentOf[o] = parents[o.id]
		if _, dup := c.index[o.id]; dup || o.id == uuid.Nil {
			o.id = uuid.New()
		}
		o.parent = uuid.Nil
		o.children = nil
		c.index[o.id] = o
		loaded = append(loaded, o)
	}

	for _, o := range loaded {
		if parentOf[o] == uuid.Nil {
			c.root = o
			break
		}
	}
	if c.root == nil && len(loaded) > 0 {
		c.root = loaded[0]
	}
	if c.root == nil {
		c.root = NewObjectWithID(uuid.New(), c.name, true)
		c.index[c.root.id] = c.root
	}
	c.root.isType = true

	for _, o := range loaded {
		if o == c.root {
			continue
		}
		p := c.index[parentOf[o]]
		if p == nil || p == o {
			p = c.root
		}
		o.parent = p.id
		p.children = append(p.children, o.id)
	}

	// Anything unreachable from the root sits in a parent cycle. Break each cycle
	// by re-attaching its first member to the root.
	seen := make(map[ObjectID]bool, len(c.index))
	c.mark(c.root, seen)
	for _, o := range loaded {
		if seen[o.id] {
			continue
		}
		if p := c.index[o.parent]; p != nil {
			p.children = removeID(p.children, o.id)
		}
		o.parent = c.root.id
		c.root.children = append(c.root.children, o.id)
		c.mark(o, seen)
	}

	c.objects = c.preorder(c.root, make([]*Object, 0, len(c.index)))
	return c
}

func (c *Collection) mark(o *Object, seen map[ObjectID]bool) {
	if seen[o.id] {
		return
	}
	seen[o.id] = true
	for _, id := range o.children {
		if child := c.index[id]; child != nil {
			c.mark(child, seen)
		}
	}
}

func (c *Collection) preorder(o *Object, out []*Object) []*Object {
	out = append(out, o)
	for _, id := range o.children {
		if child := c.index[id]; child != nil {
			out = c.preorder(child, out)
		}
	}
	return out
}

func (c *Collection) ID() uuid.UUID      { return c.id }
func (c *Collection) Name() names.Name   { return c.name }
func (c *Collection) Root() *Object      { return c.root }
func (c *Collection) Len() int           { return len(c.objects) }
func (c *Collection) String() string     { return c.name.String() }
func (c *Collection) Objects() []*Object { return append([]*Object(nil), c.objects...) }

// SetName renames the collection and its root without uniqueness checks.
func (c *Collection) SetName(name names.Name) {
	c.name = name.Normalize()
	c.root.name = c.name
}

// Object looks up an object by ID.
func (c *Collection) Object(id ObjectID) (*Object, bool) {
	o, ok := c.index[id]
	return o, ok
}

// Contains reports whether o is attached to the collection.
func (c *Collection) Contains(o *Object) bool {
	if o == nil {
		return false
	}
	return c.index[o.id] == o
}

// IndexOf returns the flat position of o, or -1.
func (c *Collection) IndexOf(o *Object) int {
	if !c.Contains(o) {
		return -1
	}
	return slices.Index(c.objects, o)
}

// Parent returns o's parent, or nil for the root and detached objects.
func (c *Collection) Parent(o *Object) *Object {
	if o == nil || o.parent == uuid.Nil {
		return nil
	}
	return c.index[o.parent]
}

// Children returns the direct children of o in order.
func (c *Collection) Children(o *Object) []*Object {
	if o == nil {
		return nil
	}
	out := make([]*Object, 0, len(o.children))
	for _, id := range o.children {
		if child := c.index[id]; child != nil {
			out = append(out, child)
		}
	}
	return out
}

// ChildCount returns the number of descendants of o (not only direct children).
func (c *Collection) ChildCount(o *Object) int {
	n := 0
	for _, child := range c.Children(o) {
		n += 1 + c.ChildCount(child)
	}
	return n
}

// Descendants returns every descendant of o in pre-order.
func (c *Collection) Descendants(o *Object) []*Object {
	i := c.IndexOf(o)
	if i < 0 {
		return nil
	}
	n := c.ChildCount(o)
	return append([]*Object(nil), c.objects[i+1:i+1+n]...)
}

// Ancestors returns the chain of parents above o, nearest first.
func (c *Collection) Ancestors(o *Object) []*Object {
	var out []*Object
	for p := c.Parent(o); p != nil; p = c.Parent(p) {
		out = append(out, p)
	}
	return out
}

// IsAncestorOf reports whether a is a strict ancestor of o.
func (c *Collection) IsAncestorOf(a, o *Object) bool {
	for p := c.Parent(o); p != nil; p = c.Parent(p) {
		if p == a {
			return true
		}
	}
	return false
}

// LocalIndex returns o's position among its parent's children, or -1.
func (c *Collection) LocalIndex(o *Object) int {
	p := c.Parent(o)
	if p == nil {
		return -1
	}
	return slices.Index(p.children, o.id)
}

// ContainerFor returns the nearest type at or above o. Instances cannot hold
// children, so new and moved objects land in their closest type. Detached or nil
// objects resolve to the root.
func (c *Collection) ContainerFor(o *Object) *Object {
	if !c.Contains(o) {
		return c.root
	}
	for o != nil && !o.isType {
		o = c.Parent(o)
	}
	if o == nil {
		return c.root
	}
	return o
}

// Validate checks the structural invariants: the root leads the list, parent and
// child links agree, and every subtree is a contiguous block.
func (c *Collection) Validate() error {
	if len(c.objects) == 0 || c.objects[0] != c.root {
		return fmt.Errorf("collection %s: root is not first", c.name)
	}
	if c.root.parent != uuid.Nil {
		return fmt.Errorf("collection %s: root has a parent", c.name)
	}
	if len(c.index) != len(c.objects) {
		return fmt.Errorf("collection %s: index has %d objects, list has %d", c.name, len(c.index), len(c.objects))
	}

	for i, o := range c.objects {
		if c.index[o.id] != o {
			return fmt.Errorf("collection %s: %s missing from index", c.name, o)
		}
		if o != c.root {
			p := c.Parent(o)
			if p == nil {
				return fmt.Errorf("collection %s: %s has no parent", c.name, o)
			}
			if !slices.Contains(p.children, o.id) {
				return fmt.Errorf("collection %s: %s not listed under %s", c.name, o, p)
			}
		}

		n := c.ChildCount(o)
		if i+1+n > len(c.objects) {
			return fmt.Errorf("collection %s: subtree of %s overruns the list", c.name, o)
		}
		for _, d := range c.objects[i+1 : i+1+n] {
			if !c.IsAncestorOf(o, d) {
				return fmt.Errorf("collection %s: subtree of %s is not contiguous", c.name, o)
			}
		}
	}
	return nil
}

func (c *Collection) insertBlock(pos int, block []*Object) {
	if pos < 0 || pos > len(c.objects) {
		pos = len(c.objects)
	}
	c.objects = slices.Insert(c.objects, pos, block...)
	for _, o := range block {
		c.index[o.id] = o
	}
}

func removeID(ids []ObjectID, id ObjectID) []ObjectID {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1)
	}
	return ids
}
