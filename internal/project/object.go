package project

import (
	"github.com/google/uuid"

	"github.com/glint-tools/carbon/internal/names"
)

// ObjectID identifies an object. It is preserved across saves.
type ObjectID = uuid.UUID

// Default names given to new objects.
const (
	DefaultTypeName     = "New type"
	DefaultInstanceName = "New object"
)

// Override replaces the inherited field Key with Field for an object and its
// descendants.
type Override struct {
	Key   FieldID
	Field *Field
}

// Object is a node in a collection's hierarchy. Types may contain children;
// instances are leaves.
//
// Structure is expressed through IDs. The owning Collection resolves them and is
// the only place that changes parent or children.
type Object struct {
	id        ObjectID
	name      names.Name
	isType    bool
	parent    ObjectID
	children  []ObjectID
	fields    []*Field
	overrides []Override
}

// NewObject creates a detached object with a fresh ID. An empty name picks the
// default for the kind.
func NewObject(name string, isType bool) *Object {
	if name == "" {
		name = DefaultInstanceName
		if isType {
			name = DefaultTypeName
		}
	}
	return NewObjectWithID(uuid.New(), names.Parse(name), isType)
}

// NewObjectWithID creates a detached object with a known ID.
func NewObjectWithID(id ObjectID, name names.Name, isType bool) *Object {
	return &Object{id: id, name: name.Normalize(), isType: isType}
}

func (o *Object) ID() ObjectID         { return o.id }
func (o *Object) Name() names.Name     { return o.name }
func (o *Object) IsType() bool         { return o.isType }
func (o *Object) ParentID() ObjectID   { return o.parent }
func (o *Object) HasParent() bool      { return o.parent != uuid.Nil }
func (o *Object) ChildIDs() []ObjectID { return append([]ObjectID(nil), o.children...) }

// SetName sets the name without any uniqueness check.
func (o *Object) SetName(name names.Name) { o.name = name.Normalize() }

// Fields returns the fields declared directly on the object, in order.
func (o *Object) Fields() []*Field { return append([]*Field(nil), o.fields...) }

// FieldCount returns the number of declared fields.
func (o *Object) FieldCount() int { return len(o.fields) }

// FieldIndex returns the position of f among the declared fields, or -1.
func (o *Object) FieldIndex(f *Field) int {
	for i, g := range o.fields {
		if g == f {
			return i
		}
	}
	return -1
}

// AppendField adds f to the declared fields with no uniqueness check. It is
// meant for assembling loaded data; editors go through Collection.CreateField.
func (o *Object) AppendField(f *Field) {
	if f != nil {
		o.fields = append(o.fields, f)
	}
}

// FieldNamed returns the first declared field rendering as name.
func (o *Object) FieldNamed(name string) *Field {
	for _, f := range o.fields {
		if f.name.String() == name {
			return f
		}
	}
	return nil
}

// FindField returns the declared field with the given ID. With includeOverrides
// it also matches override values held by the object.
func (o *Object) FindField(id FieldID, includeOverrides bool) *Field {
	for _, f := range o.fields {
		if f.id == id {
			return f
		}
	}
	if includeOverrides {
		for _, ov := range o.overrides {
			if ov.Field.id == id {
				return ov.Field
			}
		}
	}
	return nil
}

// Overrides returns the override entries in insertion order.
func (o *Object) Overrides() []Override { return append([]Override(nil), o.overrides...) }

// Override returns the override held for key.
func (o *Object) Override(key FieldID) (*Field, bool) {
	for _, ov := range o.overrides {
		if ov.Key == key {
			return ov.Field, true
		}
	}
	return nil, false
}

// HasOverride reports whether the object overrides key.
func (o *Object) HasOverride(key FieldID) bool {
	_, ok := o.Override(key)
	return ok
}

// declares reports whether id is visible at this object as a declared field, an
// override key or an override value.
func (o *Object) declares(id FieldID) bool {
	if o.FindField(id, true) != nil {
		return true
	}
	return o.HasOverride(id)
}

func (o *Object) setOverride(key FieldID, f *Field) {
	for i := range o.overrides {
		if o.overrides[i].Key == key {
			o.overrides[i].Field = f
			return
		}
	}
	o.overrides = append(o.overrides, Override{Key: key, Field: f})
}

func (o *Object) removeOverride(key FieldID) *Field {
	for i, ov := range o.overrides {
		if ov.Key == key {
			o.overrides = append(o.overrides[:i], o.overrides[i+1:]...)
			return ov.Field
		}
	}
	return nil
}

func (o *Object) insertField(i int, f *Field) {
	if i < 0 || i > len(o.fields) {
		i = len(o.fields)
	}
	o.fields = append(o.fields, nil)
	copy(o.fields[i+1:], o.fields[i:])
	o.fields[i] = f
}

func (o *Object) removeField(f *Field) int {
	i := o.FieldIndex(f)
	if i < 0 {
		return -1
	}
	o.fields = append(o.fields[:i], o.fields[i+1:]...)
	return i
}

func (o *Object) String() string {
	return o.name.String()
}
