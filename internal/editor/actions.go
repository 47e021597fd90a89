package editor

import (
	"fmt"

	"github.com/glint-tools/carbon/internal/project"
)

// NewCollection adds a collection holding only its root type. An empty name
// picks the default.
func (s *Session) NewCollection(name string) (*project.Collection, error) {
	if s.project == nil {
		return nil, ErrNoProject
	}
	c := project.NewCollection(name)
	s.Do(NewAddCollectionCommand(s, c))
	return c, nil
}

// DeleteCollection removes c from the project.
func (s *Session) DeleteCollection(c *project.Collection) bool {
	if s.project == nil || s.project.IndexOf(c) < 0 {
		return false
	}
	return s.Do(NewDeleteCollectionCommand(s, c))
}

// MoveCollection moves c to index.
func (s *Session) MoveCollection(c *project.Collection, index int) bool {
	if s.project == nil || s.project.IndexOf(c) < 0 {
		return false
	}
	return s.Do(NewMoveCollectionCommand(s, c, index))
}

// RenameCollection renames c. It reports false when the realized name is the
// current one.
func (s *Session) RenameCollection(c *project.Collection, name string) bool {
	if s.project == nil || s.project.IndexOf(c) < 0 {
		return false
	}
	return s.Do(NewRenameCollectionCommand(s, c, name))
}

// NewType adds a type under parent (nil means the root).
func (s *Session) NewType(c *project.Collection, parent *project.Object, name string) *project.Object {
	return s.newObject(c, parent, name, true)
}

// NewInstance adds an instance under parent (nil means the root).
func (s *Session) NewInstance(c *project.Collection, parent *project.Object, name string) *project.Object {
	return s.newObject(c, parent, name, false)
}

func (s *Session) newObject(c *project.Collection, parent *project.Object, name string, isType bool) *project.Object {
	if c == nil {
		return nil
	}
	obj := project.NewObject(name, isType)
	s.Do(NewAddObjectCommand(s, c, parent, obj))
	return obj
}

// DeleteObject removes obj and its subtree. The root cannot be deleted.
func (s *Session) DeleteObject(c *project.Collection, obj *project.Object) bool {
	if c == nil || obj == nil {
		return false
	}
	return s.Do(NewDeleteObjectCommand(s, c, obj))
}

// RenameObject renames obj. Renaming the root renames the collection.
func (s *Session) RenameObject(c *project.Collection, obj *project.Object, name string) bool {
	if c == nil || !c.Contains(obj) {
		return false
	}
	return s.Do(NewRenameObjectCommand(s, c, obj, name))
}

// MoveObject moves obj under parent at index. It reports false when the move is
// refused or changes nothing.
func (s *Session) MoveObject(c *project.Collection, obj, parent *project.Object, index int) bool {
	if c == nil || !c.Contains(obj) {
		return false
	}
	return s.Do(NewMoveObjectCommand(s, c, obj, parent, index))
}

// NewField declares an empty field of type t on obj.
func (s *Session) NewField(c *project.Collection, obj *project.Object, t project.FieldType, name string) (*project.Field, error) {
	if name == "" {
		name = "New field"
	}
	f := project.NewFieldOfType(t, name)
	if f == nil {
		return nil, fmt.Errorf("field type %q cannot be created", t)
	}
	if !s.AddField(c, obj, f) {
		return nil, fmt.Errorf("add field %s: %w", name, ErrNotFound)
	}
	return f, nil
}

// AddField declares f on obj.
func (s *Session) AddField(c *project.Collection, obj *project.Object, f *project.Field) bool {
	if c == nil || !c.Contains(obj) || f == nil {
		return false
	}
	return s.Do(NewCreateFieldCommand(s, c, obj, f))
}

// DeleteField removes a field declared on obj.
func (s *Session) DeleteField(c *project.Collection, obj *project.Object, f *project.Field) bool {
	if c == nil || obj == nil || obj.FieldIndex(f) < 0 {
		return false
	}
	return s.Do(NewDeleteFieldCommand(s, c, obj, f))
}

// RenameField renames a field declared on obj.
func (s *Session) RenameField(c *project.Collection, obj *project.Object, f *project.Field, name string) bool {
	if c == nil || f == nil {
		return false
	}
	return s.Do(NewRenameFieldCommand(s, c, obj, f, name))
}

// MoveField moves a declared field to index.
func (s *Session) MoveField(c *project.Collection, obj *project.Object, f *project.Field, index int) bool {
	if c == nil || obj == nil || obj.FieldIndex(f) < 0 {
		return false
	}
	return s.Do(NewMoveFieldCommand(s, c, obj, f, index))
}

// OverrideField gives obj its own value for the inherited field f and returns
// it. If obj already overrides f the existing override is returned and nothing
// is recorded.
func (s *Session) OverrideField(c *project.Collection, obj *project.Object, f *project.Field) *project.Field {
	if c == nil || !c.Contains(obj) || f == nil {
		return nil
	}
	if ov, ok := obj.Override(f.ID()); ok {
		return ov
	}
	if !c.Inherits(obj, f) {
		// Declared here or on another branch; there is nothing to inherit.
		return nil
	}
	cmd := NewOverrideFieldCommand(s, c, obj, f)
	s.Do(cmd)
	return cmd.Override()
}

// ResetField drops obj's override of f so the inherited value shows again.
func (s *Session) ResetField(c *project.Collection, obj *project.Object, f *project.Field) bool {
	if c == nil || obj == nil || f == nil || !obj.HasOverride(f.ID()) {
		return false
	}
	return s.Do(NewResetFieldCommand(s, c, obj, f))
}

// SetFieldData sets the data of f, a field declared on obj or one of obj's
// override values.
func (s *Session) SetFieldData(c *project.Collection, obj *project.Object, f *project.Field, data any) bool {
	if c == nil || obj == nil || f == nil {
		return false
	}
	return s.Do(NewEditFieldCommand(s, c, obj, f, data))
}

// SetEffectiveData sets the value of the inherited or declared field f as seen
// from obj. An inherited field is overridden first, so ancestors keep their
// value. The override and the edit are recorded as separate commands.
func (s *Session) SetEffectiveData(c *project.Collection, obj *project.Object, f *project.Field, data any) bool {
	if c == nil || obj == nil || f == nil {
		return false
	}
	target := f
	if obj.FieldIndex(f) < 0 {
		target = s.OverrideField(c, obj, f)
		if target == nil {
			return false
		}
	}
	return s.SetFieldData(c, obj, target, data)
}
