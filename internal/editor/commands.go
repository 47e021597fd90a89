package editor

import (
	"fmt"

	"github.com/glint-tools/carbon/internal/project"
)

// Command is one undoable edit. Undo must be the exact inverse of Execute,
// including list positions.
//
// Commands are mutable: they capture what they need to invert themselves while
// executing, and rename commands store the name actually realized after
// disambiguation so a later Redo reapplies the same result.
type Command interface {
	Execute()
	Undo()
	String() string
}

// Testable commands can tell whether they changed anything. Test executes the
// command and reports whether the state actually changed.
type Testable interface {
	Command
	Test() bool
}

// AddCollectionCommand appends a collection to the project.
type AddCollectionCommand struct {
	s     *Session
	c     *project.Collection
	index int
}

func NewAddCollectionCommand(s *Session, c *project.Collection) *AddCollectionCommand {
	return &AddCollectionCommand{s: s, c: c, index: -1}
}

func (cmd *AddCollectionCommand) Execute() {
	cmd.s.restoreCollection(cmd.c, cmd.index)
	cmd.index = cmd.s.project.IndexOf(cmd.c)
}

func (cmd *AddCollectionCommand) Undo() { cmd.s.removeCollection(cmd.c) }

func (cmd *AddCollectionCommand) String() string {
	return fmt.Sprintf("add collection %s", cmd.c.Name())
}

// DeleteCollectionCommand removes a collection and remembers its position.
type DeleteCollectionCommand struct {
	s     *Session
	c     *project.Collection
	index int
}

func NewDeleteCollectionCommand(s *Session, c *project.Collection) *DeleteCollectionCommand {
	return &DeleteCollectionCommand{s: s, c: c, index: -1}
}

func (cmd *DeleteCollectionCommand) Execute() { cmd.index = cmd.s.removeCollection(cmd.c) }
func (cmd *DeleteCollectionCommand) Undo()    { cmd.s.restoreCollection(cmd.c, cmd.index) }

func (cmd *DeleteCollectionCommand) String() string {
	return fmt.Sprintf("delete collection %s", cmd.c.Name())
}

// MoveCollectionCommand reorders a collection.
type MoveCollectionCommand struct {
	s        *Session
	c        *project.Collection
	from, to int
}

func NewMoveCollectionCommand(s *Session, c *project.Collection, to int) *MoveCollectionCommand {
	return &MoveCollectionCommand{s: s, c: c, from: -1, to: to}
}

func (cmd *MoveCollectionCommand) Execute() {
	cmd.from = cmd.s.project.IndexOf(cmd.c)
	cmd.s.moveCollection(cmd.c, cmd.to)
}

func (cmd *MoveCollectionCommand) Undo() { cmd.s.moveCollection(cmd.c, cmd.from) }

func (cmd *MoveCollectionCommand) Test() bool {
	cmd.Execute()
	return cmd.s.project.IndexOf(cmd.c) != cmd.from
}

func (cmd *MoveCollectionCommand) String() string {
	return fmt.Sprintf("move collection %s to %d", cmd.c.Name(), cmd.to)
}

// RenameCollectionCommand renames a collection and its root.
type RenameCollectionCommand struct {
	s       *Session
	c       *project.Collection
	name    string
	oldName string
}

func NewRenameCollectionCommand(s *Session, c *project.Collection, name string) *RenameCollectionCommand {
	return &RenameCollectionCommand{s: s, c: c, name: name}
}

func (cmd *RenameCollectionCommand) Execute() {
	cmd.oldName = cmd.c.Name().String()
	cmd.s.renameCollection(cmd.c, cmd.name)
	cmd.name = cmd.c.Name().String()
}

func (cmd *RenameCollectionCommand) Undo() {
	cmd.s.renameCollection(cmd.c, cmd.oldName)
	cmd.oldName = cmd.c.Name().String()
}

func (cmd *RenameCollectionCommand) Test() bool {
	cmd.Execute()
	return cmd.name != cmd.oldName
}

func (cmd *RenameCollectionCommand) String() string {
	return fmt.Sprintf("rename collection %s to %s", cmd.oldName, cmd.name)
}

// AddObjectCommand adds an object as the last child of a type.
type AddObjectCommand struct {
	s      *Session
	c      *project.Collection
	parent *project.Object
	obj    *project.Object
}

func NewAddObjectCommand(s *Session, c *project.Collection, parent, obj *project.Object) *AddObjectCommand {
	return &AddObjectCommand{s: s, c: c, parent: parent, obj: obj}
}

func (cmd *AddObjectCommand) Execute() {
	cmd.s.addObject(cmd.c, cmd.parent, cmd.obj)
	cmd.parent = cmd.c.Parent(cmd.obj)
}

func (cmd *AddObjectCommand) Undo() { cmd.s.removeObject(cmd.c, cmd.obj) }

func (cmd *AddObjectCommand) String() string {
	kind := "object"
	if cmd.obj.IsType() {
		kind = "type"
	}
	return fmt.Sprintf("add %s %s", kind, cmd.obj.Name())
}

// DeleteObjectCommand removes an object with its subtree.
type DeleteObjectCommand struct {
	s      *Session
	c      *project.Collection
	obj    *project.Object
	parent *project.Object
	index  int
	block  []*project.Object
}

func NewDeleteObjectCommand(s *Session, c *project.Collection, obj *project.Object) *DeleteObjectCommand {
	return &DeleteObjectCommand{s: s, c: c, obj: obj, index: -1}
}

func (cmd *DeleteObjectCommand) Execute() {
	cmd.parent = cmd.c.Parent(cmd.obj)
	cmd.index = cmd.c.LocalIndex(cmd.obj)
	cmd.block = cmd.s.removeObject(cmd.c, cmd.obj)
}

func (cmd *DeleteObjectCommand) Undo() {
	cmd.s.restoreObject(cmd.c, cmd.parent, cmd.index, cmd.block)
}

// Test refuses to delete the root or a detached object.
func (cmd *DeleteObjectCommand) Test() bool {
	if cmd.obj == cmd.c.Root() || !cmd.c.Contains(cmd.obj) {
		return false
	}
	cmd.Execute()
	return len(cmd.block) > 0
}

func (cmd *DeleteObjectCommand) String() string {
	return fmt.Sprintf("delete object %s", cmd.obj.Name())
}

// RenameObjectCommand renames an object. Renaming the root renames the
// collection.
type RenameObjectCommand struct {
	s       *Session
	c       *project.Collection
	obj     *project.Object
	name    string
	oldName string
}

func NewRenameObjectCommand(s *Session, c *project.Collection, obj *project.Object, name string) *RenameObjectCommand {
	return &RenameObjectCommand{s: s, c: c, obj: obj, name: name}
}

func (cmd *RenameObjectCommand) Execute() {
	cmd.oldName = cmd.obj.Name().String()
	cmd.s.renameObject(cmd.c, cmd.obj, cmd.name)
	cmd.name = cmd.obj.Name().String()
}

func (cmd *RenameObjectCommand) Undo() {
	cmd.s.renameObject(cmd.c, cmd.obj, cmd.oldName)
	cmd.oldName = cmd.obj.Name().String()
}

func (cmd *RenameObjectCommand) Test() bool {
	cmd.Execute()
	return cmd.name != cmd.oldName
}

func (cmd *RenameObjectCommand) String() string {
	return fmt.Sprintf("rename object %s to %s", cmd.oldName, cmd.name)
}

// MoveObjectCommand reparents and/or reorders an object. The index is the
// position among the new parent's children once the object has been taken out.
type MoveObjectCommand struct {
	s         *Session
	c         *project.Collection
	obj       *project.Object
	parent    *project.Object
	index     int
	oldParent *project.Object
	oldIndex  int
	snapshot  project.OverrideSnapshot
	moved     bool
}

func NewMoveObjectCommand(s *Session, c *project.Collection, obj, parent *project.Object, index int) *MoveObjectCommand {
	return &MoveObjectCommand{s: s, c: c, obj: obj, parent: parent, index: index}
}

func (cmd *MoveObjectCommand) Execute() {
	cmd.oldParent = cmd.c.Parent(cmd.obj)
	cmd.oldIndex = cmd.c.LocalIndex(cmd.obj)
	cmd.snapshot = cmd.c.SnapshotOverrides(cmd.obj)
	cmd.moved = cmd.s.moveObject(cmd.c, cmd.obj, cmd.parent, cmd.index, nil)
}

func (cmd *MoveObjectCommand) Undo() {
	if !cmd.moved {
		return
	}
	cmd.s.moveObject(cmd.c, cmd.obj, cmd.oldParent, cmd.oldIndex, cmd.snapshot)
}

// Test reports whether the object was actually moved somewhere else.
func (cmd *MoveObjectCommand) Test() bool {
	cmd.Execute()
	if !cmd.moved {
		return false
	}
	if cmd.c.Parent(cmd.obj) == cmd.oldParent && cmd.c.LocalIndex(cmd.obj) == cmd.oldIndex {
		return false
	}
	return true
}

func (cmd *MoveObjectCommand) String() string {
	parent := cmd.c.ContainerFor(cmd.parent)
	return fmt.Sprintf("move object %s to %s", cmd.obj.Name(), parent.Name())
}

// CreateFieldCommand declares a new field on an object.
type CreateFieldCommand struct {
	s     *Session
	c     *project.Collection
	obj   *project.Object
	f     *project.Field
	index int
}

func NewCreateFieldCommand(s *Session, c *project.Collection, obj *project.Object, f *project.Field) *CreateFieldCommand {
	return &CreateFieldCommand{s: s, c: c, obj: obj, f: f, index: -1}
}

func (cmd *CreateFieldCommand) Execute() {
	cmd.s.restoreField(cmd.c, cmd.obj, cmd.f, cmd.index)
	cmd.index = cmd.obj.FieldIndex(cmd.f)
}

func (cmd *CreateFieldCommand) Undo() { cmd.s.deleteField(cmd.c, cmd.obj, cmd.f) }

func (cmd *CreateFieldCommand) String() string {
	return fmt.Sprintf("create %s field %s on %s", cmd.f.Type(), cmd.f.Name(), cmd.obj.Name())
}

// DeleteFieldCommand removes a declared field and remembers its position.
type DeleteFieldCommand struct {
	s     *Session
	c     *project.Collection
	obj   *project.Object
	f     *project.Field
	index int
}

func NewDeleteFieldCommand(s *Session, c *project.Collection, obj *project.Object, f *project.Field) *DeleteFieldCommand {
	return &DeleteFieldCommand{s: s, c: c, obj: obj, f: f, index: -1}
}

func (cmd *DeleteFieldCommand) Execute() { cmd.index = cmd.s.deleteField(cmd.c, cmd.obj, cmd.f) }
func (cmd *DeleteFieldCommand) Undo()    { cmd.s.restoreField(cmd.c, cmd.obj, cmd.f, cmd.index) }

func (cmd *DeleteFieldCommand) Test() bool {
	cmd.Execute()
	return cmd.index >= 0
}

func (cmd *DeleteFieldCommand) String() string {
	return fmt.Sprintf("delete field %s from %s", cmd.f.Name(), cmd.obj.Name())
}

// RenameFieldCommand renames a field and every override copy linked to it.
type RenameFieldCommand struct {
	s       *Session
	c       *project.Collection
	obj     *project.Object
	f       *project.Field
	name    string
	oldName string
}

func NewRenameFieldCommand(s *Session, c *project.Collection, obj *project.Object, f *project.Field, name string) *RenameFieldCommand {
	return &RenameFieldCommand{s: s, c: c, obj: obj, f: f, name: name}
}

func (cmd *RenameFieldCommand) Execute() {
	cmd.oldName = cmd.f.Name().String()
	cmd.s.renameField(cmd.c, cmd.obj, cmd.f, cmd.name)
	cmd.name = cmd.f.Name().String()
}

func (cmd *RenameFieldCommand) Undo() {
	cmd.s.renameField(cmd.c, cmd.obj, cmd.f, cmd.oldName)
	cmd.oldName = cmd.f.Name().String()
}

func (cmd *RenameFieldCommand) Test() bool {
	cmd.Execute()
	return cmd.name != cmd.oldName
}

func (cmd *RenameFieldCommand) String() string {
	return fmt.Sprintf("rename field %s to %s", cmd.oldName, cmd.name)
}

// MoveFieldCommand reorders a declared field.
type MoveFieldCommand struct {
	s        *Session
	c        *project.Collection
	obj      *project.Object
	f        *project.Field
	from, to int
}

func NewMoveFieldCommand(s *Session, c *project.Collection, obj *project.Object, f *project.Field, to int) *MoveFieldCommand {
	return &MoveFieldCommand{s: s, c: c, obj: obj, f: f, from: -1, to: to}
}

func (cmd *MoveFieldCommand) Execute() {
	cmd.from = cmd.obj.FieldIndex(cmd.f)
	cmd.s.moveField(cmd.c, cmd.obj, cmd.f, cmd.to)
}

func (cmd *MoveFieldCommand) Undo() { cmd.s.moveField(cmd.c, cmd.obj, cmd.f, cmd.from) }

func (cmd *MoveFieldCommand) Test() bool {
	cmd.Execute()
	return cmd.from >= 0 && cmd.obj.FieldIndex(cmd.f) != cmd.from
}

func (cmd *MoveFieldCommand) String() string {
	return fmt.Sprintf("move field %s to %d", cmd.f.Name(), cmd.to)
}

// OverrideFieldCommand gives an object its own value for an inherited field, or
// with reset set, drops that value again. The override field itself is kept
// across undo and redo so its data survives.
type OverrideFieldCommand struct {
	s        *Session
	c        *project.Collection
	obj      *project.Object
	key      *project.Field
	override *project.Field
	reset    bool
	changed  bool
}

func NewOverrideFieldCommand(s *Session, c *project.Collection, obj *project.Object, key *project.Field) *OverrideFieldCommand {
	return &OverrideFieldCommand{s: s, c: c, obj: obj, key: key}
}

func NewResetFieldCommand(s *Session, c *project.Collection, obj *project.Object, key *project.Field) *OverrideFieldCommand {
	return &OverrideFieldCommand{s: s, c: c, obj: obj, key: key, reset: true}
}

func (cmd *OverrideFieldCommand) Execute() {
	if cmd.reset {
		cmd.remove()
		return
	}
	cmd.add()
}

func (cmd *OverrideFieldCommand) Undo() {
	if !cmd.changed {
		return
	}
	if cmd.reset {
		cmd.add()
		return
	}
	cmd.remove()
}

func (cmd *OverrideFieldCommand) add() {
	had := cmd.obj.HasOverride(cmd.key.ID())
	ov := cmd.s.overrideField(cmd.c, cmd.obj, cmd.key, cmd.override)
	cmd.changed = !had && ov != nil
	if ov != nil {
		cmd.override = ov
	}
}

func (cmd *OverrideFieldCommand) remove() {
	ov := cmd.s.removeOverride(cmd.c, cmd.obj, cmd.key)
	cmd.changed = ov != nil
	if ov != nil {
		cmd.override = ov
	}
}

// Test reports whether the override was actually added or removed.
func (cmd *OverrideFieldCommand) Test() bool {
	cmd.Execute()
	return cmd.changed
}

// Override returns the override field, once the command has run.
func (cmd *OverrideFieldCommand) Override() *project.Field { return cmd.override }

func (cmd *OverrideFieldCommand) String() string {
	if cmd.reset {
		return fmt.Sprintf("reset field %s on %s", cmd.key.Name(), cmd.obj.Name())
	}
	return fmt.Sprintf("override field %s on %s", cmd.key.Name(), cmd.obj.Name())
}

// EditFieldCommand changes a field's data.
type EditFieldCommand struct {
	s       *Session
	c       *project.Collection
	obj     *project.Object
	f       *project.Field
	oldData any
	newData any
}

// NewEditFieldCommand sets f to data when executed.
func NewEditFieldCommand(s *Session, c *project.Collection, obj *project.Object, f *project.Field, data any) *EditFieldCommand {
	return &EditFieldCommand{s: s, c: c, obj: obj, f: f, oldData: f.Data(), newData: data}
}

// NewEditedFieldCommand records an edit already applied to f, changing its data
// from oldData to the current value. Pass it to Session.Record.
func NewEditedFieldCommand(s *Session, c *project.Collection, obj *project.Object, f *project.Field, oldData any) *EditFieldCommand {
	return &EditFieldCommand{s: s, c: c, obj: obj, f: f, oldData: oldData, newData: f.Data()}
}

func (cmd *EditFieldCommand) Execute() {
	cmd.s.setFieldData(cmd.c, cmd.obj, cmd.f, cmd.newData)
	// Store the coerced value so redo and the description match what was set.
	cmd.newData = cmd.f.Data()
}

func (cmd *EditFieldCommand) Undo() { cmd.s.setFieldData(cmd.c, cmd.obj, cmd.f, cmd.oldData) }

// Test reports whether the data changed. Input the field rejects is not a change.
func (cmd *EditFieldCommand) Test() bool {
	cmd.oldData = cmd.f.Data()
	cmd.Execute()
	return cmd.f.Data() != cmd.oldData
}

func (cmd *EditFieldCommand) String() string {
	return fmt.Sprintf("set field %s on %s to %v", cmd.f.Name(), cmd.obj.Name(), cmd.newData)
}
