package editor

import (
	"log/slog"

	"github.com/glint-tools/carbon/internal/history"
	"github.com/glint-tools/carbon/internal/project"
)

// Session is an editing context: the open project, what is focused, and the
// undo/redo history. A Session is not safe for concurrent use; separate
// sessions are independent.
type Session struct {
	project *project.Project

	collection *project.Collection
	object     *project.Object
	field      *project.Field

	history  history.History[Command]
	savedPos int
	savedTop Command

	observer Observer
	images   project.ImageLoader
	audit    Auditor
	logger   *slog.Logger
}

// New opens p in a new session. p may be nil.
func New(p *project.Project, opts ...Option) *Session {
	s := &Session{logger: discardLogger()}
	for _, opt := range opts {
		opt(s)
	}
	s.SetProject(p)
	return s
}

// Project returns the open project, or nil.
func (s *Session) Project() *project.Project { return s.project }

// SetProject switches to p, clearing focus and history. The new project counts
// as saved.
func (s *Session) SetProject(p *project.Project) {
	s.project = p
	s.collection, s.object, s.field = nil, nil, nil
	s.history.Clear()
	s.MarkSaved()
	if p != nil {
		s.loadImages(p)
	}
	s.notify(Event{Kind: ProjectLoaded})
}

func (s *Session) loadImages(p *project.Project) {
	if s.images == nil {
		return
	}
	for _, c := range p.Collections() {
		for _, o := range c.Objects() {
			for _, f := range o.Fields() {
				s.loadImage(f)
			}
			for _, ov := range o.Overrides() {
				s.loadImage(ov.Field)
			}
		}
	}
}

func (s *Session) loadImage(f *project.Field) {
	if s.images == nil || f.Type() != project.FieldImage || f.Data() == "" {
		return
	}
	if !f.LoadImage(s.images) {
		s.logger.Warn("image not loaded", "field", f.Name().String(), "path", f.Data())
	}
}

// Focus returns the focused collection, object and field. Any may be nil.
func (s *Session) Focus() (*project.Collection, *project.Object, *project.Field) {
	return s.collection, s.object, s.field
}

// FocusCollection focuses c and drops the object and field focus.
func (s *Session) FocusCollection(c *project.Collection) {
	s.collection, s.object, s.field = c, nil, nil
	s.notify(Event{Kind: FocusChanged, Collection: c})
}

// FocusObject focuses o within c and drops the field focus.
func (s *Session) FocusObject(c *project.Collection, o *project.Object) {
	s.collection, s.object, s.field = c, o, nil
	s.notify(Event{Kind: FocusChanged, Collection: c, Object: o})
}

// FocusField focuses f on the focused object.
func (s *Session) FocusField(f *project.Field) {
	s.field = f
	s.notify(Event{Kind: FocusChanged, Collection: s.collection, Object: s.object, Field: f})
}

// Do runs cmd and records it for undo. Testable commands are recorded only
// when Test reports an actual change. Do reports whether cmd was recorded.
func (s *Session) Do(cmd Command) bool {
	if t, ok := cmd.(Testable); ok {
		if !t.Test() {
			s.logger.Debug("command had no effect", "command", cmd.String())
			return false
		}
	} else {
		cmd.Execute()
	}
	s.push("execute", cmd)
	return true
}

// Record adds a command whose effect has already been applied, as when a
// frontend edits field data live and commits the change afterwards.
func (s *Session) Record(cmd Command) {
	s.push("record", cmd)
}

func (s *Session) push(action string, cmd Command) {
	s.history.Push(cmd)
	s.logger.Debug(action, "command", cmd.String())
	s.auditLog(action, cmd)
	s.notify(Event{Kind: HistoryChanged})
}

// Undo reverts the most recent command. It reports false when there is nothing
// to undo.
func (s *Session) Undo() bool {
	cmd, ok := s.history.Undo()
	if !ok {
		return false
	}
	cmd.Undo()
	s.logger.Debug("undo", "command", cmd.String())
	s.auditLog("undo", cmd)
	s.notify(Event{Kind: HistoryChanged})
	return true
}

// Redo replays the most recently undone command.
func (s *Session) Redo() bool {
	cmd, ok := s.history.Redo()
	if !ok {
		return false
	}
	cmd.Execute()
	s.logger.Debug("redo", "command", cmd.String())
	s.auditLog("redo", cmd)
	s.notify(Event{Kind: HistoryChanged})
	return true
}

func (s *Session) HasUndo() bool { return s.history.HasUndo() }
func (s *Session) HasRedo() bool { return s.history.HasRedo() }

// MarkSaved records the current history position as the saved state.
func (s *Session) MarkSaved() {
	s.savedPos = s.history.Position()
	s.savedTop, _ = s.history.Top()
}

// HasUnsavedChanges reports whether the history moved since MarkSaved.
func (s *Session) HasUnsavedChanges() bool {
	top, _ := s.history.Top()
	return s.history.Position() != s.savedPos || top != s.savedTop
}

func (s *Session) auditLog(action string, cmd Command) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogCommand(action, cmd.String()); err != nil {
		s.logger.Warn("audit log failed", "err", err)
	}
}

func (s *Session) notify(e Event) {
	if s.observer != nil {
		s.observer.Notify(e)
	}
}

// The methods below apply one structural change to the model, keep the focus
// consistent and notify the observer. Commands are built from them.

func (s *Session) restoreCollection(c *project.Collection, index int) {
	s.project.RestoreCollection(c, index)
	s.notify(Event{Kind: CollectionsChanged, Collection: c})
}

func (s *Session) removeCollection(c *project.Collection) int {
	if s.collection == c {
		s.FocusCollection(nil)
	}
	index := s.project.RemoveCollection(c)
	s.notify(Event{Kind: CollectionsChanged, Collection: c})
	return index
}

func (s *Session) moveCollection(c *project.Collection, index int) {
	s.project.MoveCollection(c, index)
	s.notify(Event{Kind: CollectionsChanged, Collection: c})
}

func (s *Session) renameCollection(c *project.Collection, name string) {
	s.project.RenameCollection(c, name)
	s.notify(Event{Kind: CollectionsChanged, Collection: c})
}

func (s *Session) addObject(c *project.Collection, parent, obj *project.Object) {
	c.AddObject(parent, obj)
	s.notify(Event{Kind: ObjectsChanged, Collection: c, Object: obj})
}

func (s *Session) removeObject(c *project.Collection, obj *project.Object) []*project.Object {
	if s.object != nil && (s.object == obj || c.IsAncestorOf(obj, s.object)) {
		s.FocusCollection(c)
	}
	block := c.RemoveObject(obj)
	s.notify(Event{Kind: ObjectsChanged, Collection: c, Object: obj})
	return block
}

func (s *Session) restoreObject(c *project.Collection, parent *project.Object, index int, block []*project.Object) {
	c.RestoreObject(parent, index, block)
	s.notify(Event{Kind: ObjectsChanged, Collection: c, Object: block[0]})
}

func (s *Session) moveObject(c *project.Collection, obj, parent *project.Object, index int, snapshot project.OverrideSnapshot) bool {
	dropped, ok := c.MoveObject(obj, parent, index, snapshot)
	if !ok {
		return false
	}
	for _, ov := range dropped {
		s.logger.Debug("override dropped", "moved", obj.Name().String(), "field", ov.Field.Name().String())
		if s.field == ov.Field {
			s.FocusObject(c, s.object)
		}
	}
	s.notify(Event{Kind: ObjectsChanged, Collection: c, Object: obj})
	if s.object != nil && (s.object == obj || c.IsAncestorOf(obj, s.object)) {
		s.notify(Event{Kind: FieldsChanged, Collection: c, Object: s.object})
	}
	return true
}

func (s *Session) renameObject(c *project.Collection, obj *project.Object, name string) {
	if obj == c.Root() {
		s.renameCollection(c, name)
		return
	}
	c.RenameObject(obj, name)
	s.notify(Event{Kind: ObjectsChanged, Collection: c, Object: obj})
}

func (s *Session) restoreField(c *project.Collection, obj *project.Object, f *project.Field, index int) {
	c.RestoreField(obj, f, index)
	s.loadImage(f)
	s.notifyFields(c, obj, f)
}

func (s *Session) deleteField(c *project.Collection, obj *project.Object, f *project.Field) int {
	if s.field == f {
		s.FocusObject(s.collection, s.object)
	}
	index := c.DeleteField(obj, f)
	s.notifyFields(c, obj, f)
	return index
}

func (s *Session) moveField(c *project.Collection, obj *project.Object, f *project.Field, index int) {
	c.MoveField(obj, f, index)
	s.notifyFields(c, obj, f)
}

func (s *Session) renameField(c *project.Collection, obj *project.Object, f *project.Field, name string) {
	c.RenameField(obj, f, name)
	s.notifyFields(c, obj, f)
}

func (s *Session) overrideField(c *project.Collection, obj *project.Object, f, provided *project.Field) *project.Field {
	ov := c.OverrideField(obj, f, provided)
	s.notifyFields(c, obj, ov)
	return ov
}

func (s *Session) removeOverride(c *project.Collection, obj *project.Object, f *project.Field) *project.Field {
	ov := c.RemoveFieldOverride(obj, f)
	if ov != nil && s.field == ov {
		s.FocusObject(s.collection, s.object)
	}
	s.notifyFields(c, obj, f)
	return ov
}

func (s *Session) setFieldData(c *project.Collection, obj *project.Object, f *project.Field, data any) {
	f.SetData(data)
	s.loadImage(f)
	s.notifyFields(c, obj, f)
}

// notifyFields reports a field change on obj. Descendants inherit obj's
// fields, so a focused descendant is refreshed too.
func (s *Session) notifyFields(c *project.Collection, obj *project.Object, f *project.Field) {
	s.notify(Event{Kind: FieldsChanged, Collection: c, Object: obj, Field: f})
	if s.object != nil && s.object != obj && c != nil && c.IsAncestorOf(obj, s.object) {
		s.notify(Event{Kind: FieldsChanged, Collection: c, Object: s.object})
	}
}
