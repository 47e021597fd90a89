// Package editor is the mutation layer over a project: an editing session with
// its focus, undo/redo history and the commands every edit is wrapped in.
//
// Frontends never change the project model directly. They call the Session's
// action methods (NewType, RenameField, MoveObject, ...), each of which builds a
// Command, runs it and records it for undo.
package editor

import (
	"errors"
	"io"
	"log/slog"

	"github.com/glint-tools/carbon/internal/project"
)

var (
	// ErrNoProject is returned when an action needs a project and none is loaded.
	ErrNoProject = errors.New("no project loaded")
	// ErrNotFound is returned when a path or name does not resolve.
	ErrNotFound = errors.New("not found")
)

// EventKind classifies session notifications.
type EventKind int

const (
	// ProjectLoaded fires when the session switches project.
	ProjectLoaded EventKind = iota
	CollectionsChanged
	ObjectsChanged
	FieldsChanged
	FocusChanged
	HistoryChanged
)

func (k EventKind) String() string {
	switch k {
	case ProjectLoaded:
		return "project-loaded"
	case CollectionsChanged:
		return "collections-changed"
	case ObjectsChanged:
		return "objects-changed"
	case FieldsChanged:
		return "fields-changed"
	case FocusChanged:
		return "focus-changed"
	case HistoryChanged:
		return "history-changed"
	}
	return "unknown"
}

// Event describes a change a presentation layer may want to reflect.
type Event struct {
	Kind       EventKind
	Collection *project.Collection
	Object     *project.Object
	Field      *project.Field
}

// Observer receives display hooks. Sessions work without one.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Notify(e Event) { f(e) }

// Auditor records executed, undone and redone commands.
type Auditor interface {
	LogCommand(action, command string) error
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver installs display hooks.
func WithObserver(o Observer) Option {
	return func(s *Session) { s.observer = o }
}

// WithImageLoader sets the loader used to prepare image field data.
func WithImageLoader(l project.ImageLoader) Option {
	return func(s *Session) { s.images = l }
}

// WithAuditor records every command the session runs.
func WithAuditor(a Auditor) Option {
	return func(s *Session) { s.audit = a }
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
