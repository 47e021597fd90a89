package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glint-tools/carbon/internal/project"
)

func TestCharactersScenario(t *testing.T) {
	s := New(project.New())

	chars, err := s.NewCollection("Characters")
	require.NoError(t, err)
	character := s.NewType(chars, nil, "Character")
	health, err := s.NewField(chars, character, project.FieldNumber, "Health")
	require.NoError(t, err)
	hero := s.NewType(chars, character, "Hero")
	hero1 := s.NewInstance(chars, hero, "Hero1")
	hero2 := s.NewInstance(chars, hero, "Hero2")

	require.True(t, s.SetEffectiveData(chars, hero1, health, 100))

	got, err := FindField(chars, hero1, "health")
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Field.Data())

	got, err = FindField(chars, hero2, "Health")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Field.Data())
	assert.Same(t, health, got.Field)

	// Every step undoes back to an empty project.
	for s.HasUndo() {
		require.True(t, s.Undo())
	}
	assert.Equal(t, 0, s.Project().Len())
}

func TestUnsavedChanges(t *testing.T) {
	s := New(project.New())
	assert.False(t, s.HasUnsavedChanges())

	c, err := s.NewCollection("Items")
	require.NoError(t, err)
	assert.True(t, s.HasUnsavedChanges())

	s.MarkSaved()
	assert.False(t, s.HasUnsavedChanges())

	require.True(t, s.Undo())
	assert.True(t, s.HasUnsavedChanges())
	require.True(t, s.Redo())
	assert.False(t, s.HasUnsavedChanges())

	// Same position, different command.
	require.True(t, s.Undo())
	s.NewCollection("Props")
	assert.True(t, s.HasUnsavedChanges())
	assert.Equal(t, -1, s.Project().IndexOf(c))
}

func TestNoProject(t *testing.T) {
	s := New(nil)
	_, err := s.NewCollection("Items")
	assert.ErrorIs(t, err, ErrNoProject)
}

func TestDeleteUnloadsFocus(t *testing.T) {
	f := newFixture(t)

	f.s.FocusObject(f.chars, f.hero1)
	f.s.FocusField(f.heroHealth)

	require.True(t, f.s.DeleteObject(f.chars, f.hero))
	c, obj, field := f.s.Focus()
	assert.Same(t, f.chars, c)
	assert.Nil(t, obj)
	assert.Nil(t, field)

	f.s.FocusObject(f.chars, f.character)
	f.s.FocusField(f.title)
	require.True(t, f.s.DeleteField(f.chars, f.character, f.title))
	_, obj, field = f.s.Focus()
	assert.Same(t, f.character, obj)
	assert.Nil(t, field)

	require.True(t, f.s.DeleteCollection(f.chars))
	c, _, _ = f.s.Focus()
	assert.Nil(t, c)
}

func TestObserverSeesDescendantRefresh(t *testing.T) {
	f := newFixture(t)

	var events []Event
	f.s.observer = ObserverFunc(func(e Event) { events = append(events, e) })
	f.s.FocusObject(f.chars, f.hero2)
	events = nil

	require.True(t, f.s.RenameField(f.chars, f.character, f.title, "Rank"))

	var refreshed bool
	for _, e := range events {
		if e.Kind == FieldsChanged && e.Object == f.hero2 {
			refreshed = true
		}
	}
	assert.True(t, refreshed, "focused descendant should be refreshed")
	assert.Equal(t, HistoryChanged, events[len(events)-1].Kind)
}

type recordingAuditor struct {
	entries []string
}

func (a *recordingAuditor) LogCommand(action, command string) error {
	a.entries = append(a.entries, action+": "+command)
	return nil
}

func TestAuditor(t *testing.T) {
	audit := &recordingAuditor{}
	s := New(project.New(), WithAuditor(audit))

	_, err := s.NewCollection("Items")
	require.NoError(t, err)
	s.Undo()
	s.Redo()

	assert.Equal(t, []string{
		"execute: add collection Items",
		"undo: add collection Items",
		"redo: add collection Items",
	}, audit.entries)
}

func TestPaths(t *testing.T) {
	f := newFixture(t)
	p := f.s.Project()

	obj, err := FindObject(f.chars, "Character/Hero/Hero1")
	require.NoError(t, err)
	assert.Same(t, f.hero1, obj)
	assert.Equal(t, "Character/Hero/Hero1", ObjectPath(f.chars, obj))

	root, err := FindObject(f.chars, "")
	require.NoError(t, err)
	assert.Same(t, f.chars.Root(), root)
	assert.Equal(t, "", ObjectPath(f.chars, root))

	c, obj, err := Locate(p, "Characters/Character/Villain")
	require.NoError(t, err)
	assert.Same(t, f.chars, c)
	assert.Same(t, f.villain, obj)

	_, _, err = Locate(p, "Characters/Nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = Locate(p, "Nowhere")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = FindField(f.chars, f.hero1, "mana")
	assert.ErrorIs(t, err, ErrNotFound)
}
