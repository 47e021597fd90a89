package projectfile

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glint-tools/carbon/internal/project"
)

type sample struct {
	p                       *project.Project
	chars                   *project.Collection
	character, hero, hero1  *project.Object
	health, title, portrait *project.Field
}

func newSample(t *testing.T) *sample {
	t.Helper()

	s := &sample{p: project.New()}
	s.chars = project.NewCollection("Characters")
	require.True(t, s.p.AddCollection(s.chars))
	require.True(t, s.p.AddCollection(project.NewCollection("Items")))

	s.character = project.NewObject("Character", true)
	s.hero = project.NewObject("Hero", true)
	s.hero1 = project.NewObject("Hero1", false)
	require.True(t, s.chars.AddObject(nil, s.character))
	require.True(t, s.chars.AddObject(s.character, s.hero))
	require.True(t, s.chars.AddObject(s.hero, s.hero1))

	s.health = project.NewNumberField("Health", 10)
	s.title = project.NewStringField("Title", "Nobody", "Nobody", "Sir", "Dame")
	s.portrait = project.NewImageField("Portrait", "art/none.png")
	for _, f := range []*project.Field{
		s.health,
		s.title,
		project.NewTextField("Bio", "line one\nline two <b>"),
		project.NewBooleanField("Alive", true),
		s.portrait,
	} {
		require.True(t, s.chars.CreateField(s.character, f))
	}

	require.True(t, s.chars.OverrideField(s.hero, s.health, nil).SetData(50))
	require.True(t, s.chars.OverrideField(s.hero1, s.health, nil).SetData(100.5))
	require.True(t, s.chars.OverrideField(s.hero1, s.title, nil).SetData("Sir"))
	return s
}

func TestRoundTrip(t *testing.T) {
	s := newSample(t)

	data, err := Marshal(s.p)
	require.NoError(t, err)

	loaded, err := Unmarshal(data)
	require.NoError(t, err)

	again, err := Marshal(loaded)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))

	chars := loaded.CollectionNamed("Characters")
	require.NotNil(t, chars)
	require.NoError(t, chars.Validate())
	assert.Equal(t, s.chars.ID(), chars.ID())

	hero1, ok := chars.Object(s.hero1.ID())
	require.True(t, ok)
	assert.False(t, hero1.IsType())

	character, _ := chars.Object(s.character.ID())
	health := character.FieldNamed("Health")
	require.NotNil(t, health)
	assert.Equal(t, 100.5, chars.EffectiveField(hero1, health).Data())
	assert.Equal(t, []string{"Nobody", "Sir", "Dame"}, character.FieldNamed("Title").Options())

	// Links are rebuilt, so renames still reach every override.
	chars.RenameField(character, health, "Vitality")
	ov, ok := hero1.Override(health.ID())
	require.True(t, ok)
	assert.Equal(t, "Vitality", ov.Name().String())
}

func TestRoundTripRenamedOverriddenField(t *testing.T) {
	s := newSample(t)
	s.chars.RenameField(s.character, s.health, "Vitality")

	data, err := Marshal(s.p)
	require.NoError(t, err)
	loaded, err := Unmarshal(data)
	require.NoError(t, err)
	again, err := Marshal(loaded)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))

	chars := loaded.CollectionNamed("Characters")
	require.NotNil(t, chars)
	character, _ := chars.Object(s.character.ID())
	vitality := character.FieldNamed("Vitality")
	require.NotNil(t, vitality)
	assert.Equal(t, s.health.ID(), vitality.ID())
	assert.Nil(t, character.FieldNamed("Health"))

	for _, tt := range []struct {
		obj  *project.Object
		want float64
	}{
		{s.hero, 50},
		{s.hero1, 100.5},
	} {
		obj, ok := chars.Object(tt.obj.ID())
		require.True(t, ok)
		ov, ok := obj.Override(vitality.ID())
		require.True(t, ok, "%s keeps its override", obj.Name())
		assert.Equal(t, "Vitality", ov.Name().String())
		assert.Equal(t, tt.want, ov.Data())
		assert.True(t, vitality.HasLink(ov.ID()))
	}
}

func TestRoundTripAfterTypeMove(t *testing.T) {
	s := newSample(t)

	dropped, ok := s.chars.MoveObject(s.hero, nil, 0, nil)
	require.True(t, ok)
	assert.Len(t, dropped, 3, "Hero and Hero1 no longer inherit from Character")
	assert.Empty(t, s.hero1.Overrides())

	data, err := Marshal(s.p)
	require.NoError(t, err)
	loaded, err := Unmarshal(data)
	require.NoError(t, err)
	again, err := Marshal(loaded)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))

	for _, o := range Write(s.p).Collections[0].Objects {
		assert.Empty(t, o.FieldOverrides, "%s", o.Name)
	}
}

func TestWriteFormat(t *testing.T) {
	s := newSample(t)
	rec := Write(s.p)

	assert.Equal(t, project.FormatVersion, rec.Version)
	require.Len(t, rec.Collections, 2)

	objects := rec.Collections[0].Objects
	require.Len(t, objects, 4)
	assert.Nil(t, objects[0].Parent, "root has no parent")
	require.NotNil(t, objects[1].Parent)
	assert.Equal(t, s.chars.Root().ID().String(), *objects[1].Parent)

	fields := objects[1].Fields
	require.Len(t, fields, 5)
	assert.Equal(t, "Number", fields[0].Type)
	assert.Equal(t, "10", fields[0].Data.Value)
	assert.Equal(t, "true", fields[3].Data.Value)
	assert.Nil(t, fields[0].Options)

	overrides := objects[3].FieldOverrides
	require.Len(t, overrides, 2)
	assert.Equal(t, s.health.ID().String(), overrides[0].Override)
	assert.Equal(t, "100.5", overrides[0].Data.Value)

	data, err := Marshal(s.p)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n\t\"collections\": [")
	assert.Contains(t, string(data), "<b>", "html is not escaped")
}

const tolerant = `{
	"version": "0.1",
	"collections": [{
		"name": "Things",
		"id": "not-a-uuid",
		"objects": [
			{"name": "Things", "id": "6f7ad4a5-7e59-4b4a-9d31-2a0c8f0d6a01", "parent": null, "fields": []},
			{"name": "Thing", "id": "6f7ad4a5-7e59-4b4a-9d31-2a0c8f0d6a02", "parent": "6f7ad4a5-7e59-4b4a-9d31-2a0c8f0d6a01",
			 "fields": [
				{"name": "Size", "id": "1d4e0b7a-0000-4000-8000-000000000001", "type": "Number", "data": 5},
				{"name": "Shiny", "id": "bad", "type": "boolean", "data": true},
				{"name": "Where", "id": "1d4e0b7a-0000-4000-8000-000000000003", "type": "Vector", "data": "1,2"},
				{"name": "Weight", "id": "1d4e0b7a-0000-4000-8000-000000000004", "type": "Number", "data": "heavy"},
				{"name": "Label", "id": "1d4e0b7a-0000-4000-8000-000000000005", "type": "String", "data": null}
			 ]},
			{"name": "Cup", "id": "6f7ad4a5-7e59-4b4a-9d31-2a0c8f0d6a03", "parent": "6f7ad4a5-7e59-4b4a-9d31-2a0c8f0d6a02", "is_type": false,
			 "fields": [],
			 "field_overrides": [
				{"override": "1d4e0b7a-0000-4000-8000-000000000001", "data": 7},
				{"override": "1d4e0b7a-0000-4000-8000-000000000009", "data": "x"},
				{"override": "1d4e0b7a-0000-4000-8000-000000000005"}
			 ]},
			{"name": "Lost", "id": "6f7ad4a5-7e59-4b4a-9d31-2a0c8f0d6a04", "parent": "6f7ad4a5-7e59-4b4a-9d31-2a0c8f0d6aff", "is_type": false},
			{"name": "LoopA", "id": "6f7ad4a5-7e59-4b4a-9d31-2a0c8f0d6a05", "parent": "6f7ad4a5-7e59-4b4a-9d31-2a0c8f0d6a06"},
			{"name": "LoopB", "id": "6f7ad4a5-7e59-4b4a-9d31-2a0c8f0d6a06", "parent": "6f7ad4a5-7e59-4b4a-9d31-2a0c8f0d6a05"},
			{"name": "Broken", "id": "6f7ad4a5-7e59-4b4a-9d31-2a0c8f0d6a07", "parent": "garbage"}
		]
	}]
}`

func TestReadTolerance(t *testing.T) {
	var logs bytes.Buffer
	p, err := Unmarshal([]byte(tolerant), WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	require.NoError(t, err)
	require.Equal(t, 1, p.Len())

	c := p.Collections()[0]
	require.NoError(t, c.Validate())
	assert.Equal(t, "Things", c.Root().Name().String())
	assert.Equal(t, 7, c.Len())

	thing := find(t, c, "Thing")
	assert.True(t, thing.IsType(), "is_type defaults to true")
	require.Equal(t, 4, thing.FieldCount(), "unknown field type is skipped")

	fields := thing.Fields()
	assert.Equal(t, 5.0, fields[0].Data())
	assert.Equal(t, true, fields[1].Data())
	assert.NotEqual(t, "bad", fields[1].ID().String())
	assert.Equal(t, 0.0, fields[2].Data(), "unparseable number becomes zero")
	assert.Equal(t, "", fields[3].Data())

	cup := find(t, c, "Cup")
	assert.False(t, cup.IsType())
	require.Len(t, cup.Overrides(), 1, "unknown target and missing data are dropped")
	assert.Equal(t, 7.0, c.EffectiveField(cup, fields[0]).Data())

	for _, name := range []string{"Lost", "LoopA", "Broken"} {
		obj := find(t, c, name)
		assert.Same(t, c.Root(), c.Parent(obj), name)
	}
	loopB := find(t, c, "LoopB")
	assert.Equal(t, "LoopA", c.Parent(loopB).Name().String())

	assert.Contains(t, logs.String(), "skipping field of unknown type")
	assert.Contains(t, logs.String(), "skipping override of unknown field")
}

func find(t *testing.T, c *project.Collection, name string) *project.Object {
	t.Helper()
	for _, o := range c.Objects() {
		if o.Name().String() == name {
			return o
		}
	}
	t.Fatalf("no object %q", name)
	return nil
}

func TestReadVersion(t *testing.T) {
	tests := []struct {
		version string
		warn    string
	}{
		{"0.1", ""},
		{"0.3", "newer version"},
		{"banana", "unrecognised project version"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			var logs bytes.Buffer
			p := Read(Record{Version: tt.version}, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
			assert.Equal(t, tt.version, p.Version)
			if tt.warn == "" {
				assert.Empty(t, logs.String())
			} else {
				assert.Contains(t, logs.String(), tt.warn)
			}
		})
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	_, err := Unmarshal([]byte(`{"collections": 3}`))
	assert.Error(t, err)
}
