package export

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glint-tools/carbon/internal/project"
)

type characters struct {
	p                     *project.Project
	c                     *project.Collection
	character, hero       *project.Object
	hero1, hero2, villain *project.Object
	health                *project.Field
}

func newCharacters(t *testing.T) *characters {
	t.Helper()

	x := &characters{p: project.New(), c: project.NewCollection("Characters")}
	require.True(t, x.p.AddCollection(x.c))

	x.character = project.NewObject("Character", true)
	x.hero = project.NewObject("Hero", true)
	x.hero1 = project.NewObject("Hero1", false)
	x.hero2 = project.NewObject("Hero2", false)
	x.villain = project.NewObject("Villain", false)
	require.True(t, x.c.AddObject(nil, x.character))
	require.True(t, x.c.AddObject(x.character, x.hero))
	require.True(t, x.c.AddObject(x.hero, x.hero1))
	require.True(t, x.c.AddObject(x.hero, x.hero2))
	require.True(t, x.c.AddObject(x.character, x.villain))

	x.health = project.NewNumberField("Health", 0)
	require.True(t, x.c.CreateField(x.character, x.health))
	require.True(t, x.c.CreateField(x.hero, project.NewStringField("Max Rank", "Squire")))
	require.True(t, x.c.OverrideField(x.hero1, x.health, nil).SetData(100))
	return x
}

func TestObjectFlattening(t *testing.T) {
	x := newCharacters(t)

	hero1 := Object(x.c, x.hero1)
	assert.Equal(t, []string{"health", "maxRank"}, hero1.Keys())
	v, _ := hero1.Get("health")
	assert.Equal(t, 100.0, v, "leaf override of a root field wins")

	hero2 := Object(x.c, x.hero2)
	v, _ = hero2.Get("health")
	assert.Equal(t, 0.0, v)

	assert.Equal(t, map[string]any{"health": 0.0}, Object(x.c, x.villain).Map())
}

func TestCollectionExpansion(t *testing.T) {
	x := newCharacters(t)

	assert.Nil(t, Type(x.c, x.hero1))
	assert.Equal(t, map[string]any{
		"Character": map[string]any{
			"Hero": map[string]any{
				"Hero1": map[string]any{"health": 100.0, "maxRank": "Squire"},
				"Hero2": map[string]any{"health": 0.0, "maxRank": "Squire"},
			},
			"Villain": map[string]any{"health": 0.0},
		},
	}, Collection(x.c).Map())

	assert.Equal(t, []string{"Characters"}, Project(x.p).Keys())
}

func TestJSONKeepsOrder(t *testing.T) {
	rec := NewRecord()
	rec.Set("zeta", 1.0)
	rec.Set("alpha", "a")
	sub := NewRecord()
	sub.Set("enabled", true)
	rec.Set("nested", sub)
	rec.Set("zeta", 2.0)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":2,"alpha":"a","nested":{"enabled":true}}`, string(data))

	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, rec))
	assert.Equal(t, "zeta: 2\nalpha: a\nnested:\n  enabled: true\n", buf.String())
}

func TestFormatFlag(t *testing.T) {
	var f Format
	require.NoError(t, f.Set("YML"))
	assert.Equal(t, YAML, f)
	assert.Equal(t, ".yaml", f.Ext())
	assert.Error(t, f.Set("xml"))
	assert.False(t, SQLite.Streamable())

	assert.ErrorIs(t, Write(&bytes.Buffer{}, SQLite, NewRecord()), ErrNotStreamable)
}

func TestWriteDir(t *testing.T) {
	x := newCharacters(t)
	require.True(t, x.p.AddCollection(project.NewCollection("Weapons & Armor")))
	dir := filepath.Join(t.TempDir(), "out")

	files, err := WriteDir(context.Background(), x.p, dir, JSON)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "characters.json"),
		filepath.Join(dir, "weapons-and-armor.json"),
	}, files)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, Collection(x.c).Map(), got)
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	x := newCharacters(t)
	items := project.NewCollection("Items")
	require.True(t, x.p.AddCollection(items))
	sword := project.NewObject("Sword", false)
	require.True(t, items.AddObject(nil, sword))
	require.True(t, items.CreateField(sword, project.NewBooleanField("Sharp", true)))

	path := filepath.Join(t.TempDir(), "carbon.db")
	require.NoError(t, WriteSQLite(ctx, x.p, path))

	rows, err := ReadSQLite(ctx, path)
	require.NoError(t, err)
	assert.Contains(t, rows, ValueRow{
		Collection: "Characters", Path: "Character/Hero/Hero1",
		Key: "health", Type: "Number", Value: "100", Overridden: true,
	})
	assert.Contains(t, rows, ValueRow{
		Collection: "Characters", Path: "Character/Hero/Hero2",
		Key: "health", Type: "Number", Value: "0",
	})
	assert.Contains(t, rows, ValueRow{
		Collection: "Items", Path: "Sword",
		Key: "sharp", Type: "Boolean", Value: "true",
	})

	// Re-exporting without Items removes its rows.
	x.p.RemoveCollection(items)
	require.NoError(t, WriteSQLite(ctx, x.p, path))
	rows, err = ReadSQLite(ctx, path)
	require.NoError(t, err)
	for _, r := range rows {
		assert.Equal(t, "Characters", r.Collection)
	}
	assert.Len(t, rows, 8)
}
