package audit

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	dir := t.TempDir()
	l := New(filepath.Join(dir, "project.carbon"), true)
	require.True(t, l.Enabled())
	assert.Equal(t, filepath.Join(dir, Dir, "audit.log"), l.Path())

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tick := base
	l.now = func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}

	require.NoError(t, l.LogCommand("execute", "add collection Items"))
	require.NoError(t, l.LogCommand("undo", "add collection Items"))
	require.NoError(t, l.LogSave("project.carbon"))
	require.NoError(t, l.LogExport("json", []string{"out/items.json"}))

	entries, err := l.Read()
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "execute", entries[0].Operation)
	assert.Equal(t, "add collection Items", entries[0].Command)
	assert.Equal(t, "project.carbon", entries[2].Path)
	assert.Equal(t, "json", entries[3].Extra["format"])

	since, err := l.ReadSince(base.Add(3 * time.Minute))
	require.NoError(t, err)
	assert.Len(t, since, 2)

	tail, err := l.Tail(1)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, "export", tail[0].Operation)
}

func TestLoggerSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	l := New(filepath.Join(dir, "project.carbon"), true)
	require.NoError(t, l.LogSave("a"))

	f, err := os.OpenFile(l.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("not json\n\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, l.LogSave("b"))

	entries, err := l.Read()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestDisabledLogger(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "project.carbon"), false)
	assert.False(t, l.Enabled())
	require.NoError(t, l.LogCommand("execute", "x"))

	entries, err := l.Read()
	require.NoError(t, err)
	assert.Nil(t, entries)
}
