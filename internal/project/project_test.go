package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectCollections(t *testing.T) {
	p := New()
	assert.Equal(t, FormatVersion, p.Version)

	a := NewCollection("")
	b := NewCollection("")
	require.True(t, p.AddCollection(a))
	require.True(t, p.AddCollection(b))
	assert.Equal(t, "New collection", a.Name().String())
	assert.Equal(t, "New collection2", b.Name().String())
	assert.Equal(t, b.Name(), b.Root().Name())
	assert.False(t, p.AddCollection(a))

	p.RenameCollection(b, "Items")
	assert.Same(t, b, p.CollectionNamed("Items"))

	require.True(t, p.MoveCollection(b, 0))
	assert.Equal(t, []*Collection{b, a}, p.Collections())

	idx := p.RemoveCollection(b)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1, p.Len())

	require.True(t, p.RestoreCollection(b, idx))
	assert.Equal(t, []*Collection{b, a}, p.Collections())

	got, ok := p.Collection(a.ID())
	require.True(t, ok)
	assert.Same(t, a, got)
}

func TestRenameCollectionDisambiguates(t *testing.T) {
	p := New()
	a := NewCollection("Items")
	b := NewCollection("Props")
	require.True(t, p.AddCollection(a))
	require.True(t, p.AddCollection(b))

	p.RenameCollection(b, "Items")
	assert.Equal(t, "Items2", b.Name().String())
	assert.Equal(t, "Items2", b.Root().Name().String())
}
