package fling_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HaotaoYang/fling"
)

func TestTable_Handle(t *testing.T) {
	table, err := fling.NewTable([]pair{{"a", 1}, {"b", 2}}, fst, snd)
	require.NoError(t, err)

	v, ok, err := table.Get("a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, err = table.GetDefault("missing", -1)
	require.NoError(t, err)
	assert.Equal(t, -1, v)

	// Handles are just identifiers: another handle on the same ID reads the
	// same table.
	other := fling.Of[string, int](table.ID())
	v, ok, err = other.Get("b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, v)

	assert.True(t, table.Purge())
	assert.False(t, other.Purge())

	_, _, err = table.Get("a")
	assert.ErrorIs(t, err, fling.ErrNoSuchTable)
}

func TestTable_HandleOfDeadID(t *testing.T) {
	dead := fling.Of[string, int](fling.AllocateID())
	_, _, err := dead.Get("a")
	assert.ErrorIs(t, err, fling.ErrNoSuchTable)
}
