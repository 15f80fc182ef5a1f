package measure

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInfo(t *testing.T) {
	info := NewInfo()
	assert.True(t, math.IsInf(info.Min, 1))
	assert.True(t, math.IsInf(info.Max, -1))
	assert.Zero(t, info.Count)

	info.Update(-3.5)
	assert.Equal(t, Info{Min: -3.5, Max: -3.5, Sum: -3.5, Count: 1}, info)
}

func TestInfoMerge(t *testing.T) {
	a := Info{Min: 1, Max: 5, Sum: 6, Count: 2}
	a.Merge(Info{Min: -1, Max: 3, Sum: 2, Count: 2})
	assert.Equal(t, Info{Min: -1, Max: 5, Sum: 8, Count: 4}, a)

	empty := NewInfo()
	empty.Merge(a)
	assert.Equal(t, a, empty)
}

func TestInfoString(t *testing.T) {
	info := Info{Min: 10, Max: 20, Sum: 30, Count: 2}
	assert.Equal(t, "10.0/15.0/20.0", info.String())
}

func TestTableUpdate(t *testing.T) {
	table := NewTable()
	name := []byte("Hamburg")
	table.Update(name, 1)
	// the key must not alias the caller's slice
	copy(name, "Xxxxxxx")
	table.Update([]byte("Hamburg"), 3)

	info, ok := table.Get("Hamburg")
	require.True(t, ok)
	assert.Equal(t, Info{Min: 1, Max: 3, Sum: 4, Count: 2}, info)
	assert.Equal(t, 1, table.Len())

	_, ok = table.Get("Xxxxxxx")
	assert.False(t, ok)
}

func TestTableCollisionsKeepKeysApart(t *testing.T) {
	table := NewTable()
	const hash = 42

	table.slot(hash, []byte("a")).info.Update(1)
	table.slot(hash, []byte("b")).info.Update(2)
	table.slot(hash, []byte("a")).info.Update(3)

	assert.Equal(t, 2, table.Len())
	got := map[string]Info{}
	table.Each(func(name string, info Info) {
		got[name] = info
	})
	assert.Equal(t, map[string]Info{
		"a": {Min: 1, Max: 3, Sum: 4, Count: 2},
		"b": {Min: 2, Max: 2, Sum: 2, Count: 1},
	}, got)
}

func TestTableMergeTable(t *testing.T) {
	a := NewTable()
	a.Update([]byte("x"), 1)
	a.Update([]byte("y"), 2)

	b := NewTable()
	b.Update([]byte("y"), -4)
	b.Update([]byte("z"), 7)

	a.MergeTable(b)
	assert.Equal(t, map[string]Info{
		"x": {Min: 1, Max: 1, Sum: 1, Count: 1},
		"y": {Min: -4, Max: 2, Sum: -2, Count: 2},
		"z": {Min: 7, Max: 7, Sum: 7, Count: 1},
	}, a.Snapshot())
}

func TestTableMergeIsAssociativeAndCommutative(t *testing.T) {
	build := func(records string) *Table {
		table := NewTable()
		ParseRecords([]byte(records), table)
		return table
	}
	parts := []string{
		"a;1.0\nb;2.0\n",
		"b;-3.0\nc;4.5\n",
		"a;9.9\nc;-0.5\nd;0.0\n",
	}

	left := build(parts[0])
	left.MergeTable(build(parts[1]))
	left.MergeTable(build(parts[2]))

	right := build(parts[1])
	right.MergeTable(build(parts[2]))
	first := build(parts[0])
	first.MergeTable(right)

	reversed := build(parts[2])
	reversed.MergeTable(build(parts[1]))
	reversed.MergeTable(build(parts[0]))

	assert.Equal(t, left.Snapshot(), first.Snapshot())
	assert.Equal(t, left.Snapshot(), reversed.Snapshot())
}
