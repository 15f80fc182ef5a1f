package measure

import (
	"github.com/cespare/xxhash/v2"
	"github.com/dolthub/swiss"
)

const defaultTableSize = 1024

type entry struct {
	name string
	info Info
	next *entry
}

// Table maps raw key bytes to their aggregate. Keys are hashed with xxhash;
// entries sharing a hash are chained and compared by full key, so a hash
// collision never merges two keys. A Table is not safe for concurrent use.
type Table struct {
	m   *swiss.Map[uint64, *entry]
	len int
}

func NewTable() *Table {
	return &Table{
		m: swiss.NewMap[uint64, *entry](defaultTableSize),
	}
}

// Update records one observation for name. name is copied on first use, so
// callers may pass a slice into a reusable buffer.
func (t *Table) Update(name []byte, value float64) {
	e := t.slot(xxhash.Sum64(name), name)
	e.info.Update(value)
}

// Merge folds a partial aggregate for name into the table.
func (t *Table) Merge(name string, other Info) {
	e := t.slot(xxhash.Sum64String(name), []byte(name))
	e.info.Merge(other)
}

// MergeTable folds every aggregate of other into t. other must not be used
// afterwards.
func (t *Table) MergeTable(other *Table) {
	other.Each(func(name string, info Info) {
		t.Merge(name, info)
	})
}

func (t *Table) Get(name string) (Info, bool) {
	head, ok := t.m.Get(xxhash.Sum64String(name))
	if !ok {
		return Info{}, false
	}
	for e := head; e != nil; e = e.next {
		if e.name == name {
			return e.info, true
		}
	}
	return Info{}, false
}

func (t *Table) Len() int {
	return t.len
}

// Each calls fn for every key in unspecified order.
func (t *Table) Each(fn func(name string, info Info)) {
	t.m.Iter(func(_ uint64, head *entry) bool {
		for e := head; e != nil; e = e.next {
			fn(e.name, e.info)
		}
		return false
	})
}

// Snapshot copies the table into a plain map.
func (t *Table) Snapshot() map[string]Info {
	out := make(map[string]Info, t.len)
	t.Each(func(name string, info Info) {
		out[name] = info
	})
	return out
}

func (t *Table) slot(hash uint64, name []byte) *entry {
	head, _ := t.m.Get(hash)
	for e := head; e != nil; e = e.next {
		if e.name == string(name) {
			return e
		}
	}

	e := &entry{
		name: string(name),
		info: NewInfo(),
		next: head,
	}
	t.m.Put(hash, e)
	t.len++
	return e
}
