// Package strtable holds the deduplicated, ordered mapping of localization
// keys to their resolved values and renders it in AceLocale line format.
package strtable

// Table is an insertion-ordered map from key to Value. It is not safe for
// concurrent use; a single owner folds occurrences into it.
type Table struct {
	keys   []string
	values map[string]Value
}

// New creates an empty table.
func New() *Table {
	return &Table{values: make(map[string]Value)}
}

// Fold merges one observation of key into the table:
//  1. an unknown key is inserted with v;
//  2. a KeyOnly entry is upgraded when v is explicit;
//  3. an explicit entry is never changed.
//
// It reports whether the table changed.
func (t *Table) Fold(key string, v Value) bool {
	cur, ok := t.values[key]
	switch {
	case !ok:
		t.keys = append(t.keys, key)
		t.values[key] = v
		return true
	case !cur.explicit && v.explicit:
		t.values[key] = v
		return true
	default:
		return false
	}
}

// Get returns the value stored for key.
func (t *Table) Get(key string) (Value, bool) {
	v, ok := t.values[key]
	return v, ok
}

// Len returns the number of keys.
func (t *Table) Len() int { return len(t.keys) }

// Keys returns the keys in first-seen order.
func (t *Table) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Each calls fn for every entry in first-seen order.
func (t *Table) Each(fn func(key string, v Value)) {
	for _, k := range t.keys {
		fn(k, t.values[k])
	}
}

// Explicit returns how many keys resolved to an explicit value.
func (t *Table) Explicit() int {
	n := 0
	for _, v := range t.values {
		if v.explicit {
			n++
		}
	}
	return n
}
