// Package intern provides a string interning table.
//
// Frequently repeated strings (handle type tags, mostly) are mapped to
// dense uint32 IDs so equality and adjacency lookups reduce to integer
// comparison instead of string comparison.
package intern

import "sync"

// Table interns strings to unique dense IDs. IDs start at 1; 0 is
// reserved as "not interned" so the zero value of an ID is never a
// valid entry.
type Table struct {
	mu   sync.RWMutex
	byStr map[string]uint32 // string -> ID
	byID  []string          // ID-1 -> string
}

// NewTable creates a new empty interning table.
func NewTable() *Table {
	return &Table{
		byStr: make(map[string]uint32),
		byID:  make([]string, 0, 64),
	}
}

// Intern returns the ID for s, creating a new one if needed.
func (t *Table) Intern(s string) uint32 {
	// Fast path: read-only lookup
	t.mu.RLock()
	if id, ok := t.byStr[s]; ok {
		t.mu.RUnlock()
		return id
	}
	t.mu.RUnlock()

	// Slow path: need to add a new entry
	t.mu.Lock()
	defer t.mu.Unlock()

	// Double-check after acquiring write lock
	if id, ok := t.byStr[s]; ok {
		return id
	}

	t.byID = append(t.byID, s)
	id := uint32(len(t.byID))
	t.byStr[s] = id
	return id
}

// Lookup returns the ID for s, or 0 and false if s was never interned.
func (t *Table) Lookup(s string) (uint32, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.byStr[s]
	return id, ok
}

// Name returns the string for an ID, or "" if the ID is invalid.
func (t *Table) Name(id uint32) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if id == 0 || int(id) > len(t.byID) {
		return ""
	}
	return t.byID[id-1]
}

// Len returns the number of interned strings.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byID)
}
