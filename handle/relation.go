package handle

import (
	"github.com/chazu/tether/diag"
	"github.com/chazu/tether/intern"
)

// ---------------------------------------------------------------------------
// tagSet: subtag edges and relation queries
// ---------------------------------------------------------------------------

// defaultHopBound caps supertag traversal. Rather than detecting cycles
// by recording history, walks give up after this many hops; a cyclic
// edge set degrades to "no relation found" instead of looping.
const defaultHopBound = 10

// tagSet stores the directed subtag -> supertag edges for one registry.
// Tags are interned to dense IDs so the walk is integer lookups over an
// adjacency map, not string chasing.
type tagSet struct {
	interner *intern.Table
	super    map[uint32]uint32 // subtag ID -> supertag ID
	hopBound int
}

func newTagSet(hopBound int) *tagSet {
	if hopBound <= 0 {
		hopBound = defaultHopBound
	}
	return &tagSet{
		interner: intern.NewTable(),
		super:    make(map[uint32]uint32),
		hopBound: hopBound,
	}
}

// define adds sub -> super. A reflexive edge or a NoTag endpoint is a
// no-op: void is already everyone's supertype, and reflexive relations
// are not stored. A subtag may have at most one outgoing edge.
func (ts *tagSet) define(sub, super Tag) error {
	if super.IsNone() || sub.IsNone() || sub == super {
		return nil
	}
	subID := ts.interner.Intern(string(sub))
	if _, ok := ts.super[subID]; ok {
		return diag.Exists("subtag " + string(sub))
	}
	ts.super[subID] = ts.interner.Intern(string(super))
	return nil
}

// remove deletes the outgoing edge of sub, if any.
func (ts *tagSet) remove(sub Tag) {
	if id, ok := ts.interner.Lookup(string(sub)); ok {
		delete(ts.super, id)
	}
}

// isAncestor reports whether ancestor is reachable from tag by
// following supertag edges, within the hop bound.
func (ts *tagSet) isAncestor(tag, ancestor Tag) bool {
	if ancestor.IsNone() {
		return true // void is a supertype of every tag
	}
	if tag.IsNone() {
		return false
	}
	id, ok := ts.interner.Lookup(string(tag))
	if !ok {
		return false
	}
	ancID, ok := ts.interner.Lookup(string(ancestor))
	if !ok {
		return false
	}
	for i := 0; i < ts.hopBound; i++ {
		sup, ok := ts.super[id]
		if !ok {
			return false // no supertype
		}
		if sup == ancID {
			return true
		}
		id = sup
	}
	return false
}

// compare classifies tag against expected.
func (ts *tagSet) compare(tag, expected Tag) Relation {
	if tag == expected {
		return Equal
	}
	if expected.IsNone() {
		return ImplicitlyCastable
	}
	if tag.IsNone() {
		return ExplicitlyCastable
	}
	if ts.isAncestor(tag, expected) {
		return ImplicitlyCastable
	}
	if ts.isAncestor(expected, tag) {
		return ExplicitlyCastable
	}
	return Unrelated
}

// compatible reports whether actual upcasts to expected: Equal or
// ImplicitlyCastable in the direction actual -> expected.
func (ts *tagSet) compatible(actual, expected Tag) bool {
	switch ts.compare(actual, expected) {
	case Equal, ImplicitlyCastable:
		return true
	}
	return false
}

// related reports whether the two tags are convertible in either
// direction.
func (ts *tagSet) related(a, b Tag) bool {
	return ts.compare(a, b) != Unrelated
}

// edges returns the current subtag -> supertag mapping.
func (ts *tagSet) edges() map[Tag]Tag {
	out := make(map[Tag]Tag, len(ts.super))
	for sub, sup := range ts.super {
		out[Tag(ts.interner.Name(sub))] = Tag(ts.interner.Name(sup))
	}
	return out
}

// clear drops every edge. The interner is left alone; IDs stay valid.
func (ts *tagSet) clear() {
	ts.super = make(map[uint32]uint32)
}
