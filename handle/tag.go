// Package handle implements a typed native-handle registry.
//
// A host registers a native address (pointer, OS handle, resource ID)
// under a semantic type tag and hands the resulting Handle to a less
// trusted caller. When the value comes back, the registry can confirm
// the address is still alive and carries the expected type, without the
// caller ever dereferencing the raw address. The registry tracks
// metadata only; it never owns or touches the pointed-to memory.
package handle

// Tag is the semantic type label attached to a handle. Tags compare by
// value. The zero value NoTag denotes an untyped ("void") pointer: an
// expected tag of NoTag matches anything, and a pinned registration's
// tag is always forced to NoTag.
type Tag string

// NoTag is the distinguished "no type" tag.
const NoTag Tag = ""

// IsNone reports whether t is the untyped tag.
func (t Tag) IsNone() bool { return t == NoTag }

func (t Tag) String() string { return string(t) }

// Relation classifies one tag against another via the subtag edge set.
type Relation int

const (
	// Unrelated tags are not convertible in either direction.
	Unrelated Relation = iota
	// Equal tags have the same value (or are both NoTag).
	Equal
	// ImplicitlyCastable means the actual tag upcasts to the expected
	// tag: the expected tag is NoTag, or is an ancestor of the actual
	// tag in the subtag graph.
	ImplicitlyCastable
	// ExplicitlyCastable is the inverse: the expected tag is a
	// descendant of the actual tag, so the conversion is a downcast
	// that must be requested explicitly.
	ExplicitlyCastable
)

func (rel Relation) String() string {
	switch rel {
	case Equal:
		return "equal"
	case ImplicitlyCastable:
		return "implicit"
	case ExplicitlyCastable:
		return "explicit"
	default:
		return "unrelated"
	}
}

// RegistrationStatus is the registry's verdict on a handle's tag versus
// the entry stored for its address.
type RegistrationStatus int

const (
	// Missing: no entry exists for the address.
	Missing RegistrationStatus = iota
	// WrongTag: an entry exists but its tag is incompatible with the
	// handle's.
	WrongTag
	// Ok: an entry exists and the tags are identical.
	Ok
	// Derived: an entry exists and the handle's tag is a subtype of
	// the stored tag.
	Derived
)

func (s RegistrationStatus) String() string {
	switch s {
	case WrongTag:
		return "mismatch"
	case Ok:
		return "exact"
	case Derived:
		return "derived"
	default:
		return "none"
	}
}
