package handle

import (
	"sort"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/chazu/tether/diag"
	"github.com/chazu/tether/policy"
)

// ---------------------------------------------------------------------------
// Registry: per-context table of registered addresses
// ---------------------------------------------------------------------------

// Mode is the lifetime discipline of a registration.
type Mode int

const (
	// Uncounted allows exactly one outstanding registration; a single
	// unregister removes the entry no matter how many compatible
	// registrations were made.
	Uncounted Mode = iota
	// Counted tracks a reference count; the entry is removed when as
	// many unregisters as registers have been seen. The count
	// saturates at the policy ceiling and stays saturated.
	Counted
	// Pinned entries are immortal: immune to unregister and cast,
	// removed only by Invalidate or Close. A pinned entry's tag is
	// always NoTag.
	Pinned
)

func (m Mode) String() string {
	switch m {
	case Counted:
		return "counted"
	case Pinned:
		return "pinned"
	default:
		return "uncounted"
	}
}

// entry is the registration record for one address.
type entry struct {
	tag  Tag
	mode Mode
	refs int64 // meaningful only for Counted
}

// Registry tracks which native addresses are currently valid and under
// which tag. Each owning context holds exactly one Registry; it is a
// passive structure operated on synchronously by that single owner, so
// it takes no locks. An embedding that shares a Registry across
// threads must add its own mutual exclusion.
type Registry struct {
	id       uuid.UUID
	log      commonlog.Logger
	entries  map[uintptr]*entry
	tags     *tagSet
	maxCount int64
	closed   bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithPolicy applies tuning limits from a policy. Non-positive limits
// keep their defaults.
func WithPolicy(p policy.Policy) Option {
	return func(r *Registry) {
		if p.Limits.MaxCount > 0 {
			r.maxCount = p.Limits.MaxCount
		}
		if p.Limits.HopBound > 0 {
			r.tags.hopBound = p.Limits.HopBound
		}
	}
}

// WithLogger routes the registry's lifecycle messages to a specific
// logger instead of the default scoped one.
func WithLogger(log commonlog.Logger) Option {
	return func(r *Registry) { r.log = log }
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	def := policy.Default()
	r := &Registry{
		id:       uuid.New(),
		log:      commonlog.GetLogger("tether.registry"),
		entries:  make(map[uintptr]*entry),
		tags:     newTagSet(def.Limits.HopBound),
		maxCount: def.Limits.MaxCount,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log.Debugf("registry %s created", r.id)
	return r
}

// ID returns the registry's instance ID.
func (r *Registry) ID() uuid.UUID { return r.id }

// Count returns the number of registered addresses.
func (r *Registry) Count() int { return len(r.entries) }

// Close tears the registry down, releasing every entry and every
// subtag edge. Idempotent; called exactly once by the owning context
// when it ends.
func (r *Registry) Close() {
	if r.closed {
		return
	}
	r.closed = true
	released := len(r.entries)
	r.entries = make(map[uintptr]*entry)
	r.tags.clear()
	r.log.Debugf("registry %s closed, released %d entries", r.id, released)
}

// Register records addr as valid under tag with the given lifetime
// mode and returns a handle wrapping the tag actually stored after
// reconciliation.
//
// A new address creates an entry (Pinned forces the tag to NoTag). For
// an existing non-pinned entry: an incoming pin always wins; a
// tag-compatible registration under the same counting discipline is a
// harmless duplicate (Counted increments, saturating); anything else
// overwrites the stored tag and mode outright. Tag compatibility is
// evaluated before the counting discipline, which is observable only
// in the overwrite log message. Existing pinned entries are unaffected
// regardless of the arguments.
//
// Registering a null address fails with diag.CodeNullPointer; nothing
// else fails.
func (r *Registry) Register(addr uintptr, tag Tag, mode Mode) (Handle, error) {
	if addr == 0 {
		return Handle{}, diag.NullPointer()
	}
	if mode == Pinned {
		tag = NoTag
	}

	e, ok := r.entries[addr]
	if !ok {
		e = &entry{tag: tag, mode: mode}
		if mode == Counted {
			e.refs = 1
		}
		r.entries[addr] = e
		return Handle{addr: addr, tag: e.tag}, nil
	}

	// Pinned entries are unaffected by later registrations.
	if e.mode == Pinned {
		return Handle{addr: addr, tag: e.tag}, nil
	}

	// An incoming pin takes precedence; tags are immaterial.
	if mode == Pinned {
		e.tag = NoTag
		e.mode = Pinned
		e.refs = 0
		return Handle{addr: addr, tag: NoTag}, nil
	}

	tagCompatible := r.tags.compatible(tag, e.tag)
	switch {
	case tagCompatible && mode == Uncounted && e.mode == Uncounted:
		// Harmless duplicate; stored tag and mode unchanged.
	case tagCompatible && mode == Counted && e.mode == Counted:
		if e.refs < r.maxCount {
			e.refs++
		}
	default:
		reason := "different counting discipline"
		if !tagCompatible {
			reason = "incompatible tag"
		}
		r.log.Noticef("registry %s: re-registration of %s overwrites %s (%s)",
			r.id, Handle{addr: addr, tag: tag}, Handle{addr: addr, tag: e.tag}, reason)
		e.tag = tag
		e.mode = mode
		if mode == Counted {
			e.refs = 1
		} else {
			e.refs = 0
		}
	}
	return Handle{addr: addr, tag: e.tag}, nil
}

// Unregister reverses one registration of addr. The entry must exist
// and its stored tag must be compatible with expected, or the call
// fails with diag.CodeNotRegistered / diag.CodeTypeMismatch. Pinned
// entries are unaffected and the call succeeds as a no-op. Counted
// entries decrement, removing the entry at zero, except that a
// saturated count stays saturated. Uncounted entries are removed
// outright.
func (r *Registry) Unregister(addr uintptr, expected Tag) error {
	e, ok := r.entries[addr]
	if !ok {
		return diag.NotRegistered(Handle{addr: addr, tag: expected}.String())
	}
	if e.mode == Pinned {
		return nil
	}
	if !r.tags.compatible(e.tag, expected) {
		return diag.TypeMismatch(string(e.tag), string(expected))
	}
	switch e.mode {
	case Counted:
		switch {
		case e.refs >= r.maxCount:
			// Saturated; stays saturated.
		case e.refs <= 1:
			delete(r.entries, addr)
		default:
			e.refs--
		}
	default:
		delete(r.entries, addr)
	}
	return nil
}

// Invalidate unconditionally removes the entry for addr, pinned or
// not, regardless of count. Unlike Unregister it succeeds silently
// when the address was never registered: its contract is "ensure
// gone", not "confirm present". A live non-pinned entry whose stored
// tag is incompatible with expected still fails with
// diag.CodeTypeMismatch.
func (r *Registry) Invalidate(addr uintptr, expected Tag) error {
	e, ok := r.entries[addr]
	if !ok {
		return nil
	}
	if e.mode != Pinned && !r.tags.compatible(e.tag, expected) {
		return diag.TypeMismatch(string(e.tag), string(expected))
	}
	delete(r.entries, addr)
	return nil
}

// Verify checks that addr is registered under a tag compatible with
// expected. A NoTag expected matches any registration. Verify never
// mutates state. A null address fails with diag.CodeNullPointer.
func (r *Registry) Verify(addr uintptr, expected Tag) error {
	if addr == 0 {
		return diag.NullPointer()
	}
	e, ok := r.entries[addr]
	if !ok {
		return diag.NotRegistered(Handle{addr: addr, tag: expected}.String())
	}
	if !r.tags.compatible(e.tag, expected) {
		return diag.TypeMismatch(string(e.tag), string(expected))
	}
	return nil
}

// Registered reports whether addr has an entry, ignoring tags.
func (r *Registry) Registered(addr uintptr) bool {
	_, ok := r.entries[addr]
	return ok
}

// Lifetime returns the mode and, for counted entries, the outstanding
// registration count of addr's entry. ok is false if addr is not
// registered.
func (r *Registry) Lifetime(addr uintptr) (mode Mode, refs int64, ok bool) {
	e, found := r.entries[addr]
	if !found {
		return 0, 0, false
	}
	return e.mode, e.refs, true
}

// Cast retags a handle. The handle's current tag and newTag must be
// related: one an ancestor of the other, or either NoTag. If the
// address is registered, the handle's tag must additionally be related
// to the stored tag, and the entry is retagged to newTag in place
// unless pinned. Retagging mutates the shared registry record: every
// other handle referring to that address sees the new tag on its next
// verification.
func (r *Registry) Cast(h Handle, newTag Tag) (Handle, error) {
	e := r.entries[h.addr]
	if e != nil && !r.tags.related(h.tag, e.tag) {
		return Handle{}, diag.TypeMismatch(string(h.tag), string(e.tag))
	}
	if !r.tags.related(h.tag, newTag) {
		return Handle{}, diag.TypeMismatch(string(h.tag), string(newTag))
	}
	if e != nil && e.mode != Pinned {
		e.tag = newTag
	}
	return Handle{addr: h.addr, tag: newTag}, nil
}

// Dissection is the result of introspecting a handle: the handle's
// self-declared view alongside the registry's authoritative one.
type Dissection struct {
	Addr        uintptr
	Tag         Tag                // the handle's own tag
	TagRelation Relation           // handle tag vs the expected tag
	Status      RegistrationStatus // registry verdict for (addr, handle tag)
}

// Dissect is a read-only introspection combining the handle's
// self-declared tag with the registry's view of its address.
func (r *Registry) Dissect(h Handle, expected Tag) Dissection {
	d := Dissection{
		Addr:        h.addr,
		Tag:         h.tag,
		TagRelation: r.tags.compare(h.tag, expected),
	}
	e, ok := r.entries[h.addr]
	if !ok {
		d.Status = Missing
		return d
	}
	switch r.tags.compare(h.tag, e.tag) {
	case Equal:
		d.Status = Ok
	case ImplicitlyCastable:
		d.Status = Derived
	default:
		d.Status = WrongTag
	}
	return d
}

// Filter selects entries for Enumerate.
type Filter struct {
	tag Tag
	any bool
}

// Any matches every entry.
func Any() Filter { return Filter{any: true} }

// Tagged matches entries whose stored tag equals t exactly.
// Tagged(NoTag) matches only untyped entries.
func Tagged(t Tag) Filter { return Filter{tag: t} }

// Untyped matches only entries with no tag.
func Untyped() Filter { return Filter{} }

// Enumerate returns a handle for every registered address matching the
// filter, sorted by address.
func (r *Registry) Enumerate(f Filter) []Handle {
	out := make([]Handle, 0, len(r.entries))
	for addr, e := range r.entries {
		if f.any || e.tag == f.tag {
			out = append(out, Handle{addr: addr, tag: e.tag})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].addr < out[j].addr })
	return out
}

// ---------------------------------------------------------------------------
// Subtag edges
// ---------------------------------------------------------------------------

// DefineSubtag declares sub to be a subtype of super. Declaring a tag
// a subtype of itself or of NoTag is a no-op success (void is already
// everyone's supertype, and reflexive relations are not stored). A
// subtag has at most one immediate supertag; a second definition fails
// with diag.CodeAlreadyExists.
func (r *Registry) DefineSubtag(sub, super Tag) error {
	return r.tags.define(sub, super)
}

// RemoveSubtag deletes sub's supertag edge, if any.
func (r *Registry) RemoveSubtag(sub Tag) {
	r.tags.remove(sub)
}

// Subtags returns the current subtag -> supertag mapping.
func (r *Registry) Subtags() map[Tag]Tag {
	return r.tags.edges()
}

// CompareTags classifies tag a against expected tag b via the subtag
// edges.
func (r *Registry) CompareTags(a, b Tag) Relation {
	return r.tags.compare(a, b)
}

// Compatible reports whether actual is Equal or ImplicitlyCastable to
// expected.
func (r *Registry) Compatible(actual, expected Tag) bool {
	return r.tags.compatible(actual, expected)
}
