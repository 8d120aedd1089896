package handle

import "github.com/chazu/tether/diag"

// Registered is a handle the registry has vouched for: at the moment
// it was created, the address was registered under a tag compatible
// with what the caller expected. It is proof of a past validation, not
// a lifetime guarantee; the entry can still be unregistered afterward.
// Callers that require a verified handle should accept Registered
// rather than Handle.
type Registered struct {
	h Handle
}

// Handle returns the underlying handle value.
func (v Registered) Handle() Handle { return v.h }

// Addr returns the validated address.
func (v Registered) Addr() uintptr { return v.h.addr }

// Tag returns the handle's tag.
func (v Registered) Tag() Tag { return v.h.tag }

// UnwrapTagged extracts the address from a handle after checking its
// self-declared tag against expected. No registration check is made.
// The check is skipped when expected is NoTag, and when the handle is
// null and untagged.
func (r *Registry) UnwrapTagged(h Handle, expected Tag) (uintptr, error) {
	if expected.IsNone() || (h.IsNull() && h.tag.IsNone()) {
		return h.addr, nil
	}
	switch r.tags.compare(h.tag, expected) {
	case Equal, ImplicitlyCastable:
		return h.addr, nil
	}
	return 0, diag.TypeMismatch(string(h.tag), string(expected))
}

// VerifyHandle checks a handle end to end: its self-declared tag must
// upcast to expected, and its address must be registered under a tag
// the handle's own tag is equal to or derived from. On success the
// returned Registered wraps the handle as proof of validation.
func (r *Registry) VerifyHandle(h Handle, expected Tag) (Registered, error) {
	if h.IsNull() {
		return Registered{}, diag.NullPointer()
	}
	d := r.Dissect(h, expected)
	switch d.TagRelation {
	case Equal, ImplicitlyCastable:
	default:
		return Registered{}, diag.TypeMismatch(string(h.tag), string(expected))
	}
	switch d.Status {
	case Missing:
		return Registered{}, diag.NotRegistered(h.String())
	case WrongTag:
		return Registered{}, diag.WrongTag(h.String())
	}
	return Registered{h: h}, nil
}

// VerifyHandleAnyOf verifies a handle against several acceptable tags,
// succeeding on the first match. The error reported is for the last
// tag tried.
func (r *Registry) VerifyHandleAnyOf(h Handle, tags ...Tag) (Registered, error) {
	err := diag.TypeMismatch(string(h.tag), "")
	for _, t := range tags {
		var v Registered
		if v, err = r.VerifyHandle(h, t); err == nil {
			return v, nil
		}
	}
	return Registered{}, err
}

// UnregisterHandle consumes a handle: after checking the handle's tag
// against expected, its address is unregistered. A null handle is
// silently ignored. On success the extracted address is returned.
func (r *Registry) UnregisterHandle(h Handle, expected Tag) (uintptr, error) {
	if h.IsNull() {
		return 0, nil
	}
	if _, err := r.UnwrapTagged(h, expected); err != nil {
		return 0, err
	}
	if err := r.Unregister(h.addr, h.tag); err != nil {
		return 0, err
	}
	return h.addr, nil
}

// UnregisterHandleAnyOf consumes a handle whose tag matches one of
// several acceptable tags. The error reported is for the last tag
// tried.
func (r *Registry) UnregisterHandleAnyOf(h Handle, tags ...Tag) (uintptr, error) {
	err := diag.TypeMismatch(string(h.tag), "")
	for _, t := range tags {
		if _, uerr := r.UnwrapTagged(h, t); uerr != nil {
			err = uerr
			continue
		}
		if h.IsNull() {
			return 0, nil
		}
		if err = r.Unregister(h.addr, h.tag); err == nil {
			return h.addr, nil
		}
	}
	return 0, err
}
