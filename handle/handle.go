package handle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/tether/diag"
)

// Handle is an (address, tag) pair exposed to a caller in place of a
// raw pointer. It is a value type, freely copyable, and carries no
// ownership of or lifetime guarantee for the pointee; for a handle the
// registry has vouched for, see Registered.
type Handle struct {
	addr uintptr
	tag  Tag
}

// Wrap builds a handle from a raw address and tag. The address is not
// registered, nor is any check made that it was previously registered.
func Wrap(addr uintptr, tag Tag) Handle {
	return Handle{addr: addr, tag: tag}
}

// Addr returns the native address.
func (h Handle) Addr() uintptr { return h.addr }

// Tag returns the handle's self-declared tag.
func (h Handle) Tag() Tag { return h.tag }

// IsNull reports whether the address is null.
func (h Handle) IsNull() bool { return h.addr == 0 }

// String returns the canonical external form: "NULL" for a null
// address with no tag, otherwise "<hex-address>^<tag>" with an empty
// tag field for untyped handles. The output is deterministic:
// repeated calls produce byte-identical strings.
func (h Handle) String() string {
	if h.addr == 0 && h.tag.IsNone() {
		return "NULL"
	}
	return fmt.Sprintf("%#x^%s", uint64(h.addr), h.tag)
}

// Parse converts the canonical external form back into a handle.
// Exactly the grammar produced by String is accepted: "NULL", or a
// 0x-prefixed hex address, a '^', and the tag (possibly empty). Hex
// digits may be either case. Anything else fails with
// diag.CodeInvalidFormat.
func Parse(s string) (Handle, error) {
	if s == "NULL" {
		return Handle{}, nil
	}
	addrPart, tagPart, found := strings.Cut(s, "^")
	if !found {
		return Handle{}, diag.InvalidFormat(s)
	}
	if len(addrPart) < 3 || addrPart[0] != '0' || (addrPart[1] != 'x' && addrPart[1] != 'X') {
		return Handle{}, diag.InvalidFormat(s)
	}
	addr, err := strconv.ParseUint(addrPart[2:], 16, 64)
	if err != nil {
		return Handle{}, diag.InvalidFormat(s)
	}
	return Handle{addr: uintptr(addr), tag: Tag(tagPart)}, nil
}

// Likeness is the three-way outcome of comparing two handles.
type Likeness int

const (
	// Unequal: the addresses differ.
	Unequal Likeness = iota
	// AddressOnly: same address, different tags. Address-equal but
	// type-distinct is deliberately not plain equality.
	AddressOnly
	// Identical: same address and same tag.
	Identical
)

func (l Likeness) String() string {
	switch l {
	case AddressOnly:
		return "address-only"
	case Identical:
		return "identical"
	default:
		return "unequal"
	}
}

// Compare compares two handle values.
func (h Handle) Compare(o Handle) Likeness {
	if h.addr != o.addr {
		return Unequal
	}
	if h.tag == o.tag {
		return Identical
	}
	return AddressOnly
}
