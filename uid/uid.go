// Package uid provides UUID codec helpers for embedding hosts.
//
// Hosts often key native resources by UUID alongside raw addresses;
// these helpers give them a strict canonical text form and a binary
// wrap/unwrap, with parse failures categorized like every other
// external-representation failure in this library.
package uid

import (
	"github.com/google/uuid"

	"github.com/chazu/tether/diag"
)

// New generates a random UUID. Not guaranteed to be cryptographically
// secure.
func New() uuid.UUID {
	return uuid.New()
}

// Format returns the canonical 36-character text form.
func Format(u uuid.UUID) string {
	return u.String()
}

// IsText is a fast pre-check for the canonical text form, useful to
// avoid a full parse when a value could be one of several types. It
// checks shape only; Parse is still authoritative.
func IsText(s string) bool {
	if len(s) != 36 {
		return false
	}
	for i := 0; i < 36; i++ {
		c := s[i]
		switch i {
		case 8, 13, 18, 23:
			if c != '-' {
				return false
			}
		default:
			if !isHex(c) {
				return false
			}
		}
	}
	return true
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// Parse converts the canonical text form back into a UUID. Only the
// 36-character dashed form is accepted; the urn:uuid:, braced and
// undashed variants fail with diag.CodeInvalidFormat.
func Parse(s string) (uuid.UUID, error) {
	if !IsText(s) {
		return uuid.UUID{}, diag.InvalidFormat(s)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.UUID{}, diag.InvalidFormat(s)
	}
	return u, nil
}

// Wrap builds a UUID from its 16 raw bytes.
func Wrap(b []byte) (uuid.UUID, error) {
	u, err := uuid.FromBytes(b)
	if err != nil {
		return uuid.UUID{}, diag.Wrap(diag.CodeInvalidFormat, "not 16 bytes", err)
	}
	return u, nil
}

// Unwrap returns the 16 raw bytes of a UUID.
func Unwrap(u uuid.UUID) []byte {
	b := make([]byte, 16)
	copy(b, u[:])
	return b
}
