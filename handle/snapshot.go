package handle

import (
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/tether/diag"
)

// ---------------------------------------------------------------------------
// Snapshot: diagnostic export of a registry
// ---------------------------------------------------------------------------

// cborEncMode uses canonical mode so snapshots of equal registries are
// byte-identical.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("handle: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Snapshot is a point-in-time view of a registry: every entry and
// every subtag edge, plus the instance it came from. Addresses are
// only meaningful inside the process that produced them; snapshots are
// for diagnostics, tooling and tests, not persistence across runs.
type Snapshot struct {
	Registry string          `cbor:"registry"`
	Entries  []SnapshotEntry `cbor:"entries"`
	Subtags  []SubtagEdge    `cbor:"subtags"`
}

// SnapshotEntry is one registered address.
type SnapshotEntry struct {
	Addr  uint64 `cbor:"addr"`
	Tag   string `cbor:"tag,omitempty"`
	Mode  string `cbor:"mode"`
	Count int64  `cbor:"count,omitempty"`
}

// SubtagEdge is one subtag -> supertag declaration.
type SubtagEdge struct {
	Sub   string `cbor:"sub"`
	Super string `cbor:"super"`
}

// Snapshot captures the registry's current entries and edges, both
// sorted for deterministic output.
func (r *Registry) Snapshot() *Snapshot {
	s := &Snapshot{
		Registry: r.id.String(),
		Entries:  make([]SnapshotEntry, 0, len(r.entries)),
		Subtags:  make([]SubtagEdge, 0),
	}
	for addr, e := range r.entries {
		se := SnapshotEntry{
			Addr: uint64(addr),
			Tag:  string(e.tag),
			Mode: e.mode.String(),
		}
		if e.mode == Counted {
			se.Count = e.refs
		}
		s.Entries = append(s.Entries, se)
	}
	sort.Slice(s.Entries, func(i, j int) bool { return s.Entries[i].Addr < s.Entries[j].Addr })

	for sub, super := range r.tags.edges() {
		s.Subtags = append(s.Subtags, SubtagEdge{Sub: string(sub), Super: string(super)})
	}
	sort.Slice(s.Subtags, func(i, j int) bool { return s.Subtags[i].Sub < s.Subtags[j].Sub })
	return s
}

// Marshal serializes the snapshot to canonical CBOR.
func (s *Snapshot) Marshal() ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// UnmarshalSnapshot deserializes a snapshot from CBOR bytes.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, diag.Wrap(diag.CodeInvalidFormat, "unmarshal snapshot", err)
	}
	return &s, nil
}

// Restore replays a snapshot into the registry: subtag edges first,
// then every entry with its lifetime state. Entries already present
// reconcile per the usual Register rules. A malformed mode name fails
// with diag.CodeInvalidFormat.
func (r *Registry) Restore(s *Snapshot) error {
	for _, edge := range s.Subtags {
		if err := r.DefineSubtag(Tag(edge.Sub), Tag(edge.Super)); err != nil {
			return err
		}
	}
	for _, se := range s.Entries {
		var mode Mode
		switch se.Mode {
		case "uncounted":
			mode = Uncounted
		case "counted":
			mode = Counted
		case "pinned":
			mode = Pinned
		default:
			return &diag.Error{
				Code:    diag.CodeInvalidFormat,
				Message: "unknown lifetime mode",
				Value:   se.Mode,
			}
		}
		if _, err := r.Register(uintptr(se.Addr), Tag(se.Tag), mode); err != nil {
			return err
		}
		if mode == Counted {
			if e, ok := r.entries[uintptr(se.Addr)]; ok && e.mode == Counted {
				refs := se.Count
				if refs < 1 {
					refs = 1
				}
				if refs > r.maxCount {
					refs = r.maxCount
				}
				e.refs = refs
			}
		}
	}
	return nil
}
