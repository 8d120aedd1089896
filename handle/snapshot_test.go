package handle

import (
	"bytes"
	"errors"
	"testing"

	"github.com/chazu/tether/diag"
)

func TestSnapshotRoundTrip(t *testing.T) {
	src := New()
	if err := src.DefineSubtag("Dog", "Animal"); err != nil {
		t.Fatalf("DefineSubtag failed: %v", err)
	}
	if _, err := src.Register(0x1000, "Animal", Uncounted); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := src.Register(0x2000, "Dog", Counted); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := src.Register(0x2000, "Dog", Counted); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := src.Register(0x3000, NoTag, Pinned); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	data, err := src.Snapshot().Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatalf("UnmarshalSnapshot failed: %v", err)
	}
	if s.Registry != src.ID().String() {
		t.Errorf("Registry = %q, want %q", s.Registry, src.ID().String())
	}

	dst := New()
	if err := dst.Restore(s); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if got, want := dst.Count(), src.Count(); got != want {
		t.Fatalf("restored count = %d, want %d", got, want)
	}
	for _, h := range src.Enumerate(Any()) {
		mode, refs, ok := src.Lifetime(h.Addr())
		gmode, grefs, gok := dst.Lifetime(h.Addr())
		if !ok || !gok {
			t.Fatalf("entry %s missing after restore", h)
		}
		if gmode != mode || grefs != refs {
			t.Errorf("%s: lifetime = (%v, %d), want (%v, %d)", h, gmode, grefs, mode, refs)
		}
	}
	if rel := dst.CompareTags("Dog", "Animal"); rel != ImplicitlyCastable {
		t.Errorf("restored CompareTags(Dog, Animal) = %v, want ImplicitlyCastable", rel)
	}
}

func TestSnapshotDeterministic(t *testing.T) {
	r := New()
	if err := r.DefineSubtag("B", "A"); err != nil {
		t.Fatalf("DefineSubtag failed: %v", err)
	}
	for _, addr := range []uintptr{0x3000, 0x1000, 0x2000} {
		if _, err := r.Register(addr, "A", Uncounted); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}
	a, err := r.Snapshot().Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	b, err := r.Snapshot().Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("two snapshots of the same registry differ")
	}

	s := r.Snapshot()
	for i := 1; i < len(s.Entries); i++ {
		if s.Entries[i-1].Addr >= s.Entries[i].Addr {
			t.Errorf("entries not sorted: %#x before %#x", s.Entries[i-1].Addr, s.Entries[i].Addr)
		}
	}
}

func TestSnapshotCountedClamping(t *testing.T) {
	r := New()
	s := &Snapshot{Entries: []SnapshotEntry{
		{Addr: 0x1000, Mode: "counted", Count: 0},
	}}
	if err := r.Restore(s); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if _, refs, _ := r.Lifetime(0x1000); refs != 1 {
		t.Errorf("refs = %d, want clamp to 1", refs)
	}
}

func TestUnmarshalSnapshotGarbage(t *testing.T) {
	if _, err := UnmarshalSnapshot([]byte("not cbor at all")); !errors.Is(err, diag.ErrInvalidFormat) {
		t.Errorf("UnmarshalSnapshot(garbage) = %v, want InvalidFormat", err)
	}
}

func TestRestoreUnknownMode(t *testing.T) {
	r := New()
	s := &Snapshot{Entries: []SnapshotEntry{{Addr: 0x1000, Mode: "immortal"}}}
	if err := r.Restore(s); !errors.Is(err, diag.ErrInvalidFormat) {
		t.Errorf("Restore(unknown mode) = %v, want InvalidFormat", err)
	}
}
