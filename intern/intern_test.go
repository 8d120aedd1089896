package intern

import (
	"sync"
	"testing"
)

func TestInternStable(t *testing.T) {
	tab := NewTable()
	a := tab.Intern("Animal")
	b := tab.Intern("Dog")
	if a == b {
		t.Fatal("distinct strings got the same ID")
	}
	if got := tab.Intern("Animal"); got != a {
		t.Errorf("re-intern returned %d, want %d", got, a)
	}
	if tab.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tab.Len())
	}
}

func TestIDsStartAtOne(t *testing.T) {
	tab := NewTable()
	if id := tab.Intern("first"); id != 1 {
		t.Errorf("first ID = %d, want 1", id)
	}
	if id, ok := tab.Lookup("missing"); ok || id != 0 {
		t.Errorf("Lookup(missing) = (%d, %v), want (0, false)", id, ok)
	}
}

func TestName(t *testing.T) {
	tab := NewTable()
	id := tab.Intern("Dog")
	if got := tab.Name(id); got != "Dog" {
		t.Errorf("Name(%d) = %q, want %q", id, got, "Dog")
	}
	if got := tab.Name(0); got != "" {
		t.Errorf("Name(0) = %q, want empty", got)
	}
	if got := tab.Name(999); got != "" {
		t.Errorf("Name(999) = %q, want empty", got)
	}
}

func TestInternConcurrent(t *testing.T) {
	tab := NewTable()
	words := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				for _, w := range words {
					tab.Intern(w)
				}
			}
		}()
	}
	wg.Wait()

	if tab.Len() != len(words) {
		t.Errorf("Len() = %d, want %d", tab.Len(), len(words))
	}
	for _, w := range words {
		id, ok := tab.Lookup(w)
		if !ok {
			t.Fatalf("Lookup(%q) missing", w)
		}
		if tab.Name(id) != w {
			t.Errorf("Name(Lookup(%q)) = %q", w, tab.Name(id))
		}
	}
}
