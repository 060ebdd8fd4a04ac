package simvar

import (
	"sync"
	"testing"
)

func TestMemStoreGetSet(t *testing.T) {
	s := NewMemStore()

	if got := s.Get(VarChannel); got != 0 {
		t.Errorf("Get() of unset variable = %v, want 0", got)
	}

	s.Set(VarChannel, 29)
	s.Set(VarBand, 1)
	if got := s.Get(VarChannel); got != 29 {
		t.Errorf("Get(%q) = %v, want 29", VarChannel, got)
	}
	if got := s.Get(VarBand); got != 1 {
		t.Errorf("Get(%q) = %v, want 1", VarBand, got)
	}

	s.Set(VarChannel, 30)
	if got := s.Get(VarChannel); got != 30 {
		t.Errorf("Get(%q) after overwrite = %v, want 30", VarChannel, got)
	}
}

func TestMemStoreSnapshot(t *testing.T) {
	s := NewMemStore()
	s.Set(VarLatitude, 32.1665)
	s.Set(VarLongitude, -110.8830)

	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot() has %d entries, want 2", len(snap))
	}

	// Mutating the snapshot must not touch the store.
	snap[VarLatitude] = 0
	if got := s.Get(VarLatitude); got != 32.1665 {
		t.Errorf("store changed through snapshot: %v", got)
	}
}

func TestMemStoreConcurrentAccess(t *testing.T) {
	s := NewMemStore()
	var wg sync.WaitGroup

	// Gateway goroutine writes while the cycle goroutine reads.
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(v float64) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Set(VarHeading, v)
			}
		}(float64(i))
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Get(VarHeading)
			}
		}()
	}
	wg.Wait()
}
