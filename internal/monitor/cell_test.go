package monitor

import (
	"sync"
	"testing"
)

func TestCellLoadStore(t *testing.T) {
	c := NewCell([]string{"loading"})
	if got := c.Load(); len(got) != 1 || got[0] != "loading" {
		t.Errorf("Load() = %v, want [loading]", got)
	}
	if c.Version() != 0 {
		t.Errorf("Version() = %d, want 0", c.Version())
	}

	c.Store([]string{"a", "b"})
	if got := c.Load(); len(got) != 2 {
		t.Errorf("Load() = %v, want two entries", got)
	}
	if c.Version() != 1 {
		t.Errorf("Version() = %d, want 1", c.Version())
	}

	c.Update(func(v []string) []string { return v[:1] })
	if got := c.Load(); len(got) != 1 || got[0] != "a" {
		t.Errorf("Load() after Update = %v, want [a]", got)
	}
	if c.Version() != 2 {
		t.Errorf("Version() = %d, want 2", c.Version())
	}
}

func TestCellConcurrentAccess(t *testing.T) {
	c := NewCell(0)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 1000; i++ {
			c.Store(i)
		}
	}()
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			last := 0
			for i := 0; i < 1000; i++ {
				v := c.Load()
				if v < last {
					t.Errorf("value went backwards: %d after %d", v, last)
					return
				}
				last = v
			}
		}()
	}
	wg.Wait()

	if c.Load() != 1000 {
		t.Errorf("final value = %d, want 1000", c.Load())
	}
}

func TestSignalCoalesces(t *testing.T) {
	s := NewSignal()
	if s.Take() {
		t.Error("new signal should not be pending")
	}

	s.Raise()
	s.Raise()
	s.Raise()

	if !s.Take() {
		t.Error("Take() = false after Raise, want true")
	}
	if s.Take() {
		t.Error("multiple raises should coalesce into one request")
	}
}
