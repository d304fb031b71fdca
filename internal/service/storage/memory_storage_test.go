package storage

import "testing"

func TestMemoryStorageDirtyTracking(t *testing.T) {
	s := NewMemoryStorage[string, int]()

	s.Set("a", 1)
	s.Set("b", 2)

	dirty := s.GetDirty()
	if len(dirty) != 2 {
		t.Fatalf("dirty count: got %d want 2", len(dirty))
	}
	if dirty["a"] != 1 || dirty["b"] != 2 {
		t.Fatalf("dirty values: got %v", dirty)
	}

	s.ClearDirty([]string{"a"})
	dirty = s.GetDirty()
	if len(dirty) != 1 {
		t.Fatalf("dirty count after clear: got %d want 1", len(dirty))
	}
	if _, ok := dirty["b"]; !ok {
		t.Fatal("expected b to stay dirty")
	}
}

func TestMemoryStorageDeleteAndClear(t *testing.T) {
	s := NewMemoryStorage[string, int]()
	s.Set("a", 1)

	if !s.Delete("a") {
		t.Fatal("delete existing key returned false")
	}
	if s.Delete("a") {
		t.Fatal("delete missing key returned true")
	}
	if len(s.GetDirty()) != 0 {
		t.Fatal("deleted key left a dirty flag")
	}

	s.Set("b", 2)
	s.Clear()
	if s.Count() != 0 {
		t.Fatalf("count after clear: got %d want 0", s.Count())
	}
}
