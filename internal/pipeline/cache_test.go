package pipeline

import "testing"

func TestCacheKey(t *testing.T) {
	base := CacheKey([]byte("doc"), ".docx", false)
	if base != CacheKey([]byte("doc"), ".DOCX", false) {
		t.Error("expected extension case to be ignored")
	}
	variants := map[string]uint64{
		"data":  CacheKey([]byte("doc2"), ".docx", false),
		"ext":   CacheKey([]byte("doc"), ".txt", false),
		"strip": CacheKey([]byte("doc"), ".docx", true),
	}
	for name, k := range variants {
		if k == base {
			t.Errorf("expected %s to change the key", name)
		}
	}
}

func TestResultCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewResultCache(2)
	c.Put(1, "one")
	c.Put(2, "two")
	if _, ok := c.Get(1); !ok {
		t.Fatal("expected key 1")
	}
	c.Put(3, "three")

	if _, ok := c.Get(2); ok {
		t.Error("expected key 2 to be evicted")
	}
	if v, ok := c.Get(1); !ok || v != "one" {
		t.Errorf("expected key 1 to survive, got %q %v", v, ok)
	}
	if v, ok := c.Get(3); !ok || v != "three" {
		t.Errorf("expected key 3, got %q %v", v, ok)
	}
	if n := c.Stats().Entries; n != 2 {
		t.Errorf("expected 2 entries, got %d", n)
	}
}

func TestResultCache_Overwrite(t *testing.T) {
	c := NewResultCache(2)
	c.Put(1, "old")
	c.Put(1, "new")
	if v, _ := c.Get(1); v != "new" {
		t.Errorf("expected %q, got %q", "new", v)
	}
	if n := c.Stats().Entries; n != 1 {
		t.Errorf("expected 1 entry, got %d", n)
	}
}

func TestResultCache_Disabled(t *testing.T) {
	for _, c := range []*ResultCache{nil, NewResultCache(0)} {
		c.Put(1, "x")
		if _, ok := c.Get(1); ok {
			t.Error("expected disabled cache to miss")
		}
		if s := c.Stats(); s.Entries != 0 {
			t.Errorf("expected empty stats, got %+v", s)
		}
	}
}
