// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache", "recognitions.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesDBFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cache.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected database file at %s", path)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Store(ctx, "k", "a.png", "x"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer s.Close()
	latex, ok, err := s.Lookup(ctx, "k")
	if err != nil || !ok || latex != "x" {
		t.Errorf("Lookup after reopen = (%q, %v, %v), want (\"x\", true, nil)", latex, ok, err)
	}
}

func TestLookupAndStore(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, ok, err := s.Lookup(ctx, "missing"); err != nil || ok {
		t.Fatalf("Lookup(missing) = (%v, %v), want miss", ok, err)
	}

	if err := s.Store(ctx, "k1", "files/a.png", `\int_0^1 x\,dx`); err != nil {
		t.Fatal(err)
	}
	latex, ok, err := s.Lookup(ctx, "k1")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || latex != `\int_0^1 x\,dx` {
		t.Errorf("Lookup(k1) = (%q, %v)", latex, ok)
	}

	// Storing again replaces the value.
	if err := s.Store(ctx, "k1", "files/a.png", `\int_0^2 x\,dx`); err != nil {
		t.Fatal(err)
	}
	latex, _, _ = s.Lookup(ctx, "k1")
	if latex != `\int_0^2 x\,dx` {
		t.Errorf("Lookup after overwrite = %q", latex)
	}
}

func TestStatsAndClear(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Entries != 0 || st.Hits != 0 || !st.Oldest.IsZero() {
		t.Errorf("empty stats = %+v", st)
	}

	for _, k := range []string{"a", "b", "c"} {
		if err := s.Store(ctx, k, k+".png", k); err != nil {
			t.Fatal(err)
		}
	}
	s.Lookup(ctx, "a")
	s.Lookup(ctx, "a")
	s.Lookup(ctx, "b")

	st, err = s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Entries != 3 {
		t.Errorf("Entries = %d, want 3", st.Entries)
	}
	if st.Hits != 3 {
		t.Errorf("Hits = %d, want 3", st.Hits)
	}
	if st.Oldest.IsZero() || st.Newest.Before(st.Oldest) {
		t.Errorf("bad age range: %v .. %v", st.Oldest, st.Newest)
	}

	n, err := s.Clear(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d, want 3", n)
	}
	if _, ok, _ := s.Lookup(ctx, "a"); ok {
		t.Error("entry survived Clear")
	}
}
