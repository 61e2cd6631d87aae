package sstable

import (
	"io"
	"iter"
	"path/filepath"
	"sort"
	"testing"

	"lsmgo/codec"
	"lsmgo/entry"
	"lsmgo/levelset"
)

func seqFromPairs(pairs []struct {
	K string
	V entry.Entry[string]
}) iter.Seq2[string, entry.Entry[string]] {
	return func(yield func(string, entry.Entry[string]) bool) {
		for _, p := range pairs {
			if !yield(p.K, p.V) {
				return
			}
		}
	}
}

func makePairs(keys []string) []struct {
	K string
	V entry.Entry[string]
} {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	out := make([]struct {
		K string
		V entry.Entry[string]
	}, len(sorted))
	for i, k := range sorted {
		out[i] = struct {
			K string
			V entry.Entry[string]
		}{K: k, V: entry.Data("val-" + k)}
	}
	return out
}

func testPaths(t *testing.T) levelset.Paths {
	dir := t.TempDir()
	return levelset.Paths{
		Data:  filepath.Join(dir, "0.data"),
		Index: filepath.Join(dir, "0.idx"),
		Bloom: filepath.Join(dir, "0.bloom"),
	}
}

func TestBuildAndGetRoundTrip(t *testing.T) {
	keys := []string{"apple", "banana", "cherry", "date", "fig", "grape", "kiwi", "lemon", "mango", "nectarine"}
	pairs := makePairs(keys)
	paths := testPaths(t)

	tbl, err := Build[string, string](paths, 3, codec.StringKeyCodec(), codec.StringValueCodec(), 0.01, len(pairs), seqFromPairs(pairs))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for _, p := range pairs {
		e, ok, err := tbl.Get(p.K)
		if err != nil {
			t.Fatalf("Get(%q): %v", p.K, err)
		}
		if !ok {
			t.Fatalf("Get(%q) not found", p.K)
		}
		if e.IsTombstone() || e.Value != p.V.Value {
			t.Fatalf("Get(%q) = %+v, want %+v", p.K, e, p.V)
		}
	}

	if _, ok, err := tbl.Get("zzz-absent"); err != nil || ok {
		t.Fatalf("Get(absent) = ok=%v, err=%v, want absent", ok, err)
	}
}

func TestFirstKeyFoundDespiteIndexQuirk(t *testing.T) {
	// Block 0 gets its own index entry, keyed by the table's first key
	// (see the build algorithm). Get must find the very first key in the
	// table through it.
	keys := []string{"a", "b", "c", "d", "e", "f"}
	pairs := makePairs(keys)
	paths := testPaths(t)

	tbl, err := Build[string, string](paths, 3, codec.StringKeyCodec(), codec.StringValueCodec(), 0.01, len(pairs), seqFromPairs(pairs))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	e, ok, err := tbl.Get("a")
	if err != nil || !ok || e.Value != "val-a" {
		t.Fatalf("Get(a) = %+v, ok=%v, err=%v", e, ok, err)
	}
}

func TestLastKeyInLastBlockFound(t *testing.T) {
	keys := []string{"a", "b", "c", "d", "e"}
	pairs := makePairs(keys)
	paths := testPaths(t)

	tbl, err := Build[string, string](paths, 3, codec.StringKeyCodec(), codec.StringValueCodec(), 0.01, len(pairs), seqFromPairs(pairs))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	e, ok, err := tbl.Get("e")
	if err != nil || !ok || e.Value != "val-e" {
		t.Fatalf("Get(e) = %+v, ok=%v, err=%v", e, ok, err)
	}
}

func TestOpenAfterBuildMatches(t *testing.T) {
	keys := []string{"m", "n", "o", "p"}
	pairs := makePairs(keys)
	paths := testPaths(t)

	if _, err := Build[string, string](paths, 2, codec.StringKeyCodec(), codec.StringValueCodec(), 0.01, len(pairs), seqFromPairs(pairs)); err != nil {
		t.Fatalf("Build: %v", err)
	}

	tbl, err := Open[string, string](paths, codec.StringKeyCodec(), codec.StringValueCodec())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	e, ok, err := tbl.Get("o")
	if err != nil || !ok || e.Value != "val-o" {
		t.Fatalf("Get(o) after Open = %+v, ok=%v, err=%v", e, ok, err)
	}
}

func TestIteratorReproducesSourceOrder(t *testing.T) {
	keys := []string{"z", "y", "x", "w", "v"}
	pairs := makePairs(keys)
	paths := testPaths(t)

	tbl, err := Build[string, string](paths, 2, codec.StringKeyCodec(), codec.StringValueCodec(), 0.01, len(pairs), seqFromPairs(pairs))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	it, err := tbl.Iterator()
	if err != nil {
		t.Fatalf("Iterator: %v", err)
	}
	defer it.Close()

	var got []string
	for it.Next() {
		got = append(got, it.Key())
	}
	if it.Err() != nil {
		t.Fatalf("iteration error: %v", it.Err())
	}
	if len(got) != len(pairs) {
		t.Fatalf("got %d keys, want %d", len(got), len(pairs))
	}
	for i, p := range pairs {
		if got[i] != p.K {
			t.Fatalf("position %d: got %q, want %q", i, got[i], p.K)
		}
	}
}

func TestTombstoneRoundTrips(t *testing.T) {
	paths := testPaths(t)
	pairs := []struct {
		K string
		V entry.Entry[string]
	}{
		{K: "a", V: entry.Data("1")},
		{K: "b", V: entry.Tombstone[string]()},
		{K: "c", V: entry.Data("3")},
	}

	tbl, err := Build[string, string](paths, 2, codec.StringKeyCodec(), codec.StringValueCodec(), 0.01, len(pairs), seqFromPairs(pairs))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	e, ok, err := tbl.Get("b")
	if err != nil || !ok || !e.IsTombstone() {
		t.Fatalf("Get(b) = %+v, ok=%v, err=%v, want tombstone", e, ok, err)
	}
}

func TestEmptySourceProducesEmptyTable(t *testing.T) {
	paths := testPaths(t)
	empty := func(yield func(string, entry.Entry[string]) bool) {}

	tbl, err := Build[string, string](paths, 4, codec.StringKeyCodec(), codec.StringValueCodec(), 0.01, 1, iter.Seq2[string, entry.Entry[string]](empty))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok, err := tbl.Get("anything"); err != nil || ok {
		t.Fatalf("Get on empty table = ok=%v, err=%v", ok, err)
	}

	it, err := tbl.Iterator()
	if err != nil {
		t.Fatalf("Iterator: %v", err)
	}
	defer it.Close()
	if it.Next() {
		t.Fatal("iterator over empty table should yield nothing")
	}
	if it.Err() != nil && it.Err() != io.EOF {
		t.Fatalf("unexpected iterator error: %v", it.Err())
	}
}
