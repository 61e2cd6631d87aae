package memtable

import (
	"testing"

	"lsmgo/codec"
)

func TestPutGetDelete(t *testing.T) {
	mt := New[string, string](codec.StringKeyCodec())
	mt.Put("a", "1")
	mt.Put("b", "2")

	e, ok := mt.Get("a")
	if !ok || e.IsTombstone() || e.Value != "1" {
		t.Fatalf("Get(a) = %+v, %v", e, ok)
	}

	mt.Delete("a")
	e, ok = mt.Get("a")
	if !ok || !e.IsTombstone() {
		t.Fatalf("Get(a) after delete = %+v, %v, want tombstone", e, ok)
	}

	if _, ok := mt.Get("missing"); ok {
		t.Fatal("Get(missing) should report absent")
	}
}

func TestLenAndReset(t *testing.T) {
	mt := New[string, string](codec.StringKeyCodec())
	for i := 0; i < 5; i++ {
		mt.Put(string(rune('a'+i)), "v")
	}
	if mt.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", mt.Len())
	}
	mt.Reset()
	if mt.Len() != 0 {
		t.Fatalf("Len() after Reset() = %d, want 0", mt.Len())
	}
}

func TestAllIteratesInAscendingOrder(t *testing.T) {
	mt := New[string, string](codec.StringKeyCodec())
	mt.Put("c", "3")
	mt.Put("a", "1")
	mt.Put("b", "2")

	var keys []string
	for k := range mt.All() {
		keys = append(keys, k)
	}
	want := []string{"a", "b", "c"}
	if len(keys) != len(want) {
		t.Fatalf("got %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("got %v, want %v", keys, want)
		}
	}
}
