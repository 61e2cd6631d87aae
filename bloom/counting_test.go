package bloom

import "lsmgo/codec"
import "testing"

func TestCountingFilterAddRemove(t *testing.T) {
	kc := codec.StringKeyCodec()
	f := NewCounting[string](kc, 100, 0.05)
	f.Add("x")
	if !f.Contains("x") {
		t.Fatal("Contains(x) should be true after Add")
	}
	if !f.Remove("x") {
		t.Fatal("Remove(x) should succeed")
	}
	if f.Contains("x") {
		t.Fatal("Contains(x) should be false after Remove")
	}
}

func TestCountingFilterRemoveAbsentFails(t *testing.T) {
	kc := codec.StringKeyCodec()
	f := NewCounting[string](kc, 100, 0.05)
	if f.Remove("never-added") {
		t.Fatal("Remove on a never-added item should report false")
	}
}

func TestCountingFilterSharedCounterSurvivesOneRemoval(t *testing.T) {
	kc := codec.StringKeyCodec()
	f := NewCounting[string](kc, 10, 0.3)
	for i := 0; i < 10; i++ {
		f.Add(string(rune('a' + i)))
	}
	for i := 0; i < 10; i++ {
		if !f.Remove(string(rune('a' + i))) {
			t.Fatalf("Remove(%q) should succeed", string(rune('a'+i)))
		}
		for j := i + 1; j < 10; j++ {
			if !f.Contains(string(rune('a' + j))) {
				t.Fatalf("Contains(%q) = false after removing %q; a shared counter did not survive", string(rune('a'+j)), string(rune('a'+i)))
			}
		}
	}
}
