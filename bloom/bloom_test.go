package bloom

import (
	"bytes"
	"testing"

	"lsmgo/codec"
)

func TestSizingMatchesReferenceValues(t *testing.T) {
	cases := []struct {
		n        int
		p        float64
		byteSize int
		k        int
	}{
		{100000, 0.2, 41873, 3},
		{10000, 0.2, 4188, 3},
		{100000, 0.1, 59907, 4},
		{10000, 0.1, 5991, 4},
	}
	for _, c := range cases {
		f := New[string](codec.StringKeyCodec(), c.n, c.p)
		if f.ByteSize() != c.byteSize {
			t.Errorf("New(%d, %v).ByteSize() = %d, want %d", c.n, c.p, f.ByteSize(), c.byteSize)
		}
		if f.K() != c.k {
			t.Errorf("New(%d, %v).K() = %d, want %d", c.n, c.p, f.K(), c.k)
		}
	}
}

func TestNoFalseNegatives(t *testing.T) {
	kc := codec.StringKeyCodec()
	f := New[string](kc, 1000, 0.01)
	members := make([]string, 0, 1000)
	for i := 0; i < 1000; i++ {
		m := kc.Encode(string(rune(i % 26)))
		s := string(m) + "-" + string(rune('a'+i%26)) + string(rune(i))
		f.Add(s)
		members = append(members, s)
	}
	for _, m := range members {
		if !f.Contains(m) {
			t.Fatalf("Contains(%q) = false, want true (no false negatives allowed)", m)
		}
	}
}

func TestFalsePositiveRateWithinTolerance(t *testing.T) {
	kc := codec.StringKeyCodec()
	n := 2000
	p := 0.05
	f := New[string](kc, n, p)
	for i := 0; i < n; i++ {
		f.Add("member-" + string(rune(i)) + "-x")
	}
	trials := 20000
	falsePositives := 0
	for i := 0; i < trials; i++ {
		candidate := "absent-" + string(rune(i)) + "-y"
		if f.Contains(candidate) {
			falsePositives++
		}
	}
	rate := float64(falsePositives) / float64(trials)
	if rate > p*3 {
		t.Fatalf("observed false-positive rate %.4f far exceeds target %.4f", rate, p)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	kc := codec.StringKeyCodec()
	f := New[string](kc, 500, 0.02)
	f.Add("present")

	var buf bytes.Buffer
	if err := f.EncodeTo(&buf); err != nil {
		t.Fatalf("EncodeTo: %v", err)
	}

	decoded, err := Decode[string](&buf, kc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.K() != f.K() || decoded.BitSize() != f.BitSize() {
		t.Fatalf("decoded filter shape mismatch: k=%d/%d bits=%d/%d", decoded.K(), f.K(), decoded.BitSize(), f.BitSize())
	}
	if !decoded.Contains("present") {
		t.Fatal("decoded filter lost a known member")
	}
}
