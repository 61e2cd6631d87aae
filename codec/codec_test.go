package codec

import (
	"bytes"
	"testing"
)

func TestStringKeyCodecRoundTrip(t *testing.T) {
	c := StringKeyCodec()
	for _, s := range []string{"", "a", "hello world", "key_18"} {
		enc := c.Encode(s)
		got, n, err := c.Decode(enc)
		if err != nil {
			t.Fatalf("Decode(%q): %v", s, err)
		}
		if got != s || n != len(enc) {
			t.Fatalf("round trip %q => %q (n=%d, want %d)", s, got, n, len(enc))
		}
	}
}

func TestStringKeyCodecOrdering(t *testing.T) {
	c := StringKeyCodec()
	if c.Compare("a", "b") >= 0 {
		t.Fatal("a should sort before b")
	}
	if c.Compare("b", "a") <= 0 {
		t.Fatal("b should sort after a")
	}
	if c.Compare("x", "x") != 0 {
		t.Fatal("equal strings should compare equal")
	}
}

func TestInt64KeyCodecPreservesOrder(t *testing.T) {
	c := Int64KeyCodec()
	vals := []int64{-100, -1, 0, 1, 100, 1 << 40}
	for i := 0; i < len(vals)-1; i++ {
		a, b := c.Encode(vals[i]), c.Encode(vals[i+1])
		if string(a) >= string(b) {
			t.Fatalf("encoded order broken for %d < %d", vals[i], vals[i+1])
		}
		if c.Compare(vals[i], vals[i+1]) >= 0 {
			t.Fatalf("Compare order broken for %d < %d", vals[i], vals[i+1])
		}
	}
	for _, v := range vals {
		got, n, err := c.Decode(c.Encode(v))
		if err != nil || got != v || n != 8 {
			t.Fatalf("round trip %d => %d, %d, %v", v, got, n, err)
		}
	}
}

func TestHashIsStable(t *testing.T) {
	c := StringKeyCodec()
	h1 := c.Hash("stable-key")
	h2 := c.Hash("stable-key")
	if h1 != h2 {
		t.Fatal("Hash should be deterministic for the same input")
	}
}

func TestValueCodecRoundTrip(t *testing.T) {
	vc := ValueValueCodec()
	values := []Value{
		Int32Value(-7),
		Int64Value(1 << 40),
		Float32Value(3.25),
		Float64Value(2.71828),
		BoolValue(true),
		BoolValue(false),
		StringValue("payload"),
		BytesValue([]byte{0x01, 0x02, 0x03}),
	}
	for _, v := range values {
		enc := vc.Encode(v)
		got, n, err := vc.Decode(enc)
		if err != nil {
			t.Fatalf("Decode(%+v): %v", v, err)
		}
		if n != len(enc) {
			t.Fatalf("consumed %d, want %d", n, len(enc))
		}
		if got.Kind != v.Kind {
			t.Fatalf("round trip %+v => %+v", v, got)
		}
		switch v.Kind {
		case KindInt32:
			if got.Int32 != v.Int32 {
				t.Fatalf("round trip %+v => %+v", v, got)
			}
		case KindInt64:
			if got.Int64 != v.Int64 {
				t.Fatalf("round trip %+v => %+v", v, got)
			}
		case KindFloat32:
			if got.Float32 != v.Float32 {
				t.Fatalf("round trip %+v => %+v", v, got)
			}
		case KindFloat64:
			if got.Float64 != v.Float64 {
				t.Fatalf("round trip %+v => %+v", v, got)
			}
		case KindBool:
			if got.Bool != v.Bool {
				t.Fatalf("round trip %+v => %+v", v, got)
			}
		case KindString:
			if got.String != v.String {
				t.Fatalf("round trip %+v => %+v", v, got)
			}
		case KindBytes:
			if !bytes.Equal(got.Bytes, v.Bytes) {
				t.Fatalf("round trip %+v => %+v", v, got)
			}
		}
	}
}

func TestValueCodecShortBuffer(t *testing.T) {
	vc := ValueValueCodec()
	if _, _, err := vc.Decode(nil); err == nil {
		t.Fatal("expected error decoding empty buffer")
	}
	if _, _, err := vc.Decode([]byte{byte(KindInt64), 1, 2}); err == nil {
		t.Fatal("expected error decoding truncated int64")
	}
}
