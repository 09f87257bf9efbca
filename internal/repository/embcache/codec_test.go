package embcache

import (
	"errors"
	"testing"
)

func TestCodec_RoundTrip(t *testing.T) {
	in := []float32{0.25, -1.5, 3.125e-7, 0}
	out, err := decodeVector(encodeVector(in))
	if err != nil {
		t.Fatalf("decodeVector: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestCodec_RejectsCorruptEntries(t *testing.T) {
	for name, data := range map[string][]byte{
		"empty":         nil,
		"short header":  {codecVersion, 0, 0},
		"bad version":   {0, 0, 0, 0, 0},
		"short payload": {codecVersion, 1, 0, 0, 0, 1, 2},
	} {
		if _, err := decodeVector(data); !errors.Is(err, errCorruptEntry) {
			t.Errorf("%s: expected errCorruptEntry, got %v", name, err)
		}
	}
}
