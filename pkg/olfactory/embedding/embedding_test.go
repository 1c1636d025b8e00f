package embedding

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testVectors(t *testing.T) *Vectors {
	t.Helper()
	v, err := NewVectors(map[string][]float32{
		"dog":    {1, 0, 0},
		"cat":    {0.8, 0.6, 0},
		"forest": {0, 0, 1},
		"wood":   {0, 0.1, 1},
		"zero":   {0, 0, 0},
	})
	if err != nil {
		t.Fatalf("NewVectors: %v", err)
	}
	return v
}

func TestSimilarityKnownWords(t *testing.T) {
	v := testVectors(t)

	sim, ok := v.Similarity("dog", "cat")
	if !ok {
		t.Fatal("dog/cat should be known")
	}
	if math.Abs(sim-0.8) > 1e-6 {
		t.Errorf("dog/cat = %f, want 0.8", sim)
	}

	back, _ := v.Similarity("cat", "dog")
	if back != sim {
		t.Errorf("similarity not symmetric: %f vs %f", sim, back)
	}

	self, _ := v.Similarity("wood", "wood")
	if math.Abs(self-1) > 1e-9 {
		t.Errorf("self similarity = %f, want 1", self)
	}

	if z, ok := v.Similarity("zero", "dog"); !ok || z != 0 {
		t.Errorf("zero vector similarity = %f,%v", z, ok)
	}
}

func TestSimilarityUnknownWord(t *testing.T) {
	v := testVectors(t)
	if _, ok := v.Similarity("xyzabc", "dog"); ok {
		t.Error("unknown word should be undefined")
	}
	if _, ok := v.Similarity("dog", "invalid"); ok {
		t.Error("unknown word should be undefined")
	}
}

func TestNewVectorsDimensionMismatch(t *testing.T) {
	_, err := NewVectors(map[string][]float32{"a": {1, 2}, "b": {1}})
	if err == nil {
		t.Fatal("expected dimension error")
	}
}

func TestMsgPackRoundTrip(t *testing.T) {
	v := testVectors(t)
	data, err := EncodeMsgPack(v)
	if err != nil {
		t.Fatalf("EncodeMsgPack: %v", err)
	}

	path := filepath.Join(t.TempDir(), "vectors.msgpack")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadMsgPack(path)
	if err != nil {
		t.Fatalf("LoadMsgPack: %v", err)
	}
	if loaded.Len() != v.Len() || loaded.Dim() != 3 {
		t.Fatalf("loaded %d words dim %d", loaded.Len(), loaded.Dim())
	}
	want, _ := v.Similarity("dog", "cat")
	got, ok := loaded.Similarity("dog", "cat")
	if !ok || math.Abs(got-want) > 1e-6 {
		t.Errorf("similarity after round trip = %f, want %f", got, want)
	}
}

func TestLoadText(t *testing.T) {
	input := `3 2
rose 1 0
jasmine 0.6 0.8

amber 0 1
`
	v, err := LoadText(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadText: %v", err)
	}
	if v.Len() != 3 {
		t.Fatalf("expected 3 words, got %d", v.Len())
	}
	if !v.Has("jasmine") || v.Has("3") {
		t.Error("header should be skipped and words loaded")
	}
	sim, _ := v.Similarity("rose", "jasmine")
	if math.Abs(sim-0.6) > 1e-6 {
		t.Errorf("rose/jasmine = %f, want 0.6", sim)
	}
}

func TestLoadTextErrors(t *testing.T) {
	tests := []string{
		"rose 1 x\n",
		"rose 1 0\namber 1\n",
		"lonely\n",
	}
	for _, in := range tests {
		if _, err := LoadText(strings.NewReader(in)); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestCachedOracle(t *testing.T) {
	calls := 0
	inner := OracleFunc(func(a, b string) (float64, bool) {
		calls++
		if a == "unknown" || b == "unknown" {
			return 0, false
		}
		return 0.5, true
	})

	c, err := NewCached(inner, 0)
	if err != nil {
		t.Fatalf("NewCached: %v", err)
	}

	c.Similarity("rose", "jasmine")
	c.Similarity("jasmine", "rose")
	if calls != 1 {
		t.Errorf("expected 1 inner call for symmetric pair, got %d", calls)
	}

	if _, ok := c.Similarity("unknown", "rose"); ok {
		t.Error("undefined result should stay undefined")
	}
	if _, ok := c.Similarity("rose", "unknown"); ok {
		t.Error("cached undefined result should stay undefined")
	}
	if calls != 2 {
		t.Errorf("expected 2 inner calls, got %d", calls)
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 cached pairs, got %d", c.Len())
	}
}
