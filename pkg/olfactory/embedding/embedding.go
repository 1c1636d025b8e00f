package embedding

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Oracle scores how close two words are. ok is false when either word is
// outside the oracle's vocabulary.
type Oracle interface {
	Similarity(a, b string) (sim float64, ok bool)
}

// OracleFunc adapts a plain function to Oracle.
type OracleFunc func(a, b string) (float64, bool)

// Similarity implements Oracle.
func (f OracleFunc) Similarity(a, b string) (float64, bool) { return f(a, b) }

// Vectors is a fixed word → vector table. It is never mutated after loading.
type Vectors struct {
	dim  int
	vecs map[string][]float32
}

// NewVectors builds a table from in-memory vectors. All vectors must share
// one dimension.
func NewVectors(vecs map[string][]float32) (*Vectors, error) {
	dim := -1
	table := make(map[string][]float32, len(vecs))
	for w, v := range vecs {
		if dim == -1 {
			dim = len(v)
		} else if len(v) != dim {
			return nil, fmt.Errorf("vector %q: dimension %d, want %d", w, len(v), dim)
		}
		table[w] = append([]float32(nil), v...)
	}
	if dim < 0 {
		dim = 0
	}
	return &Vectors{dim: dim, vecs: table}, nil
}

// Dim returns the vector dimension.
func (v *Vectors) Dim() int { return v.dim }

// Len returns the vocabulary size.
func (v *Vectors) Len() int { return len(v.vecs) }

// Has reports whether word is in the vocabulary.
func (v *Vectors) Has(word string) bool {
	_, ok := v.vecs[word]
	return ok
}

// Similarity implements Oracle with cosine similarity.
func (v *Vectors) Similarity(a, b string) (float64, bool) {
	va, ok := v.vecs[a]
	if !ok {
		return 0, false
	}
	vb, ok := v.vecs[b]
	if !ok {
		return 0, false
	}
	return Cosine(va, vb), true
}

// Cosine returns the cosine similarity of two equal-length vectors, or 0 when
// either has zero magnitude.
func Cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		af, bf := float64(a[i]), float64(b[i])
		dot += af * bf
		na += af * af
		nb += bf * bf
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// rounding can push identical vectors just past 1
	if sim > 1 {
		sim = 1
	} else if sim < -1 {
		sim = -1
	}
	return sim
}

// LoadMsgPack reads a {dim, embeddings} msgpack document.
func LoadMsgPack(path string) (*Vectors, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return DecodeMsgPack(data)
}

// DecodeMsgPack decodes the document LoadMsgPack reads.
func DecodeMsgPack(data []byte) (*Vectors, error) {
	var loaded struct {
		Dim        int                  `msgpack:"dim"`
		Embeddings map[string][]float64 `msgpack:"embeddings"`
	}
	if err := msgpack.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("msgpack unmarshal: %w", err)
	}

	// float32 halves the in-memory footprint
	vecs := make(map[string][]float32, len(loaded.Embeddings))
	for w, v := range loaded.Embeddings {
		if loaded.Dim > 0 && len(v) != loaded.Dim {
			return nil, fmt.Errorf("vector %q: dimension %d, want %d", w, len(v), loaded.Dim)
		}
		v32 := make([]float32, len(v))
		for i, f := range v {
			v32[i] = float32(f)
		}
		vecs[w] = v32
	}
	return NewVectors(vecs)
}

// EncodeMsgPack writes vectors in the format DecodeMsgPack reads.
func EncodeMsgPack(v *Vectors) ([]byte, error) {
	doc := struct {
		Dim        int                  `msgpack:"dim"`
		Embeddings map[string][]float64 `msgpack:"embeddings"`
	}{Dim: v.dim, Embeddings: make(map[string][]float64, len(v.vecs))}
	for w, vec := range v.vecs {
		v64 := make([]float64, len(vec))
		for i, f := range vec {
			v64[i] = float64(f)
		}
		doc.Embeddings[w] = v64
	}
	return msgpack.Marshal(doc)
}

// LoadText reads the word2vec/GloVe text format: one "word v1 v2 ..." line
// per word. An optional "count dim" header line is skipped.
func LoadText(r io.Reader) (*Vectors, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	vecs := make(map[string][]float32)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if line == 1 && len(fields) == 2 {
			if _, err := strconv.Atoi(fields[0]); err == nil {
				continue
			}
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: no vector components", line)
		}
		vec := make([]float32, len(fields)-1)
		for i, f := range fields[1:] {
			x, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			vec[i] = float32(x)
		}
		vecs[fields[0]] = vec
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewVectors(vecs)
}

// LoadTextFile opens path and calls LoadText.
func LoadTextFile(path string) (*Vectors, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadText(f)
}
