package predict

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/cognicore/olfactory/pkg/olfactory/catalog"
	"github.com/cognicore/olfactory/pkg/olfactory/embedding"
	"github.com/cognicore/olfactory/pkg/olfactory/internalerr"
	"github.com/cognicore/olfactory/pkg/olfactory/mapping"
)

type pairOracle map[[2]string]float64

func (p pairOracle) Similarity(a, b string) (float64, bool) {
	if v, ok := p[[2]string{a, b}]; ok {
		return v, true
	}
	v, ok := p[[2]string{b, a}]
	return v, ok
}

type keywordList []string

func (k keywordList) ExtractKeywords(string) []string { return k }

// firstN always picks the leading notes so bucket contents are predictable.
type firstN struct{}

func (firstN) Sample(notes []string, n int) []string {
	if n > len(notes) {
		n = len(notes)
	}
	return append([]string(nil), notes[:n]...)
}

func testTable() *catalog.Table {
	tbl := catalog.NewTable()
	for _, n := range []string{"Cedar", "Oakmoss", "Vetiver", "Patchouli"} {
		tbl.Add("WOODS AND MOSSES", n)
	}
	for _, n := range []string{"Clove", "Cinnamon"} {
		tbl.Add("SPICES", n)
	}
	return tbl
}

func newResolver(t *testing.T, store *mapping.Store, oracle embedding.Oracle, keywords ...string) *Resolver {
	t.Helper()
	r, err := New(Options{
		Store:      store,
		Categories: testTable(),
		Oracle:     oracle,
		Extractor:  keywordList(keywords),
		Sampler:    firstN{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestPredictExactGoesToBase(t *testing.T) {
	store := mapping.New()
	store.Add("vanilla", "vanilla", mapping.Exact)
	r := newResolver(t, store, pairOracle{}, "vanilla")

	res, err := r.Predict(context.Background(), "vanilla", 3)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if !reflect.DeepEqual(res.Base, []string{"vanilla"}) || len(res.Middle) != 0 || len(res.Top) != 0 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestPredictCategoryGoesToTop(t *testing.T) {
	store := mapping.New()
	store.Add("forest", "WOODS AND MOSSES", mapping.Category)
	r := newResolver(t, store, pairOracle{}, "forest")

	res, err := r.Predict(context.Background(), "forest", 3)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if !reflect.DeepEqual(res.Top, []string{"Cedar", "Oakmoss", "Vetiver"}) {
		t.Errorf("Top = %v", res.Top)
	}
	if len(res.Middle) != 0 || len(res.Base) != 0 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestPredictSpecificCategoryGoesToMiddle(t *testing.T) {
	store := mapping.New()
	store.Add("spicy", "SPICES", mapping.Specific)
	store.Add("smoke", "birch tar", mapping.Specific)
	r := newResolver(t, store, pairOracle{}, "spicy", "smoke")

	res, err := r.Predict(context.Background(), "spicy smoke", 5)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	want := []string{"Clove", "Cinnamon", "birch tar"}
	if !reflect.DeepEqual(res.Middle, want) {
		t.Errorf("Middle = %v, want %v", res.Middle, want)
	}
}

func TestPredictBucketsDisjoint(t *testing.T) {
	store := mapping.New()
	store.Add("cedar", "Cedar", mapping.Exact)
	store.Add("moss", "WOODS AND MOSSES", mapping.Specific)
	store.Add("forest", "WOODS AND MOSSES", mapping.Category)
	r := newResolver(t, store, pairOracle{}, "cedar", "moss", "forest")

	res, err := r.Predict(context.Background(), "cedar moss forest", 4)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if !reflect.DeepEqual(res.Base, []string{"Cedar"}) {
		t.Errorf("Base = %v", res.Base)
	}
	if !reflect.DeepEqual(res.Middle, []string{"Oakmoss", "Vetiver", "Patchouli"}) {
		t.Errorf("Middle = %v", res.Middle)
	}
	if len(res.Top) != 0 {
		t.Errorf("Top should be empty, got %v", res.Top)
	}

	seen := map[string]bool{}
	for _, bucket := range [][]string{res.Top, res.Middle, res.Base} {
		for _, n := range bucket {
			if seen[n] {
				t.Errorf("note %q appears in more than one bucket", n)
			}
			seen[n] = true
		}
	}
}

func TestPredictLaterKeywordClaimsLowerTier(t *testing.T) {
	store := mapping.New()
	store.Add("spicy", "SPICES", mapping.Category)
	store.Add("clove", "Clove", mapping.Exact)
	store.Add("woody", "WOODS AND MOSSES", mapping.Category)
	store.Add("cedarish", "Cedar", mapping.Specific)
	r := newResolver(t, store, pairOracle{}, "spicy", "clove", "woody", "cedarish")

	res, err := r.Predict(context.Background(), "spicy clove woody cedarish", 1)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(res.Top) != 0 {
		t.Errorf("Top = %v, want empty", res.Top)
	}
	if !reflect.DeepEqual(res.Middle, []string{"Cedar"}) {
		t.Errorf("Middle = %v, want [Cedar]", res.Middle)
	}
	if !reflect.DeepEqual(res.Base, []string{"Clove"}) {
		t.Errorf("Base = %v, want [Clove]", res.Base)
	}
}

func TestPredictBucketsDisjointAnyOrder(t *testing.T) {
	store := mapping.New()
	store.Add("spicy", "SPICES", mapping.Category)
	store.Add("warm", "SPICES", mapping.Specific)
	store.Add("cinnamon", "Cinnamon", mapping.Exact)
	store.Add("woody", "WOODS AND MOSSES", mapping.Category)
	store.Add("moss", "WOODS AND MOSSES", mapping.Specific)
	store.Add("cedar", "Cedar", mapping.Exact)
	keywords := []string{"spicy", "warm", "cinnamon", "woody", "moss", "cedar"}

	for seed := int64(1); seed <= 200; seed++ {
		order := NewSampler(seed).Sample(keywords, len(keywords))
		r := newResolver(t, store, pairOracle{}, order...).WithSampler(NewSampler(seed))
		res, err := r.Predict(context.Background(), "", 1+int(seed%4))
		if err != nil {
			t.Fatalf("seed %d: Predict: %v", seed, err)
		}
		seen := map[string]string{}
		for name, bucket := range map[string][]string{"top": res.Top, "middle": res.Middle, "base": res.Base} {
			for _, n := range bucket {
				if prev, ok := seen[n]; ok {
					t.Fatalf("seed %d, order %v: %q in both %s and %s", seed, order, n, prev, name)
				}
				seen[n] = name
			}
		}
		if !contains(res.Base, "Cinnamon") || !contains(res.Base, "Cedar") {
			t.Fatalf("seed %d: exact notes missing from base: %v", seed, res.Base)
		}
	}
}

func TestPredictFallbackUsesMostSimilarToken(t *testing.T) {
	store := mapping.New()
	store.Add("rose", "rose", mapping.Exact)
	store.Add("bark", "birch", mapping.Specific)
	store.Add("pine", "pine needle", mapping.Specific)
	oracle := pairOracle{
		{"tree", "rose"}: -0.2,
		{"tree", "bark"}: 0.6,
		{"tree", "pine"}: 0.6,
	}
	r := newResolver(t, store, oracle, "tree")

	res, err := r.Predict(context.Background(), "tree", 3)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if !reflect.DeepEqual(res.Middle, []string{"birch"}) {
		t.Errorf("Middle = %v, want first of tied tokens", res.Middle)
	}
}

func TestPredictSkipsKeywordWithoutPositiveSimilarity(t *testing.T) {
	store := mapping.New()
	store.Add("rose", "rose", mapping.Exact)
	oracle := pairOracle{{"concrete", "rose"}: 0}
	r := newResolver(t, store, oracle, "concrete", "unknown")

	res, err := r.Predict(context.Background(), "concrete", 3)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(res.Top)+len(res.Middle)+len(res.Base) != 0 {
		t.Errorf("expected empty buckets, got %+v", res)
	}
	if !reflect.DeepEqual(res.Keywords, []string{"concrete", "unknown"}) {
		t.Errorf("Keywords = %v", res.Keywords)
	}
}

func TestPredictEmptyCategoryAborts(t *testing.T) {
	store := mapping.New()
	store.Add("honey", "honey", mapping.Exact)
	store.Add("coffee", "BEVERAGES", mapping.Category)
	store.Add("clove", "clove bud", mapping.Specific)
	r := newResolver(t, store, pairOracle{}, "honey", "coffee", "clove")

	res, err := r.Predict(context.Background(), "honey coffee clove", 3)
	if !errors.Is(err, internalerr.ErrCategoryExpansionEmpty) {
		t.Fatalf("expected ErrCategoryExpansionEmpty, got %v", err)
	}
	if !res.Aborted {
		t.Error("Aborted should be set")
	}
	if !reflect.DeepEqual(res.Base, []string{"honey"}) || len(res.Middle) != 0 {
		t.Errorf("partial result = %+v", res)
	}
}

func TestPredictInvalidCount(t *testing.T) {
	r := newResolver(t, mapping.New(), pairOracle{})
	if _, err := r.Predict(context.Background(), "x", 0); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPredictCancelled(t *testing.T) {
	store := mapping.New()
	store.Add("rose", "rose", mapping.Exact)
	r := newResolver(t, store, pairOracle{}, "rose")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Predict(ctx, "rose", 3); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestResultFormat(t *testing.T) {
	res := Result{Top: []string{"Cedar"}, Middle: []string{"rose", "musk"}}
	want := "Top notes for you: ['Cedar']\n\nMiddle notes for you: ['rose', 'musk']\n\nBase notes for you: []"
	if got := res.Format(); got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := New(Options{}); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSeededSampler(t *testing.T) {
	notes := []string{"a", "b", "c", "d", "e"}
	first := NewSampler(42).Sample(notes, 3)
	second := NewSampler(42).Sample(notes, 3)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same seed should give same draw: %v vs %v", first, second)
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 notes, got %v", first)
	}
	seen := map[string]bool{}
	for _, n := range first {
		if seen[n] {
			t.Errorf("duplicate note %q", n)
		}
		seen[n] = true
	}
	if !reflect.DeepEqual(notes, []string{"a", "b", "c", "d", "e"}) {
		t.Error("Sample mutated its input")
	}

	if got := NewSampler(1).Sample(notes, 10); len(got) != len(notes) {
		t.Errorf("oversized draw should return all notes, got %v", got)
	}
	if got := TimeSeeded().Sample(notes, 2); len(got) != 2 {
		t.Errorf("TimeSeeded draw = %v", got)
	}
}

func TestWithSampler(t *testing.T) {
	store := mapping.New()
	store.Add("forest", "WOODS AND MOSSES", mapping.Category)
	r := newResolver(t, store, pairOracle{}, "forest").WithSampler(NewSampler(3))

	a, err := r.Predict(context.Background(), "forest", 2)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	b, _ := r.WithSampler(NewSampler(3)).Predict(context.Background(), "forest", 2)
	if !reflect.DeepEqual(a.Top, b.Top) || len(a.Top) != 2 {
		t.Errorf("seeded predictions differ: %v vs %v", a.Top, b.Top)
	}
}
