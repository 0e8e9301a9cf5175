package embedding

import (
	"context"
	"errors"
	"math"
	"testing"
)

// --- Mocks ---

type mockProvider struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockProvider) Embed(_ context.Context, _ string) ([]float32, error) {
	m.calls++
	return m.vec, m.err
}

// --- Tests ---

func TestFallback_Deterministic(t *testing.T) {
	a := Fallback("who knows React?", 64)
	b := Fallback("who knows React?", 64)
	if len(a) != 64 {
		t.Fatalf("len = %d, want 64", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestFallback_DifferentTexts(t *testing.T) {
	a := Fallback("alpha", 32)
	b := Fallback("beta", 32)
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different texts produced identical vectors")
	}
}

func TestFallback_UnitNorm(t *testing.T) {
	for _, text := range []string{"x", "who knows React?", "日本語のテキスト"} {
		vec := Fallback(text, 128)
		var sum float64
		for _, v := range vec {
			sum += float64(v) * float64(v)
		}
		norm := math.Sqrt(sum)
		if math.Abs(norm-1) > 1e-4 {
			t.Errorf("text %q: norm = %v, want 1", text, norm)
		}
	}
}

func TestFallback_EmptyText(t *testing.T) {
	vec := Fallback("", 16)
	if len(vec) != 16 {
		t.Fatalf("len = %d, want 16", len(vec))
	}
}

func TestTextSeed_NonNegative(t *testing.T) {
	for _, text := range []string{"", "a", "zzzzzzzzzzzzzzzzzzzzzz", "\uffff\uffff\uffff"} {
		if s := textSeed(text); s < 0 {
			t.Errorf("textSeed(%q) = %d, want >= 0", text, s)
		}
	}
}

func TestEmbed_NilProviderUsesFallback(t *testing.T) {
	g := New(nil, Options{Dimension: 32}, nil)
	got := g.Embed(context.Background(), "hello")
	want := Fallback("hello", 32)
	for i := range got {
		if got[i] != want[i] {
			t.Fatal("nil provider should produce the fallback vector")
		}
	}
}

func TestEmbed_ProviderSuccess(t *testing.T) {
	vec := make([]float32, 32)
	vec[0] = 0.5
	p := &mockProvider{vec: vec}
	g := New(p, Options{Dimension: 32}, nil)

	got := g.Embed(context.Background(), "hello")
	if got[0] != 0.5 {
		t.Fatal("provider vector not returned")
	}
	if p.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", p.calls)
	}
}

func TestEmbed_ProviderErrorFallsBack(t *testing.T) {
	p := &mockProvider{err: errors.New("upstream down")}
	g := New(p, Options{Dimension: 32}, nil)

	got := g.Embed(context.Background(), "hello")
	want := Fallback("hello", 32)
	for i := range got {
		if got[i] != want[i] {
			t.Fatal("provider error should fall back to deterministic vector")
		}
	}
}

func TestEmbed_WrongDimensionFallsBack(t *testing.T) {
	p := &mockProvider{vec: make([]float32, 8)}
	g := New(p, Options{Dimension: 32}, nil)

	got := g.Embed(context.Background(), "hello")
	if len(got) != 32 {
		t.Fatalf("len = %d, want configured dimension 32", len(got))
	}
	want := Fallback("hello", 32)
	for i := range got {
		if got[i] != want[i] {
			t.Fatal("wrong-dimension response should fall back")
		}
	}
}

func TestEmbed_ProviderOutageMidSession(t *testing.T) {
	providerVec := make([]float32, 32)
	providerVec[0] = 0.7
	p := &mockProvider{vec: providerVec}
	g := New(p, Options{Dimension: 32}, nil)

	first := g.Embed(context.Background(), "who knows React?")
	if first[0] != 0.7 {
		t.Fatal("first call should return the provider vector")
	}

	p.err = errors.New("provider down")
	second := g.Embed(context.Background(), "who knows React?")
	want := Fallback("who knows React?", 32)
	for i := range second {
		if second[i] != want[i] {
			t.Fatal("outage should yield the deterministic fallback vector")
		}
	}
	if first[0] == second[0] {
		t.Fatal("provider and fallback vectors are expected to differ")
	}
}

func TestEmbed_DefaultDimension(t *testing.T) {
	g := New(nil, Options{}, nil)
	if g.Dimension() != DefaultDimension {
		t.Fatalf("Dimension() = %d, want %d", g.Dimension(), DefaultDimension)
	}
	if got := g.Embed(context.Background(), "x"); len(got) != DefaultDimension {
		t.Fatalf("len = %d, want %d", len(got), DefaultDimension)
	}
}
