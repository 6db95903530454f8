package originality

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"
)

type embedderStub struct {
	embedFn func(context.Context, string) ([]float32, error)
}

func (s *embedderStub) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.embedFn(ctx, text)
}
func (s *embedderStub) Dim() int { return 3 }

type searchStub struct {
	searchFn func(context.Context, []float32, float64, int) ([]Match, error)
	upsertFn func(context.Context, uint, []float32) error
}

func (s *searchStub) Search(ctx context.Context, vec []float32, floor float64, limit int) ([]Match, error) {
	return s.searchFn(ctx, vec, floor, limit)
}
func (s *searchStub) Upsert(ctx context.Context, contentID uint, vec []float32) error {
	if s.upsertFn == nil {
		return nil
	}
	return s.upsertFn(ctx, contentID, vec)
}

type confirmerStub struct {
	confirmFn func(context.Context, string, string) (Confirmation, error)
}

func (s *confirmerStub) Confirm(ctx context.Context, candidate, source string) (Confirmation, error) {
	return s.confirmFn(ctx, candidate, source)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func workingEmbedder() *embedderStub {
	return &embedderStub{
		embedFn: func(context.Context, string) ([]float32, error) {
			return []float32{0.1, 0.2, 0.3}, nil
		},
	}
}

func matchesAt(sim float64) *searchStub {
	return &searchStub{
		searchFn: func(context.Context, []float32, float64, int) ([]Match, error) {
			return []Match{{ContentID: 42, Similarity: sim}}, nil
		},
	}
}

func sourceText(context.Context, uint) (string, error) {
	return "the published source document", nil
}

var longBody = strings.Repeat("A reasonably long paragraph of original writing. ", 5)

func TestCheckerTooShort(t *testing.T) {
	c := NewChecker(workingEmbedder(), matchesAt(0.99), nil, sourceText, discardLogger())
	v := c.Check(context.Background(), "", "short")
	if v.Details != "too short" {
		t.Fatalf("expected too-short verdict, got %#v", v)
	}
	if v.Plagiarized {
		t.Fatal("short content must not be marked plagiarized")
	}
}

func TestCheckerEmbedFailureFailsOpen(t *testing.T) {
	embedder := &embedderStub{
		embedFn: func(context.Context, string) ([]float32, error) {
			return nil, errors.New("embedding service down")
		},
	}
	c := NewChecker(embedder, matchesAt(0.99), nil, sourceText, discardLogger())
	v := c.Check(context.Background(), "Title", longBody)
	if v.Details != "unavailable" {
		t.Fatalf("expected unavailable verdict, got %#v", v)
	}
	if v.Plagiarized || v.Similarity != 0 {
		t.Fatalf("a failed check must report nothing, got %#v", v)
	}
}

func TestCheckerIndexFailureFailsOpen(t *testing.T) {
	index := &searchStub{
		searchFn: func(context.Context, []float32, float64, int) ([]Match, error) {
			return nil, errors.New("index query failed")
		},
	}
	c := NewChecker(workingEmbedder(), index, nil, sourceText, discardLogger())
	v := c.Check(context.Background(), "Title", longBody)
	if v.Details != "unavailable" {
		t.Fatalf("expected unavailable verdict, got %#v", v)
	}
	if len(v.Vector) == 0 {
		t.Fatal("the computed embedding should survive an index failure")
	}
}

func TestCheckerNoMatches(t *testing.T) {
	index := &searchStub{
		searchFn: func(context.Context, []float32, float64, int) ([]Match, error) {
			return nil, nil
		},
	}
	c := NewChecker(workingEmbedder(), index, nil, sourceText, discardLogger())
	v := c.Check(context.Background(), "Title", longBody)
	if v.Plagiarized || v.Similarity != 0 {
		t.Fatalf("expected clean verdict, got %#v", v)
	}
	if len(v.Vector) == 0 {
		t.Fatal("expected the embedding for later indexing")
	}
}

func TestCheckerBelowConfirmThreshold(t *testing.T) {
	c := NewChecker(workingEmbedder(), matchesAt(0.75), nil, sourceText, discardLogger())
	v := c.Check(context.Background(), "Title", longBody)
	if v.Plagiarized {
		t.Fatal("a match below the confirmation threshold must not be plagiarism")
	}
	if v.Similarity != 0.75 {
		t.Fatalf("expected similarity 0.75 reported, got %v", v.Similarity)
	}
	if len(v.MatchedSourceIDs) != 1 || v.MatchedSourceIDs[0] != 42 {
		t.Fatalf("expected match ids reported, got %v", v.MatchedSourceIDs)
	}
}

func TestCheckerConfirmedPlagiarism(t *testing.T) {
	confirmer := &confirmerStub{
		confirmFn: func(context.Context, string, string) (Confirmation, error) {
			return Confirmation{Plagiarized: true, Reason: "verbatim copy with cosmetic edits"}, nil
		},
	}
	c := NewChecker(workingEmbedder(), matchesAt(0.88), confirmer, sourceText, discardLogger())
	v := c.Check(context.Background(), "Title", longBody)
	if !v.Plagiarized {
		t.Fatalf("expected confirmed plagiarism, got %#v", v)
	}
	if v.Details != "verbatim copy with cosmetic edits" {
		t.Fatalf("expected confirmer reason carried through, got %q", v.Details)
	}
}

func TestCheckerConfirmerClearsSuspicion(t *testing.T) {
	confirmer := &confirmerStub{
		confirmFn: func(context.Context, string, string) (Confirmation, error) {
			return Confirmation{Plagiarized: false}, nil
		},
	}
	c := NewChecker(workingEmbedder(), matchesAt(0.93), confirmer, sourceText, discardLogger())
	v := c.Check(context.Background(), "Title", longBody)
	if v.Plagiarized {
		t.Fatal("the confirmer's clean verdict must override the similarity score")
	}
}

func TestCheckerConfirmUnavailableAutoThreshold(t *testing.T) {
	c := NewChecker(workingEmbedder(), matchesAt(0.93), nil, sourceText, discardLogger())
	v := c.Check(context.Background(), "Title", longBody)
	if !v.Plagiarized {
		t.Fatalf("a near-duplicate must be flagged even without confirmation, got %#v", v)
	}
}

func TestCheckerConfirmUnavailableBelowAutoThreshold(t *testing.T) {
	confirmer := &confirmerStub{
		confirmFn: func(context.Context, string, string) (Confirmation, error) {
			return Confirmation{}, errors.New("confirmation service down")
		},
	}
	c := NewChecker(workingEmbedder(), matchesAt(0.88), confirmer, sourceText, discardLogger())
	v := c.Check(context.Background(), "Title", longBody)
	if v.Plagiarized {
		t.Fatal("without confirmation, sub-threshold similarity must not be plagiarism")
	}
	if v.Similarity != 0.88 {
		t.Fatalf("expected similarity 0.88 reported, got %v", v.Similarity)
	}
}

func TestCheckerMinLengthCountsRunes(t *testing.T) {
	c := NewChecker(workingEmbedder(), matchesAt(0.99), nil, sourceText, discardLogger())

	// 60 two-byte runes: 120 bytes but well under the 100-rune minimum.
	v := c.Check(context.Background(), "", strings.Repeat("é", 60))
	if v.Details != "too short" {
		t.Fatalf("expected too-short verdict for 60 runes, got %#v", v)
	}

	v = c.Check(context.Background(), "", strings.Repeat("é", 120))
	if v.Details == "too short" {
		t.Fatal("120 runes must pass the minimum length check")
	}
}

func TestCheckerTruncatesOnRuneBoundary(t *testing.T) {
	var embedded string
	embedder := &embedderStub{
		embedFn: func(_ context.Context, text string) ([]float32, error) {
			embedded = text
			return []float32{0.1, 0.2, 0.3}, nil
		},
	}
	c := NewChecker(embedder, matchesAt(0), nil, sourceText, discardLogger())

	// Multibyte text past the embed cap; a byte-offset cut would split a rune.
	c.Check(context.Background(), "", strings.Repeat("日本語のテキスト", 400))
	if len(embedded) == 0 || len(embedded) > maxEmbedLen {
		t.Fatalf("expected truncation to at most %d bytes, got %d", maxEmbedLen, len(embedded))
	}
	if !utf8.ValidString(embedded) {
		t.Fatal("truncated text must remain valid UTF-8")
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 2}, 0},
	}
	for _, tt := range tests {
		got := Cosine(tt.a, tt.b)
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("%s: Cosine() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
