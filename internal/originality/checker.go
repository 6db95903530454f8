package originality

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/PluraGate/SyriaHub-sub004/internal/observability"
)

// Similarity thresholds of the originality check.
const (
	// SimilarityFloor is the minimum similarity for a match to be reported.
	SimilarityFloor = 0.70
	// ConfirmThreshold is the best-match similarity above which the
	// secondary confirmation call runs.
	ConfirmThreshold = 0.85
	// AutoPlagiarizeThreshold marks a match as plagiarized even when no
	// confirmation call is available.
	AutoPlagiarizeThreshold = 0.90
)

const (
	// MinCheckLen is the minimum combined text length, in runes, for a check
	// to run.
	MinCheckLen = 100
	maxEmbedLen = 8000
	topK        = 5
)

// Verdict is the outcome of one originality check. Vector carries the
// computed embedding so a caller publishing the content can index it without
// a second embedding call.
type Verdict struct {
	Similarity       float64   `json:"similarity"`
	MatchedSourceIDs []uint    `json:"matched_source_ids,omitempty"`
	Plagiarized      bool      `json:"plagiarized"`
	Details          string    `json:"details"`
	Vector           []float32 `json:"-"`
}

// SourceTextFn loads the full text of a published content item so the
// confirmation call can compare full documents.
type SourceTextFn func(ctx context.Context, contentID uint) (string, error)

// Checker runs the originality pipeline: embed, search, confirm.
type Checker struct {
	embedder  Embedder
	index     Index
	confirmer Confirmer
	sources   SourceTextFn
	logger    *slog.Logger
}

// NewChecker creates an originality checker. confirmer may be nil when no
// confirmation backend is configured.
func NewChecker(embedder Embedder, index Index, confirmer Confirmer, sources SourceTextFn, logger *slog.Logger) *Checker {
	return &Checker{
		embedder:  embedder,
		index:     index,
		confirmer: confirmer,
		sources:   sources,
		logger:    logger,
	}
}

// Check computes the originality verdict for the given content text. It never
// returns an error: any transport or service failure fails open to a
// not-plagiarized verdict with Details "unavailable".
func (c *Checker) Check(ctx context.Context, title, body string) Verdict {
	text := joinText(title, body)
	if utf8.RuneCountInString(text) < MinCheckLen {
		return Verdict{Details: "too short"}
	}
	text = truncateRunes(text, maxEmbedLen)

	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		c.logger.WarnContext(ctx, "originality embedding unavailable", "err", err)
		return Verdict{Details: "unavailable"}
	}

	matches, err := c.index.Search(ctx, vec, SimilarityFloor, topK)
	if err != nil {
		c.logger.WarnContext(ctx, "originality index unavailable", "err", err)
		return Verdict{Details: "unavailable", Vector: vec}
	}
	if len(matches) == 0 {
		return Verdict{Details: "no similar published content", Vector: vec}
	}

	best := matches[0]
	observability.OriginalitySimilarity.Observe(best.Similarity)

	verdict := Verdict{
		Similarity:       best.Similarity,
		MatchedSourceIDs: matchIDs(matches),
		Vector:           vec,
	}

	if best.Similarity <= ConfirmThreshold {
		verdict.Details = fmt.Sprintf("similar published content found (best %.2f), below confirmation threshold", best.Similarity)
		return verdict
	}

	if conf, ok := c.confirmBest(ctx, text, best); ok {
		verdict.Plagiarized = conf.Plagiarized
		if conf.Reason != "" {
			verdict.Details = conf.Reason
		} else if conf.Plagiarized {
			verdict.Details = fmt.Sprintf("confirmed duplicate of content %d (%.2f similarity)", best.ContentID, best.Similarity)
		} else {
			verdict.Details = fmt.Sprintf("high similarity to content %d (%.2f) not confirmed as plagiarism", best.ContentID, best.Similarity)
		}
		return verdict
	}

	// Confirmation unavailable: only the highest-confidence matches are
	// treated as plagiarized.
	if best.Similarity >= AutoPlagiarizeThreshold {
		verdict.Plagiarized = true
		verdict.Details = fmt.Sprintf("near-duplicate of content %d (%.2f similarity), confirmation unavailable", best.ContentID, best.Similarity)
	} else {
		verdict.Details = fmt.Sprintf("high similarity to content %d (%.2f), confirmation unavailable", best.ContentID, best.Similarity)
	}
	return verdict
}

func (c *Checker) confirmBest(ctx context.Context, text string, best Match) (Confirmation, bool) {
	if c.confirmer == nil || c.sources == nil {
		return Confirmation{}, false
	}
	srcText, err := c.sources(ctx, best.ContentID)
	if err != nil {
		c.logger.WarnContext(ctx, "originality source text load failed", "content_id", best.ContentID, "err", err)
		return Confirmation{}, false
	}
	conf, err := c.confirmer.Confirm(ctx, text, srcText)
	if err != nil {
		c.logger.WarnContext(ctx, "originality confirmation unavailable", "err", err)
		return Confirmation{}, false
	}
	return conf, true
}

func joinText(title, body string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return strings.TrimSpace(body)
	}
	return title + "\n\n" + strings.TrimSpace(body)
}

// truncateRunes caps s at max bytes without splitting a UTF-8 sequence.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func matchIDs(matches []Match) []uint {
	ids := make([]uint, len(matches))
	for i, m := range matches {
		ids[i] = m.ContentID
	}
	return ids
}
