// Package classify calls external text-classification services to score
// content for policy violations. The gateway is deliberately tolerant: a
// missing backend, missing credentials, or an unreachable service yields an
// Unavailable result, never an error, so the moderation pipeline's fail-open
// branch is a single testable case.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PluraGate/SyriaHub-sub004/internal/observability"
)

// Result is the tagged outcome of a classification attempt. Either the
// service answered (Available true, verdict populated) or it did not
// (Available false, Reason explains why). "Unavailable" is never "flagged".
type Result struct {
	Available  bool               `json:"available"`
	Flagged    bool               `json:"flagged"`
	Categories map[string]bool    `json:"categories,omitempty"`
	Scores     map[string]float64 `json:"scores,omitempty"`
	Reason     string             `json:"reason,omitempty"`
}

// Available constructs a Result carrying a service verdict.
func Available(flagged bool, categories map[string]bool, scores map[string]float64) Result {
	return Result{Available: true, Flagged: flagged, Categories: categories, Scores: scores}
}

// Unavailable constructs a Result for a service that could not answer.
func Unavailable(reason string) Result {
	return Result{Available: false, Reason: reason}
}

// Classifier scores raw text for policy violations.
type Classifier interface {
	Classify(ctx context.Context, text string) Result
}

// Gateway calls a primary and optionally a secondary moderation endpoint in
// the OpenAI moderations wire format.
type Gateway struct {
	primaryURL   string
	secondaryURL string
	apiKey       string
	httpClient   *http.Client
}

// NewGateway creates a classification gateway. Empty primaryURL or apiKey
// means no configured backend; every Classify call then reports Unavailable.
func NewGateway(primaryURL, secondaryURL, apiKey string, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Gateway{
		primaryURL:   primaryURL,
		secondaryURL: secondaryURL,
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// Classify scores the text against the primary service, falling back to the
// secondary when the primary cannot answer.
func (g *Gateway) Classify(ctx context.Context, text string) Result {
	if g.primaryURL == "" {
		return Unavailable("no classification backend configured")
	}
	if g.apiKey == "" {
		return Unavailable("classification credentials missing")
	}

	res, err := g.call(ctx, g.primaryURL, "primary", text)
	if err == nil {
		return res
	}

	if g.secondaryURL != "" {
		fallback, fbErr := g.call(ctx, g.secondaryURL, "secondary", text)
		if fbErr == nil {
			return fallback
		}
		return Unavailable(fmt.Sprintf("primary: %v; secondary: %v", err, fbErr))
	}
	return Unavailable(err.Error())
}

type moderationRequest struct {
	Input string `json:"input"`
}

type moderationResponse struct {
	Results []struct {
		Flagged        bool               `json:"flagged"`
		Categories     map[string]bool    `json:"categories"`
		CategoryScores map[string]float64 `json:"category_scores"`
	} `json:"results"`
}

func (g *Gateway) call(ctx context.Context, baseURL, backend, text string) (Result, error) {
	start := time.Now()
	res, err := g.doCall(ctx, baseURL, text)
	observability.ClassifierLatency.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		observability.ClassifierCalls.WithLabelValues(backend, "unavailable").Inc()
	case res.Flagged:
		observability.ClassifierCalls.WithLabelValues(backend, "flagged").Inc()
	default:
		observability.ClassifierCalls.WithLabelValues(backend, "ok").Inc()
	}
	return res, err
}

func (g *Gateway) doCall(ctx context.Context, baseURL, text string) (Result, error) {
	bodyBytes, err := json.Marshal(moderationRequest{Input: text})
	if err != nil {
		return Result{}, err
	}

	url := baseURL + "/v1/moderations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("classification request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("classification response read failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("classification service error (%d): %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var parsed moderationResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Result{}, fmt.Errorf("classification response parse failed: %w", err)
	}
	if len(parsed.Results) == 0 {
		return Result{}, fmt.Errorf("classification response contained no results")
	}

	r := parsed.Results[0]
	return Available(r.Flagged, r.Categories, r.CategoryScores), nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
