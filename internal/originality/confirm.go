package originality

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Confirmation is the verdict of the secondary plagiarism check.
type Confirmation struct {
	Plagiarized bool   `json:"plagiarized"`
	Reason      string `json:"reason"`
}

// Confirmer compares two full texts and decides whether the candidate
// plagiarizes the source.
type Confirmer interface {
	Confirm(ctx context.Context, candidate, source string) (Confirmation, error)
}

// HTTPConfirmer asks a chat-completions endpoint for a structured verdict.
type HTTPConfirmer struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewHTTPConfirmer creates a confirmation client. An empty baseURL produces a
// client whose Confirm always fails, which callers treat as "unavailable".
func NewHTTPConfirmer(baseURL, apiKey, model string, timeout time.Duration) *HTTPConfirmer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPConfirmer{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

const confirmSystemPrompt = `You compare two documents and decide whether the candidate plagiarizes the source.
Judge substance, not topic overlap: shared subject matter alone is not plagiarism.
Return only JSON of the form {"plagiarized": boolean, "reason": string}.`

type chatRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Confirm runs the secondary comparison call.
func (c *HTTPConfirmer) Confirm(ctx context.Context, candidate, source string) (Confirmation, error) {
	if c.baseURL == "" {
		return Confirmation{}, fmt.Errorf("no confirmation backend configured")
	}

	userMessage := fmt.Sprintf("## Candidate\n%s\n\n## Source\n%s", candidate, source)
	reqBody := chatRequest{
		Model:     c.model,
		MaxTokens: 512,
		Messages: []chatMessage{
			{Role: "system", Content: confirmSystemPrompt},
			{Role: "user", Content: userMessage},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return Confirmation{}, err
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return Confirmation{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Confirmation{}, fmt.Errorf("confirmation request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Confirmation{}, fmt.Errorf("confirmation response read failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Confirmation{}, fmt.Errorf("confirmation service error (%d)", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Confirmation{}, fmt.Errorf("confirmation response parse failed: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return Confirmation{}, fmt.Errorf("confirmation response contained no verdict")
	}

	var verdict Confirmation
	jsonStr := extractJSON(strings.TrimSpace(parsed.Choices[0].Message.Content))
	if err := json.Unmarshal([]byte(jsonStr), &verdict); err != nil {
		return Confirmation{}, fmt.Errorf("confirmation verdict parse failed: %w", err)
	}
	return verdict, nil
}

// extractJSON pulls the JSON payload out of a fenced code block if present.
func extractJSON(rawText string) string {
	if idx := strings.Index(rawText, "```"); idx >= 0 {
		start := strings.Index(rawText[idx:], "\n")
		if start >= 0 {
			end := strings.Index(rawText[idx+start+1:], "```")
			if end >= 0 {
				return strings.TrimSpace(rawText[idx+start+1 : idx+start+1+end])
			}
		}
	}
	return rawText
}
