// Package ai integrates with an OpenAI-compatible completion endpoint for
// writing assistance features.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"mikromatter/internal/models"
)

// ProofreadSuggestion is a single correction offered by the assistant.
type ProofreadSuggestion struct {
	Original   string `json:"original"`
	Suggestion string `json:"suggestion"`
	Reason     string `json:"reason"`
}

// ProofreadResult is the assistant's full response for a proofread request.
type ProofreadResult struct {
	CorrectedText string                `json:"corrected_text"`
	Suggestions   []ProofreadSuggestion `json:"suggestions"`
}

// Client generates post ideas and proofreads drafts.
type Client interface {
	GenerateIdeas(ctx context.Context, topic string) ([]string, error)
	Proofread(ctx context.Context, text string) (*ProofreadResult, error)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type httpClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewClient returns a Client backed by an OpenAI-compatible HTTP API.
// Returns nil when baseURL or apiKey is empty, which disables the feature.
func NewClient(baseURL, apiKey, model string) Client {
	if baseURL == "" || apiKey == "" {
		return nil
	}
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *httpClient) complete(ctx context.Context, system, user string, jsonMode bool) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	if jsonMode {
		reqBody.ResponseFormat = &struct {
			Type string `json:"type"`
		}{Type: "json_object"}
	}

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assistant API returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("assistant API returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// GenerateIdeas asks the assistant for short post ideas. The topic is
// optional; without one the assistant picks a spread of subjects itself.
func (c *httpClient) GenerateIdeas(ctx context.Context, topic string) ([]string, error) {
	prompt := "Suggest diverse post ideas spanning technology, productivity, life lessons and open questions."
	if t := strings.TrimSpace(topic); t != "" {
		prompt = "Topic: " + t
	}

	content, err := c.complete(ctx,
		`You help micro-bloggers brainstorm. Respond with a JSON object of the form {"ideas": ["...", "..."]} containing exactly 5 short post ideas, each under 40 words.`,
		prompt, true)
	if err != nil {
		return nil, err
	}

	var out struct {
		Ideas []string `json:"ideas"`
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("parsing ideas response: %w", err)
	}
	return out.Ideas, nil
}

// Proofread returns a corrected version of the text with per-change notes.
func (c *httpClient) Proofread(ctx context.Context, text string) (*ProofreadResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, models.NewValidationError("Text is required")
	}

	content, err := c.complete(ctx,
		`You proofread short social posts. Respond with a JSON object of the form {"corrected_text": "...", "suggestions": [{"original": "...", "suggestion": "...", "reason": "..."}]}. Keep the author's voice; fix only grammar, spelling and clarity.`,
		text, true)
	if err != nil {
		return nil, err
	}

	var result ProofreadResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("parsing proofread response: %w", err)
	}
	return &result, nil
}
