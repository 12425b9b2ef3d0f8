package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newAssistantServer fakes a chat completions endpoint returning content and
// records the user message of each request.
func newAssistantServer(t *testing.T, content string, lastPrompt *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		*lastPrompt = req.Messages[1].Content

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"choices":[{"message":{"role":"assistant","content":%q}}]}`, content)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClient_DisabledWithoutConfig(t *testing.T) {
	assert.Nil(t, NewClient("", "key", "model"))
	assert.Nil(t, NewClient("http://localhost", "", "model"))
}

func TestGenerateIdeas_WithTopic(t *testing.T) {
	var prompt string
	srv := newAssistantServer(t, `{"ideas":["one","two"]}`, &prompt)

	client := NewClient(srv.URL, "test-key", "test-model")
	ideas, err := client.GenerateIdeas(context.Background(), "slow reading")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, ideas)
	assert.Equal(t, "Topic: slow reading", prompt)
}

func TestGenerateIdeas_TopicOptional(t *testing.T) {
	var prompt string
	srv := newAssistantServer(t, `{"ideas":["one","two","three"]}`, &prompt)

	client := NewClient(srv.URL, "test-key", "test-model")
	ideas, err := client.GenerateIdeas(context.Background(), "   ")
	require.NoError(t, err)
	assert.Len(t, ideas, 3)
	assert.Contains(t, prompt, "diverse post ideas")
}

func TestProofread(t *testing.T) {
	var prompt string
	srv := newAssistantServer(t,
		`{"corrected_text":"Their book was great.","suggestions":[{"original":"There","suggestion":"Their","reason":"possessive"}]}`,
		&prompt)

	client := NewClient(srv.URL, "test-key", "test-model")
	result, err := client.Proofread(context.Background(), "There book was great.")
	require.NoError(t, err)
	assert.Equal(t, "Their book was great.", result.CorrectedText)
	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, "Their", result.Suggestions[0].Suggestion)
	assert.Equal(t, "There book was great.", prompt)
}

func TestProofread_RequiresText(t *testing.T) {
	var prompt string
	srv := newAssistantServer(t, `{}`, &prompt)

	client := NewClient(srv.URL, "test-key", "test-model")
	_, err := client.Proofread(context.Background(), "  ")
	assert.Error(t, err)
}
