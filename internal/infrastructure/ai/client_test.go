package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Suggest(t *testing.T) {
	var gotReq struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float64 `json:"temperature"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "- Call the lead today\n- Mention the open house"}},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
	})

	answer, err := client.Suggest(context.Background(), "How should I follow up?", "Name: Jamie\nStage: Lead")
	require.NoError(t, err)

	assert.Equal(t, "- Call the lead today\n- Mention the open house", answer)
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	assert.Equal(t, 128, gotReq.MaxTokens)
	assert.InDelta(t, 0.6, gotReq.Temperature, 0.01)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Contains(t, gotReq.Messages[1].Content, "Lead context:")
	assert.Contains(t, gotReq.Messages[1].Content, "How should I follow up?")
}

func TestClient_Suggest_EmptyChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})

	_, err := client.Suggest(context.Background(), "Question?", "")
	assert.ErrorIs(t, err, ErrNoCompletion)
}

func TestClient_Suggest_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})

	_, err := client.Suggest(context.Background(), "Question?", "")
	assert.Error(t, err)
}
