package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionServer(t *testing.T, handler func(w http.ResponseWriter, req map[string]any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		handler(w, req)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newComposer(url string) *Composer {
	return NewComposer(Config{BaseURL: url + "/v1", APIKey: "sk-test", Model: "gpt-4", Temperature: 0.7})
}

func TestPrompt(t *testing.T) {
	assert.Equal(t,
		"Based on the query 'Heist Movies', the recommended movies are Heat, Ronin. Can you suggest two more movies that are similar to this query?",
		Prompt("Heist Movies", []string{"Heat", "Ronin"}))
}

func TestRecommend(t *testing.T) {
	srv := completionServer(t, func(w http.ResponseWriter, req map[string]any) {
		assert.Equal(t, "gpt-4", req["model"])
		assert.InDelta(t, 0.7, req["temperature"], 1e-6)
		msgs, _ := req["messages"].([]any)
		if assert.Len(t, msgs, 2) {
			assert.Equal(t, systemMessage, msgs[0].(map[string]any)["content"])
			assert.Contains(t, msgs[1].(map[string]any)["content"], "'Heist Movies'")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": "Try Thief and Inside Man."}}},
		})
	})

	text, err := newComposer(srv.URL).Recommend(context.Background(), "Heist Movies", []string{"Heat", "Ronin"})
	require.NoError(t, err)
	assert.Equal(t, "Try Thief and Inside Man.", text)
}

func TestRecommend_StatusError(t *testing.T) {
	srv := completionServer(t, func(w http.ResponseWriter, _ map[string]any) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	})

	_, err := newComposer(srv.URL).Recommend(context.Background(), "q", []string{"A"})
	var ce *CompletionError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, http.StatusUnauthorized, ce.StatusCode)
	assert.Contains(t, ce.Error(), "GPT API Error: 401, ")
	assert.Contains(t, ce.Body, "Incorrect API key")
}

func TestRecommend_NoChoices(t *testing.T) {
	srv := completionServer(t, func(w http.ResponseWriter, _ map[string]any) {
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	})
	_, err := newComposer(srv.URL).Recommend(context.Background(), "q", nil)
	require.Error(t, err)
}

func TestRecommend_NonJSONErrorKeepsBody(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"plain text", http.StatusBadGateway, "upstream connect error\n", "GPT API Error: 502, upstream connect error"},
		{"json without error key", http.StatusServiceUnavailable, `{"detail":"overloaded"}`, `GPT API Error: 503, {"detail":"overloaded"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := completionServer(t, func(w http.ResponseWriter, _ map[string]any) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := newComposer(srv.URL).Recommend(context.Background(), "q", []string{"A"})
			var ce *CompletionError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.Equal(t, tc.status, ce.StatusCode)
			assert.Equal(t, tc.want, ce.Error())
		})
	}
}

func TestRecommend_LongErrorBodyIsCapped(t *testing.T) {
	srv := completionServer(t, func(w http.ResponseWriter, _ map[string]any) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", 5000)))
	})
	_, err := newComposer(srv.URL).Recommend(context.Background(), "q", nil)
	var ce *CompletionError
	require.True(t, errors.As(err, &ce))
	assert.Len(t, ce.Body, maxErrorBody)
}

func TestRecommend_ZeroTemperatureIsSent(t *testing.T) {
	srv := completionServer(t, func(w http.ResponseWriter, req map[string]any) {
		temp, ok := req["temperature"]
		assert.True(t, ok, "temperature must not be omitted")
		assert.InDelta(t, 0, temp, 1e-6)
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"ok"}}]}`))
	})
	c := NewComposer(Config{BaseURL: srv.URL + "/v1", APIKey: "sk-test", Temperature: 0})
	text, err := c.Recommend(context.Background(), "q", []string{"A"})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}
