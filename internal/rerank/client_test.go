package rerank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRerank(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/services/rerank/rerank", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gte-rerank", req.Model)
		assert.Equal(t, "capital of France", req.Query)
		assert.Len(t, req.Documents, 2)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"output": map[string]interface{}{
				"results": []map[string]interface{}{
					{"index": 1, "relevance_score": 0.92},
					{"index": 0, "relevance_score": 0.13},
				},
			},
			"request_id": "req-1",
		})
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, "", 5*time.Second)
	resp, err := client.CreateRerank(context.Background(), "capital of France",
		[]string{"about Germany", "about France"})
	require.NoError(t, err)
	require.Len(t, resp.Output.Results, 2)
	assert.Equal(t, 1, resp.Output.Results[0].Index)
	assert.Equal(t, 0.92, resp.Output.Results[0].RelevanceScore)
}

func TestCreateRerankAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(Error{Code: "Throttling", Message: "rate limited", RequestID: "req-2"})
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, "", 5*time.Second)
	_, err := client.CreateRerank(context.Background(), "q", []string{"doc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestCreateRerankValidation(t *testing.T) {
	client := NewClient("test-key", "http://localhost:1", "", time.Second)

	_, err := client.CreateRerank(context.Background(), "", []string{"doc"})
	assert.Error(t, err)

	_, err = client.CreateRerank(context.Background(), "q", nil)
	assert.Error(t, err)
}

func TestClientReady(t *testing.T) {
	assert.False(t, NewClient("", "", "", 0).Ready())
	assert.True(t, NewClient("key", "", "", 0).Ready())
}
