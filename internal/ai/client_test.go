package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatServer fakes an OpenAI-compatible completions endpoint.
func chatServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func completionBody(content string) string {
	return fmt.Sprintf(`{"choices":[{"message":{"role":"assistant","content":%q}}]}`, content)
}

func testClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: 2 * time.Second,
	}, nil)
}

func TestClient_Complete(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		fmt.Fprint(w, completionBody("hello"))
	})

	content, err := testClient(srv.URL).Complete(context.Background(), "sys", "user", 0.5, 100)
	require.NoError(t, err)
	assert.Equal(t, "hello", content)
}

func TestClient_Disabled(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://localhost:0"}, nil)
	assert.False(t, c.Enabled())

	_, err := c.Complete(context.Background(), "sys", "user", 0, 0)
	assert.Error(t, err)
}

func TestClient_NonOKStatus(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := testClient(srv.URL).Complete(context.Background(), "sys", "user", 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestClient_EmptyChoices(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	})

	_, err := testClient(srv.URL).Complete(context.Background(), "sys", "user", 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	c := testClient(srv.URL)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := c.Complete(ctx, "sys", "user", 0, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 500")
	}

	// Breaker is open now: the request never reaches the server.
	_, err := c.Complete(ctx, "sys", "user", 0, 0)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "status 500")
}
