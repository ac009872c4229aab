package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func chatServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Model:      "test-model",
		Timeout:    5 * time.Second,
		MaxRetries: 2,
	})
	if client == nil {
		t.Fatal("expected a client")
	}
	return server, client
}

func TestNewClient_NoKeyDisables(t *testing.T) {
	if client := NewClient(Config{}); client != nil {
		t.Error("client without API key must be nil")
	}
}

func TestChat_SendsBearerAndModel(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest
	_, client := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "  hello  "}},
			},
		})
	})

	content, err := client.Chat(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if content != "hello" {
		t.Errorf("content = %q, want trimmed reply", content)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotBody.Model != "test-model" || len(gotBody.Messages) != 2 {
		t.Errorf("request = %+v", gotBody)
	}
}

func TestChat_RetriesOnServerError(t *testing.T) {
	attempts := 0
	_, client := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "recovered"}},
			},
		})
	})
	client.retry.InitialBackoff = time.Millisecond

	content, err := client.Chat(context.Background(), "s", "u")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if content != "recovered" || attempts != 2 {
		t.Errorf("content = %q after %d attempts", content, attempts)
	}
}

func TestChat_EmptyChoicesIsError(t *testing.T) {
	_, client := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})
	client.retry.MaxAttempts = 1

	if _, err := client.Chat(context.Background(), "s", "u"); err == nil {
		t.Fatal("empty choices must be an error")
	}
}

func TestExtract_PromptCarriesGoalAndMarkdown(t *testing.T) {
	var gotBody chatRequest
	_, client := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "{}"}},
			},
		})
	})

	if _, err := client.Extract(context.Background(), "list the startups", "# Page"); err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(gotBody.Messages[1].Content, "list the startups") {
		t.Errorf("user message = %q", gotBody.Messages[1].Content)
	}
	if !strings.Contains(gotBody.Messages[0].Content, "valid JSON") {
		t.Errorf("system message = %q", gotBody.Messages[0].Content)
	}
}

func TestPageMarkdown_StripsChromeAndResolvesLinks(t *testing.T) {
	html := `<html><body>
		<script>var x = 1;</script>
		<style>.a {}</style>
		<h1>Listing</h1>
		<a href="/startups/acme">Acme</a>
	</body></html>`

	markdown, err := PageMarkdown(html, "https://betalist.com/")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if strings.Contains(markdown, "var x") {
		t.Error("script content must be stripped")
	}
	if !strings.Contains(markdown, "https://betalist.com/startups/acme") {
		t.Errorf("relative link not resolved:\n%s", markdown)
	}
}

func TestTruncateToRune_NeverSplitsMultibyte(t *testing.T) {
	s := strings.Repeat("é", 10) // 2 bytes each

	for limit := 0; limit <= len(s)+1; limit++ {
		out := truncateToRune(s, limit)
		if len(out) > limit {
			t.Fatalf("limit %d: output %d bytes", limit, len(out))
		}
		if !utf8.ValidString(out) {
			t.Fatalf("limit %d: output is not valid UTF-8: %q", limit, out)
		}
	}
	if got := truncateToRune("abc", 10); got != "abc" {
		t.Errorf("short input must pass through, got %q", got)
	}
}
