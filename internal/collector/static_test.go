package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStaticCollector_SelectorWalk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<div class="startup-card"><h3>Acme</h3></div>
			<div class="startup-card"><h3>Beta</h3></div>
		</body></html>`))
	}))
	defer server.Close()

	c := NewStaticCollector("harvest-test/1.0")
	fragments, err := c.Collect(context.Background(), server.URL, []string{"section.cards", "div.startup-card"})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(fragments) != 2 || !strings.Contains(fragments[0], "Acme") {
		t.Fatalf("fragments = %v", fragments)
	}
}

func TestStaticCollector_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	c := NewStaticCollector("harvest-test/1.0")
	if _, err := c.Collect(context.Background(), server.URL, []string{"div"}); err == nil {
		t.Fatal("non-2xx status must surface as an error")
	}
}

func TestStaticCollector_MinesInlineScripts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<script src="https://cdn.example/app.js"></script>
			<script>
				var __LISTING__ = [
					{name: "Acme", tagline: "Rockets"},
					{name: "Beta", tagline: "Software"}
				];
			</script>
		</body></html>`))
	}))
	defer server.Close()

	c := NewStaticCollector("harvest-test/1.0")
	mined, err := c.Collect(context.Background(), server.URL, []string{"div.startup-card"})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(mined) != 1 {
		t.Fatalf("mined = %v, want one JSON payload", mined)
	}
	if !strings.Contains(mined[0], "Acme") || !strings.Contains(mined[0], "Beta") {
		t.Errorf("payload = %q", mined[0])
	}
}

func TestStaticCollector_UserAgentSent(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		w.Write([]byte(`<html><body><div class="x">y</div></body></html>`))
	}))
	defer server.Close()

	c := NewStaticCollector("harvest/2.1")
	if _, err := c.Collect(context.Background(), server.URL, []string{"div.x"}); err != nil {
		t.Fatalf("collect: %v", err)
	}
	if got != "harvest/2.1" {
		t.Errorf("user agent = %q", got)
	}
}

func TestLooksLikeListing(t *testing.T) {
	if looksLikeListing([]interface{}{map[string]interface{}{"name": "Acme"}}) != true {
		t.Error("array of named objects must qualify")
	}
	if looksLikeListing([]interface{}{map[string]interface{}{"id": 1.0}}) {
		t.Error("objects without a name-like key must not qualify")
	}
	if looksLikeListing("just a string") {
		t.Error("scalars must not qualify")
	}
}
