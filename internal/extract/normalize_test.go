package extract

import "testing"

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		href string
		want string
	}{
		{"absolute passthrough", "https://betalist.com/", "https://example.com/x", "https://example.com/x"},
		{"root relative against origin", "https://betalist.com/topics/ai", "/startups/simcardo", "https://betalist.com/startups/simcardo"},
		{"relative join", "https://example.com/listing/", "page2", "https://example.com/listing/page2"},
		{"empty href", "https://example.com/", "", ""},
		{"hostless base", "not a url", "/x", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveURL(tt.base, tt.href); got != tt.want {
				t.Errorf("ResolveURL(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
			}
		})
	}
}

func TestHostAllowed(t *testing.T) {
	if !HostAllowed("https://www.producthunt.com/products/x", "producthunt.com") {
		t.Error("subdomain of the allowed host must pass")
	}
	if HostAllowed("https://producthunt.com.evil.example/", "producthunt.com") {
		t.Error("suffix spoofing must be rejected")
	}
	if !HostAllowed("https://anything.example/", "") {
		t.Error("empty allow-list must allow everything")
	}
}

func TestFirstInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"1,234 upvotes", 1234, true},
		{"12 345 users", 12345, true},
		{"ranked #7 today", 7, true},
		{"no digits here", 0, false},
	}
	for _, tt := range tests {
		got, ok := FirstInt(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("FirstInt(%q) = %d,%v want %d,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFirstFloat(t *testing.T) {
	if got, ok := FirstFloat("4.8 out of 5 stars"); !ok || got != 4.8 {
		t.Errorf("FirstFloat = %v,%v", got, ok)
	}
	if got, ok := FirstFloat("5 stars"); !ok || got != 5 {
		t.Errorf("FirstFloat on bare integer = %v,%v", got, ok)
	}
	if _, ok := FirstFloat("unrated"); ok {
		t.Error("expected no float")
	}
}

func TestNormalizeLinkedIn(t *testing.T) {
	if got := NormalizeLinkedIn("https://www.linkedin.com/company/acme"); got == "" {
		t.Error("valid LinkedIn URL dropped")
	}
	if got := NormalizeLinkedIn("https://twitter.com/acme"); got != "" {
		t.Errorf("non-LinkedIn host must be dropped, got %q", got)
	}
	if got := NormalizeLinkedIn("linkedin.com/company/acme"); got != "" {
		t.Errorf("scheme-less value must be dropped, got %q", got)
	}
}

func TestSalvageURL(t *testing.T) {
	if got := SalvageURL("details at www.acme.io soon"); got != "https://www.acme.io" {
		t.Errorf("SalvageURL = %q", got)
	}
	if got := SalvageURL("nothing here"); got != "" {
		t.Errorf("SalvageURL = %q, want empty", got)
	}
}
