package handler

import (
	"net/http/httptest"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"Go Concurrency Patterns", "go-concurrency-patterns"},
		{"  Spaces  Everywhere  ", "spaces-everywhere"},
		{"Punctuation, and: symbols!", "punctuation-and-symbols"},
		{"Already-Slugged", "already-slugged"},
		{"CAPS AND 123 numbers", "caps-and-123-numbers"},
		{"---", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClampInt(t *testing.T) {
	tests := []struct {
		val, min, max, want int
	}{
		{5, 1, 10, 5},
		{0, 1, 10, 1},
		{11, 1, 10, 10},
		{1, 1, 10, 1},
		{10, 1, 10, 10},
	}

	for _, tt := range tests {
		if got := clampInt(tt.val, tt.min, tt.max); got != tt.want {
			t.Errorf("clampInt(%d, %d, %d) = %d, want %d", tt.val, tt.min, tt.max, got, tt.want)
		}
	}
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest("GET", "/articles?page=3&limit=abc", nil)

	if got := queryInt(req, "page", 1); got != 3 {
		t.Errorf("page = %d, want 3", got)
	}
	if got := queryInt(req, "limit", 12); got != 12 {
		t.Errorf("unparsable limit = %d, want the default 12", got)
	}
	if got := queryInt(req, "missing", 7); got != 7 {
		t.Errorf("missing param = %d, want the default 7", got)
	}
}

func TestPathID(t *testing.T) {
	if id, err := pathID("42"); err != nil || id != 42 {
		t.Errorf("pathID(42) = %d, %v", id, err)
	}
	if _, err := pathID("abc"); err == nil {
		t.Error("expected error for non-numeric id")
	}
	if _, err := pathID(""); err == nil {
		t.Error("expected error for empty id")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "203.0.113.5:54321"
	if got := clientIP(req); got != "203.0.113.5" {
		t.Errorf("clientIP = %q, want 203.0.113.5", got)
	}

	// RealIP middleware rewrites RemoteAddr without a port.
	req.RemoteAddr = "203.0.113.5"
	if got := clientIP(req); got != "203.0.113.5" {
		t.Errorf("clientIP without port = %q, want 203.0.113.5", got)
	}
}
