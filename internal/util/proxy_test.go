package util

import (
	"net/http"
	"testing"
)

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://plain:3128", "http://secure:3128", "localhost, .internal")

	tests := []struct {
		url  string
		want string
	}{
		{"https://api.openai.com/v1/chat/completions", "http://secure:3128"},
		{"http://ollama.lan:11434/api/generate", "http://plain:3128"},
		{"http://localhost:11434/api/generate", ""},
		{"https://llm.internal/v1", ""},
	}

	for _, tt := range tests {
		req, _ := http.NewRequest(http.MethodGet, tt.url, nil)
		got, err := proxy(req)
		if err != nil {
			t.Fatalf("proxy(%s) failed: %v", tt.url, err)
		}
		gotStr := ""
		if got != nil {
			gotStr = got.String()
		}
		if gotStr != tt.want {
			t.Errorf("proxy(%s) = %q, want %q", tt.url, gotStr, tt.want)
		}
	}
}

func TestNewProxyFunc_HTTPSFallsBackToHTTPProxy(t *testing.T) {
	proxy := NewProxyFunc("http://plain:3128", "", "")
	req, _ := http.NewRequest(http.MethodGet, "https://api.anthropic.com/v1/messages", nil)

	got, err := proxy(req)
	if err != nil || got == nil || got.String() != "http://plain:3128" {
		t.Errorf("expected http proxy for https request, got %v (err %v)", got, err)
	}
}
