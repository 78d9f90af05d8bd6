package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func fakeCompletionServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model == "" || len(req.Messages) == 0 {
			t.Errorf("incomplete request: %+v", req)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestComplete(t *testing.T) {
	srv := fakeCompletionServer(t, "48462", http.StatusOK)
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	got, err := c.Complete(context.Background(), "test-model", "394 * 123")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got != "48462" {
		t.Fatalf("expected 48462, got %q", got)
	}
}

func TestComplete_ServerError(t *testing.T) {
	srv := fakeCompletionServer(t, "", http.StatusInternalServerError)
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := c.Complete(context.Background(), "test-model", "x"); err == nil {
		t.Fatal("expected error from failing server")
	}
}

func TestCaller_BindsModel(t *testing.T) {
	srv := fakeCompletionServer(t, "ok", http.StatusOK)
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	call := c.Caller("test-model")
	got, err := call(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got != "ok" {
		t.Fatalf("expected ok, got %q", got)
	}
}
