package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dorm2mcp/internal/model"
)

func TestChat_PostsNonStreamingMessageList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["model"] != "llama3.1" {
			t.Fatalf("unexpected model: %#v", req["model"])
		}
		if stream, ok := req["stream"].(bool); !ok || stream {
			t.Fatalf("expected stream:false, got %#v", req["stream"])
		}
		msgs, _ := req["messages"].([]any)
		if len(msgs) != 2 {
			t.Fatalf("expected 2 messages, got %#v", msgs)
		}

		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"Room 201 has two beds free."}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "llama3.1", "nomic-embed-text")
	reply, err := c.Chat(context.Background(), []model.ChatMessage{
		{Role: "system", Content: "You are a helpful assistant."},
		{Role: "user", Content: "Is room 201 free?"},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if reply != "Room 201 has two beds free." {
		t.Fatalf("unexpected reply: %q", reply)
	}
}

func TestChat_EmptyReplyBecomesPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":""}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "llama3.1", "nomic-embed-text")
	reply, err := c.Chat(context.Background(), []model.ChatMessage{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if reply != "I couldn't generate a response." {
		t.Fatalf("unexpected reply: %q", reply)
	}
}

func TestChat_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "llama3.1", "nomic-embed-text")
	_, err := c.Chat(context.Background(), []model.ChatMessage{{Role: "user", Content: "hi"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "http 404") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestChat_MalformedJSONIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "llama3.1", "nomic-embed-text")
	if _, err := c.Chat(context.Background(), []model.ChatMessage{{Role: "user", Content: "hi"}}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestEmbed_ReturnsVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["model"] != "nomic-embed-text" {
			t.Fatalf("unexpected model: %#v", req["model"])
		}
		if req["prompt"] != "Room 101" {
			t.Fatalf("unexpected prompt: %#v", req["prompt"])
		}
		_, _ = w.Write([]byte(`{"embedding":[0.5,0.25,-1]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "llama3.1", "nomic-embed-text")
	vec, err := c.Embed(context.Background(), "Room 101")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.5 || vec[2] != -1 {
		t.Fatalf("unexpected vector: %v", vec)
	}
}

func TestEmbed_EmptyVectorIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embedding":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "llama3.1", "nomic-embed-text")
	if _, err := c.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error for empty embedding")
	}
}
