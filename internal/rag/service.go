package rag

import (
	"context"
	"fmt"
	"log"
	"strings"

	"dorm2mcp/internal/model"
)

const systemPrompt = "You are a helpful assistant for a dormitory management system. Answer questions based on the provided context."

// Service runs retrieval-augmented chat turns over a snapshot. It keeps
// a bounded conversation history: once the history holds maxHistory
// user/assistant pairs, the oldest pair is dropped before a new turn.
type Service struct {
	snapshot   *Snapshot
	embedder   model.Embedder
	generator  model.Generator
	topK       int
	maxHistory int
	history    []model.ChatMessage
	logger     *log.Logger
}

func NewService(snapshot *Snapshot, embedder model.Embedder, generator model.Generator, topK, maxHistory int, logger *log.Logger) *Service {
	if topK <= 0 {
		topK = 5
	}
	if maxHistory <= 0 {
		maxHistory = 10
	}
	return &Service{
		snapshot:   snapshot,
		embedder:   embedder,
		generator:  generator,
		topK:       topK,
		maxHistory: maxHistory,
		logger:     logger,
	}
}

// Retrieve returns the context chunks for a query.
func (s *Service) Retrieve(ctx context.Context, query string) []string {
	return s.snapshot.Query(ctx, s.embedder, query, s.topK)
}

// ChatTurn retrieves context for the input, sends the conversation to
// the generator, and returns the reply. A transport failure comes back
// as inline text rather than an error; the failed turn's user message
// stays in the history, the missing assistant reply does not.
func (s *Service) ChatTurn(ctx context.Context, input string) string {
	system := systemPrompt
	if chunks := s.Retrieve(ctx, input); len(chunks) > 0 {
		system += "\n\nContext information:\n" + strings.Join(chunks, "\n")
	}

	if len(s.history) >= s.maxHistory*2 {
		s.history = s.history[2:]
	}
	s.history = append(s.history, model.ChatMessage{Role: "user", Content: input})

	messages := make([]model.ChatMessage, 0, len(s.history)+1)
	messages = append(messages, model.ChatMessage{Role: "system", Content: system})
	messages = append(messages, s.history...)

	reply, err := s.generator.Chat(ctx, messages)
	if err != nil {
		return fmt.Sprintf("Error querying Ollama: %s", err)
	}
	s.history = append(s.history, model.ChatMessage{Role: "assistant", Content: reply})
	return reply
}

// History returns a copy of the conversation so far.
func (s *Service) History() []model.ChatMessage {
	out := make([]model.ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}
