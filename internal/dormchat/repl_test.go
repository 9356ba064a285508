package dormchat

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestRunREPL_ExitKeywords(t *testing.T) {
	for _, keyword := range []string{"exit", "quit", "EXIT", "Quit"} {
		var out bytes.Buffer
		turns := 0
		err := RunREPL(context.Background(), strings.NewReader(keyword+"\n"), &out, func(context.Context, string) string {
			turns++
			return ""
		})
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", keyword, err)
		}
		if turns != 0 {
			t.Fatalf("%q: exit keyword should not run a turn", keyword)
		}
		if !strings.Contains(out.String(), "Exiting Dormitory RAG System.") {
			t.Fatalf("%q: missing exit message in %q", keyword, out.String())
		}
	}
}

func TestRunREPL_RunsTurnsAndPrintsReplies(t *testing.T) {
	var out bytes.Buffer
	var inputs []string
	err := RunREPL(context.Background(), strings.NewReader("who lives in 201?\nexit\n"), &out, func(_ context.Context, input string) string {
		inputs = append(inputs, input)
		return "Somchai lives there."
	})
	if err != nil {
		t.Fatalf("RunREPL: %v", err)
	}
	if len(inputs) != 1 || inputs[0] != "who lives in 201?" {
		t.Fatalf("unexpected inputs: %v", inputs)
	}
	text := out.String()
	if !strings.HasPrefix(text, "=== Dormitory RAG System ===\n") {
		t.Fatalf("missing banner: %q", text)
	}
	if !strings.Contains(text, "\nResponse:\n Somchai lives there.\n") {
		t.Fatalf("missing reply: %q", text)
	}
	if !strings.Contains(text, "\n>> ") {
		t.Fatalf("missing prompt: %q", text)
	}
}

func TestRunREPL_EOFTerminates(t *testing.T) {
	var out bytes.Buffer
	err := RunREPL(context.Background(), strings.NewReader(""), &out, func(context.Context, string) string {
		t.Fatal("turn should not run on EOF")
		return ""
	})
	if err != nil {
		t.Fatalf("RunREPL: %v", err)
	}
}
