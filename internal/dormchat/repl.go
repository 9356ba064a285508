// Package dormchat implements the retrieval-augmented chat client for
// the dormitory database, as a plain line-oriented loop or a TUI.
package dormchat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// TurnFunc runs one chat turn and returns the reply text. Failures are
// reported inside the reply, never as an error.
type TurnFunc func(ctx context.Context, input string) string

// RunREPL reads one line at a time from in and prints each turn's
// reply to out. "exit" or "quit" in any case terminates the loop.
func RunREPL(ctx context.Context, in io.Reader, out io.Writer, turn TurnFunc) error {
	fmt.Fprintln(out, "=== Dormitory RAG System ===")
	fmt.Fprintln(out, "Type 'exit' or 'quit' to stop.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\n>> ")
		if !scanner.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		input := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(input) {
		case "exit", "quit":
			fmt.Fprintln(out, "Exiting Dormitory RAG System.")
			return nil
		}

		reply := turn(ctx, input)
		fmt.Fprintf(out, "\nResponse:\n %s\n", reply)
	}
	return scanner.Err()
}
