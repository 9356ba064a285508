package main

import (
	"fmt"
	"os"

	"dorm2mcp/internal/dormchat"
)

func main() {
	if err := dormchat.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
