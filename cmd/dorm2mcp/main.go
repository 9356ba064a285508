package main

import (
	"fmt"
	"os"

	"dorm2mcp/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitGenericError)
	}
}
