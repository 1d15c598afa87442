// echo is a reference skill server. It reads one request from stdin and
// replies with the message it was sent.
//
// Build: go build -o echo.mcp .
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

type request struct {
	Message string          `json:"message"`
	Context string          `json:"context"`
	History json.RawMessage `json:"history"`
}

type reply struct {
	Text string `json:"text"`
}

func main() {
	debug := os.Getenv("MCP_DEBUG") == "1"

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading request: %v\n", err)
		os.Exit(1)
	}

	var req request
	if err := json.Unmarshal(data, &req); err != nil {
		fmt.Fprintf(os.Stderr, "decoding request: %v\n", err)
		os.Exit(1)
	}
	if debug {
		fmt.Fprintf(os.Stderr, "echo: message=%q context=%q\n", req.Message, req.Context)
	}

	if err := json.NewEncoder(os.Stdout).Encode(reply{Text: req.Message}); err != nil {
		fmt.Fprintf(os.Stderr, "writing reply: %v\n", err)
		os.Exit(1)
	}
}
