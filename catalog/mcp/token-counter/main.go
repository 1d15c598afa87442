// token-counter is a reference skill server. It counts the tokens of the
// message it receives using the tiktoken encoding of a model.
//
// The model comes from the request context ("model=gpt-4o") or the
// TOKEN_COUNTER_MODEL environment variable, defaulting to gpt-4.
//
// Build: go build -o token-counter.mcp .
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

const defaultModel = "gpt-4"

type request struct {
	Message string `json:"message"`
	Context string `json:"context"`
}

type reply struct {
	Text       string `json:"text"`
	Model      string `json:"model"`
	TokenCount int    `json:"token_count"`
	TextLength int    `json:"text_length"`
}

func modelFor(req request) string {
	for _, field := range strings.Fields(req.Context) {
		if v, ok := strings.CutPrefix(field, "model="); ok && v != "" {
			return v
		}
	}
	if v := os.Getenv("TOKEN_COUNTER_MODEL"); v != "" {
		return v
	}
	return defaultModel
}

func fail(format string, args ...any) {
	// Exit 0 with a marked reply so the host surfaces the reason.
	_ = json.NewEncoder(os.Stdout).Encode(map[string]string{"text": "❌ " + fmt.Sprintf(format, args...)})
	os.Exit(0)
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

	model := modelFor(req)
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		fail("no encoding for model %q: %v", model, err)
	}
	if debug {
		fmt.Fprintf(os.Stderr, "token-counter: model=%s chars=%d\n", model, len(req.Message))
	}

	n := len(enc.Encode(req.Message, nil, nil))
	out := reply{
		Text:       fmt.Sprintf("%d tokens (%s)", n, model),
		Model:      model,
		TokenCount: n,
		TextLength: len(req.Message),
	}
	if err := json.NewEncoder(os.Stdout).Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "writing reply: %v\n", err)
		os.Exit(1)
	}
}
