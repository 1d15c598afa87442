package runtime

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"
)

// Turn is one prior exchange in a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the single JSON object written to a skill's stdin.
type Request struct {
	Message string `json:"message"`
	Context string `json:"context"`
	History []Turn `json:"history"`
}

// Encode serializes the request. A nil history is sent as an empty array.
func (r Request) Encode() ([]byte, error) {
	if r.History == nil {
		r.History = []Turn{}
	}
	return json.Marshal(r)
}

// ResponseKind tags the variant held by a ParsedResponse.
type ResponseKind int

const (
	// PlainText is stdout that is not JSON.
	PlainText ResponseKind = iota
	// JSONObject is a top-level JSON object.
	JSONObject
	// JSONValue is any other JSON value: string, number, bool, array or null.
	JSONValue
)

func (k ResponseKind) String() string {
	switch k {
	case JSONObject:
		return "json-object"
	case JSONValue:
		return "json-value"
	default:
		return "plain-text"
	}
}

// responseTextFields is the field preference order for object responses.
var responseTextFields = []string{"text", "response"}

// ErrInvalidUTF8 is returned for stdout that is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("output is not valid UTF-8")

// ParsedResponse is a decoded skill stdout.
type ParsedResponse struct {
	Kind   ResponseKind
	Object map[string]json.RawMessage // JSONObject only
	Value  json.RawMessage            // JSONValue only
	Text   string                     // normalized text for every kind
}

// ParseResponse decodes trimmed stdout. Objects yield their first non-null
// preferred field, or the compact object when none is present. JSON strings
// yield their content; other values their JSON text. Anything that is not
// JSON is returned verbatim.
func ParseResponse(stdout []byte) (ParsedResponse, error) {
	trimmed := bytes.TrimSpace(stdout)
	if !utf8.Valid(trimmed) {
		return ParsedResponse{}, ErrInvalidUTF8
	}

	var raw json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return ParsedResponse{Kind: PlainText, Text: string(trimmed)}, nil
	}

	if trimmed[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err == nil {
			return ParsedResponse{Kind: JSONObject, Object: obj, Text: objectText(obj, trimmed)}, nil
		}
	}
	return ParsedResponse{Kind: JSONValue, Value: raw, Text: valueText(raw)}, nil
}

func objectText(obj map[string]json.RawMessage, whole []byte) string {
	for _, field := range responseTextFields {
		v, ok := obj[field]
		if !ok || isNull(v) {
			continue
		}
		return valueText(v)
	}
	return compact(whole)
}

func valueText(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return compact(v)
}

func isNull(v json.RawMessage) bool {
	return strings.TrimSpace(string(v)) == "null"
}

func compact(b []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return string(b)
	}
	return buf.String()
}
