package runtime

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestEncode_EmptyHistory(t *testing.T) {
	b, err := Request{Message: "hi"}.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"hi","context":"","history":[]}`, string(b))
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind ResponseKind
		text string
	}{
		{"plain", "hello\n", PlainText, "hello"},
		{"text field", `{"text":"ok"}`, JSONObject, "ok"},
		{"response field", `{"response":"ok2"}`, JSONObject, "ok2"},
		{"text wins", `{"response":"b","text":"a"}`, JSONObject, "a"},
		{"null text falls through", `{"text":null,"response":"r"}`, JSONObject, "r"},
		{"non-string field", `{"text":{"k":1}}`, JSONObject, `{"k":1}`},
		{"no known field", `{ "status": "up" }`, JSONObject, `{"status":"up"}`},
		{"json string", `"quoted"`, JSONValue, "quoted"},
		{"json number", `42`, JSONValue, "42"},
		{"json array", `[1, 2]`, JSONValue, "[1,2]"},
		{"broken json is text", `{"text":`, PlainText, `{"text":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseResponse([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, p.Kind)
			assert.Equal(t, tt.text, p.Text)
		})
	}
}

func TestParseResponse_InvalidUTF8(t *testing.T) {
	_, err := ParseResponse([]byte{0xff, 'a'})
	assert.True(t, errors.Is(err, ErrInvalidUTF8))
}

func TestWantsVerbose(t *testing.T) {
	tests := []struct {
		msg    string
		diag   bool
		parent []string
		want   bool
	}{
		{"hello", false, nil, false},
		{"hello", true, nil, true},
		{"sudo systemctl status nginx", false, nil, true},
		{"What's the Weather like", false, nil, true},
		{"web search go generics", false, nil, true},
		{"please look up the docs", false, nil, true},
		{"find my keys", false, nil, true},
		{"research", false, nil, false},
		{"hello", false, []string{"HEALTHCHECK_MODE=yes"}, true},
		{"hello", false, []string{"HEALTHCHECK_MODE=0"}, false},
	}

	for _, tt := range tests {
		got := WantsVerbose(Request{Message: tt.msg}, tt.diag, tt.parent)
		assert.Equal(t, tt.want, got, "message %q diag=%v parent=%v", tt.msg, tt.diag, tt.parent)
	}
}

func TestSetEnv(t *testing.T) {
	env := []string{"A=1", "B=2"}
	env = setEnv(env, "A", "x")
	env = setEnv(env, "C", "3")
	assert.Equal(t, []string{"A=x", "B=2", "C=3"}, env)
	assert.Equal(t, "2", lookupEnv(env, "B"))
	assert.Equal(t, "", lookupEnv(env, "Z"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abcdef", 3))
	assert.Equal(t, "ab", truncate("ab", 3))
	assert.Equal(t, "❌x", truncate("❌xyz", 2))
}
