package runtime

import (
	"fmt"
	"strings"
	"time"

	"github.com/decyphertek-ai/adminotaur/internal/registry"
)

// FailureMarker prefixes every failure text. A successful result never
// starts with it.
const FailureMarker = "❌"

// FailureKind classifies a failed invocation. The zero value means success.
type FailureKind string

const (
	FailureNone      FailureKind = ""
	NotFound         FailureKind = "not_found"
	LaunchError      FailureKind = "launch_error"
	NonZeroExit      FailureKind = "non_zero_exit"
	EmptyOutput      FailureKind = "empty_output"
	Timeout          FailureKind = "timeout"
	MalformedPayload FailureKind = "malformed_payload"
	SkillReported    FailureKind = "skill_reported" // exit 0 with a marker-prefixed payload
)

// Result is the outcome of one invocation.
type Result struct {
	InvocationID string                 `json:"invocation_id"`
	SkillID      string                 `json:"skill_id"`
	Mode         registry.ExecutionMode `json:"mode,omitempty"`
	StartedAt    time.Time              `json:"started_at"`
	Latency      time.Duration          `json:"latency"`
	Succeeded    bool                   `json:"succeeded"`
	Text         string                 `json:"text"`
	FailureKind  FailureKind            `json:"failure_kind,omitempty"`
	ExitCode     int                    `json:"exit_code"`
	RawOutput    []byte                 `json:"-"`
	Stderr       string                 `json:"stderr,omitempty"`
	Response     *ParsedResponse        `json:"-"`
}

// LatencySeconds returns the wall-clock duration of the call in seconds.
func (r *Result) LatencySeconds() float64 {
	return r.Latency.Seconds()
}

func (r *Result) fail(kind FailureKind, format string, args ...any) {
	r.Succeeded = false
	r.FailureKind = kind
	r.Text = FailureMarker + " " + fmt.Sprintf(format, args...)
}

// truncate clips s to n runes.
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// HasFailureMarker reports whether text starts with the failure marker.
func HasFailureMarker(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), FailureMarker)
}
