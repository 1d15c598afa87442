package health

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/decyphertek-ai/adminotaur/internal/registry"
	"github.com/decyphertek-ai/adminotaur/internal/runtime"
	"github.com/decyphertek-ai/adminotaur/internal/userdata"
)

// PreviewLen bounds the previews of passing checks. Failures keep their full text.
const PreviewLen = 100

// EndpointStatus is the outcome of the endpoint probe.
type EndpointStatus string

const (
	EndpointOK            EndpointStatus = "ok"
	EndpointFailed        EndpointStatus = "failed"
	EndpointNotConfigured EndpointStatus = "not_configured"
)

// SkillLine summarises one catalog entry.
type SkillLine struct {
	ID          string                 `json:"id"`
	DisplayName string                 `json:"display_name"`
	Mode        registry.ExecutionMode `json:"mode"`
	EntryPoint  string                 `json:"entry_point"`
}

// AppLine summarises one launchable application.
type AppLine struct {
	ID            string `json:"id"`
	DisplayName   string `json:"display_name"`
	MainEntryFile string `json:"main_entry_file"`
}

// SelfTest is the agent capability-file check.
type SelfTest struct {
	Path    string        `json:"path"`
	OK      bool          `json:"ok"`
	Preview string        `json:"preview,omitempty"`
	Latency time.Duration `json:"latency"`
	Error   string        `json:"error,omitempty"`
}

// ProbeResult is the outcome of one skill probe.
type ProbeResult struct {
	SkillID      string              `json:"skill_id"`
	Message      string              `json:"message"`
	OK           bool                `json:"ok"`
	Latency      time.Duration       `json:"latency"`
	Preview      string              `json:"preview"`
	Text         string              `json:"text"`
	RawOutput    string              `json:"raw_output,omitempty"`
	Stderr       string              `json:"stderr,omitempty"`
	FailureKind  runtime.FailureKind `json:"failure_kind,omitempty"`
	InvocationID string              `json:"invocation_id,omitempty"`
}

// EndpointResult is the outcome of the completion endpoint probe.
type EndpointResult struct {
	Status  EndpointStatus `json:"status"`
	Model   string         `json:"model,omitempty"`
	Latency time.Duration  `json:"latency"`
	Preview string         `json:"preview,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Report is one health run.
type Report struct {
	GeneratedAt time.Time          `json:"generated_at"`
	StoreRoot   string             `json:"store_root"`
	Verbose     bool               `json:"verbose"`
	Facts       []userdata.DirFact `json:"facts"`
	Skills      []SkillLine        `json:"skills"`
	Apps        []AppLine          `json:"apps"`
	SelfTest    *SelfTest          `json:"self_test,omitempty"`
	Probes      []ProbeResult      `json:"probes"`
	Endpoint    *EndpointResult    `json:"endpoint,omitempty"`
	Errors      []string           `json:"errors,omitempty"`
}

// OK reports whether every probe passed, the self-test passed, the endpoint
// did not fail and no section faulted. An unconfigured endpoint is not a
// failure.
func (r *Report) OK() bool {
	if len(r.Errors) > 0 {
		return false
	}
	for _, p := range r.Probes {
		if !p.OK {
			return false
		}
	}
	if r.SelfTest != nil && !r.SelfTest.OK {
		return false
	}
	if r.Endpoint != nil && r.Endpoint.Status == EndpointFailed {
		return false
	}
	return true
}

// Failed returns the number of failing probes.
func (r *Report) Failed() int {
	n := 0
	for _, p := range r.Probes {
		if !p.OK {
			n++
		}
	}
	return n
}

// Render writes the human-readable report.
func (r *Report) Render(w io.Writer) error {
	rw := &reportWriter{w: w}

	rw.line("Health report (%s)", r.GeneratedAt.Format(time.RFC3339))
	rw.line("")
	rw.line("Agent:")
	rw.line("  [ OK ] store root %s", r.StoreRoot)
	rw.line("  [INFO] verbose diagnostics %s", onOff(r.Verbose))

	rw.line("")
	rw.line("Environment:")
	for _, f := range r.Facts {
		if f.Present {
			rw.line("  [ OK ] %s (%s)", f.Label, f.Path)
		} else {
			rw.line("  [MISS] %s (%s)", f.Label, f.Path)
		}
	}

	rw.line("")
	rw.line("Skills (%d):", len(r.Skills))
	if len(r.Skills) == 0 {
		rw.line("  [WARN] no skills discovered")
	}
	for _, s := range r.Skills {
		rw.line("  - %s [%s] %s", s.ID, s.Mode, s.EntryPoint)
	}

	rw.line("")
	rw.line("Apps (%d):", len(r.Apps))
	for _, a := range r.Apps {
		rw.line("  - %s %s", a.ID, a.MainEntryFile)
	}

	if st := r.SelfTest; st != nil {
		rw.line("")
		rw.line("Agent self-test:")
		if st.OK {
			rw.line("  [ OK ] %s (%.2fs)", st.Path, st.Latency.Seconds())
			rw.line("         %s", st.Preview)
		} else {
			rw.line("  [FAIL] %s: %s", st.Path, st.Error)
		}
	}

	rw.line("")
	rw.line("Skill probes:")
	if len(r.Probes) == 0 {
		rw.line("  [INFO] nothing to probe")
	}
	for _, p := range r.Probes {
		status := "[ OK ]"
		if !p.OK {
			status = "[FAIL]"
		}
		rw.line("  %s %s %q (%.2fs)", status, p.SkillID, p.Message, p.Latency.Seconds())
		if p.OK {
			if p.Preview != "" {
				rw.line("         %s", p.Preview)
			}
		} else {
			rw.block("", p.Text)
		}
		if r.Verbose {
			rw.block("stdout: ", p.RawOutput)
			rw.block("stderr: ", p.Stderr)
		}
	}

	if ep := r.Endpoint; ep != nil {
		rw.line("")
		rw.line("AI endpoint:")
		switch ep.Status {
		case EndpointOK:
			rw.line("  [ OK ] %s (%.2fs)", ep.Model, ep.Latency.Seconds())
			rw.line("         %s", ep.Preview)
		case EndpointNotConfigured:
			rw.line("  [SKIP] %s", ep.Error)
		default:
			rw.line("  [FAIL] %s: %s", ep.Model, ep.Error)
		}
	}

	for _, e := range r.Errors {
		rw.line("")
		rw.line("%s", e)
	}

	rw.line("")
	if r.OK() {
		rw.line("Status: READY")
	} else {
		rw.line("Status: DEGRADED (%d of %d probes failing)", r.Failed(), len(r.Probes))
	}
	return rw.err
}

type reportWriter struct {
	w   io.Writer
	err error
}

func (rw *reportWriter) line(format string, args ...any) {
	if rw.err != nil {
		return
	}
	_, rw.err = fmt.Fprintf(rw.w, format+"\n", args...)
}

// block writes s indented under a status line, one output line per line of s.
func (rw *reportWriter) block(label, s string) {
	s = strings.TrimRight(s, "\n")
	if strings.TrimSpace(s) == "" {
		return
	}
	for i, l := range strings.Split(s, "\n") {
		if i > 0 {
			label = strings.Repeat(" ", len(label))
		}
		rw.line("         %s%s", label, l)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// preview flattens s onto one line and clips it to PreviewLen runes.
func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) > PreviewLen {
		return string(runes[:PreviewLen])
	}
	return s
}
