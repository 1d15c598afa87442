package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decyphertek-ai/adminotaur/internal/registry"
)

func newTestInvoker(t *testing.T, cfg Config) (*Invoker, *registry.Catalog) {
	t.Helper()
	cat := fakeCatalog(t, "fake")
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.KillGrace == 0 {
		cfg.KillGrace = 500 * time.Millisecond
	}
	return NewInvoker(cat, cfg), cat
}

func behave(b string) Option {
	return WithEnv(fakeSkillEnv, b)
}

func TestInvoke_NotFound(t *testing.T) {
	inv, _ := newTestInvoker(t, Config{})

	res := inv.Invoke(context.Background(), "missing", Request{Message: "hi"})

	assert.False(t, res.Succeeded)
	assert.Equal(t, NotFound, res.FailureKind)
	assert.Equal(t, "❌ MCP server 'missing' not found.", res.Text)
	assert.Equal(t, int64(0), inv.Spawns(), "no process may start for an unknown id")
	assert.NotEmpty(t, res.InvocationID)
}

func TestInvoke_Outcomes(t *testing.T) {
	inv, _ := newTestInvoker(t, Config{})

	tests := []struct {
		behaviour string
		succeeded bool
		kind      FailureKind
		text      string
	}{
		{"plain", true, FailureNone, "hello"},
		{"text", true, FailureNone, "ok"},
		{"response", true, FailureNone, "ok2"},
		{"empty", false, EmptyOutput, "❌ MCP server 'fake' produced no output. STDERR: nothing to say"},
		{"fail", false, NonZeroExit, "❌ MCP server 'fake' error: boom"},
		{"invalid", false, MalformedPayload, ""},
		{"marker", false, SkillReported, "❌ upstream broke"},
		{"blank", false, EmptyOutput, "❌ MCP server 'fake' returned an empty response. STDERR: nothing to say"},
	}

	for _, tt := range tests {
		t.Run(tt.behaviour, func(t *testing.T) {
			res := inv.Invoke(context.Background(), "fake", Request{Message: "hi"}, behave(tt.behaviour))

			assert.Equal(t, tt.succeeded, res.Succeeded, "text: %s", res.Text)
			assert.Equal(t, tt.kind, res.FailureKind)
			if tt.text != "" {
				assert.Equal(t, tt.text, res.Text)
			}
			if !tt.succeeded {
				assert.True(t, HasFailureMarker(res.Text))
			} else {
				assert.False(t, HasFailureMarker(res.Text))
			}
			assert.Positive(t, res.Latency)
			assert.Equal(t, registry.NativeBinary, res.Mode)
		})
	}
}

func TestInvoke_ExitCode(t *testing.T) {
	inv, _ := newTestInvoker(t, Config{})
	res := inv.Invoke(context.Background(), "fake", Request{}, behave("fail"))
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, res.Stderr, "boom")
}

func TestInvoke_Echo(t *testing.T) {
	inv, _ := newTestInvoker(t, Config{})

	res := inv.Invoke(context.Background(), "FAKE", Request{Message: "ping"}, behave("echo"))

	require.True(t, res.Succeeded, res.Text)
	assert.Equal(t, "ping", res.Text)
	assert.Equal(t, "fake", res.SkillID)
	require.NotNil(t, res.Response)
	assert.Equal(t, JSONObject, res.Response.Kind)
	assert.Equal(t, int64(1), inv.Spawns())
}

func TestInvoke_RequestFraming(t *testing.T) {
	inv, _ := newTestInvoker(t, Config{})

	res := inv.Invoke(context.Background(), "fake", Request{Message: "m"}, behave("request"))
	require.True(t, res.Succeeded, res.Text)

	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(res.RawOutput, &got))
	assert.Len(t, got, 3)
	assert.JSONEq(t, `"m"`, string(got["message"]))
	assert.JSONEq(t, `""`, string(got["context"]))
	assert.JSONEq(t, `[]`, string(got["history"]))
}

func envReport(t *testing.T, res *Result) map[string]string {
	t.Helper()
	require.True(t, res.Succeeded, res.Text)
	var got map[string]string
	require.NoError(t, json.Unmarshal(res.RawOutput, &got))
	return got
}

func TestInvoke_ChildEnvironment(t *testing.T) {
	inv, cat := newTestInvoker(t, Config{
		Environ: func() []string { return []string{"PATH=/usr/bin:/bin"} },
	})
	entry, _ := cat.Skill("fake")

	got := envReport(t, inv.Invoke(context.Background(), "fake", Request{Message: "hello there"}, behave("env")))
	assert.Equal(t, "0", got["debug"])
	assert.Equal(t, "1", got["standalone"])
	assert.Equal(t, "", got["healthcheck"])

	wantDir, err := filepath.EvalSymlinks(entry.InstallPath)
	require.NoError(t, err)
	gotDir, err := filepath.EvalSymlinks(got["cwd"])
	require.NoError(t, err)
	assert.Equal(t, wantDir, gotDir)

	got = envReport(t, inv.Invoke(context.Background(), "fake", Request{Message: "what is the weather"}, behave("env")))
	assert.Equal(t, "1", got["debug"])

	got = envReport(t, inv.Invoke(context.Background(), "fake", Request{Message: "hello"}, behave("env"), WithDiagnostics()))
	assert.Equal(t, "1", got["debug"])
	assert.Equal(t, "1", got["healthcheck"])
}

func TestInvoke_DiagnosticsDoNotTouchProcessEnv(t *testing.T) {
	t.Setenv(EnvDebug, "sentinel")
	inv, _ := newTestInvoker(t, Config{})

	res := inv.Invoke(context.Background(), "fake", Request{Message: "x"}, behave("env"), WithDiagnostics())
	got := envReport(t, res)

	assert.Equal(t, "1", got["debug"])
	assert.Equal(t, "sentinel", os.Getenv(EnvDebug))
}

func TestInvoke_Timeout(t *testing.T) {
	inv, _ := newTestInvoker(t, Config{KillGrace: 200 * time.Millisecond})

	start := time.Now()
	res := inv.Invoke(context.Background(), "fake", Request{}, behave("sleep"), WithTimeout(300*time.Millisecond))

	assert.Equal(t, Timeout, res.FailureKind)
	assert.False(t, res.Succeeded)
	assert.True(t, strings.HasPrefix(res.Text, "❌ MCP server 'fake' timed out"), res.Text)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestInvoke_ContextCanceled(t *testing.T) {
	inv, _ := newTestInvoker(t, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)
	res := inv.Invoke(ctx, "fake", Request{}, behave("sleep"))

	assert.Equal(t, LaunchError, res.FailureKind)
	assert.Contains(t, res.Text, context.Canceled.Error())
}

func TestInvoke_ManifestTimeout(t *testing.T) {
	root := t.TempDir()
	installFake(t, root, "slow")
	require.NoError(t, os.WriteFile(filepath.Join(root, "slow", "skill.yaml"), []byte("timeout: 300ms\n"), 0644))
	cat := registry.Scan(registry.Roots{Skills: root}, registry.Options{})
	inv := NewInvoker(cat, Config{Timeout: time.Minute, KillGrace: 200 * time.Millisecond})

	res := inv.Invoke(context.Background(), "slow", Request{}, behave("sleep"))
	assert.Equal(t, Timeout, res.FailureKind)
}

func TestInvoke_LaunchError(t *testing.T) {
	root := t.TempDir()
	installFake(t, root, "gone")
	cat := registry.Scan(registry.Roots{Skills: root}, registry.Options{})
	require.NoError(t, os.RemoveAll(filepath.Join(root, "gone")))

	inv := NewInvoker(cat, Config{})
	res := inv.Invoke(context.Background(), "gone", Request{})

	assert.Equal(t, LaunchError, res.FailureKind)
	assert.True(t, strings.HasPrefix(res.Text, "❌ Error calling MCP server 'gone'"), res.Text)
}

type panicCatalog struct{}

func (panicCatalog) Skill(string) (registry.SkillEntry, bool) {
	panic("catalog exploded")
}

func TestInvoke_RecoversPanic(t *testing.T) {
	inv := NewInvoker(panicCatalog{}, Config{})

	var res *Result
	require.NotPanics(t, func() {
		res = inv.Invoke(context.Background(), "x", Request{})
	})
	assert.Equal(t, LaunchError, res.FailureKind)
	assert.Contains(t, res.Text, "catalog exploded")
}

type memRecorder struct {
	mu      sync.Mutex
	results []*Result
	err     error
}

func (m *memRecorder) Record(_ context.Context, r *Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, r)
	return m.err
}

func TestInvoke_Recorder(t *testing.T) {
	rec := &memRecorder{err: errors.New("disk full")}
	inv, _ := newTestInvoker(t, Config{Recorder: rec})

	inv.Invoke(context.Background(), "fake", Request{Message: "a"}, behave("plain"))
	inv.Invoke(context.Background(), "nope", Request{})

	require.Len(t, rec.results, 2)
	assert.True(t, rec.results[0].Succeeded)
	assert.Equal(t, NotFound, rec.results[1].FailureKind)
}

func TestInvoke_Concurrent(t *testing.T) {
	inv, _ := newTestInvoker(t, Config{})

	var wg sync.WaitGroup
	results := make([]*Result, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = inv.Invoke(context.Background(), "fake", Request{Message: "ping"}, behave("echo"))
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.True(t, r.Succeeded, r.Text)
		assert.Equal(t, "ping", r.Text)
	}
	assert.Equal(t, int64(4), inv.Spawns())
}
