package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/decyphertek-ai/adminotaur/internal/platform"
	"github.com/decyphertek-ai/adminotaur/internal/registry"
)

// Defaults used when Config leaves a field zero.
const (
	DefaultTimeout       = 30 * time.Second
	DefaultKillGrace     = 3 * time.Second
	DefaultStderrPreview = 400
)

// Catalog resolves skill ids. Both *registry.Registry and *registry.Catalog
// satisfy it.
type Catalog interface {
	Skill(id string) (registry.SkillEntry, bool)
}

// Recorder receives every finished Result.
type Recorder interface {
	Record(ctx context.Context, r *Result) error
}

// Config holds invoker-wide settings.
type Config struct {
	Timeout       time.Duration
	KillGrace     time.Duration
	StderrPreview int
	Interpreter   string
	Logger        *zap.Logger
	Recorder      Recorder
	// Environ supplies the base child environment; defaults to os.Environ.
	Environ func() []string
}

// Invoker runs skills from a catalog. It is safe for concurrent use.
type Invoker struct {
	catalog Catalog
	cfg     Config
	log     *zap.Logger
	spawns  atomic.Int64
}

// NewInvoker creates an Invoker over catalog.
func NewInvoker(catalog Catalog, cfg Config) *Invoker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.KillGrace <= 0 {
		cfg.KillGrace = DefaultKillGrace
	}
	if cfg.StderrPreview <= 0 {
		cfg.StderrPreview = DefaultStderrPreview
	}
	if cfg.Environ == nil {
		cfg.Environ = os.Environ
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Invoker{catalog: catalog, cfg: cfg, log: log}
}

// Option adjusts a single invocation.
type Option func(*callOptions)

type callOptions struct {
	diagnostics bool
	timeout     time.Duration
	env         map[string]string
}

// WithDiagnostics forces the child's debug flag on and marks the call as a
// health-check probe.
func WithDiagnostics() Option {
	return func(o *callOptions) { o.diagnostics = true }
}

// WithTimeout overrides the deadline for this call.
func WithTimeout(d time.Duration) Option {
	return func(o *callOptions) { o.timeout = d }
}

// WithEnv adds one variable to the child's environment.
func WithEnv(key, value string) Option {
	return func(o *callOptions) {
		if o.env == nil {
			o.env = make(map[string]string)
		}
		o.env[key] = value
	}
}

// Spawns returns the number of child processes started so far.
func (inv *Invoker) Spawns() int64 {
	return inv.spawns.Load()
}

// Invoke runs skill id with req. It always returns a Result; no fault
// escapes to the caller.
func (inv *Invoker) Invoke(ctx context.Context, id string, req Request, opts ...Option) (res *Result) {
	res = &Result{
		InvocationID: uuid.New().String(),
		SkillID:      id,
		StartedAt:    time.Now(),
	}

	defer func() {
		if p := recover(); p != nil {
			res.fail(LaunchError, "Error calling MCP server '%s': %v", id, p)
			inv.log.Error("invocation panicked", zap.String("skill", id), zap.Any("panic", p))
		}
		res.Latency = time.Since(res.StartedAt)
		inv.finish(ctx, res)
	}()

	var co callOptions
	for _, opt := range opts {
		opt(&co)
	}

	entry, ok := inv.catalog.Skill(id)
	if !ok {
		res.fail(NotFound, "MCP server '%s' not found.", id)
		return res
	}
	res.SkillID = entry.ID
	res.Mode = entry.Mode

	inv.run(ctx, entry, req, co, res)
	return res
}

func (inv *Invoker) finish(ctx context.Context, res *Result) {
	fields := []zap.Field{
		zap.String("skill", res.SkillID),
		zap.String("invocation_id", res.InvocationID),
		zap.Duration("latency", res.Latency),
	}
	if res.Succeeded {
		inv.log.Debug("invocation succeeded", fields...)
	} else {
		inv.log.Warn("invocation failed", append(fields, zap.String("kind", string(res.FailureKind)))...)
	}

	if inv.cfg.Recorder == nil {
		return
	}
	if err := inv.cfg.Recorder.Record(context.WithoutCancel(ctx), res); err != nil {
		inv.log.Warn("recording invocation", zap.String("invocation_id", res.InvocationID), zap.Error(err))
	}
}

// timeoutFor picks call option, then skill manifest, then config.
func (inv *Invoker) timeoutFor(entry registry.SkillEntry, co callOptions) time.Duration {
	if co.timeout > 0 {
		return co.timeout
	}
	if d, err := entry.Manifest.TimeoutDuration(); err == nil && d > 0 {
		return d
	}
	return inv.cfg.Timeout
}

func (inv *Invoker) buildEnv(req Request, co callOptions, launch *Launch) []string {
	base := inv.cfg.Environ()
	env := make([]string, len(base))
	copy(env, base)

	verbose := WantsVerbose(req, co.diagnostics, base)
	env = setEnv(env, EnvPath, lookupEnv(base, EnvPath))
	env = setEnv(env, EnvDebug, flag(verbose))
	env = setEnv(env, EnvStandalone, "1")
	if co.diagnostics {
		env = setEnv(env, EnvHealthcheck, "1")
	}
	for k, v := range launch.Env {
		env = setEnv(env, k, v)
	}
	for k, v := range co.env {
		env = setEnv(env, k, v)
	}
	return env
}

func (inv *Invoker) run(ctx context.Context, entry registry.SkillEntry, req Request, co callOptions, res *Result) {
	payload, err := req.Encode()
	if err != nil {
		res.fail(LaunchError, "Error calling MCP server '%s': %v", entry.ID, err)
		return
	}

	launch, err := DispatchRuntime(entry.Mode, inv.cfg.Interpreter).Prepare(entry)
	if err != nil {
		res.fail(LaunchError, "Error calling MCP server '%s': %v", entry.ID, err)
		return
	}

	timeout := inv.timeoutFor(entry, co)

	// Not CommandContext: termination is handled below so the whole process
	// group gets SIGTERM before SIGKILL.
	cmd := exec.Command(launch.Path, launch.Args...)
	cmd.Dir = launch.Dir
	cmd.Env = inv.buildEnv(req, co, launch)
	cmd.Stdin = bytes.NewReader(payload)
	cmd.WaitDelay = inv.cfg.KillGrace

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	platform.SetProcessGroup(cmd)

	inv.log.Debug("starting skill",
		zap.String("skill", entry.ID),
		zap.String("mode", entry.Mode.String()),
		zap.String("path", launch.Path),
		zap.Duration("timeout", timeout))

	if err := cmd.Start(); err != nil {
		res.fail(LaunchError, "Error calling MCP server '%s': %v", entry.ID, err)
		return
	}
	inv.spawns.Add(1)

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var waitErr error
	select {
	case waitErr = <-done:
	case <-timer.C:
		inv.terminate(cmd, done)
		res.Stderr = stderr.String()
		res.ExitCode = -1
		res.fail(Timeout, "MCP server '%s' timed out after %s", entry.ID, timeout)
		return
	case <-ctx.Done():
		inv.terminate(cmd, done)
		res.Stderr = stderr.String()
		res.ExitCode = -1
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			res.fail(Timeout, "MCP server '%s' timed out", entry.ID)
		} else {
			res.fail(LaunchError, "Error calling MCP server '%s': %v", entry.ID, ctx.Err())
		}
		return
	}

	res.RawOutput = stdout.Bytes()
	res.Stderr = stderr.String()
	inv.classify(entry.ID, waitErr, res)
}

// terminate signals the process group and reaps the child.
func (inv *Invoker) terminate(cmd *exec.Cmd, done <-chan error) {
	_ = platform.TerminateGroup(cmd)
	select {
	case <-done:
	case <-time.After(inv.cfg.KillGrace):
		_ = platform.KillGroup(cmd)
		<-done
	}
}

func (inv *Invoker) classify(id string, waitErr error, res *Result) {
	stderrText := strings.TrimSpace(res.Stderr)

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			res.ExitCode = -1
			res.fail(LaunchError, "Error calling MCP server '%s': %v", id, waitErr)
			return
		}
		res.ExitCode = exitErr.ExitCode()
		if stderrText == "" {
			stderrText = fmt.Sprintf("exited with status %d", res.ExitCode)
		}
		res.fail(NonZeroExit, "MCP server '%s' error: %s", id, stderrText)
		return
	}

	if len(bytes.TrimSpace(res.RawOutput)) == 0 {
		res.fail(EmptyOutput, "MCP server '%s' produced no output. STDERR: %s", id, truncate(stderrText, inv.cfg.StderrPreview))
		return
	}

	parsed, err := ParseResponse(res.RawOutput)
	if err != nil {
		res.fail(MalformedPayload, "MCP server '%s' returned a malformed payload: %v", id, err)
		return
	}
	res.Response = &parsed

	if strings.TrimSpace(parsed.Text) == "" {
		res.fail(EmptyOutput, "MCP server '%s' returned an empty response. STDERR: %s", id, truncate(stderrText, inv.cfg.StderrPreview))
		return
	}

	if HasFailureMarker(parsed.Text) {
		res.Succeeded = false
		res.FailureKind = SkillReported
		res.Text = strings.TrimSpace(parsed.Text)
		return
	}

	res.Succeeded = true
	res.Text = parsed.Text
}
