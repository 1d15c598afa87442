package health

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/decyphertek-ai/adminotaur/internal/llm"
	"github.com/decyphertek-ai/adminotaur/internal/registry"
	"github.com/decyphertek-ai/adminotaur/internal/runtime"
	"github.com/decyphertek-ai/adminotaur/internal/userdata"
)

// DefaultAgent names the agent whose capability file is self-tested.
const DefaultAgent = "adminotaur"

// Invoker runs one skill request. *runtime.Invoker satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, id string, req runtime.Request, opts ...runtime.Option) *runtime.Result
}

// Completer sends one prompt to the completion endpoint. *llm.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (*llm.Completion, error)
}

// EndpointConfig describes the completion endpoint probe.
type EndpointConfig struct {
	KeyName string
	BaseURL string
	Model   string
	Prompt  string
	Timeout time.Duration
}

// Config controls a Harness.
type Config struct {
	StoreRoot   string
	Roots       registry.Roots
	AgentName   string
	Probes      map[string]string // skill id -> probe message
	Parallelism int
	Verbose     bool
	Endpoint    EndpointConfig
	SkipSkills  bool
	SkipAI      bool
	Logger      *zap.Logger

	// LookupSecret resolves the endpoint credential. Defaults to
	// userdata.LookupSecret.
	LookupSecret func(name string) (string, error)
	// NewCompleter builds the endpoint client for a credential. Defaults to llm.New.
	NewCompleter func(apiKey string) Completer
}

// Harness assembles health reports.
type Harness struct {
	catalog func() *registry.Catalog
	invoker Invoker
	cfg     Config
	log     *zap.Logger
}

// New creates a Harness. catalog is called once per Run so a refreshed
// registry is picked up.
func New(catalog func() *registry.Catalog, invoker Invoker, cfg Config) *Harness {
	if cfg.AgentName == "" {
		cfg.AgentName = DefaultAgent
	}
	if cfg.Parallelism < 1 {
		cfg.Parallelism = 1
	}
	if cfg.LookupSecret == nil {
		cfg.LookupSecret = func(name string) (string, error) {
			v, _, err := userdata.LookupSecret(name)
			return v, err
		}
	}
	if cfg.NewCompleter == nil {
		ep := cfg.Endpoint
		cfg.NewCompleter = func(key string) Completer {
			return llm.New(llm.Config{APIKey: key, BaseURL: ep.BaseURL, Model: ep.Model, Timeout: ep.Timeout})
		}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Harness{catalog: catalog, invoker: invoker, cfg: cfg, log: log}
}

// Run builds a complete report.
func (h *Harness) Run(ctx context.Context) *Report {
	r := &Report{
		GeneratedAt: time.Now(),
		StoreRoot:   h.cfg.StoreRoot,
		Verbose:     h.cfg.Verbose,
	}

	var cat *registry.Catalog
	h.section(r, "catalog", func() {
		cat = h.catalog()
	})

	h.section(r, "environment", func() {
		r.Facts = userdata.StoreFacts([]userdata.StoreRoot{
			{Label: "store", Path: h.cfg.StoreRoot},
			{Label: "skills", Path: h.cfg.Roots.Skills},
			{Label: "apps", Path: h.cfg.Roots.Apps},
			{Label: "legacy skills", Path: h.cfg.Roots.LegacySkills},
			{Label: "agent", Path: userdata.GetAgentRoot(h.cfg.StoreRoot)},
		})
	})

	h.section(r, "listing", func() {
		for _, id := range cat.SkillIDs() {
			e := cat.Skills[id]
			r.Skills = append(r.Skills, SkillLine{ID: id, DisplayName: e.DisplayName, Mode: e.Mode, EntryPoint: e.EntryPoint})
		}
		for _, id := range cat.AppIDs() {
			a := cat.Apps[id]
			r.Apps = append(r.Apps, AppLine{ID: id, DisplayName: a.DisplayName, MainEntryFile: a.MainEntryFile})
		}
	})

	h.section(r, "agent self-test", func() {
		r.SelfTest = h.selfTest()
	})

	if !h.cfg.SkipSkills {
		h.section(r, "skill probes", func() {
			r.Probes = h.probeAll(ctx, cat)
		})
	}

	if !h.cfg.SkipAI {
		h.section(r, "ai endpoint", func() {
			r.Endpoint = h.probeEndpoint(ctx)
		})
	}
	return r
}

// section runs fn and turns a panic into a report-level error line.
func (h *Harness) section(r *Report, name string, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			h.log.Error("health section panicked", zap.String("section", name), zap.Any("panic", p))
			r.Errors = append(r.Errors, fmt.Sprintf("%s Health check section %q failed: %v", runtime.FailureMarker, name, p))
		}
	}()
	fn()
}

func (h *Harness) selfTest() *SelfTest {
	path := filepath.Join(userdata.GetAgentRoot(h.cfg.StoreRoot), h.cfg.AgentName, h.cfg.AgentName+".md")
	st := &SelfTest{Path: path}

	start := time.Now()
	data, err := os.ReadFile(path)
	st.Latency = time.Since(start)
	switch {
	case err != nil:
		st.Error = err.Error()
	case strings.TrimSpace(string(data)) == "":
		st.Error = "capability file is empty"
	default:
		st.OK = true
		st.Preview = preview(string(data))
	}
	return st
}

// ProbeMessage picks the probe for a skill: manifest, then config, then
// "test <id>".
func (h *Harness) ProbeMessage(entry registry.SkillEntry) string {
	if entry.Manifest != nil && entry.Manifest.Probe != "" {
		return entry.Manifest.Probe
	}
	if msg, ok := h.cfg.Probes[entry.ID]; ok && msg != "" {
		return msg
	}
	return "test " + entry.ID
}

func (h *Harness) probeAll(ctx context.Context, cat *registry.Catalog) []ProbeResult {
	ids := cat.SkillIDs()
	results := make([]ProbeResult, len(ids))

	var g errgroup.Group
	g.SetLimit(h.cfg.Parallelism)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			results[i] = h.probe(ctx, cat.Skills[id])
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (h *Harness) probe(ctx context.Context, entry registry.SkillEntry) (pr ProbeResult) {
	pr = ProbeResult{SkillID: entry.ID, Message: h.ProbeMessage(entry)}
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			pr.OK = false
			pr.FailureKind = runtime.LaunchError
			pr.Text = fmt.Sprintf("%s probe fault: %v", runtime.FailureMarker, p)
			pr.Preview = preview(pr.Text)
			pr.Latency = time.Since(start)
			h.log.Error("probe panicked", zap.String("skill", entry.ID), zap.Any("panic", p))
		}
	}()

	res := h.invoker.Invoke(ctx, entry.ID, runtime.Request{Message: pr.Message}, runtime.WithDiagnostics())
	pr.Latency = res.Latency
	pr.InvocationID = res.InvocationID
	pr.FailureKind = res.FailureKind
	pr.OK = Passed(res)
	pr.Preview = preview(res.Text)
	pr.Text = res.Text
	pr.RawOutput = string(res.RawOutput)
	pr.Stderr = res.Stderr
	return pr
}

// Passed reports whether a probe result counts as healthy.
func Passed(res *runtime.Result) bool {
	if res == nil || !res.Succeeded {
		return false
	}
	text := strings.TrimSpace(res.Text)
	return text != "" && !runtime.HasFailureMarker(text)
}

func (h *Harness) probeEndpoint(ctx context.Context) *EndpointResult {
	ep := h.cfg.Endpoint
	res := &EndpointResult{Model: ep.Model}

	key, err := h.cfg.LookupSecret(ep.KeyName)
	if errors.Is(err, userdata.ErrSecretNotFound) || (err == nil && strings.TrimSpace(key) == "") {
		res.Status = EndpointNotConfigured
		res.Error = ep.KeyName + " not configured"
		return res
	}
	if err != nil {
		res.Status = EndpointFailed
		res.Error = err.Error()
		return res
	}

	timeout := ep.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	completion, err := h.cfg.NewCompleter(key).Complete(ctx, ep.Prompt)
	res.Latency = time.Since(start)
	if err != nil {
		res.Status = EndpointFailed
		res.Error = err.Error()
		return res
	}
	if strings.TrimSpace(completion.Content) == "" {
		res.Status = EndpointFailed
		res.Error = "empty completion"
		return res
	}
	res.Status = EndpointOK
	if completion.Model != "" {
		res.Model = completion.Model
	}
	res.Preview = preview(completion.Content)
	return res
}
