//go:build integration

package integration_test

import (
	"context"
	"strings"
	"testing"

	"github.com/decyphertek-ai/adminotaur/internal/registry"
	"github.com/decyphertek-ai/adminotaur/internal/runtime"
	"github.com/decyphertek-ai/adminotaur/internal/userdata"
)

func TestInvokeEchoThroughRegistry(t *testing.T) {
	env := setupTestEnv(t)
	installEcho(t, env, "echo")

	reg := registry.New(registry.Roots{
		Skills: userdata.GetSkillsRoot(env.StoreDir),
		Apps:   userdata.GetAppsRoot(env.StoreDir),
	}, registry.DefaultOptions())

	entry, ok := reg.Skill("echo")
	if !ok {
		t.Fatalf("echo not discovered; skipped: %+v", reg.Catalog().Skipped)
	}
	if entry.Mode != registry.NativeBinary {
		t.Errorf("mode = %v, want native", entry.Mode)
	}

	inv := runtime.NewInvoker(reg, runtime.Config{})
	res := inv.Invoke(context.Background(), "ECHO", runtime.Request{Message: "hello world"})
	if !res.Succeeded {
		t.Fatalf("invoke failed: %s (stderr %q)", res.Text, res.Stderr)
	}
	if res.Text != "hello world" {
		t.Errorf("text = %q, want %q", res.Text, "hello world")
	}
	if res.Response == nil || res.Response.Kind != runtime.JSONObject {
		t.Errorf("response = %+v, want a JSON object", res.Response)
	}
}

func TestInvokeCLI(t *testing.T) {
	env := setupTestEnv(t)
	installEcho(t, env, "echo")

	stdout, stderr, code := runCLI(t, "invoke", "echo", "ping", "pong")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}
	if strings.TrimSpace(stdout) != "ping pong" {
		t.Errorf("stdout = %q, want %q", stdout, "ping pong")
	}
}

func TestInvokeCLI_UnknownSkill(t *testing.T) {
	setupTestEnv(t)

	stdout, _, code := runCLI(t, "invoke", "ghost", "hi")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stdout, "MCP server 'ghost' not found.") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestSkillsCLI_ListsInstalled(t *testing.T) {
	env := setupTestEnv(t)
	installEcho(t, env, "echo")
	installEcho(t, env, "web-search")

	stdout, stderr, code := runCLI(t, "skills")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}
	for _, id := range []string{"echo", "web-search"} {
		if !strings.Contains(stdout, id) {
			t.Errorf("skills output missing %s:\n%s", id, stdout)
		}
	}
}
