//go:build integration

package integration_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"sync"
	"testing"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir  string // ADMINOTAUR_HOME
	StoreDir string // <home>/store
}

// setupTestEnv creates an isolated home and store and points the host at them.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	home := t.TempDir()
	env := &testEnv{HomeDir: home, StoreDir: filepath.Join(home, "store")}
	t.Setenv("ADMINOTAUR_HOME", env.HomeDir)
	t.Setenv("ADMINOTAUR_STORE", "")

	for _, sub := range []string{"app", "mcp", "agent"} {
		if err := os.MkdirAll(filepath.Join(env.StoreDir, sub), 0755); err != nil {
			t.Fatalf("creating store/%s: %v", sub, err)
		}
	}
	return env
}

func requireGo(t *testing.T) string {
	t.Helper()
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go toolchain not available, skipping")
	}
	return goBin
}

func exeName(name string) string {
	if goruntime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

var (
	buildOnce sync.Once
	buildDir  string
	buildErr  error
	cliBin    string
	echoBin   string
)

// buildArtifacts compiles the CLI and the echo reference skill once per run.
func buildArtifacts(t *testing.T) (cli, echo string) {
	t.Helper()
	goBin := requireGo(t)

	buildOnce.Do(func() {
		buildDir, buildErr = os.MkdirTemp("", "adminotaur-it-")
		if buildErr != nil {
			return
		}
		cliBin = filepath.Join(buildDir, exeName("adminotaur"))
		echoBin = filepath.Join(buildDir, exeName("echo"))

		if buildErr = goBuild(goBin, filepath.Join("..", ".."), cliBin); buildErr != nil {
			return
		}
		buildErr = goBuild(goBin, filepath.Join("..", "..", "catalog", "mcp", "echo"), echoBin)
	})
	if buildErr != nil {
		t.Fatalf("building test artifacts: %v", buildErr)
	}
	return cliBin, echoBin
}

func goBuild(goBin, dir, out string) error {
	cmd := exec.Command(goBin, "build", "-o", out, ".")
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &buildError{dir: dir, err: err, stderr: stderr.String()}
	}
	return nil
}

type buildError struct {
	dir    string
	err    error
	stderr string
}

func (e *buildError) Error() string {
	return "go build in " + e.dir + ": " + e.err.Error() + "\n" + e.stderr
}

// installEcho copies the echo binary into the store as <id>/<id>.mcp.
func installEcho(t *testing.T, env *testEnv, id string) string {
	t.Helper()
	_, echo := buildArtifacts(t)

	data, err := os.ReadFile(echo)
	if err != nil {
		t.Fatalf("reading echo binary: %v", err)
	}
	dir := filepath.Join(env.StoreDir, "mcp", id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating %s: %v", dir, err)
	}
	path := filepath.Join(dir, id+".mcp")
	if err := os.WriteFile(path, data, 0755); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// runCLI executes the built CLI and returns stdout, stderr and the exit code.
func runCLI(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	cli, _ := buildArtifacts(t)

	cmd := exec.Command(cli, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	code := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		code = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("running %s: %v", cli, err)
	}
	return stdout.String(), stderr.String(), code
}

func TestMain(m *testing.M) {
	code := m.Run()
	if buildDir != "" {
		os.RemoveAll(buildDir)
	}
	os.Exit(code)
}
