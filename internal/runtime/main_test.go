package runtime

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/decyphertek-ai/adminotaur/internal/registry"
)

// fakeSkillEnv selects a behaviour when the test binary is re-executed as a
// skill.
const fakeSkillEnv = "ADMINOTAUR_FAKE_SKILL"

func TestMain(m *testing.M) {
	if behaviour := os.Getenv(fakeSkillEnv); behaviour != "" {
		os.Exit(fakeSkill(behaviour))
	}
	goleak.VerifyTestMain(m)
}

func fakeSkill(behaviour string) int {
	in, _ := io.ReadAll(os.Stdin)
	switch behaviour {
	case "echo":
		var req Request
		if err := json.Unmarshal(in, &req); err != nil {
			fmt.Fprintln(os.Stderr, "bad request:", err)
			return 2
		}
		out, _ := json.Marshal(map[string]string{"text": req.Message})
		os.Stdout.Write(out)
	case "request":
		os.Stdout.Write(in)
	case "plain":
		fmt.Print("hello")
	case "text":
		fmt.Print(`{"text":"ok"}`)
	case "response":
		fmt.Print(`{"response":"ok2"}`)
	case "empty":
		fmt.Fprint(os.Stderr, "nothing to say")
	case "blank":
		fmt.Fprint(os.Stderr, "nothing to say")
		fmt.Print(`{"text":"  "}`)
	case "fail":
		fmt.Fprint(os.Stderr, "  boom  \n")
		return 3
	case "invalid":
		os.Stdout.Write([]byte{0xff, 0xfe, 0xfd})
	case "marker":
		fmt.Print("❌ upstream broke")
	case "env":
		wd, _ := os.Getwd()
		out, _ := json.Marshal(map[string]string{
			"debug":       os.Getenv(EnvDebug),
			"standalone":  os.Getenv(EnvStandalone),
			"healthcheck": os.Getenv(EnvHealthcheck),
			"pythonpath":  os.Getenv(EnvPythonPath),
			"cwd":         wd,
			"args":        fmt.Sprint(os.Args[1:]),
		})
		os.Stdout.Write(out)
	case "sleep":
		if path := os.Getenv("ADMINOTAUR_FAKE_PID_FILE"); path != "" {
			_ = os.WriteFile(path, []byte(fmt.Sprint(os.Getpid())), 0644)
		}
		time.Sleep(30 * time.Second)
		fmt.Print("too late")
	default:
		fmt.Fprintf(os.Stderr, "unknown behaviour %q", behaviour)
		return 1
	}
	return 0
}

// installFake copies the test binary into <root>/<name>/<name>.mcp.
func installFake(t *testing.T, root, name string) string {
	t.Helper()
	self, err := os.Executable()
	if err != nil {
		t.Fatalf("locating test binary: %v", err)
	}
	data, err := os.ReadFile(self)
	if err != nil {
		t.Fatalf("reading test binary: %v", err)
	}
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, name+".mcp")
	if err := os.WriteFile(dst, data, 0755); err != nil {
		t.Fatal(err)
	}
	return dst
}

// fakeCatalog installs one fake skill per name and scans them.
func fakeCatalog(t *testing.T, names ...string) *registry.Catalog {
	t.Helper()
	root := t.TempDir()
	for _, n := range names {
		installFake(t, root, n)
	}
	return registry.Scan(registry.Roots{Skills: root}, registry.Options{})
}
