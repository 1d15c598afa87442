package runtime

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/decyphertek-ai/adminotaur/internal/platform"
	"github.com/decyphertek-ai/adminotaur/internal/registry"
)

// Launch describes one child process to start.
type Launch struct {
	Path string
	Args []string
	Dir  string
	Env  map[string]string // applied on top of the invoker's environment
}

// Runtime turns a catalog entry into a Launch.
type Runtime interface {
	Prepare(entry registry.SkillEntry) (*Launch, error)
}

// DispatchRuntime returns the Runtime for an execution mode. interpreter is
// the configured script interpreter and may be empty.
func DispatchRuntime(mode registry.ExecutionMode, interpreter string) Runtime {
	switch mode {
	case registry.NativeBinary:
		return &NativeRuntime{}
	case registry.InterpretedScript:
		return &ScriptRuntime{Interpreter: interpreter}
	default:
		return &unknownRuntime{mode: mode}
	}
}

// NativeRuntime executes the entry point directly with no arguments.
type NativeRuntime struct{}

func (NativeRuntime) Prepare(entry registry.SkillEntry) (*Launch, error) {
	return &Launch{Path: entry.EntryPoint, Dir: entry.InstallPath}, nil
}

// Interpreters tried on PATH when none is configured.
var defaultInterpreters = []string{"python3", "python"}

// ScriptRuntime runs the entry point through an interpreter, preferring the
// skill's private .venv.
type ScriptRuntime struct {
	Interpreter string
}

func (s ScriptRuntime) Prepare(entry registry.SkillEntry) (*Launch, error) {
	interp, err := s.resolveInterpreter(entry.InstallPath)
	if err != nil {
		return nil, err
	}
	return &Launch{
		Path: interp,
		Args: []string{entry.EntryPoint},
		Dir:  entry.InstallPath,
		Env:  map[string]string{EnvPythonPath: entry.InstallPath},
	}, nil
}

func (s ScriptRuntime) resolveInterpreter(installPath string) (string, error) {
	venv := platform.VenvPython(installPath)
	if info, err := os.Stat(venv); err == nil && !info.IsDir() {
		return venv, nil
	}

	candidates := defaultInterpreters
	if s.Interpreter != "" {
		candidates = []string{s.Interpreter}
	}
	for _, c := range candidates {
		if p, err := exec.LookPath(c); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no script interpreter found (tried %v)", candidates)
}

// unknownRuntime is returned when the execution mode is not recognized.
type unknownRuntime struct {
	mode registry.ExecutionMode
}

func (u *unknownRuntime) Prepare(registry.SkillEntry) (*Launch, error) {
	return nil, fmt.Errorf("%w: %v", registry.ErrUnknownMode, u.mode)
}
