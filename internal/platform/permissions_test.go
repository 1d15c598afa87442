package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestChmod(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "test.txt")
	if err := os.WriteFile(path, []byte("test"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Chmod(path, 0600); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("permissions = %o, want %o", perm, 0600)
		}
	}
}

func TestIsExecutable(t *testing.T) {
	tmp := t.TempDir()

	plain := filepath.Join(tmp, "plain.mcp")
	if err := os.WriteFile(plain, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	exe := filepath.Join(tmp, "exe.mcp")
	if err := os.WriteFile(exe, []byte("x"), 0755); err != nil {
		t.Fatal(err)
	}

	plainInfo, _ := os.Stat(plain)
	exeInfo, _ := os.Stat(exe)
	dirInfo, _ := os.Stat(tmp)

	if !IsExecutable(exeInfo) {
		t.Error("expected 0755 file to be executable")
	}
	if IsExecutable(dirInfo) {
		t.Error("directories are never executable entry points")
	}
	if IsExecutable(nil) {
		t.Error("nil info must not be executable")
	}
	if runtime.GOOS != "windows" && IsExecutable(plainInfo) {
		t.Error("expected 0644 file to be non-executable")
	}
}

func TestVenvPython(t *testing.T) {
	got := VenvPython("/opt/skill")
	want := filepath.Join("/opt/skill", ".venv", "bin", "python")
	if runtime.GOOS == "windows" {
		want = filepath.Join("/opt/skill", ".venv", "Scripts", "python.exe")
	}
	if got != want {
		t.Errorf("VenvPython = %q, want %q", got, want)
	}
}
