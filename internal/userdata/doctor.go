package userdata

import (
	"fmt"
	"io"
	"os"
)

// StoreRoot names one directory the host expects to find.
type StoreRoot struct {
	Label string // e.g. "skills"
	Path  string
}

// DirFact records whether an expected directory is present.
type DirFact struct {
	Label   string `json:"label"`
	Path    string `json:"path"`
	Present bool   `json:"present"`
}

// CheckStore validates the store directories and prints one status line per
// root. When fix is true, missing roots are created. The returned facts reflect
// the state after any fix was applied.
func CheckStore(w io.Writer, roots []StoreRoot, fix bool) []DirFact {
	fmt.Fprintln(w, "Store check:")

	facts := make([]DirFact, 0, len(roots))
	for _, r := range roots {
		if r.Path == "" {
			continue
		}
		facts = append(facts, DirFact{
			Label:   r.Label,
			Path:    r.Path,
			Present: checkDirExists(w, r.Path, fix),
		})
	}
	return facts
}

// StoreFacts reports directory presence without printing or fixing anything.
func StoreFacts(roots []StoreRoot) []DirFact {
	return CheckStore(io.Discard, roots, false)
}

func checkDirExists(w io.Writer, path string, fix bool) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		fmt.Fprintf(w, "  [MISS] %s does not exist\n", path)
		if fix {
			if mkErr := os.MkdirAll(path, DirPermNormal); mkErr != nil {
				fmt.Fprintf(w, "  [FAIL] Could not create %s: %v\n", path, mkErr)
				return false
			}
			fmt.Fprintf(w, "  [FIX ] Created %s\n", path)
			return true
		}
		return false
	}
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %s: %v\n", path, err)
		return false
	}
	if !info.IsDir() {
		fmt.Fprintf(w, "  [WARN] %s exists but is not a directory\n", path)
		return false
	}
	fmt.Fprintf(w, "  [ OK ] %s exists\n", path)
	return true
}
