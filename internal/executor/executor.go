// Package executor applies a finalized generation plan to the filesystem
// as a single logical transaction.
//
// Writes happen in plan order. A failure partway through triggers a
// synchronous rollback: files created in this run are deleted and files
// modified in this run are restored from their in-memory backups. Nothing
// written before this invocation is ever touched.
package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/quillgen/quill/internal/output"
	"github.com/quillgen/quill/internal/plan"
)

// WriteError reports a filesystem failure mid-apply, after rollback has
// already run. Restored lists every path the rollback put back.
type WriteError struct {
	Path     string
	Restored []string
	Err      error
}

func (e *WriteError) Error() string {
	msg := fmt.Sprintf("writing %s: %v", e.Path, e.Err)
	if len(e.Restored) > 0 {
		msg += fmt.Sprintf(" (rolled back: %s)", strings.Join(e.Restored, ", "))
	}
	return msg
}

func (e *WriteError) Unwrap() error { return e.Err }

// Result reports what a successful apply did. Written matches the plan's
// path set exactly; there are no hidden writes.
type Result struct {
	Written []string
}

// backup holds a pre-existing file's content and mode so rollback can
// reproduce it exactly.
type backup struct {
	data []byte
	mode os.FileMode
}

// Apply writes every artifact of p under root. Artifacts marked Existing
// are backed up before being overwritten so rollback can restore them.
func Apply(root string, p *plan.Plan) (*Result, error) {
	backups := make(map[string]backup)
	created := make(map[string]bool)
	var written []string
	var newDirs []string // directories created this run, in creation order

	rollback := func() []string {
		var restored []string
		// Undo in reverse write order.
		for i := len(written) - 1; i >= 0; i-- {
			rel := written[i]
			abs := filepath.Join(root, filepath.FromSlash(rel))
			if created[rel] {
				if err := os.Remove(abs); err != nil {
					output.Warn("rollback could not remove file", "path", rel, "error", err)
					continue
				}
			} else {
				prev := backups[rel]
				if err := os.WriteFile(abs, prev.data, prev.mode); err != nil {
					output.Warn("rollback could not restore file", "path", rel, "error", err)
					continue
				}
				if err := os.Chmod(abs, prev.mode); err != nil {
					output.Warn("rollback could not restore file mode", "path", rel, "error", err)
				}
			}
			restored = append(restored, rel)
		}
		// Remove directories this run introduced, deepest first. Remove
		// fails on non-empty directories, which is exactly what we want if
		// something else appeared there meanwhile.
		for i := len(newDirs) - 1; i >= 0; i-- {
			os.Remove(newDirs[i])
		}
		sort.Strings(restored)
		return restored
	}

	for _, artifact := range p.Artifacts {
		abs := filepath.Join(root, filepath.FromSlash(artifact.Path))

		prev, err := os.ReadFile(abs)
		switch {
		case err == nil:
			info, statErr := os.Stat(abs)
			if statErr != nil {
				return nil, &WriteError{Path: artifact.Path, Restored: rollback(), Err: statErr}
			}
			backups[artifact.Path] = backup{data: prev, mode: info.Mode().Perm()}
		case os.IsNotExist(err):
			created[artifact.Path] = true
		default:
			return nil, &WriteError{Path: artifact.Path, Restored: rollback(), Err: err}
		}

		missing := missingAncestors(root, filepath.Dir(abs))
		if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			return nil, &WriteError{Path: artifact.Path, Restored: rollback(), Err: err}
		}
		newDirs = append(newDirs, missing...)

		if err := os.WriteFile(abs, artifact.Content, artifact.Mode); err != nil {
			return nil, &WriteError{Path: artifact.Path, Restored: rollback(), Err: err}
		}
		written = append(written, artifact.Path)

		// WriteFile only applies the mode to files it creates; overwritten
		// files keep theirs, so enforce the planned mode explicitly.
		if err := os.Chmod(abs, artifact.Mode); err != nil {
			return nil, &WriteError{Path: artifact.Path, Restored: rollback(), Err: err}
		}
		output.Debug("wrote artifact", "path", artifact.Path, "bytes", len(artifact.Content))
	}

	return &Result{Written: written}, nil
}

// missingAncestors lists the directories between root and dir that do not
// exist yet, shallowest first. dir itself is included when absent.
func missingAncestors(root, dir string) []string {
	var missing []string
	for d := dir; len(d) >= len(root) && d != "."; d = filepath.Dir(d) {
		if _, err := os.Stat(d); err == nil {
			break
		}
		missing = append(missing, d)
		if d == root {
			break
		}
	}
	// Reverse into creation order.
	for i, j := 0, len(missing)-1; i < j; i, j = i+1, j-1 {
		missing[i], missing[j] = missing[j], missing[i]
	}
	return missing
}
