package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Workspace is a job's scratch directory plus the outputs it produced.
type Workspace struct {
	dir string

	mu        sync.Mutex
	outputs   []string
	committed bool
	closed    bool
}

// NewWorkspace creates root/<jobID>, clearing leftovers from an earlier run.
func NewWorkspace(root, jobID string) (*Workspace, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" || strings.ContainsAny(jobID, `/\`) || jobID == "." || jobID == ".." {
		return nil, fmt.Errorf("workspace: invalid job id %q", jobID)
	}
	dir := filepath.Join(root, jobID)
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("workspace: clear %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("workspace: create %s: %w", dir, err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the scratch directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Path joins name onto the scratch directory.
func (w *Workspace) Path(name ...string) string {
	return filepath.Join(append([]string{w.dir}, name...)...)
}

// Output registers a file outside the scratch directory that Close removes
// unless the run commits.
func (w *Workspace) Output(path string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.outputs = append(w.outputs, path)
	return path
}

// Commit keeps registered outputs.
func (w *Workspace) Commit() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.committed = true
}

// Close removes the scratch directory and, without a commit, every
// registered output. It is safe to call more than once.
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	var errs []error
	if err := os.RemoveAll(w.dir); err != nil {
		errs = append(errs, err)
	}
	if !w.committed {
		for _, path := range w.outputs {
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
