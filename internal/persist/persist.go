// Package persist writes the algorithm's raw output to disk.
package persist

import (
	"fmt"
	"os"
	"path/filepath"
)

// Error reports a failed persistence step. It is never fatal to a task.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("persist %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Write stores data verbatim at path and then hands ownership of the file to
// the owner of its directory.
func Write(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &Error{Op: "write", Path: path, Err: err}
	}
	if err := copyDirOwner(path, filepath.Dir(path)); err != nil {
		return &Error{Op: "chown", Path: path, Err: err}
	}
	return nil
}
