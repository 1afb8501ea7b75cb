// Package invoker runs the external clustering executable as a child process.
//
// The command line is always built as a discrete argument vector, never as a
// shell string, so paths and values containing whitespace reach the child
// untouched. The invoker captures the exit code, stdout and stderr but does
// not interpret the exit code; that decision belongs to the caller.
package invoker
