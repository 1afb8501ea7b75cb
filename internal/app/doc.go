// Package app contains the application logic around a single task. It
// validates the task configuration, builds the logger and the real
// collaborators, runs the task and writes the result token, decoupled from
// any specific entrypoint like a CLI.
package app
