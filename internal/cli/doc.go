// Package cli is responsible for parsing command-line arguments, merging them
// with an optional task file, validating user input, and handling
// process-level concerns like exit codes. It translates CLI flags into the
// application's internal configuration.
package cli
