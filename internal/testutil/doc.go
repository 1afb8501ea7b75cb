// Package testutil holds helpers shared by tests across packages: a
// concurrency-safe log buffer, throwaway algorithm scripts and a minimal
// NDEx server.
package testutil
