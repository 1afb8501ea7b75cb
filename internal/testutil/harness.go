package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// WriteScript creates an executable /bin/sh script named name in dir.
func WriteScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

// NDEx records the calls made against a minimal NDEx v2 surface. Every
// upload is answered with the URL of network NetworkID.
type NDEx struct {
	NetworkID string

	mu         sync.Mutex
	uploads    int
	user, pass string
	public     []string
}

// NewNDEx starts a fake NDEx server that is closed with the test.
func NewNDEx(t *testing.T, networkID string) (*httptest.Server, *NDEx) {
	t.Helper()
	rec := &NDEx{NetworkID: networkID}
	var base string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/network", func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.user, rec.pass, _ = r.BasicAuth()
		rec.uploads++
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, base+"/v2/network/"+rec.NetworkID)
	})
	mux.HandleFunc("PUT /v2/network/{id}/systemproperty", func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.public = append(rec.public, r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	base = srv.URL
	t.Cleanup(srv.Close)
	return srv, rec
}

// Uploads returns the number of networks uploaded.
func (n *NDEx) Uploads() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.uploads
}

// BasicAuth returns the credentials of the last upload.
func (n *NDEx) BasicAuth() (user, pass string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.user, n.pass
}

// Published returns the ids of networks made public, in order.
func (n *NDEx) Published() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.public...)
}
