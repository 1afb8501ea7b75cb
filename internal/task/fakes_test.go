package task

import (
	"context"
	"errors"
	"io/fs"
	"sync"

	"github.com/vk/hiertask/internal/hierarchy"
	"github.com/vk/hiertask/internal/invoker"
	"github.com/vk/hiertask/internal/ndex"
	"github.com/vk/hiertask/internal/notify"
)

type fakeInvoker struct {
	out   *invoker.Output
	err   error
	calls []invoker.Command
}

func (f *fakeInvoker) Run(_ context.Context, cmd invoker.Command) (*invoker.Output, error) {
	f.calls = append(f.calls, cmd)
	return f.out, f.err
}

type fakePublisher struct {
	url      string
	err      error
	requests []ndex.Request
	got      *hierarchy.Hierarchy
}

func (f *fakePublisher) Publish(_ context.Context, h *hierarchy.Hierarchy, req ndex.Request) (string, *ndex.Metadata, error) {
	f.requests = append(f.requests, req)
	f.got = h
	if f.err != nil {
		return "", nil, f.err
	}
	return f.url, &ndex.Metadata{UUID: "abc123"}, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recordingNotifier) Notify(_ context.Context, e notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingNotifier) states() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.State
	}
	return out
}

// files serves ReadFile from memory.
type files map[string]string

func (f files) read(path string) ([]byte, error) {
	s, ok := f[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return []byte(s), nil
}

var errUnwritable = errors.New("permission denied")
