// Package notify reports task progress to the service that queued the task.
package notify

import "context"

// EventName is the socket.io event carrying state changes.
const EventName = "task:state"

// Event is one orchestrator state change.
type Event struct {
	RunID   string `json:"run_id"`
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
}

// Payload returns the event as the map emitted on the wire.
func (e Event) Payload() map[string]any {
	p := map[string]any{"run_id": e.RunID, "state": e.State}
	if e.Message != "" {
		p["message"] = e.Message
	}
	return p
}

// Nop discards every event.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(context.Context, Event) {}

// Close does nothing.
func (Nop) Close() error { return nil }
