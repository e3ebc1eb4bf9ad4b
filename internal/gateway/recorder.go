package gateway

import (
	"context"
	"fmt"
	"sync"
)

// Operation names understood by the downstream booking adaptor.
const (
	OpUpdateCampaign = "update_campaign"
	OpSubmitSpots    = "submit_spots"
	OpFetchCampaign  = "fetch_campaign"
	OpNotifyFailure  = "notify_failure"
)

// Call is one recorded invocation.
type Call struct {
	Name    string
	Payload []byte
}

// Recorder is an in-memory Gateway. It answers each operation with queued
// responses, falling back to the operation's default, and records every
// call. It backs tests and dry runs.
type Recorder struct {
	mu       sync.Mutex
	calls    []Call
	queued   map[string][][]byte
	defaults map[string][]byte
	failures map[string]error
}

func NewRecorder() *Recorder {
	return &Recorder{
		queued:   map[string][][]byte{},
		defaults: map[string][]byte{},
		failures: map[string]error{},
	}
}

// Respond queues resp as the next answer to name.
func (r *Recorder) Respond(name string, resp []byte) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queued[name] = append(r.queued[name], resp)
	return r
}

// Default sets the answer to name once its queue is drained.
func (r *Recorder) Default(name string, resp []byte) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaults[name] = resp
	return r
}

// Fail makes every call to name return err.
func (r *Recorder) Fail(name string, err error) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[name] = err
	return r
}

func (r *Recorder) Invoke(ctx context.Context, name string, payload []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, Call{Name: name, Payload: append([]byte(nil), payload...)})
	if err := r.failures[name]; err != nil {
		return nil, fmt.Errorf("gateway %s: %w", name, err)
	}
	if q := r.queued[name]; len(q) > 0 {
		r.queued[name] = q[1:]
		return q[0], nil
	}
	if resp, ok := r.defaults[name]; ok {
		return resp, nil
	}
	return nil, fmt.Errorf("gateway %s: no response configured", name)
}

// Calls returns a copy of the recorded calls in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallsTo returns the recorded payloads sent to name.
func (r *Recorder) CallsTo(name string) [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out [][]byte
	for _, c := range r.calls {
		if c.Name == name {
			out = append(out, c.Payload)
		}
	}
	return out
}
