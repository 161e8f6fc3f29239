package dispatch

import (
	"context"
	"time"

	"github.com/VanZoel112/vzoelupgrade-sub000/internal/telegram"
)

// Invocation is the per-message scratch state shared between the pipeline
// and the handler it invokes. It lives exactly one dispatch cycle: created
// when authorization succeeds, removed unconditionally when dispatch for
// its message finishes. It is not a cache.
type Invocation struct {
	MessageID int
	StartedAt time.Time

	// Status is the acknowledgement placeholder, nil when the command ran
	// without one.
	Status *telegram.MessageRef

	cancelAck context.CancelFunc
}

// Elapsed returns milliseconds since the invocation started.
func (inv *Invocation) Elapsed() int64 {
	return time.Since(inv.StartedAt).Milliseconds()
}

func (p *Pipeline) begin(messageID int) *Invocation {
	inv := &Invocation{MessageID: messageID, StartedAt: time.Now()}
	p.mu.Lock()
	p.invocations[messageID] = inv
	p.mu.Unlock()
	return inv
}

// finalize is the only place entries leave the invocation map. It runs
// deferred, so success, fault, and panic paths all pass through it.
func (p *Pipeline) finalize(messageID int) {
	p.mu.Lock()
	inv, ok := p.invocations[messageID]
	delete(p.invocations, messageID)
	p.mu.Unlock()
	if ok && inv.cancelAck != nil {
		inv.cancelAck()
	}
}

// ActiveInvocations returns the number of in-flight dispatch cycles.
func (p *Pipeline) ActiveInvocations() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.invocations)
}
