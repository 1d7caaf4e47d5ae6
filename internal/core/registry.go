package core

import (
	"sync"

	"wireline/internal/metrics"
	"wireline/internal/wire"
)

// Outcome describes what Register did with a registration attempt.
type Outcome int

const (
	Fresh Outcome = iota
	Reactivated
	RejectedDuplicate
)

// Registry is the authoritative identifier -> Participant mapping. All
// membership mutation happens under mu; broadcast takes its snapshot
// under the same lock (see Broadcast).
type Registry struct {
	mu           sync.RWMutex
	participants map[string]*Participant
	historyLimit int
}

// NewRegistry builds an empty registry. historyLimit bounds every
// participant's personal history created from this point on.
func NewRegistry(historyLimit int) *Registry {
	return &Registry{participants: make(map[string]*Participant), historyLimit: historyLimit}
}

// Register creates a fresh participant record for id, or reactivates an
// existing OFFLINE one in place (preserving its personal-history). A
// record whose presence is not OFFLINE is rejected as a duplicate.
func (r *Registry) Register(id string, conn Sink, addr string) (Outcome, *Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.participants[id]; ok {
		if existing.Presence() != wire.Offline {
			return RejectedDuplicate, nil
		}
		existing.reactivate(conn, addr)
		metrics.ConnectedParticipants.Inc()
		return Reactivated, existing
	}

	p := newParticipant(id, conn, addr, r.historyLimit)
	r.participants[id] = p
	metrics.ConnectedParticipants.Inc()
	return Fresh, p
}

// AttachConnection swaps in conn for an already-registered participant,
// without otherwise touching its presence or history. Used once a
// reserved identifier's WebSocket handshake completes.
func (r *Registry) AttachConnection(id string, conn Sink) bool {
	p, ok := r.Get(id)
	if !ok {
		return false
	}
	p.attachConnection(conn)
	return true
}

// Get returns the participant record for id, if any.
func (r *Registry) Get(id string) (*Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.participants[id]
	return p, ok
}

// SetPresence updates a participant's presence, reporting whether it
// exists.
func (r *Registry) SetPresence(id string, presence wire.Presence) bool {
	p, ok := r.Get(id)
	if !ok {
		return false
	}
	p.setPresence(presence)
	return true
}

// Disconnect transitions a participant to OFFLINE and releases its
// connection. Idempotent: calling it twice for the same participant
// is safe.
func (r *Registry) Disconnect(id string) {
	if p, ok := r.Get(id); ok {
		if p.Presence() != wire.Offline {
			metrics.ConnectedParticipants.Dec()
		}
		p.clearConnection()
	}
}

// AllNonOffline returns a snapshot of every non-OFFLINE participant,
// taken under the registry lock so a concurrent disconnect cannot be
// observed half-applied.
func (r *Registry) AllNonOffline() []*Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Participant, 0, len(r.participants))
	for _, p := range r.participants {
		if p.Presence() != wire.Offline {
			out = append(out, p)
		}
	}
	return out
}

// Broadcast writes frame to every currently non-OFFLINE participant's
// connection and returns the identifiers it could not deliver to. The
// (participant, connection) snapshot is taken under the registry lock
// (AllNonOffline), which is released before any socket write. Per-peer
// write ordering is guaranteed independently by each connection's own
// serialized outbound mailbox, so releasing the registry lock here
// cannot interleave two writes to the same connection.
func (r *Registry) Broadcast(frame []byte) []string {
	snapshot := r.AllNonOffline()
	var dropped []string
	delivered := 0
	for _, p := range snapshot {
		if p.Deliver(frame) {
			delivered++
		} else {
			dropped = append(dropped, p.ID)
		}
	}
	metrics.BroadcastFanout.Observe(float64(delivered))
	return dropped
}
