package core

import (
	"sync"
	"time"

	"wireline/internal/wire"
)

// DefaultHistoryLimit is the history bound used when a caller doesn't
// have a configured value of its own (mainly tests).
const DefaultHistoryLimit = 1000

// Participant is the system's central entity: a named peer that has
// connected at least once since server start. The record itself is
// never removed from the registry; disconnect only clears its
// connection and sets presence to OFFLINE, which preserves
// personal-history across reconnects.
type Participant struct {
	ID string

	mu           sync.Mutex
	presence     wire.Presence
	conn         Sink
	lastActive   time.Time
	remoteAddr   string
	history      []Communication
	historyLimit int
}

func newParticipant(id string, conn Sink, addr string, historyLimit int) *Participant {
	return &Participant{
		ID:           id,
		presence:     wire.Available,
		conn:         conn,
		lastActive:   time.Now(),
		remoteAddr:   addr,
		historyLimit: historyLimit,
	}
}

// Presence returns the participant's current presence.
func (p *Participant) Presence() wire.Presence {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.presence
}

// RemoteAddr returns the network address observed at connect time.
func (p *Participant) RemoteAddr() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.remoteAddr
}

// LastActivity returns the timestamp of the participant's most recent
// request or presence change.
func (p *Participant) LastActivity() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastActive
}

// Touch refreshes last-activity to now. Called for every request frame
// read from this participant's connection.
func (p *Participant) Touch() {
	p.mu.Lock()
	p.lastActive = time.Now()
	p.mu.Unlock()
}

func (p *Participant) setPresence(presence wire.Presence) {
	p.mu.Lock()
	p.presence = presence
	p.lastActive = time.Now()
	p.mu.Unlock()
}

// Deliver writes frame to the participant's live connection, if any. It
// reports whether a connection was present and accepted the frame.
func (p *Participant) Deliver(frame []byte) bool {
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()
	if conn == nil {
		return false
	}
	return conn.Send(frame)
}

// attachConnection swaps in a new live connection without changing
// presence, last-activity, or remote address.
func (p *Participant) attachConnection(conn Sink) {
	p.mu.Lock()
	p.conn = conn
	p.mu.Unlock()
}

func (p *Participant) reactivate(conn Sink, addr string) {
	p.mu.Lock()
	p.conn = conn
	p.presence = wire.Available
	p.remoteAddr = addr
	p.lastActive = time.Now()
	p.mu.Unlock()
}

// clearConnection transitions the participant to OFFLINE and releases
// its connection. Safe to call more than once.
func (p *Participant) clearConnection() {
	p.mu.Lock()
	p.presence = wire.Offline
	p.conn = nil
	p.lastActive = time.Now()
	p.mu.Unlock()
}

// recordHistory appends comm to this participant's bounded personal
// history, evicting the oldest entry once historyLimit is exceeded.
func (p *Participant) recordHistory(comm Communication) {
	p.mu.Lock()
	p.history = append(p.history, comm)
	if len(p.history) > p.historyLimit {
		p.history = p.history[len(p.history)-p.historyLimit:]
	}
	p.mu.Unlock()
}

// HistoryTail returns the most recent n entries of this participant's
// personal history, oldest first, n capped at the wire protocol's
// maximum count field.
func (p *Participant) HistoryTail(n int) []Communication {
	if n > wire.MaxContentLength {
		n = wire.MaxContentLength
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if n > len(p.history) {
		n = len(p.history)
	}
	if n <= 0 {
		return nil
	}
	out := make([]Communication, n)
	copy(out, p.history[len(p.history)-n:])
	return out
}
