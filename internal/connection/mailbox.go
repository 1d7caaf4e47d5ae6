package connection

import (
	"context"
	"sync"

	"github.com/coder/websocket"
)

// outboundQueueSize bounds the per-connection mailbox. Once it is full,
// further frames are dropped (Send reports false) rather than letting
// the queue grow without bound; the connection itself stays open.
const outboundQueueSize = 64

// mailbox is the concrete core.Sink for one live connection: a single
// goroutine drains frames and writes them to the socket, so no two
// goroutines ever call Write on the same *websocket.Conn at once.
type mailbox struct {
	conn   *websocket.Conn
	frames chan []byte

	closeOnce sync.Once
	closed    chan struct{}
}

func newMailbox(conn *websocket.Conn) *mailbox {
	return &mailbox{
		conn:   conn,
		frames: make(chan []byte, outboundQueueSize),
		closed: make(chan struct{}),
	}
}

// Send enqueues frame for delivery. It reports false, without
// blocking, if the mailbox is closed or its queue is full.
func (m *mailbox) Send(frame []byte) bool {
	select {
	case <-m.closed:
		return false
	default:
	}

	select {
	case m.frames <- frame:
		return true
	default:
		return false
	}
}

// close stops accepting further frames. Safe to call more than once.
func (m *mailbox) close() {
	m.closeOnce.Do(func() { close(m.closed) })
}

// run drains the mailbox until ctx is cancelled or the mailbox is
// closed, writing each frame as a single binary WebSocket message.
func (m *mailbox) run(ctx context.Context) error {
	defer m.close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.closed:
			return nil
		case frame := <-m.frames:
			if err := m.conn.Write(ctx, websocket.MessageBinary, frame); err != nil {
				return err
			}
		}
	}
}
