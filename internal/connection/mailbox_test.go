package connection

import "testing"

func TestMailboxRejectsFramesOnceClosed(t *testing.T) {
	m := newMailbox(nil)
	m.close()
	if m.Send([]byte{1}) {
		t.Fatalf("expected Send to report false on a closed mailbox")
	}
}

func TestMailboxRejectsWhenQueueFull(t *testing.T) {
	m := newMailbox(nil)
	for i := 0; i < outboundQueueSize; i++ {
		if !m.Send([]byte{byte(i)}) {
			t.Fatalf("unexpected rejection filling the queue at %d", i)
		}
	}
	if m.Send([]byte{0xFF}) {
		t.Fatalf("expected Send to report false once the queue is full")
	}
}
