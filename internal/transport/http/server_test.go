package http

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"wireline/internal/config"
	"wireline/internal/core"
	"wireline/internal/handler"
	"wireline/internal/monitor"
	"wireline/internal/wire"
)

// testServer wires a registry, repository, handler and HTTP server
// together the same way internal/app does, without the activity
// monitor unless a test explicitly starts one.
type testServer struct {
	registry   *core.Registry
	repository *core.Repository
	ts         *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	registry := core.NewRegistry(core.DefaultHistoryLimit)
	repository := core.NewRepository(core.DefaultHistoryLimit)
	h := handler.New(registry, repository, zerolog.Nop())
	srv := NewServer(registry, h, config.Config{Addr: ":0", ReadHeaderTimeout: time.Second}, zerolog.Nop())

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	return &testServer{registry: registry, repository: repository, ts: ts}
}

func (s *testServer) dial(t *testing.T, ctx context.Context, name string) *websocket.Conn {
	t.Helper()
	url := strings.Replace(s.ts.URL, "http", "ws", 1) + "/?name=" + name
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", name, err)
	}
	return conn
}

func readFrame(t *testing.T, ctx context.Context, conn *websocket.Conn) []byte {
	t.Helper()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return data
}

// drainJoin discards one PARTICIPANT_JOINED frame. Every participant,
// including the one that just connected, observes its own join because
// the registry already treats it as non-OFFLINE by broadcast time.
func drainJoin(t *testing.T, ctx context.Context, conn *websocket.Conn) {
	t.Helper()
	frame := readFrame(t, ctx, conn)
	if wire.ServerResponse(frame[0]) != wire.ParticipantJoined {
		t.Fatalf("expected to drain a PARTICIPANT_JOINED frame, got discriminant %d", frame[0])
	}
}

func lv(s string) []byte {
	return append([]byte{byte(len(s))}, []byte(s)...)
}

func TestScenarioS1GetParticipantsListsBoth(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := s.dial(t, ctx, "alice")
	defer alice.Close(websocket.StatusNormalClosure, "done")
	drainJoin(t, ctx, alice) // alice's own join

	bob := s.dial(t, ctx, "bob")
	defer bob.Close(websocket.StatusNormalClosure, "done")
	drainJoin(t, ctx, alice) // bob's join, observed by alice

	if err := alice.Write(ctx, websocket.MessageBinary, []byte{byte(wire.GetParticipants)}); err != nil {
		t.Fatalf("write: %v", err)
	}

	frame := readFrame(t, ctx, alice)
	if wire.ServerResponse(frame[0]) != wire.ParticipantList {
		t.Fatalf("expected PARTICIPANT_LIST, got discriminant %d", frame[0])
	}
	if frame[1] != 2 {
		t.Fatalf("expected 2 participants, got %d", frame[1])
	}
}

func TestScenarioS2PublicBroadcastAndHistory(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := s.dial(t, ctx, "alice")
	defer alice.Close(websocket.StatusNormalClosure, "done")
	drainJoin(t, ctx, alice)

	bob := s.dial(t, ctx, "bob")
	defer bob.Close(websocket.StatusNormalClosure, "done")
	drainJoin(t, ctx, alice) // bob's join, seen by alice
	drainJoin(t, ctx, bob)   // bob's own join

	send := []byte{byte(wire.SendCommunication)}
	send = append(send, lv("~")...)
	send = append(send, lv("hi")...)
	if err := bob.Write(ctx, websocket.MessageBinary, send); err != nil {
		t.Fatalf("write: %v", err)
	}

	aliceFrame := readFrame(t, ctx, alice)
	bobFrame := readFrame(t, ctx, bob)
	for _, f := range [][]byte{aliceFrame, bobFrame} {
		if wire.ServerResponse(f[0]) != wire.Communication {
			t.Fatalf("expected COMMUNICATION, got %d", f[0])
		}
	}

	fetch := []byte{byte(wire.FetchCommunications)}
	fetch = append(fetch, lv("~")...)
	if err := alice.Write(ctx, websocket.MessageBinary, fetch); err != nil {
		t.Fatalf("write: %v", err)
	}

	history := readFrame(t, ctx, alice)
	if wire.ServerResponse(history[0]) != wire.CommunicationHistory {
		t.Fatalf("expected COMMUNICATION_HISTORY, got %d", history[0])
	}
	if history[1] != 1 {
		t.Fatalf("expected 1 history entry, got %d", history[1])
	}
}

func TestScenarioS3BusyRecipientOnlyEchoesToSender(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := s.dial(t, ctx, "alice")
	defer alice.Close(websocket.StatusNormalClosure, "done")
	drainJoin(t, ctx, alice)

	bob := s.dial(t, ctx, "bob")
	defer bob.Close(websocket.StatusNormalClosure, "done")
	drainJoin(t, ctx, alice)
	drainJoin(t, ctx, bob)

	setBusy := []byte{byte(wire.SetAvailability)}
	setBusy = append(setBusy, lv("alice")...)
	setBusy = append(setBusy, byte(wire.Busy))
	if err := alice.Write(ctx, websocket.MessageBinary, setBusy); err != nil {
		t.Fatalf("write: %v", err)
	}

	aliceUpdate := readFrame(t, ctx, alice)
	bobUpdate := readFrame(t, ctx, bob)
	for _, f := range [][]byte{aliceUpdate, bobUpdate} {
		if wire.ServerResponse(f[0]) != wire.AvailabilityUpdate {
			t.Fatalf("expected AVAILABILITY_UPDATE, got %d", f[0])
		}
	}

	send := []byte{byte(wire.SendCommunication)}
	send = append(send, lv("alice")...)
	send = append(send, lv("ping")...)
	if err := bob.Write(ctx, websocket.MessageBinary, send); err != nil {
		t.Fatalf("write: %v", err)
	}

	bobEcho := readFrame(t, ctx, bob)
	if wire.ServerResponse(bobEcho[0]) != wire.Communication {
		t.Fatalf("expected bob's own echo, got %d", bobEcho[0])
	}

	// alice must receive nothing further; confirm by racing a short
	// read deadline against the connection instead of blocking forever.
	deadlineCtx, cancelDeadline := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancelDeadline()
	_, _, err := alice.Read(deadlineCtx)
	if err == nil {
		t.Fatalf("expected no further frames for the BUSY recipient")
	}
}

func TestScenarioS4DuplicateIdentifierRejected(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := s.dial(t, ctx, "alice")
	defer alice.Close(websocket.StatusNormalClosure, "done")

	resp, err := s.ts.Client().Get(s.ts.URL + "/?name=alice")
	if err != nil {
		t.Fatalf("duplicate connect request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 400 {
		t.Fatalf("expected HTTP 400 for a duplicate identifier, got %d", resp.StatusCode)
	}
}

func TestScenarioS5DisconnectThenSendFailsUnavailable(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := s.dial(t, ctx, "alice")
	bob := s.dial(t, ctx, "bob")
	defer bob.Close(websocket.StatusNormalClosure, "done")
	drainJoin(t, ctx, bob) // bob's own join

	alice.Close(websocket.StatusNormalClosure, "bye")

	offlineUpdate := readFrame(t, ctx, bob)
	if wire.ServerResponse(offlineUpdate[0]) != wire.AvailabilityUpdate || wire.Presence(offlineUpdate[len(offlineUpdate)-1]) != wire.Offline {
		t.Fatalf("expected OFFLINE availability update, got %v", offlineUpdate)
	}

	send := []byte{byte(wire.SendCommunication)}
	send = append(send, lv("alice")...)
	send = append(send, lv("?")...)
	if err := bob.Write(ctx, websocket.MessageBinary, send); err != nil {
		t.Fatalf("write: %v", err)
	}

	failure := readFrame(t, ctx, bob)
	if wire.ServerResponse(failure[0]) != wire.Failure || wire.FailureReason(failure[1]) != wire.ParticipantUnavailable {
		t.Fatalf("expected PARTICIPANT_UNAVAILABLE failure, got %v", failure)
	}
}

func TestReconnectBroadcastsParticipantJoinedAgain(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := s.dial(t, ctx, "alice")
	drainJoin(t, ctx, alice) // alice's own join

	bob := s.dial(t, ctx, "bob")
	defer bob.Close(websocket.StatusNormalClosure, "done")
	drainJoin(t, ctx, alice) // bob's join, seen by alice
	drainJoin(t, ctx, bob)   // bob's own join

	alice.Close(websocket.StatusNormalClosure, "bye")
	offlineUpdate := readFrame(t, ctx, bob)
	if wire.ServerResponse(offlineUpdate[0]) != wire.AvailabilityUpdate {
		t.Fatalf("expected bob to observe alice going OFFLINE, got discriminant %d", offlineUpdate[0])
	}

	alice2 := s.dial(t, ctx, "alice")
	defer alice2.Close(websocket.StatusNormalClosure, "done")

	joined := readFrame(t, ctx, bob)
	if wire.ServerResponse(joined[0]) != wire.ParticipantJoined {
		t.Fatalf("expected bob to observe alice's PARTICIPANT_JOINED on reconnect, got discriminant %d", joined[0])
	}
}

func TestScenarioS6IdleParticipantDemotedToAway(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := s.dial(t, ctx, "alice")
	defer alice.Close(websocket.StatusNormalClosure, "done")
	drainJoin(t, ctx, alice)

	bob := s.dial(t, ctx, "bob")
	defer bob.Close(websocket.StatusNormalClosure, "done")
	drainJoin(t, ctx, alice)
	drainJoin(t, ctx, bob)

	m := monitor.New(s.registry, zerolog.Nop(), 2*time.Second)
	m.SweepInterval(20 * time.Millisecond)

	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()
	go m.Run(monitorCtx)

	time.Sleep(3 * time.Second)

	// Both alice and bob have been idle, so alice may observe her own
	// demotion broadcast too; scan for bob's specifically.
	for i := 0; i < 4; i++ {
		frame := readFrame(t, ctx, alice)
		if wire.ServerResponse(frame[0]) != wire.AvailabilityUpdate {
			continue
		}
		idLen := int(frame[1])
		id := string(frame[2 : 2+idLen])
		status := frame[2+idLen]
		if id == "bob" && status == byte(wire.Away) {
			return
		}
	}
	t.Fatalf("did not observe bob's AWAY demotion")
}
