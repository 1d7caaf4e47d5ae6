// Package connection drives one WebSocket connection through
// identifier reservation, the handshake, active message dispatch, and
// teardown.
package connection

import (
	"context"
	"errors"
	"io"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"wireline/internal/core"
	"wireline/internal/handler"
	"wireline/internal/metrics"
	"wireline/internal/wire"
)

// ErrRejected is returned when a participant identifier could not be
// reserved at all (empty, reserved, or already taken).
var ErrRejected = errors.New("connection: identifier rejected")

// Reserve claims participantID in the registry before the WebSocket
// handshake begins, mirroring how the original system reserved a slot
// ahead of accepting the upgrade so a rejection never requires tearing
// down an already-open socket.
func Reserve(registry *core.Registry, participantID, remoteAddr string) (core.Outcome, *core.Participant, error) {
	if participantID == "" || participantID == core.PublicRecipient {
		return 0, nil, ErrRejected
	}
	outcome, participant := registry.Register(participantID, nil, remoteAddr)
	if outcome == core.RejectedDuplicate {
		return outcome, nil, ErrRejected
	}
	return outcome, participant, nil
}

// Release undoes a Reserve that never reached a live connection, e.g.
// because the WebSocket handshake itself failed afterward.
func Release(registry *core.Registry, participantID string) {
	registry.Disconnect(participantID)
}

// Handle attaches conn to an already-reserved participant and runs the
// connection until it closes. wasFresh only affects logging; a
// PARTICIPANT_JOINED notification goes out on every successful connect,
// including a reconnect of a previously-OFFLINE identifier.
func Handle(
	ctx context.Context,
	conn *websocket.Conn,
	participant *core.Participant,
	wasFresh bool,
	registry *core.Registry,
	h *handler.Handler,
	log zerolog.Logger,
) error {
	box := newMailbox(conn)
	registry.AttachConnection(participant.ID, box)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Info().Str("participant", participant.ID).Bool("fresh", wasFresh).Msg("connection active")

	registry.Broadcast(wire.EncodeParticipantJoined(participant.ID))

	writeErrCh := make(chan error, 1)
	go func() { writeErrCh <- box.run(ctx) }()

	readErr := readLoop(ctx, conn, participant, h, log)

	cancel()
	<-writeErrCh

	registry.Disconnect(participant.ID)
	registry.Broadcast(wire.EncodeAvailabilityUpdate(participant.ID, wire.Offline))
	log.Info().Str("participant", participant.ID).Msg("connection closed")

	status := websocket.StatusNormalClosure
	if readErr != nil && !isBenignClose(readErr) {
		status = websocket.StatusInternalError
	}
	conn.Close(status, "closing")
	return readErr
}

func isBenignClose(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return true
	}
	var closeErr websocket.CloseError
	if errors.As(err, &closeErr) {
		return closeErr.Code == websocket.StatusNormalClosure || closeErr.Code == websocket.StatusGoingAway
	}
	return false
}

func readLoop(ctx context.Context, conn *websocket.Conn, participant *core.Participant, h *handler.Handler, log zerolog.Logger) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			continue
		}
		participant.Touch()
		dispatch(participant.ID, data, h, log)
	}
}

func dispatch(participantID string, frame []byte, h *handler.Handler, log zerolog.Logger) {
	kind, payload, err := wire.Discriminant(frame)
	if err != nil {
		log.Debug().Str("participant", participantID).Err(err).Msg("dropped malformed frame")
		metrics.FrameDecodeErrorsTotal.WithLabelValues("discriminant").Inc()
		return
	}

	switch kind {
	case wire.GetParticipants:
		h.HandleGetParticipants(participantID)
	case wire.ParticipantInfo:
		h.HandleParticipantInfo(participantID, payload)
	case wire.SetAvailability:
		h.HandleSetAvailability(participantID, payload)
	case wire.SendCommunication:
		h.HandleSendCommunication(participantID, payload)
	case wire.FetchCommunications:
		h.HandleFetchCommunications(participantID, payload)
	default:
		log.Debug().Str("participant", participantID).Uint8("discriminant", uint8(kind)).
			Msg("unknown discriminant")
		metrics.FrameDecodeErrorsTotal.WithLabelValues("unknown_discriminant").Inc()
	}
}
