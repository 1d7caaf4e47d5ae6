// Command smoketest dials a running server, exercises a handful of
// requests over the binary protocol, and prints what comes back.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"

	"wireline/internal/core"
	"wireline/internal/wire"
)

func main() {
	if err := run(); err != nil {
		log.Printf("smoketest: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/?name=tester", "WebSocket address, including ?name=")
	peer := flag.String("peer", "", "if set, send a private communication to this participant instead of broadcasting")
	text := flag.String("text", "hello from smoketest", "communication content to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	recipient := core.PublicRecipient
	if *peer != "" {
		recipient = *peer
	}

	send := []byte{byte(wire.SendCommunication)}
	send = append(send, lengthPrefixed(recipient)...)
	send = append(send, lengthPrefixed(*text)...)
	if err := conn.Write(ctx, websocket.MessageBinary, send); err != nil {
		return fmt.Errorf("send communication: %w", err)
	}

	request := []byte{byte(wire.GetParticipants)}
	if err := conn.Write(ctx, websocket.MessageBinary, request); err != nil {
		return fmt.Errorf("request participant list: %w", err)
	}

	for {
		_, frame, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if len(frame) == 0 {
			continue
		}
		describe(frame)
	}
}

func lengthPrefixed(s string) []byte {
	return append([]byte{byte(len(s))}, []byte(s)...)
}

func describe(frame []byte) {
	kind := wire.ServerResponse(frame[0])
	switch kind {
	case wire.ParticipantJoined:
		fmt.Println("PARTICIPANT_JOINED")
	case wire.AvailabilityUpdate:
		fmt.Println("AVAILABILITY_UPDATE")
	case wire.Communication:
		fmt.Println("COMMUNICATION")
	case wire.ParticipantList:
		fmt.Printf("PARTICIPANT_LIST (%d entries)\n", frame[1])
	case wire.ParticipantDetails:
		fmt.Println("PARTICIPANT_DETAILS")
	case wire.CommunicationHistory:
		fmt.Printf("COMMUNICATION_HISTORY (%d entries)\n", frame[1])
	case wire.Failure:
		fmt.Printf("FAILURE reason=%d\n", frame[1])
	default:
		fmt.Printf("unknown discriminant %d\n", frame[0])
	}
}
