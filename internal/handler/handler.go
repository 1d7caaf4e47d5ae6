// Package handler dispatches decoded client requests against the
// registry and repository, producing the outbound frames those
// requests call for. It owns no connection state of its own; every
// method takes the requester's identifier and leaves delivery to the
// registry/participant Sink plumbing.
package handler

import (
	"github.com/rs/zerolog"

	"wireline/internal/core"
	"wireline/internal/metrics"
	"wireline/internal/wire"
)

// Handler wires together the registry, repository and logger behind
// the five client request kinds.
type Handler struct {
	registry   *core.Registry
	repository *core.Repository
	log        zerolog.Logger
}

// New builds a Handler over the given registry and repository.
func New(registry *core.Registry, repository *core.Repository, log zerolog.Logger) *Handler {
	return &Handler{registry: registry, repository: repository, log: log}
}

// sendTo delivers frame to participant id's live connection, if any.
// Silent no-op for an identifier that is not registered; a registered
// participant without a live connection, or with a full mailbox, only
// gets a debug log line.
func (h *Handler) sendTo(id string, frame []byte) {
	p, ok := h.registry.Get(id)
	if !ok {
		return
	}
	if !p.Deliver(frame) {
		h.log.Debug().Str("participant", id).Msg("dropped response, outbound full or closed")
	}
}

func (h *Handler) fail(requester string, reason wire.FailureReason) {
	h.sendTo(requester, wire.EncodeFailure(reason))
}

// HandleGetParticipants answers a GET_PARTICIPANTS request with the
// full PARTICIPANT_LIST snapshot.
func (h *Handler) HandleGetParticipants(requester string) {
	metrics.RequestsTotal.WithLabelValues("get_participants").Inc()
	h.log.Debug().Str("participant", requester).Msg("requests participant list")

	snapshot := h.registry.AllNonOffline()
	entries := make([]wire.ParticipantEntry, 0, len(snapshot))
	for _, p := range snapshot {
		entries = append(entries, wire.ParticipantEntry{ID: p.ID, Presence: p.Presence()})
	}
	h.sendTo(requester, wire.EncodeParticipantList(entries))
}

// HandleParticipantInfo answers a PARTICIPANT_INFO request for a
// single target identifier. A target that was never registered fails
// with PARTICIPANT_UNKNOWN; a target that is registered but OFFLINE
// still gets a PARTICIPANT_DETAILS reply carrying that presence.
func (h *Handler) HandleParticipantInfo(requester string, payload []byte) {
	metrics.RequestsTotal.WithLabelValues("participant_info").Inc()
	targetID, err := wire.DecodeParticipantInfo(payload)
	if err != nil {
		metrics.FrameDecodeErrorsTotal.WithLabelValues("participant_info").Inc()
		h.fail(requester, wire.ParticipantUnknown)
		return
	}
	h.log.Debug().Str("participant", requester).Str("target", targetID).Msg("requests participant info")

	target, ok := h.registry.Get(targetID)
	if !ok {
		h.fail(requester, wire.ParticipantUnknown)
		return
	}
	h.sendTo(requester, wire.EncodeParticipantDetails(targetID, target.Presence()))
}

// HandleSetAvailability answers a SET_AVAILABILITY request. A
// participant may only change its own presence; OFFLINE is not a
// settable target value (it is reserved for disconnect).
func (h *Handler) HandleSetAvailability(requester string, payload []byte) {
	metrics.RequestsTotal.WithLabelValues("set_availability").Inc()
	targetID, presence, err := wire.DecodeSetAvailability(payload)
	if err != nil || !presence.Valid() || presence == wire.Offline {
		metrics.FrameDecodeErrorsTotal.WithLabelValues("set_availability").Inc()
		h.fail(requester, wire.InvalidAvailability)
		return
	}

	h.log.Debug().Str("participant", requester).Str("target", targetID).
		Str("presence", presence.String()).Msg("requests availability change")

	if requester != targetID {
		h.fail(requester, wire.ParticipantUnknown)
		return
	}

	target, ok := h.registry.Get(targetID)
	if !ok || target.Presence() == wire.Offline {
		h.fail(requester, wire.ParticipantUnknown)
		return
	}

	h.registry.SetPresence(targetID, presence)
	h.registry.Broadcast(wire.EncodeAvailabilityUpdate(targetID, presence))
}

// HandleSendCommunication answers a SEND_COMMUNICATION request,
// routing to the public channel or to a single recipient depending on
// the decoded recipient field.
func (h *Handler) HandleSendCommunication(requester string, payload []byte) {
	metrics.RequestsTotal.WithLabelValues("send_communication").Inc()
	recipient, content, err := wire.DecodeSendCommunication(payload)
	if err != nil || content == "" {
		metrics.FrameDecodeErrorsTotal.WithLabelValues("send_communication").Inc()
		h.fail(requester, wire.CommunicationEmpty)
		return
	}

	h.log.Debug().Str("participant", requester).Str("recipient", recipient).Msg("sends communication")

	sender, ok := h.registry.Get(requester)
	if ok {
		sender.Touch()
	}

	response := wire.EncodeCommunication(requester, content)

	if recipient == core.PublicRecipient {
		h.repository.AddPublic(core.Communication{
			Sender: requester, Recipient: recipient, Content: content,
		})
		h.registry.Broadcast(response)
		return
	}

	target, ok := h.registry.Get(recipient)
	if !ok || target.Presence() == wire.Offline {
		h.fail(requester, wire.ParticipantUnavailable)
		return
	}

	h.repository.AddPrivate(core.Communication{
		Sender: requester, Recipient: recipient, Content: content,
	}, sender, target)

	delivered := target.Presence() != wire.Busy && target.Deliver(response)
	h.sendTo(requester, response)

	h.log.Debug().Str("from", requester).Str("to", recipient).Bool("delivered", delivered).
		Msg("communication routed")
}

// HandleFetchCommunications answers a FETCH_COMMUNICATIONS request for
// either the public channel or the requester's own private history.
// A participant cannot fetch anyone else's private history, even by
// naming that other participant as the channel.
func (h *Handler) HandleFetchCommunications(requester string, payload []byte) {
	metrics.RequestsTotal.WithLabelValues("fetch_communications").Inc()
	channel, err := wire.DecodeFetchCommunications(payload)
	if err != nil {
		metrics.FrameDecodeErrorsTotal.WithLabelValues("fetch_communications").Inc()
		h.fail(requester, wire.ParticipantUnknown)
		return
	}
	h.log.Debug().Str("participant", requester).Str("channel", channel).Msg("requests history")

	var history []core.Communication
	if channel == core.PublicRecipient {
		history = h.repository.GetPublicTail(wire.MaxContentLength)
	} else {
		self, ok := h.registry.Get(requester)
		if !ok {
			h.fail(requester, wire.ParticipantUnknown)
			return
		}
		history = h.repository.GetPrivateTail(self, wire.MaxContentLength)
	}

	entries := make([]wire.HistoryEntry, 0, len(history))
	for _, c := range history {
		entries = append(entries, wire.HistoryEntry{Sender: c.Sender, Content: c.Content})
	}
	h.sendTo(requester, wire.EncodeCommunicationHistory(entries))
}
