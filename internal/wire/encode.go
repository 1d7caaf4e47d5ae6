package wire

// ParticipantEntry is one row of a PARTICIPANT_LIST or PARTICIPANT_DETAILS
// frame: an identifier paired with its presence.
type ParticipantEntry struct {
	ID       string
	Presence Presence
}

// HistoryEntry is one row of a COMMUNICATION or COMMUNICATION_HISTORY
// frame: a sender paired with the content it sent.
type HistoryEntry struct {
	Sender  string
	Content string
}

func appendLV(buf []byte, s string) []byte {
	if len(s) > MaxContentLength {
		s = s[:MaxContentLength]
	}
	buf = append(buf, byte(len(s)))
	return append(buf, s...)
}

// EncodeFailure builds a FAILURE frame for the given reason.
func EncodeFailure(reason FailureReason) []byte {
	return []byte{byte(Failure), byte(reason)}
}

// EncodeParticipantList builds a PARTICIPANT_LIST frame. Entries beyond
// the 255th are silently truncated; order is whatever the caller
// already chose.
func EncodeParticipantList(entries []ParticipantEntry) []byte {
	if len(entries) > MaxContentLength {
		entries = entries[:MaxContentLength]
	}
	buf := []byte{byte(ParticipantList), byte(len(entries))}
	for _, e := range entries {
		buf = appendLV(buf, e.ID)
		buf = append(buf, byte(e.Presence))
	}
	return buf
}

// EncodeParticipantDetails builds a PARTICIPANT_DETAILS frame.
func EncodeParticipantDetails(id string, presence Presence) []byte {
	buf := []byte{byte(ParticipantDetails)}
	buf = appendLV(buf, id)
	return append(buf, byte(presence))
}

// EncodeParticipantJoined builds a PARTICIPANT_JOINED frame. The status
// byte is always AVAILABLE.
func EncodeParticipantJoined(id string) []byte {
	buf := []byte{byte(ParticipantJoined)}
	buf = appendLV(buf, id)
	return append(buf, byte(Available))
}

// EncodeAvailabilityUpdate builds an AVAILABILITY_UPDATE frame.
func EncodeAvailabilityUpdate(id string, presence Presence) []byte {
	buf := []byte{byte(AvailabilityUpdate)}
	buf = appendLV(buf, id)
	return append(buf, byte(presence))
}

// EncodeCommunication builds a COMMUNICATION frame.
func EncodeCommunication(sender, content string) []byte {
	buf := []byte{byte(Communication)}
	buf = appendLV(buf, sender)
	return appendLV(buf, content)
}

// EncodeCommunicationHistory builds a COMMUNICATION_HISTORY frame.
func EncodeCommunicationHistory(entries []HistoryEntry) []byte {
	if len(entries) > MaxContentLength {
		entries = entries[:MaxContentLength]
	}
	buf := []byte{byte(CommunicationHistory), byte(len(entries))}
	for _, e := range entries {
		buf = appendLV(buf, e.Sender)
		buf = appendLV(buf, e.Content)
	}
	return buf
}
