package wire

// Discriminant splits a raw inbound frame into its request kind and the
// remaining discriminant-specific payload. An empty frame is rejected
// rather than treated as a no-op; the caller drops it and logs.
func Discriminant(frame []byte) (ClientRequest, []byte, error) {
	if len(frame) == 0 {
		return 0, nil, ErrFrameEmpty
	}
	return ClientRequest(frame[0]), frame[1:], nil
}

// readLV reads a <len><bytes> field starting at offset and returns the
// decoded string plus the offset of the byte following it. It rejects a
// declared length that runs past the end of the buffer instead of
// truncating silently.
func readLV(data []byte, offset int) (string, int, error) {
	if offset >= len(data) {
		return "", offset, ErrFrameTooShort
	}
	n := int(data[offset])
	start := offset + 1
	end := start + n
	if end > len(data) {
		return "", offset, ErrLengthOverflow
	}
	return string(data[start:end]), end, nil
}

// DecodeParticipantInfo parses a PARTICIPANT_INFO payload: <len><target-id>.
func DecodeParticipantInfo(payload []byte) (targetID string, err error) {
	targetID, _, err = readLV(payload, 0)
	return targetID, err
}

// DecodeSetAvailability parses a SET_AVAILABILITY payload:
// <len><target-id><status byte>.
func DecodeSetAvailability(payload []byte) (targetID string, status Presence, err error) {
	targetID, next, err := readLV(payload, 0)
	if err != nil {
		return "", 0, err
	}
	if next >= len(payload) {
		return "", 0, ErrFrameTooShort
	}
	return targetID, Presence(payload[next]), nil
}

// DecodeSendCommunication parses a SEND_COMMUNICATION payload:
// <len><recipient-id><len><content>.
func DecodeSendCommunication(payload []byte) (recipient, content string, err error) {
	recipient, next, err := readLV(payload, 0)
	if err != nil {
		return "", "", err
	}
	content, _, err = readLV(payload, next)
	if err != nil {
		return "", "", err
	}
	return recipient, content, nil
}

// DecodeFetchCommunications parses a FETCH_COMMUNICATIONS payload:
// <len><channel-id>.
func DecodeFetchCommunications(payload []byte) (channel string, err error) {
	channel, _, err = readLV(payload, 0)
	return channel, err
}
