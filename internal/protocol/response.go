package protocol

import "encoding/json"

const (
	// MaxResponsePayload is a blunt safety cap on a success payload.
	// Truncation happens after JSON marshalling and can therefore cut a
	// record mid-token, producing invalid JSON. This matches the
	// original wire behavior and is a documented limitation, not a bug
	// to fix here.
	MaxResponsePayload = 1000

	// MaxErrorMessage caps the human-readable message of an error
	// response.
	MaxErrorMessage = 100
)

// CreateResult is the structured payload of a successful create
// response.
type CreateResult struct {
	Token  string `json:"token"`
	RoomID string `json:"roomId"`
}

// JoinResult is the structured payload of a successful join response.
type JoinResult struct {
	Token    string `json:"token"`
	RoomID   string `json:"roomId"`
	RoomName string `json:"roomName"`
}

// EncodeSuccess builds a complete state=1 response frame. The
// identifier always echoes the request's identifier field verbatim.
func EncodeSuccess(op Operation, identifier string, result any) ([]byte, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	if len(payload) > MaxResponsePayload {
		payload = payload[:MaxResponsePayload]
	}
	return encodeResponse(op, StateSuccess, identifier, payload), nil
}

// EncodeError builds a complete state=2 response frame carrying a
// truncated human-readable message.
func EncodeError(op Operation, identifier, message string) []byte {
	if len(message) > MaxErrorMessage {
		message = message[:MaxErrorMessage]
	}
	return encodeResponse(op, StateError, identifier, []byte(message))
}

func encodeResponse(op Operation, state State, identifier string, payload []byte) []byte {
	header := Header{
		IdentifierLen: byte(len(identifier)),
		Operation:     op,
		State:         state,
		PayloadLen:    len(payload),
	}
	frame := header.Encode()
	frame = append(frame, identifier...)
	frame = append(frame, payload...)
	return frame
}
