package dto

import (
	"encoding/json"
	"fmt"
	"time"
)

// Socket event names.
const (
	EventStartStream = "start-stream"
	EventStopStream  = "stop-stream"
	EventWebcamFrame = "webcam-frame"
	EventFrame       = "frame"
	EventStats       = "stats"
)

// Envelope wraps every socket message: {"type": event, "ts": epoch-ms, "data": payload}.
type Envelope struct {
	Type      string          `json:"type"`
	Timestamp int64           `json:"ts,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope encodes data under the given event name, stamped with the current time.
func NewEnvelope(event string, data interface{}) ([]byte, error) {
	env := Envelope{
		Type:      event,
		Timestamp: time.Now().UnixMilli(),
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", event, err)
		}
		env.Data = raw
	}
	return json.Marshal(env)
}

// ParseEnvelope decodes a socket message.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("message has no type")
	}
	return &env, nil
}

// Decode unmarshals the payload into v. An absent payload leaves v untouched.
func (e *Envelope) Decode(v interface{}) error {
	if len(e.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Type, err)
	}
	return nil
}
