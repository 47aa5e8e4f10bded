package realtime

import (
	"encoding/json"
	"fmt"
)

// Protocol message types. Any other type is an application event name
// (e.g. "insert", "update", "delete").
const (
	MessageTypeSubscribe   = "subscribe"
	MessageTypeUnsubscribe = "unsubscribe"
	MessageTypePing        = "ping"
	MessageTypePong        = "pong"
)

// EventAny is the wildcard event filter matching every event on a channel.
const EventAny = "*"

// Message is the wire envelope exchanged with the realtime endpoint.
// Type, Channel and Event are always present on the wire, even when empty
// (protocol messages carry empty channel/event). Payload is optional and
// encoded only when non-null.
type Message struct {
	Type    string
	Channel string
	Event   string
	Payload Value
}

// wireMessage is the JSON shape of Message. Required fields are pointers so
// that decoding can distinguish a missing key from an empty string.
type wireMessage struct {
	Type    *string         `json:"type"`
	Channel *string         `json:"channel"`
	Event   *string         `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EncodeMessage serializes a message envelope to a text frame.
func EncodeMessage(msg Message) ([]byte, error) {
	wire := wireMessage{
		Type:    &msg.Type,
		Channel: &msg.Channel,
		Event:   &msg.Event,
	}
	if !msg.Payload.IsNull() {
		payload, err := json.Marshal(msg.Payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		wire.Payload = payload
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return data, nil
}

// DecodeMessage parses a text frame into a message envelope. A frame that is
// not valid JSON or is missing any required field fails with an error
// wrapping ErrMalformedMessage; the caller drops such frames.
func DecodeMessage(data []byte) (Message, error) {
	var wire wireMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if wire.Type == nil {
		return Message{}, fmt.Errorf("%w: missing type", ErrMalformedMessage)
	}
	if wire.Channel == nil {
		return Message{}, fmt.Errorf("%w: missing channel", ErrMalformedMessage)
	}
	if wire.Event == nil {
		return Message{}, fmt.Errorf("%w: missing event", ErrMalformedMessage)
	}
	if *wire.Type == "" {
		return Message{}, fmt.Errorf("%w: empty type", ErrMalformedMessage)
	}

	msg := Message{
		Type:    *wire.Type,
		Channel: *wire.Channel,
		Event:   *wire.Event,
		Payload: Null(),
	}
	if len(wire.Payload) > 0 {
		if err := json.Unmarshal(wire.Payload, &msg.Payload); err != nil {
			return Message{}, fmt.Errorf("%w: bad payload: %v", ErrMalformedMessage, err)
		}
	}
	return msg, nil
}

// pingMessage builds the protocol keep-alive frame.
func pingMessage() Message {
	return Message{Type: MessageTypePing, Payload: Null()}
}

// pongMessage builds the reply to an inbound ping.
func pongMessage() Message {
	return Message{Type: MessageTypePong, Payload: Null()}
}

// subscribeMessage builds the wire subscribe for a channel/filter pair.
// An empty filter is spelled "*" on the wire.
func subscribeMessage(channel, event string) Message {
	if event == "" {
		event = EventAny
	}
	return Message{Type: MessageTypeSubscribe, Channel: channel, Event: event, Payload: Null()}
}

// unsubscribeMessage builds the wire unsubscribe for a channel/filter pair.
func unsubscribeMessage(channel, event string) Message {
	if event == "" {
		event = EventAny
	}
	return Message{Type: MessageTypeUnsubscribe, Channel: channel, Event: event, Payload: Null()}
}
