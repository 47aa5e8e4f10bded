package realtime

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeMessage(t *testing.T) {
	data := `{"type":"insert","channel":"orders","event":"insert","payload":{"id":1,"status":"open"}}`

	msg, err := DecodeMessage([]byte(data))
	if err != nil {
		t.Fatalf("DecodeMessage failed: %v", err)
	}

	if msg.Type != "insert" {
		t.Errorf("Type = %q, want insert", msg.Type)
	}
	if msg.Channel != "orders" {
		t.Errorf("Channel = %q, want orders", msg.Channel)
	}
	if msg.Event != "insert" {
		t.Errorf("Event = %q, want insert", msg.Event)
	}

	id, ok := msg.Payload.Field("id")
	if !ok || id.Number() != 1 {
		t.Errorf("payload id = %v (ok=%v), want 1", id.Number(), ok)
	}
	status, _ := msg.Payload.Field("status")
	if status.String() != "open" {
		t.Errorf("payload status = %q, want open", status.String())
	}
}

func TestDecodeMessage_ProtocolFrame(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"type":"pong","channel":"","event":""}`))
	if err != nil {
		t.Fatalf("DecodeMessage failed: %v", err)
	}
	if msg.Type != MessageTypePong {
		t.Errorf("Type = %q, want pong", msg.Type)
	}
	if !msg.Payload.IsNull() {
		t.Error("expected null payload for protocol frame")
	}
}

func TestDecodeMessage_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `not json at all`},
		{"missing type", `{"channel":"orders","event":"*"}`},
		{"missing channel", `{"type":"insert","event":"insert"}`},
		{"missing event", `{"type":"insert","channel":"orders"}`},
		{"empty type", `{"type":"","channel":"orders","event":"*"}`},
		{"bad payload", `{"type":"insert","channel":"orders","event":"insert","payload":{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMessage([]byte(tt.data))
			if !errors.Is(err, ErrMalformedMessage) {
				t.Errorf("got %v, want ErrMalformedMessage", err)
			}
		})
	}
}

func TestEncodeMessage_OmitsNullPayload(t *testing.T) {
	data, err := EncodeMessage(pingMessage())
	if err != nil {
		t.Fatalf("EncodeMessage failed: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := raw["payload"]; ok {
		t.Error("payload key should be absent for ping")
	}
	for _, key := range []string{"type", "channel", "event"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("required key %q missing from encoded frame", key)
		}
	}
}

func TestEncodeMessage_RoundTrip(t *testing.T) {
	in := Message{
		Type:    "update",
		Channel: "orders",
		Event:   "update",
		Payload: Object(map[string]Value{
			"id":     Number(7),
			"open":   Bool(true),
			"note":   Null(),
			"tags":   Array(String("a"), String("b")),
			"amount": Number(12.5),
		}),
	}

	data, err := EncodeMessage(in)
	if err != nil {
		t.Fatalf("EncodeMessage failed: %v", err)
	}
	out, err := DecodeMessage(data)
	if err != nil {
		t.Fatalf("DecodeMessage failed: %v", err)
	}

	if out.Type != in.Type || out.Channel != in.Channel || out.Event != in.Event {
		t.Errorf("envelope mismatch: got %+v", out)
	}
	tags, _ := out.Payload.Field("tags")
	if tags.Len() != 2 {
		t.Errorf("tags len = %d, want 2", tags.Len())
	}
	second, _ := tags.Index(1)
	if second.String() != "b" {
		t.Errorf("tags[1] = %q, want b", second.String())
	}
	open, _ := out.Payload.Field("open")
	if !open.Bool() {
		t.Error("open = false, want true")
	}
}

func TestSubscribeMessage_WildcardSpelling(t *testing.T) {
	msg := subscribeMessage("orders", "")
	if msg.Event != EventAny {
		t.Errorf("empty filter encoded as %q, want %q", msg.Event, EventAny)
	}

	msg = subscribeMessage("orders", "insert")
	if msg.Event != "insert" {
		t.Errorf("filter encoded as %q, want insert", msg.Event)
	}
}

func TestValue_Kinds(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		kind ValueKind
	}{
		{"null", Null(), KindNull},
		{"bool", Bool(true), KindBool},
		{"number", Number(3.5), KindNumber},
		{"string", String("x"), KindString},
		{"array", Array(Number(1)), KindArray},
		{"object", Object(map[string]Value{"k": Null()}), KindObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.v.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", tt.v.Kind(), tt.kind)
			}
		})
	}

	var zero Value
	if !zero.IsNull() {
		t.Error("zero Value should be null")
	}
}

func TestValue_InterfaceRoundTrip(t *testing.T) {
	src := `{"a":[1,true,null,"s"],"b":{"c":2.5}}`

	var v Value
	if err := json.Unmarshal([]byte(src), &v); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	a, ok := v.Field("a")
	if !ok || a.Kind() != KindArray || a.Len() != 4 {
		t.Fatalf("field a = %v, want 4-element array", a)
	}
	b, _ := v.Field("b")
	c, _ := b.Field("c")
	if c.Number() != 2.5 {
		t.Errorf("b.c = %v, want 2.5", c.Number())
	}

	native, ok := v.Interface().(map[string]any)
	if !ok {
		t.Fatal("Interface() should return map[string]any for objects")
	}
	if len(native) != 2 {
		t.Errorf("native map len = %d, want 2", len(native))
	}
}
