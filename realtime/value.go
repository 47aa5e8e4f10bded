package realtime

import (
	"encoding/json"
	"fmt"
)

// ValueKind identifies the JSON type held by a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is an immutable JSON value. Event payloads are application-defined,
// so the wire carries them as Values rather than raw bytes: subscribers get
// a concrete type to switch on instead of digging through interface{}.
type Value struct {
	kind    ValueKind
	boolVal bool
	numVal  float64
	strVal  string
	arrVal  []Value
	objVal  map[string]Value
}

// Null returns the JSON null value. It is also the zero Value.
func Null() Value {
	return Value{kind: KindNull}
}

// Bool returns a boolean Value.
func Bool(b bool) Value {
	return Value{kind: KindBool, boolVal: b}
}

// Number returns a numeric Value.
func Number(n float64) Value {
	return Value{kind: KindNumber, numVal: n}
}

// String returns a string Value.
func String(s string) Value {
	return Value{kind: KindString, strVal: s}
}

// Array returns an array Value holding the given elements.
func Array(elems ...Value) Value {
	return Value{kind: KindArray, arrVal: elems}
}

// Object returns an object Value holding the given fields.
func Object(fields map[string]Value) Value {
	return Value{kind: KindObject, objVal: fields}
}

// Kind returns the JSON type of the value.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsNull reports whether the value is JSON null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Bool returns the boolean content, or false for non-boolean values.
func (v Value) Bool() bool {
	return v.kind == KindBool && v.boolVal
}

// Number returns the numeric content, or 0 for non-numeric values.
func (v Value) Number() float64 {
	if v.kind != KindNumber {
		return 0
	}
	return v.numVal
}

// String returns the string content, or "" for non-string values.
func (v Value) String() string {
	if v.kind != KindString {
		return ""
	}
	return v.strVal
}

// Array returns the element slice, or nil for non-array values.
// The returned slice must not be mutated.
func (v Value) Array() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arrVal
}

// Object returns the field map, or nil for non-object values.
// The returned map must not be mutated.
func (v Value) Object() map[string]Value {
	if v.kind != KindObject {
		return nil
	}
	return v.objVal
}

// Field looks up a field of an object value.
func (v Value) Field(name string) (Value, bool) {
	if v.kind != KindObject {
		return Null(), false
	}
	f, ok := v.objVal[name]
	return f, ok
}

// Index returns the i-th element of an array value.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.arrVal) {
		return Null(), false
	}
	return v.arrVal[i], true
}

// Len returns the number of elements or fields, or 0 for scalars.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arrVal)
	case KindObject:
		return len(v.objVal)
	default:
		return 0
	}
}

// Interface converts the value back to the native Go representation
// (nil, bool, float64, string, []any, map[string]any).
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.boolVal
	case KindNumber:
		return v.numVal
	case KindString:
		return v.strVal
	case KindArray:
		out := make([]any, len(v.arrVal))
		for i, e := range v.arrVal {
			out[i] = e.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.objVal))
		for k, f := range v.objVal {
			out[k] = f.Interface()
		}
		return out
	default:
		return nil
	}
}

// FromInterface converts a decoded JSON value (as produced by
// encoding/json into any) to a Value.
func FromInterface(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case float64:
		return Number(t), nil
	case string:
		return String(t), nil
	case []any:
		elems := make([]Value, len(t))
		for i, e := range t {
			v, err := FromInterface(e)
			if err != nil {
				return Null(), err
			}
			elems[i] = v
		}
		return Array(elems...), nil
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for k, e := range t {
			v, err := FromInterface(e)
			if err != nil {
				return Null(), err
			}
			fields[k] = v
		}
		return Object(fields), nil
	default:
		return Null(), fmt.Errorf("unsupported payload type %T", raw)
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := FromInterface(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
