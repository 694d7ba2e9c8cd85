package prompt

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cast"
)

// Kind enumerates the argument value variants.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "null"
	}
}

// Value is an argument value supplied by a caller. The zero Value is null.
//
// Text is the canonical string form: strings verbatim, numbers in shortest
// decimal form ("42", "1.5"), booleans as "true"/"false", null as "". Arrays
// and objects become their compact JSON encoding and are carried as strings.
type Value struct {
	kind Kind
	text string
}

func String(s string) Value { return Value{kind: KindString, text: s} }

func Bool(b bool) Value {
	if b {
		return Value{kind: KindBool, text: "true"}
	}
	return Value{kind: KindBool, text: "false"}
}

func Null() Value { return Value{} }

// NewValue classifies a raw decoded value (JSON, YAML, flag input).
func NewValue(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v, nil
	case string:
		return String(v), nil
	case bool:
		return Bool(v), nil
	case json.Number, float32, float64, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		s, err := cast.ToStringE(v)
		if err != nil {
			return Value{}, fmt.Errorf("coerce number: %w", err)
		}
		return Value{kind: KindNumber, text: s}, nil
	case fmt.Stringer:
		return String(v.String()), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return Value{}, fmt.Errorf("coerce %T: %w", raw, err)
		}
		return String(string(data)), nil
	}
}

// Values coerces every entry of raw with NewValue.
func Values(raw map[string]any) (map[string]Value, error) {
	out := make(map[string]Value, len(raw))
	for k, v := range raw {
		val, err := NewValue(v)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", k, err)
		}
		out[k] = val
	}
	return out, nil
}

// StringValues wraps plain string arguments, as delivered by MCP clients.
func StringValues(raw map[string]string) map[string]Value {
	out := make(map[string]Value, len(raw))
	for k, v := range raw {
		out[k] = String(v)
	}
	return out
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) String() string { return v.text }

// Native returns v in the form handed to the template engine: nil, string,
// bool, int64 for integral numbers and float64 otherwise. Arrays and objects
// stay as their JSON text.
func (v Value) Native() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.text == "true"
	case KindNumber:
		if n, err := strconv.ParseInt(v.text, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(v.text, 64); err == nil {
			return f
		}
		return v.text
	default:
		return v.text
	}
}
