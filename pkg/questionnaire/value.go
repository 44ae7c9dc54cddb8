package questionnaire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the shape of a response value.
type Kind int

const (
	KindInvalid Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindBundle
)

// Value is a typed answer value. The zero Value means "not answered".
// Lists carry scalar elements and bundles carry scalar fields keyed by
// name, matching the shapes the question types produce.
type Value struct {
	kind   Kind
	str    string
	num    float64
	flag   bool
	list   []Value
	bundle map[string]Value
}

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// NumberValue returns a numeric Value.
func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }

// BoolValue returns a boolean Value.
func BoolValue(b bool) Value { return Value{kind: KindBool, flag: b} }

// ListValue returns a list Value holding the given elements.
func ListValue(elems ...Value) Value { return Value{kind: KindList, list: elems} }

// BundleValue returns a key/value bundle, the shape demographics
// questions produce.
func BundleValue(fields map[string]Value) Value { return Value{kind: KindBundle, bundle: fields} }

// Kind reports the shape of the value.
func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether the value is absent.
func (v Value) IsZero() bool { return v.kind == KindInvalid }

// IsEmpty reports whether the value counts as unanswered: absent, the
// empty string, or an empty list. Zero and false are answers.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindInvalid:
		return true
	case KindString:
		return v.str == ""
	case KindList:
		return len(v.list) == 0
	default:
		return false
	}
}

// AsString returns the payload of a string value.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the payload of a numeric value.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsBool returns the payload of a boolean value.
func (v Value) AsBool() (bool, bool) { return v.flag, v.kind == KindBool }

// AsList returns the elements of a list value.
func (v Value) AsList() ([]Value, bool) { return v.list, v.kind == KindList }

// AsBundle returns the fields of a bundle value.
func (v Value) AsBundle() (map[string]Value, bool) { return v.bundle, v.kind == KindBundle }

// Equal reports value equality for scalar kinds. Lists, bundles, and
// absent values never compare equal to anything.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.flag == o.flag
	default:
		return false
	}
}

// Display renders the value for human-readable output such as reports
// and coaching prompts.
func (v Value) Display() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		if v.flag {
			return "Yes"
		}
		return "No"
	case KindList:
		parts := make([]string, 0, len(v.list))
		for _, e := range v.list {
			parts = append(parts, e.Display())
		}
		return strings.Join(parts, ", ")
	case KindBundle:
		keys := make([]string, 0, len(v.bundle))
		for k := range v.bundle {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+v.bundle[k].Display())
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// MarshalJSON writes the value in its natural JSON shape. Absent values
// serialize as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInvalid:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.flag)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case KindBundle:
		if v.bundle == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.bundle)
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.kind)
	}
}

// UnmarshalJSON reads a value from its JSON shape: strings, numbers,
// booleans, arrays, objects, or null for absent.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	parsed, err := valueFromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseValue decodes a single JSON value into its typed form.
func ParseValue(data []byte) (Value, error) {
	var v Value
	if err := json.Unmarshal(data, &v); err != nil {
		return Value{}, err
	}
	return v, nil
}

func valueFromAny(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Value{}, nil
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("parse number %q: %w", t.String(), err)
		}
		return NumberValue(n), nil
	case []any:
		elems := make([]Value, 0, len(t))
		for _, e := range t {
			ev, err := valueFromAny(e)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, ev)
		}
		return ListValue(elems...), nil
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for k, e := range t {
			ev, err := valueFromAny(e)
			if err != nil {
				return Value{}, err
			}
			fields[k] = ev
		}
		return BundleValue(fields), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", raw)
	}
}
