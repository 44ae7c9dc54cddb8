package questionnaire

import (
	"encoding/json"
	"testing"
)

func TestValue_IsEmpty(t *testing.T) {
	cases := []struct {
		name  string
		value Value
		want  bool
	}{
		{"absent", Value{}, true},
		{"empty string", StringValue(""), true},
		{"empty list", ListValue(), true},
		{"string", StringValue("knee"), false},
		{"zero number", NumberValue(0), false},
		{"false", BoolValue(false), false},
		{"list with element", ListValue(StringValue("a")), false},
		{"empty bundle", BundleValue(map[string]Value{}), false},
	}

	for _, tc := range cases {
		if got := tc.value.IsEmpty(); got != tc.want {
			t.Errorf("%s: IsEmpty() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestValue_Equal(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"equal strings", StringValue("knee"), StringValue("knee"), true},
		{"different strings", StringValue("knee"), StringValue("hip"), false},
		{"equal numbers", NumberValue(7), NumberValue(7), true},
		{"different numbers", NumberValue(7), NumberValue(8), false},
		{"equal bools", BoolValue(true), BoolValue(true), true},
		{"different bools", BoolValue(true), BoolValue(false), false},
		{"string vs number", StringValue("7"), NumberValue(7), false},
		{"bool vs number", BoolValue(false), NumberValue(0), false},
		{"absent vs absent", Value{}, Value{}, false},
		{"absent vs false", Value{}, BoolValue(false), false},
		{"identical lists never equal", ListValue(StringValue("a")), ListValue(StringValue("a")), false},
		{"identical bundles never equal", BundleValue(map[string]Value{"age": NumberValue(40)}), BundleValue(map[string]Value{"age": NumberValue(40)}), false},
	}

	for _, tc := range cases {
		if got := tc.a.Equal(tc.b); got != tc.want {
			t.Errorf("%s: Equal() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestValue_JSONRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		in   string
		kind Kind
	}{
		{"string", `"moderate"`, KindString},
		{"number", `7.5`, KindNumber},
		{"bool", `true`, KindBool},
		{"list", `["knee","hip"]`, KindList},
		{"bundle", `{"age":52,"height_cm":171}`, KindBundle},
		{"null", `null`, KindInvalid},
	}

	for _, tc := range cases {
		v, err := ParseValue([]byte(tc.in))
		if err != nil {
			t.Fatalf("%s: ParseValue: %v", tc.name, err)
		}
		if v.Kind() != tc.kind {
			t.Errorf("%s: kind = %v, want %v", tc.name, v.Kind(), tc.kind)
		}
		out, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("%s: marshal: %v", tc.name, err)
		}
		back, err := ParseValue(out)
		if err != nil {
			t.Fatalf("%s: reparse: %v", tc.name, err)
		}
		if back.Kind() != v.Kind() {
			t.Errorf("%s: round-trip changed kind %v -> %v", tc.name, v.Kind(), back.Kind())
		}
	}
}

func TestValue_ParseNestedShapes(t *testing.T) {
	v, err := ParseValue([]byte(`{"name":"Ada","age":52,"consent":true}`))
	if err != nil {
		t.Fatalf("ParseValue: %v", err)
	}
	fields, ok := v.AsBundle()
	if !ok {
		t.Fatal("expected bundle")
	}
	if name, _ := fields["name"].AsString(); name != "Ada" {
		t.Errorf("name = %q", name)
	}
	if age, _ := fields["age"].AsNumber(); age != 52 {
		t.Errorf("age = %v", age)
	}
	if consent, _ := fields["consent"].AsBool(); !consent {
		t.Error("consent should be true")
	}
}

func TestValue_Display(t *testing.T) {
	cases := []struct {
		value Value
		want  string
	}{
		{StringValue("left knee"), "left knee"},
		{NumberValue(7), "7"},
		{NumberValue(2.5), "2.5"},
		{BoolValue(true), "Yes"},
		{BoolValue(false), "No"},
		{ListValue(StringValue("knee"), StringValue("hip")), "knee, hip"},
		{BundleValue(map[string]Value{"b": NumberValue(2), "a": NumberValue(1)}), "a: 1, b: 2"},
		{Value{}, ""},
	}

	for _, tc := range cases {
		if got := tc.value.Display(); got != tc.want {
			t.Errorf("Display() = %q, want %q", got, tc.want)
		}
	}
}
