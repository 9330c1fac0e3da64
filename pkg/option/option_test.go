package option

import (
	"encoding/json"
	"testing"
)

func TestOption_Basics(t *testing.T) {
	some := Some("0x55d0")
	none := None[string]()

	if !some.IsSome() || some.IsNone() {
		t.Errorf("Some() should report a value")
	}
	if !none.IsNone() || none.IsSome() {
		t.Errorf("None() should report no value")
	}
	if got := none.UnwrapOr("fallback"); got != "fallback" {
		t.Errorf("UnwrapOr() = %q, want fallback", got)
	}
	if v, ok := some.Get(); !ok || v != "0x55d0" {
		t.Errorf("Get() = %q, %v", v, ok)
	}
	if got := Map(some, func(s string) int { return len(s) }).UnwrapOr(0); got != 6 {
		t.Errorf("Map() = %d, want 6", got)
	}
	if some.Filter(func(s string) bool { return s == "" }).IsSome() {
		t.Errorf("Filter() should drop non-matching values")
	}
	if some.IsZero() || !none.IsZero() {
		t.Errorf("IsZero() should mirror IsNone()")
	}
	if got := none.UnwrapOrElse(func() string { return "b" }); got != "b" {
		t.Errorf("UnwrapOrElse() = %q, want b", got)
	}
}

func TestOption_JSON(t *testing.T) {
	type record struct {
		Swallowing Option[string] `json:"swallowing"`
		Count      Option[int]    `json:"count"`
	}

	tests := []struct {
		name string
		in   record
		want string
	}{
		{
			name: "present values",
			in:   record{Swallowing: Some("0xabc"), Count: Some(2)},
			want: `{"swallowing":"0xabc","count":2}`,
		},
		{
			name: "absent values",
			in:   record{},
			want: `{"swallowing":null,"count":null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.in)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal() = %s, want %s", data, tt.want)
			}

			var out record
			if err := json.Unmarshal(data, &out); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if out.Swallowing.IsSome() != tt.in.Swallowing.IsSome() {
				t.Errorf("Swallowing presence changed after decode")
			}
			if out.Swallowing.UnwrapOr("") != tt.in.Swallowing.UnwrapOr("") {
				t.Errorf("Swallowing = %q, want %q", out.Swallowing.UnwrapOr(""), tt.in.Swallowing.UnwrapOr(""))
			}
		})
	}
}

func TestOption_UnmarshalMissingField(t *testing.T) {
	var out struct {
		Name Option[string] `json:"name"`
	}
	if err := json.Unmarshal([]byte(`{}`), &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out.Name.IsSome() {
		t.Errorf("missing field should decode as None")
	}
}
