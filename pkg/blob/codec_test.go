package blob

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncode_KnownVectors(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  string
	}{
		{name: "object", value: map[string]any{"title": "x"}, want: "eyJ0aXRsZSI6IngifQ=="},
		{name: "array", value: []any{1, 2}, want: "WzEsMl0="},
		{name: "unicode", value: map[string]any{"café": "ü€😀"}, want: "eyJjYWbDqSI6IsO84oKs8J+YgCJ9"},
		{name: "empty object", value: map[string]any{}, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Encode(tc.value)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Encode = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEncode_DoesNotEscapeMarkup(t *testing.T) {
	encoded := MustEncode(map[string]any{"html": "<b>&</b>"})
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"html": "<b>&</b>"}, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip(t *testing.T) {
	values := map[string]any{
		"empty array":  []any{},
		"null":         nil,
		"true":         true,
		"false":        false,
		"number":       3.25,
		"negative":     -17.0,
		"string":       "plain",
		"unicode":      "Zürich – 東京 – 😀",
		"control":      "line\nbreak\t\"quoted\"",
		"nested":       map[string]any{"a": []any{1.0, "two", map[string]any{"three": nil}}, "b": false},
		"array":        []any{map[string]any{"x": 1.0}, []any{}, "s"},
		"object":       map[string]any{"title": "x", "creators": []any{map[string]any{"name": "Ådne"}}},
		"empty nested": map[string]any{"inner": map[string]any{}},
	}
	for name, value := range values {
		t.Run(name, func(t *testing.T) {
			encoded, err := Encode(value)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			decoded, err := Decode(encoded)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if diff := cmp.Diff(value, decoded); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_EmptyCanonicalization(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t ", "ICAg"} {
		got, err := Decode(input)
		if err != nil {
			t.Fatalf("decode %q: %v", input, err)
		}
		if diff := cmp.Diff(map[string]any{}, got); diff != "" {
			t.Fatalf("decode %q mismatch (-want +got):\n%s", input, diff)
		}
	}
}

func TestDecode_TrimsIncidentalWhitespace(t *testing.T) {
	got, err := Decode("\n   ICB7ImEiOjF9ICA=   \n")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"a": 1.0}, got); diff != "" {
		t.Fatalf("decode mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_Deterministic(t *testing.T) {
	const input = "eyJ0aXRsZSI6IngifQ=="
	first, err := Decode(input)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Decode(input)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("decode not deterministic (-first +again):\n%s", diff)
		}
	}
}

func TestDecode_Errors(t *testing.T) {
	cases := []struct {
		name  string
		input string
		stage Stage
	}{
		{name: "bad base64", input: "not base64!", stage: StageBase64},
		{name: "invalid utf8", input: "//4=", stage: StageUTF8},
		{name: "truncated json", input: "eyJhIjo=", stage: StageJSON},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.input)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("expected ErrDecode, got %v", err)
			}
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("expected *DecodeError, got %T", err)
			}
			if decodeErr.Stage != tc.stage {
				t.Fatalf("stage = %q, want %q", decodeErr.Stage, tc.stage)
			}
		})
	}
}

func TestDecodeRecord(t *testing.T) {
	rec, err := DecodeRecord("eyJ0aXRsZSI6IngifQ==")
	if err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if rec["title"] != "x" {
		t.Fatalf("unexpected record %v", rec)
	}

	_, err = DecodeRecord("WzEsMl0=")
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) || decodeErr.Stage != StageShape {
		t.Fatalf("expected shape error, got %v", err)
	}
}
