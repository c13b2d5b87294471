package blob

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-deposit/pkg/record"
)

// Encode serializes value into a blob. Empty objects encode to "".
func Encode(value any) (string, error) {
	if record.IsEmptyObject(value) {
		return "", nil
	}
	text, err := marshal(value)
	if err != nil {
		return "", fmt.Errorf("blob: encode: %w", err)
	}
	if !utf8.Valid(text) {
		return "", errors.New("blob: encode: serialized value is not valid UTF-8")
	}
	return base64.StdEncoding.EncodeToString(text), nil
}

// MustEncode is Encode for values known to serialize, such as fixtures.
func MustEncode(value any) string {
	out, err := Encode(value)
	if err != nil {
		panic(err)
	}
	return out
}

// Decode parses a blob back into a JSON value. Objects decode to
// map[string]any, numbers to float64. Blank input yields an empty object.
func Decode(text string) (any, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return map[string]any{}, nil
	}

	raw, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, &DecodeError{Stage: StageBase64, Err: err}
	}
	if !utf8.Valid(raw) {
		return nil, &DecodeError{Stage: StageUTF8, Err: errors.New("invalid UTF-8 sequence")}
	}

	payload := bytes.TrimSpace(raw)
	if len(payload) == 0 {
		return map[string]any{}, nil
	}

	var out any
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, &DecodeError{Stage: StageJSON, Err: err}
	}
	return out, nil
}

// DecodeRecord decodes a blob that must hold a JSON object.
func DecodeRecord(text string) (record.Record, error) {
	value, err := Decode(text)
	if err != nil {
		return nil, err
	}
	rec, ok := record.FromValue(value)
	if !ok {
		return nil, &DecodeError{Stage: StageShape, Err: fmt.Errorf("expected object, got %T", value)}
	}
	return rec, nil
}

func marshal(value any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
