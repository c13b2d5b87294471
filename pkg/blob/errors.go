package blob

import (
	"errors"
	"fmt"
)

// ErrDecode is matched by every DecodeError through errors.Is.
var ErrDecode = errors.New("blob: malformed blob")

// Stage identifies which layer of the blob failed to decode.
type Stage string

const (
	StageBase64 Stage = "base64"
	StageUTF8   Stage = "utf8"
	StageJSON   Stage = "json"
	StageShape  Stage = "shape"
)

// DecodeError reports a blob that could not be turned back into JSON.
type DecodeError struct {
	Stage Stage
	Err   error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("blob: decode %s layer failed", e.Stage)
	}
	return fmt.Sprintf("blob: decode %s layer: %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is lets errors.Is(err, ErrDecode) match any decode failure.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
