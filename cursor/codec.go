package cursor

import (
	"encoding/base64"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// InvalidCursorError is returned when a cursor cannot be decoded.
type InvalidCursorError struct {
	Reason string
	Err    error
}

func (e *InvalidCursorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid cursor: %s: %v", e.Reason, e.Err)
	}
	return "invalid cursor: " + e.Reason
}

func (e *InvalidCursorError) Unwrap() error {
	return e.Err
}

const (
	versionKey = "v"
	version    = 1
)

var jsoniterForCursor = jsoniter.Config{
	SortMapKeys:           true,
	DisallowUnknownFields: true,
}.Froze()

// encode writes v as JSON stamped with the payload version, then as
// unpadded base64url.
func encode(v any) (string, error) {
	b, err := jsoniterForCursor.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal cursor to JSON")
	}
	b, err = sjson.SetBytes(b, versionKey, version)
	if err != nil {
		return "", errors.Wrap(err, "failed to stamp cursor version")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// decode reverses encode into v. required lists the keys the payload must
// carry besides the version.
func decode(text string, v any, required ...string) error {
	raw, err := base64.RawURLEncoding.DecodeString(text)
	if err != nil {
		return &InvalidCursorError{Reason: "not base64url", Err: err}
	}
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return &InvalidCursorError{Reason: "not a JSON object"}
	}

	ver := gjson.GetBytes(raw, versionKey)
	if ver.Type != gjson.Number || ver.Int() != version {
		return &InvalidCursorError{Reason: fmt.Sprintf("unsupported version %s", ver.Raw)}
	}
	for _, key := range required {
		if !gjson.GetBytes(raw, key).Exists() {
			return &InvalidCursorError{Reason: fmt.Sprintf("missing %q", key)}
		}
	}

	raw, err = sjson.DeleteBytes(raw, versionKey)
	if err != nil {
		return &InvalidCursorError{Reason: "malformed payload", Err: err}
	}
	if err := jsoniterForCursor.Unmarshal(raw, v); err != nil {
		return &InvalidCursorError{Reason: "unexpected shape", Err: err}
	}
	return nil
}
