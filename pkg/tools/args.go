package tools

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/minbar/pkg/core"
)

// Args is the merged argument map of one call with typed accessors.
// Accessors treat an explicit null the same as an absent key.
type Args core.Metadata

// Has reports whether key is present and non-null.
func (a Args) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

// String returns the string at key, or "" when absent.
func (a Args) String(key string) (string, error) {
	if !a.Has(key) {
		return "", nil
	}
	s, ok := a[key].(string)
	if !ok {
		return "", invalid(key, "a string", a[key])
	}
	return s, nil
}

// RequiredString is like String but rejects absent or blank values.
func (a Args) RequiredString(key string) (string, error) {
	s, err := a.String(key)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingRequiredArg, key)
	}
	return s, nil
}

// Bool returns the boolean at key and whether it was supplied. The strings
// accepted by strconv.ParseBool are coerced.
func (a Args) Bool(key string) (value, ok bool, err error) {
	if !a.Has(key) {
		return false, false, nil
	}
	switch v := a[key].(type) {
	case bool:
		return v, true, nil
	case string:
		b, perr := strconv.ParseBool(strings.TrimSpace(v))
		if perr != nil {
			return false, false, invalid(key, "a boolean", v)
		}
		return b, true, nil
	default:
		return false, false, invalid(key, "a boolean", v)
	}
}

// Object returns the JSON object at key, or an empty map when absent.
func (a Args) Object(key string) (core.Metadata, error) {
	if !a.Has(key) {
		return core.Metadata{}, nil
	}
	obj, ok := asObject(a[key])
	if !ok {
		return nil, invalid(key, "an object", a[key])
	}
	return obj, nil
}

// List returns the array at key, or nil when absent.
func (a Args) List(key string) ([]any, error) {
	if !a.Has(key) {
		return nil, nil
	}
	list, ok := a[key].([]any)
	if !ok {
		return nil, invalid(key, "an array", a[key])
	}
	return list, nil
}

// Image decodes the {filename, b64} payload at key. It returns nil when the
// key is absent.
func (a Args) Image(key string) (*Image, error) {
	if !a.Has(key) {
		return nil, nil
	}
	img, err := DecodeImage(a[key])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &img, nil
}

// Image is a decoded image payload.
type Image struct {
	Filename string
	Data     []byte
}

// DecodeImage converts a {filename, b64} object into an Image. The b64 value
// may be a bare base64 string or a data URL. "bytes" is accepted as an alias
// of "b64".
func DecodeImage(v any) (Image, error) {
	obj, ok := asObject(v)
	if !ok {
		return Image{}, fmt.Errorf("%w: image must be an object with filename and b64", core.ErrInvalidArgument)
	}

	filename, _ := obj["filename"].(string)
	if strings.TrimSpace(filename) == "" {
		return Image{}, fmt.Errorf("%w: image filename", ErrMissingRequiredArg)
	}

	payload, _ := obj["b64"].(string)
	if payload == "" {
		payload, _ = obj["bytes"].(string)
	}
	if payload == "" {
		return Image{Filename: filename}, fmt.Errorf("%w: image b64 for %s", ErrMissingRequiredArg, filename)
	}

	data, err := decodeBase64(payload)
	if err != nil {
		return Image{Filename: filename}, fmt.Errorf("%w: %s is not valid base64: %v", core.ErrInvalidArgument, filename, err)
	}
	return Image{Filename: filename, Data: data}, nil
}

func decodeBase64(payload string) ([]byte, error) {
	if i := strings.Index(payload, ";base64,"); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+len(";base64,"):]
	}
	payload = strings.TrimSpace(payload)
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if raw, rerr := base64.RawStdEncoding.DecodeString(payload); rerr == nil {
			return raw, nil
		}
		return nil, err
	}
	return data, nil
}

func asObject(v any) (core.Metadata, bool) {
	switch obj := v.(type) {
	case map[string]any:
		return core.Metadata(obj), true
	case core.Metadata:
		return obj, true
	default:
		return nil, false
	}
}

func invalid(key, want string, got any) error {
	return fmt.Errorf("%w: %s must be %s, got %T", core.ErrInvalidArgument, key, want, got)
}
