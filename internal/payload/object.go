// Package payload treats decoded gateway/REST JSON as an opaque keyed bag of
// values and provides typed accessors over it. Required-key accessors report
// ErrMalformed; Opt accessors default silently, since most payload fields are
// optional per the upstream schema.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pkg.mon.icu/kioku/internal/util"
)

// ErrMalformed indicates a payload that is missing a required field or has a
// field of the wrong shape. The offending payload should be dropped; it is
// never retried.
var ErrMalformed = errors.New("malformed payload")

// Object is a single decoded JSON payload.
type Object map[string]any

// Decode unmarshals raw payload bytes into an Object.
func Decode(data []byte) (Object, error) {
	var o Object
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("payload is not a JSON object: %w", ErrMalformed)
	}
	return o, nil
}

// Has reports whether the key is present at all, regardless of its value.
func (o Object) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// Snowflake reads a required Snowflake ID. The upstream API serializes IDs as
// decimal strings, but raw numbers are tolerated too.
func (o Object) Snowflake(key string) (uint64, error) {
	v, ok := o.OptSnowflake(key)
	if !ok {
		return 0, fmt.Errorf("missing or invalid Snowflake field %q: %w", key, ErrMalformed)
	}
	return v, nil
}

// OptSnowflake reads an optional Snowflake ID, reporting false when the key
// is absent, null or unparsable.
func (o Object) OptSnowflake(key string) (uint64, bool) {
	switch v := o[key].(type) {
	case string:
		s, err := util.ParseSnowflake(v)
		return s, err == nil
	case float64:
		return uint64(v), true
	case int:
		return uint64(v), v >= 0
	case uint64:
		return v, true
	case json.Number:
		s, err := util.ParseSnowflake(v.String())
		return s, err == nil
	default:
		return 0, false
	}
}

// Str reads a required string field.
func (o Object) Str(key string) (string, error) {
	v, ok := o.OptStr(key)
	if !ok {
		return "", fmt.Errorf("missing or invalid string field %q: %w", key, ErrMalformed)
	}
	return v, nil
}

// OptStr reads an optional string field.
func (o Object) OptStr(key string) (string, bool) {
	v, ok := o[key].(string)
	return v, ok
}

// Int reads a required integer field. Strings of digits are accepted since
// the upstream API serializes some numeric fields (permissions) as strings.
func (o Object) Int(key string) (int64, error) {
	v, ok := o.OptInt(key)
	if !ok {
		return 0, fmt.Errorf("missing or invalid integer field %q: %w", key, ErrMalformed)
	}
	return v, nil
}

// OptInt reads an optional integer field.
func (o Object) OptInt(key string) (int64, bool) {
	switch v := o[key].(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := util.ParseSnowflake(v)
		return int64(n), err == nil
	default:
		return 0, false
	}
}

// OptBool reads an optional boolean field.
func (o Object) OptBool(key string) (bool, bool) {
	v, ok := o[key].(bool)
	return v, ok
}

// Object reads a required nested payload object.
func (o Object) Object(key string) (Object, error) {
	v, ok := o.OptObject(key)
	if !ok {
		return nil, fmt.Errorf("missing or invalid object field %q: %w", key, ErrMalformed)
	}
	return v, nil
}

// OptObject reads an optional nested payload object.
func (o Object) OptObject(key string) (Object, bool) {
	switch v := o[key].(type) {
	case Object:
		return v, true
	case map[string]any:
		return Object(v), true
	default:
		return nil, false
	}
}

// OptList reads an optional array of nested payload objects. Elements that
// are not objects are skipped.
func (o Object) OptList(key string) ([]Object, bool) {
	raw, ok := o[key].([]any)
	if !ok {
		return nil, false
	}
	list := make([]Object, 0, len(raw))
	for _, el := range raw {
		switch v := el.(type) {
		case Object:
			list = append(list, v)
		case map[string]any:
			list = append(list, Object(v))
		}
	}
	return list, true
}

// OptSnowflakeList reads an optional array of Snowflake IDs.
func (o Object) OptSnowflakeList(key string) ([]uint64, bool) {
	raw, ok := o[key].([]any)
	if !ok {
		return nil, false
	}
	ids := make([]uint64, 0, len(raw))
	for _, el := range raw {
		switch v := el.(type) {
		case string:
			if s, err := util.ParseSnowflake(v); err == nil {
				ids = append(ids, s)
			}
		case float64:
			ids = append(ids, uint64(v))
		case int:
			ids = append(ids, uint64(v))
		case uint64:
			ids = append(ids, v)
		}
	}
	return ids, true
}

// OptTime reads an optional ISO 8601 timestamp field.
func (o Object) OptTime(key string) (time.Time, bool) {
	v, ok := o[key].(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
