package record

import (
	"github.com/mohae/deepcopy"
)

// Record is a JSON object: string keys mapped to arbitrary JSON values.
type Record map[string]any

// New returns an empty, non-nil record.
func New() Record {
	return Record{}
}

// FromValue converts a decoded JSON value into a Record. Only objects are
// accepted; ok is false for every other shape.
func FromValue(value any) (Record, bool) {
	switch typed := value.(type) {
	case nil:
		return New(), true
	case Record:
		return typed.Clone(), true
	case map[string]any:
		return Record(typed).Clone(), true
	default:
		return nil, false
	}
}

// Clone returns a deep copy. A nil record clones into an empty one.
func (r Record) Clone() Record {
	if len(r) == 0 {
		return New()
	}
	out, ok := deepcopy.Copy(r).(Record)
	if !ok || out == nil {
		return New()
	}
	return out
}

// Map exposes the record as a plain map for encoders that switch on
// map[string]any. The returned map is a deep copy.
func (r Record) Map() map[string]any {
	return map[string]any(r.Clone())
}

// IsEmpty reports whether the record has no properties.
func (r Record) IsEmpty() bool {
	return len(r) == 0
}

// Copy deep copies an arbitrary JSON value.
func Copy(value any) any {
	if value == nil {
		return nil
	}
	return deepcopy.Copy(value)
}

// IsEmptyObject reports whether value is a JSON object with no properties.
// Arrays, scalars and null are never empty objects.
func IsEmptyObject(value any) bool {
	switch typed := value.(type) {
	case Record:
		return len(typed) == 0
	case map[string]any:
		return len(typed) == 0
	default:
		return false
	}
}

// Merge deep merges the overrides into a copy of base, left to right. Nested
// objects are merged key by key; any other value in a later map replaces the
// earlier one. Neither input is modified.
func Merge(base Record, overrides ...Record) Record {
	out := base.Clone()
	for _, override := range overrides {
		mergeInto(out, override)
	}
	return out
}

func mergeInto(dst map[string]any, src map[string]any) {
	for key, value := range src {
		incoming, isObject := asObject(value)
		if !isObject {
			dst[key] = Copy(value)
			continue
		}
		existing, ok := asObject(dst[key])
		if !ok {
			existing = map[string]any{}
		} else {
			existing = cloneObject(existing)
		}
		mergeInto(existing, incoming)
		dst[key] = existing
	}
}

func asObject(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case Record:
		return map[string]any(typed), true
	case map[string]any:
		return typed, true
	default:
		return nil, false
	}
}

func cloneObject(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = Copy(value)
	}
	return out
}
