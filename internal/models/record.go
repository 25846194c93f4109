package models

import (
	"fmt"

	"github.com/goccy/go-json"

	apperrors "github.com/adventure-scaler/scaler/internal/errors"
)

// schema lists the declared keys of one document shape in output order.
type schema struct {
	kind   string
	fields []field
}

type field struct {
	key      string
	typed    bool            // decoded into a struct field by the owning type
	fallback json.RawMessage // default when absent; nil means required
}

func required(key string) field {
	return field{key: key}
}

func optional(key, fallback string) field {
	return field{key: key, fallback: json.RawMessage(fallback)}
}

func typed(key string) field {
	return field{key: key, typed: true}
}

// record is the field-valued body of a document object: every declared key
// that the transform does not interpret, plus unknown keys carried through.
type record struct {
	schema *schema
	values map[string]json.RawMessage
	extra  map[string]json.RawMessage
}

// fill reads every untyped declared key, applying defaults. It must run after
// the owning type has taken its typed keys.
func (r *fieldReader) fill(s *schema) record {
	rec := record{
		schema: s,
		values: make(map[string]json.RawMessage, len(s.fields)),
	}
	for _, f := range s.fields {
		if f.typed {
			continue
		}
		v, ok := r.take(f.key)
		if !ok {
			if f.fallback == nil {
				r.fail(apperrors.Malformed(r.at(f.key), "missing required field %s", r.at(f.key)))
				continue
			}
			v = f.fallback
		}
		rec.values[f.key] = v
	}
	rec.extra = r.rest()
	return rec
}

// Field returns the raw JSON of a declared or unknown key.
func (r record) Field(key string) (json.RawMessage, bool) {
	if v, ok := r.values[key]; ok {
		return v, true
	}
	v, ok := r.extra[key]
	return v, ok
}

// Extra returns the keys that are not part of the declared shape.
func (r record) Extra() map[string]json.RawMessage {
	return r.extra
}

// ID returns the opaque _id of the object, or "" when it is not a string.
func (r record) ID() string {
	var id string
	if v, ok := r.values["_id"]; ok {
		_ = json.Unmarshal(v, &id)
	}
	return id
}

// Kind names the document shape, e.g. "token".
func (r record) Kind() string {
	if r.schema == nil {
		return ""
	}
	return r.schema.kind
}

func (r record) clone() record {
	return record{
		schema: r.schema,
		values: cloneRaw(r.values),
		extra:  cloneRaw(r.extra),
	}
}

func cloneRaw(m map[string]json.RawMessage) map[string]json.RawMessage {
	if m == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// encode writes declared keys in schema order, delegating typed keys to the
// owner, then unknown keys.
func (r record) encode(typedValue func(w *objectWriter, key string)) ([]byte, error) {
	if r.schema == nil {
		return nil, fmt.Errorf("record has no schema")
	}
	w := newObjectWriter()
	for _, f := range r.schema.fields {
		if f.typed {
			typedValue(w, f.key)
			continue
		}
		w.raw(f.key, r.values[f.key])
	}
	w.extra(r.extra)
	return w.bytes()
}
