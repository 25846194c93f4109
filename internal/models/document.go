package models

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	apperrors "github.com/adventure-scaler/scaler/internal/errors"
)

// fieldReader pulls declared keys out of one decoded JSON object. Keys are
// consumed as they are read so whatever remains is the set of unknown keys.
// Only the first failure is kept.
type fieldReader struct {
	path   string
	fields map[string]json.RawMessage
	err    error
}

func readObject(path string, data []byte) (*fieldReader, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeMalformedScene, describe(path)+" is not a JSON object", err).WithField(path)
	}
	if isNull(data) {
		return nil, apperrors.Malformed(path, "%s is null", describe(path))
	}
	if fields == nil {
		fields = make(map[string]json.RawMessage)
	}
	return &fieldReader{path: path, fields: fields}, nil
}

func describe(path string) string {
	if path == "" {
		return "scene document"
	}
	return path
}

func (r *fieldReader) at(key string) string {
	if r.path == "" {
		return key
	}
	return r.path + "." + key
}

func (r *fieldReader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *fieldReader) take(key string) (json.RawMessage, bool) {
	v, ok := r.fields[key]
	if ok {
		delete(r.fields, key)
	}
	return v, ok
}

// raw returns a required value of any JSON type.
func (r *fieldReader) raw(key string) json.RawMessage {
	v, ok := r.take(key)
	if !ok {
		r.fail(apperrors.Malformed(r.at(key), "missing required field %s", r.at(key)))
		return nil
	}
	return v
}

// number returns a required numeric value.
func (r *fieldReader) number(key string) decimal.Decimal {
	v, ok := r.take(key)
	if !ok {
		r.fail(apperrors.Malformed(r.at(key), "missing required field %s", r.at(key)))
		return decimal.Zero
	}
	d, err := parseNumber(v)
	if err != nil {
		r.fail(apperrors.Wrap(apperrors.CodeMalformedScene, fmt.Sprintf("field %s must be a number", r.at(key)), err).WithField(r.at(key)))
		return decimal.Zero
	}
	return d
}

// list returns the elements of an optional array. A missing key is an empty
// list; null or any other type is rejected.
func (r *fieldReader) list(key string) []json.RawMessage {
	v, ok := r.take(key)
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil || isNull(v) {
		r.fail(apperrors.Malformed(r.at(key), "field %s must be an array", r.at(key)))
		return nil
	}
	return items
}

// rest returns the keys nobody asked for.
func (r *fieldReader) rest() map[string]json.RawMessage {
	if len(r.fields) == 0 {
		return nil
	}
	out := r.fields
	r.fields = nil
	return out
}

func isNull(v json.RawMessage) bool {
	return strings.TrimSpace(string(v)) == "null"
}

func parseNumber(v json.RawMessage) (decimal.Decimal, error) {
	s := strings.TrimSpace(string(v))
	if s == "" || s[0] == '"' || s == "null" || s == "true" || s == "false" {
		return decimal.Zero, fmt.Errorf("not a number: %s", s)
	}
	return decimal.NewFromString(s)
}

// objectWriter appends "key":value pairs in call order. Raw values are written
// as they were read so untouched fields keep their exact bytes.
type objectWriter struct {
	buf bytes.Buffer
	n   int
	err error
}

func newObjectWriter() *objectWriter {
	w := &objectWriter{}
	w.buf.WriteByte('{')
	return w
}

func (w *objectWriter) key(k string) {
	if w.n > 0 {
		w.buf.WriteByte(',')
	}
	w.n++
	q, err := json.Marshal(k)
	if err != nil && w.err == nil {
		w.err = fmt.Errorf("encoding key %s: %w", k, err)
	}
	w.buf.Write(q)
	w.buf.WriteByte(':')
}

func (w *objectWriter) raw(k string, v json.RawMessage) {
	w.key(k)
	if len(v) == 0 {
		w.buf.WriteString("null")
		return
	}
	w.buf.Write(v)
}

func (w *objectWriter) number(k string, d decimal.Decimal) {
	w.key(k)
	w.buf.WriteString(d.String())
}

func (w *objectWriter) numbers(k string, ds ...decimal.Decimal) {
	w.key(k)
	w.buf.WriteByte('[')
	for i, d := range ds {
		if i > 0 {
			w.buf.WriteByte(',')
		}
		w.buf.WriteString(d.String())
	}
	w.buf.WriteByte(']')
}

func (w *objectWriter) array(k string, n int, item func(i int) ([]byte, error)) {
	w.key(k)
	w.buf.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			w.buf.WriteByte(',')
		}
		b, err := item(i)
		if err != nil {
			if w.err == nil {
				w.err = fmt.Errorf("encoding %s[%d]: %w", k, i, err)
			}
			return
		}
		w.buf.Write(b)
	}
	w.buf.WriteByte(']')
}

// extra writes unknown keys in sorted order so output is deterministic.
func (w *objectWriter) extra(m map[string]json.RawMessage) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		w.raw(k, m[k])
	}
}

func (w *objectWriter) bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes(), nil
}
