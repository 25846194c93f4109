package models

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	apperrors "github.com/adventure-scaler/scaler/internal/errors"
	"github.com/adventure-scaler/scaler/internal/geometry"
)

var wallSchema = &schema{
	kind: "wall",
	fields: []field{
		required("_id"),
		required("flags"),
		typed("c"),
		required("move"),
		required("sense"),
		required("door"),
		required("ds"),
		optional("dir", "0"),
	},
}

// Wall is a segment between two endpoints, stored as c = [x1, y1, x2, y2].
type Wall struct {
	C [4]decimal.Decimal
	record
}

// DecodeWall parses one wall object.
func DecodeWall(path string, data []byte) (Wall, error) {
	r, err := readObject(path, data)
	if err != nil {
		return Wall{}, err
	}
	w := Wall{}
	if raw, ok := r.take("c"); ok {
		c, err := decodeCoords(raw)
		if err != nil {
			r.fail(apperrors.Wrap(apperrors.CodeMalformedScene, fmt.Sprintf("field %s must be four numbers", r.at("c")), err).WithField(r.at("c")))
		}
		w.C = c
	} else {
		r.fail(apperrors.Malformed(r.at("c"), "missing required field %s", r.at("c")))
	}
	w.record = r.fill(wallSchema)
	return w, r.err
}

func decodeCoords(raw json.RawMessage) ([4]decimal.Decimal, error) {
	var c [4]decimal.Decimal
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return c, err
	}
	if len(items) != len(c) {
		return c, fmt.Errorf("got %d values", len(items))
	}
	for i, item := range items {
		d, err := parseNumber(item)
		if err != nil {
			return c, err
		}
		c[i] = d
	}
	return c, nil
}

// Endpoints returns (x1, y1) and (x2, y2).
func (w Wall) Endpoints() (geometry.Point, geometry.Point) {
	return geometry.Point{X: w.C[0], Y: w.C[1]}, geometry.Point{X: w.C[2], Y: w.C[3]}
}

// WithEndpoints returns a copy of the wall with c rebuilt from a and b.
func (w Wall) WithEndpoints(a, b geometry.Point) Wall {
	w.record = w.record.clone()
	w.C = [4]decimal.Decimal{a.X, a.Y, b.X, b.Y}
	return w
}

func (w Wall) Clone() Wall {
	w.record = w.record.clone()
	return w
}

// Scaled dilates both endpoints independently around origin.
func (w Wall) Scaled(origin geometry.Point, ratio decimal.Decimal) Wall {
	a, b := w.Endpoints()
	a = a.Translate(origin, ratio)
	b = b.Translate(origin, ratio)
	return w.WithEndpoints(geometry.NewPoint(a.Integer()), geometry.NewPoint(b.Integer()))
}

// MarshalJSON encodes the wall with its declared keys in document order.
func (w Wall) MarshalJSON() ([]byte, error) {
	return w.record.encode(func(ow *objectWriter, key string) {
		if key == "c" {
			ow.numbers(key, w.C[:]...)
		}
	})
}
