package models

import (
	"github.com/shopspring/decimal"

	"github.com/adventure-scaler/scaler/internal/geometry"
)

// Positioned is implemented by every entity placed by a single x/y anchor.
// WithPosition returns a deep copy moved to p; the receiver is left untouched.
type Positioned[T any] interface {
	Position() geometry.Point
	WithPosition(p geometry.Point) T
}

// anchored is the shared body of entities positioned by "x" and "y".
type anchored struct {
	X decimal.Decimal
	Y decimal.Decimal
	record
}

func decodeAnchored(r *fieldReader, s *schema) anchored {
	a := anchored{
		X: r.number("x"),
		Y: r.number("y"),
	}
	a.record = r.fill(s)
	return a
}

// Position returns the entity anchor.
func (a anchored) Position() geometry.Point {
	return geometry.Point{X: a.X, Y: a.Y}
}

func (a anchored) clone() anchored {
	a.record = a.record.clone()
	return a
}

func (a anchored) moved(p geometry.Point) anchored {
	out := a.clone()
	out.X = p.X
	out.Y = p.Y
	return out
}

func (a anchored) encodeXY(w *objectWriter, key string) bool {
	switch key {
	case "x":
		w.number(key, a.X)
	case "y":
		w.number(key, a.Y)
	default:
		return false
	}
	return true
}

// MarshalJSON encodes the entity with its declared keys in document order.
func (a anchored) MarshalJSON() ([]byte, error) {
	return a.record.encode(func(w *objectWriter, key string) {
		a.encodeXY(w, key)
	})
}

// scaleAll dilates every item around origin, rounding to integer pixels.
// Order and count are preserved; the input slice is not modified.
func scaleAll[T Positioned[T]](items []T, origin geometry.Point, ratio decimal.Decimal) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		scaled := item.Position().Translate(origin, ratio)
		out = append(out, item.WithPosition(geometry.NewPoint(scaled.Integer())))
	}
	return out
}
