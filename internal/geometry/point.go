// Package geometry holds the exact-decimal point type used to rescale scenes.
package geometry

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var half = decimal.NewFromFloat(0.5)

// Point is a 2D coordinate with exact decimal components.
type Point struct {
	X decimal.Decimal
	Y decimal.Decimal
}

// NewPoint builds a point from integer pixel coordinates.
func NewPoint(x, y int64) Point {
	return Point{X: decimal.NewFromInt(x), Y: decimal.NewFromInt(y)}
}

// Midpoint returns (x*0.5, y*0.5).
func Midpoint(x, y decimal.Decimal) Point {
	return Point{X: x.Mul(half), Y: y.Mul(half)}
}

// Translate dilates p around origin: origin*(1-scale) + p*scale.
func (p Point) Translate(origin Point, scale decimal.Decimal) Point {
	keep := decimal.NewFromInt(1).Sub(scale)
	return Point{
		X: origin.X.Mul(keep).Add(p.X.Mul(scale)),
		Y: origin.Y.Mul(keep).Add(p.Y.Mul(scale)),
	}
}

// IntegerX returns X rounded to the nearest integer.
func (p Point) IntegerX() int64 {
	return RoundInt(p.X)
}

// IntegerY returns Y rounded to the nearest integer.
func (p Point) IntegerY() int64 {
	return RoundInt(p.Y)
}

// Integer returns both axes rounded to the nearest integer.
func (p Point) Integer() (int64, int64) {
	return p.IntegerX(), p.IntegerY()
}

// Equal reports whether both components are numerically equal.
func (p Point) Equal(o Point) bool {
	return p.X.Equal(o.X) && p.Y.Equal(o.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("(%s, %s)", p.X.String(), p.Y.String())
}

// RoundInt rounds d to an integer, ties to even. Every serialized coordinate
// and sizing field goes through this one rule.
func RoundInt(d decimal.Decimal) int64 {
	return d.RoundBank(0).IntPart()
}
