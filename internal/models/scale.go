package models

import (
	"github.com/shopspring/decimal"

	"github.com/adventure-scaler/scaler/internal/geometry"
)

// ScaleOptions controls which scene fields follow the dilation.
type ScaleOptions struct {
	// ScaleDrawingSize also multiplies drawing width and height by the ratio.
	// Off by default: only the drawing anchor moves.
	ScaleDrawingSize bool
}

// Origin is the fixed point of the dilation: half the grid shift, taken from
// the scene's current (unscaled) values.
func (s *Scene) Origin() geometry.Point {
	return geometry.Midpoint(s.ShiftX, s.ShiftY)
}

// Scale dilates every entity around Origin by ratio and rescales the canvas
// and grid fields. Collections are replaced by scaled copies in the same
// order. Call it once per scene.
func (s *Scene) Scale(ratio decimal.Decimal, opts ScaleOptions) {
	origin := s.Origin()

	s.Tokens = scaleAll(s.Tokens, origin, ratio)

	walls := make([]Wall, 0, len(s.Walls))
	for _, w := range s.Walls {
		walls = append(walls, w.Scaled(origin, ratio))
	}
	s.Walls = walls

	s.Lights = scaleAll(s.Lights, origin, ratio)
	s.Sounds = scaleAll(s.Sounds, origin, ratio)
	s.Notes = scaleAll(s.Notes, origin, ratio)

	s.Drawings = scaleAll(s.Drawings, origin, ratio)
	if opts.ScaleDrawingSize {
		for i := range s.Drawings {
			s.Drawings[i] = s.Drawings[i].WithSize(ratio)
		}
	}

	s.Width = scaleSize(s.Width, ratio)
	s.Height = scaleSize(s.Height, ratio)
	s.Grid = scaleSize(s.Grid, ratio)
	s.ShiftX = scaleSize(s.ShiftX, ratio)
	s.ShiftY = scaleSize(s.ShiftY, ratio)
}

func scaleSize(v, ratio decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(geometry.RoundInt(v.Mul(ratio)))
}
