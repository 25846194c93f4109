package models

import (
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/adventure-scaler/scaler/internal/geometry"
)

var drawingSchema = &schema{
	kind: "drawing",
	fields: []field{
		required("_id"),
		required("flags"),
		required("type"),
		required("author"),
		typed("x"),
		typed("y"),
		typed("width"),
		typed("height"),
		required("rotation"),
		required("z"),
		required("hidden"),
		required("locked"),
		required("points"),
		required("bezierFactor"),
		required("fillType"),
		required("fillColor"),
		required("fillAlpha"),
		required("strokeWidth"),
		required("strokeColor"),
		required("strokeAlpha"),
		required("texture"),
		required("text"),
		required("fontFamily"),
		required("fontSize"),
		required("textColor"),
		required("textAlpha"),
	},
}

// Drawing is a free-form shape. Its anchor is rescaled with the scene; the
// bounding box and the shape points are relative to the anchor.
type Drawing struct {
	anchored
	Width  decimal.Decimal
	Height decimal.Decimal

	// as read; cleared once the size is rescaled
	rawWidth, rawHeight json.RawMessage
}

// DecodeDrawing parses one drawing object.
func DecodeDrawing(path string, data []byte) (Drawing, error) {
	r, err := readObject(path, data)
	if err != nil {
		return Drawing{}, err
	}
	d := Drawing{
		rawWidth:  r.fields["width"],
		rawHeight: r.fields["height"],
	}
	d.Width, d.Height = r.number("width"), r.number("height")
	d.anchored = decodeAnchored(r, drawingSchema)
	return d, r.err
}

func (d Drawing) WithPosition(p geometry.Point) Drawing {
	d.anchored = d.moved(p)
	return d
}

// WithSize returns a copy with width and height multiplied by ratio and
// rounded to integers.
func (d Drawing) WithSize(ratio decimal.Decimal) Drawing {
	d.anchored = d.clone()
	d.Width = decimal.NewFromInt(geometry.RoundInt(d.Width.Mul(ratio)))
	d.Height = decimal.NewFromInt(geometry.RoundInt(d.Height.Mul(ratio)))
	d.rawWidth, d.rawHeight = nil, nil
	return d
}

func (d Drawing) Clone() Drawing {
	d.anchored = d.clone()
	return d
}

// MarshalJSON encodes the drawing with its declared keys in document order.
func (d Drawing) MarshalJSON() ([]byte, error) {
	return d.record.encode(func(w *objectWriter, key string) {
		switch key {
		case "width":
			writeSize(w, key, d.Width, d.rawWidth)
		case "height":
			writeSize(w, key, d.Height, d.rawHeight)
		default:
			d.encodeXY(w, key)
		}
	})
}

// writeSize keeps the original literal unless the size was rescaled.
func writeSize(w *objectWriter, key string, v decimal.Decimal, raw json.RawMessage) {
	if raw != nil {
		w.raw(key, raw)
		return
	}
	w.number(key, v)
}
