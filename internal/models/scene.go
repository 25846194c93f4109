package models

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

var sceneSchema = &schema{
	kind: "scene",
	fields: []field{
		optional("_id", "null"),
		optional("name", "null"),
		optional("folder", "null"),
		optional("sort", "null"),
		optional("flags", "null"),
		optional("description", "null"),
		typed("navigation"),
		optional("navOrder", "null"),
		optional("navName", "null"),
		optional("active", "null"),
		optional("initial", "null"),
		optional("img", "null"),
		optional("thumb", "null"),
		typed("width"),
		typed("height"),
		optional("padding", "null"),
		optional("backgroundColor", "null"),
		optional("tiles", "null"),
		optional("gridType", "null"),
		typed("grid"),
		typed("shiftX"),
		typed("shiftY"),
		optional("gridColor", "null"),
		optional("gridAlpha", "null"),
		optional("gridDistance", "null"),
		optional("gridUnits", "null"),
		typed("tokens"),
		typed("walls"),
		optional("tokenVision", "null"),
		optional("fogExploration", "null"),
		typed("lights"),
		optional("globalLight", "null"),
		optional("globalLightThreshold", "null"),
		optional("darkness", "null"),
		optional("playlist", "null"),
		typed("sounds"),
		optional("templates", "null"),
		optional("journal", "null"),
		typed("notes"),
		optional("weather", "null"),
		typed("drawings"),
		optional("size", "null"),
	},
}

// Scene is one map document of an adventure: canvas sizing, grid settings
// and every placed entity.
type Scene struct {
	Width  decimal.Decimal
	Height decimal.Decimal
	Grid   decimal.Decimal
	ShiftX decimal.Decimal
	ShiftY decimal.Decimal

	// Navigation is the document's own "navigation" value. See EncodeOptions
	// for how it is written back.
	Navigation json.RawMessage

	Tokens   []Token
	Walls    []Wall
	Lights   []Light
	Sounds   []Sound
	Notes    []Note
	Drawings []Drawing

	record
}

// EncodeOptions controls scene serialization.
type EncodeOptions struct {
	// NavigationFromDescription writes the "description" value under the
	// "navigation" key instead of the scene's own navigation flag. On by
	// default for output compatibility, see DESIGN.md.
	NavigationFromDescription bool
}

// DefaultEncodeOptions returns the options used by MarshalJSON.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{NavigationFromDescription: true}
}

// ParseScene decodes a scene document. Missing required fields and values of
// the wrong shape are reported as MALFORMED_SCENE errors naming the field.
func ParseScene(data []byte) (*Scene, error) {
	r, err := readObject("", data)
	if err != nil {
		return nil, err
	}

	s := &Scene{
		Width:  r.number("width"),
		Height: r.number("height"),
		Grid:   r.number("grid"),
		ShiftX: r.number("shiftX"),
		ShiftY: r.number("shiftY"),
	}
	if nav, ok := r.take("navigation"); ok {
		s.Navigation = nav
	}
	s.Tokens = decodeList(r, "tokens", DecodeToken)
	s.Walls = decodeList(r, "walls", DecodeWall)
	s.Lights = decodeList(r, "lights", DecodeLight)
	s.Sounds = decodeList(r, "sounds", DecodeSound)
	s.Notes = decodeList(r, "notes", DecodeNote)
	s.Drawings = decodeList(r, "drawings", DecodeDrawing)
	s.record = r.fill(sceneSchema)

	if r.err != nil {
		return nil, r.err
	}
	return s, nil
}

func decodeList[T any](r *fieldReader, key string, decode func(path string, data []byte) (T, error)) []T {
	items := r.list(key)
	out := make([]T, 0, len(items))
	for i, item := range items {
		v, err := decode(fmt.Sprintf("%s[%d]", r.at(key), i), item)
		if err != nil {
			r.fail(err)
			return out
		}
		out = append(out, v)
	}
	return out
}

// Name returns the scene name, or "" when absent.
func (s *Scene) Name() string {
	var name string
	if v, ok := s.Field("name"); ok {
		_ = json.Unmarshal(v, &name)
	}
	return name
}

// Clone returns a deep copy of the scene.
func (s *Scene) Clone() *Scene {
	out := *s
	out.record = s.record.clone()
	out.Navigation = append(json.RawMessage(nil), s.Navigation...)
	out.Tokens = cloneAll(s.Tokens, Token.Clone)
	out.Walls = cloneAll(s.Walls, Wall.Clone)
	out.Lights = cloneAll(s.Lights, Light.Clone)
	out.Sounds = cloneAll(s.Sounds, Sound.Clone)
	out.Notes = cloneAll(s.Notes, Note.Clone)
	out.Drawings = cloneAll(s.Drawings, Drawing.Clone)
	return &out
}

func cloneAll[T any](items []T, clone func(T) T) []T {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = clone(item)
	}
	return out
}

// Encode serializes the scene with every declared key under its document
// name, followed by unknown keys.
func (s *Scene) Encode(opts EncodeOptions) ([]byte, error) {
	return s.record.encode(func(w *objectWriter, key string) {
		switch key {
		case "navigation":
			if opts.NavigationFromDescription {
				desc, _ := s.Field("description")
				w.raw(key, desc)
			} else {
				w.raw(key, s.Navigation)
			}
		case "width":
			w.number(key, s.Width)
		case "height":
			w.number(key, s.Height)
		case "grid":
			w.number(key, s.Grid)
		case "shiftX":
			w.number(key, s.ShiftX)
		case "shiftY":
			w.number(key, s.ShiftY)
		case "tokens":
			encodeList(w, key, s.Tokens)
		case "walls":
			encodeList(w, key, s.Walls)
		case "lights":
			encodeList(w, key, s.Lights)
		case "sounds":
			encodeList(w, key, s.Sounds)
		case "notes":
			encodeList(w, key, s.Notes)
		case "drawings":
			encodeList(w, key, s.Drawings)
		}
	})
}

func encodeList[T interface{ MarshalJSON() ([]byte, error) }](w *objectWriter, key string, items []T) {
	w.array(key, len(items), func(i int) ([]byte, error) {
		return items[i].MarshalJSON()
	})
}

// MarshalJSON encodes the scene with DefaultEncodeOptions.
func (s *Scene) MarshalJSON() ([]byte, error) {
	return s.Encode(DefaultEncodeOptions())
}

// UnmarshalJSON decodes a scene document; see ParseScene.
func (s *Scene) UnmarshalJSON(data []byte) error {
	parsed, err := ParseScene(data)
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}
