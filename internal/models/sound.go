package models

import "github.com/adventure-scaler/scaler/internal/geometry"

var soundSchema = &schema{
	kind: "sound",
	fields: []field{
		required("_id"),
		required("flags"),
		required("path"),
		required("repeat"),
		required("volume"),
		required("type"),
		typed("x"),
		typed("y"),
		required("radius"),
		required("easing"),
	},
}

// Sound is an ambient sound emitter.
type Sound struct {
	anchored
}

// DecodeSound parses one ambient sound object.
func DecodeSound(path string, data []byte) (Sound, error) {
	r, err := readObject(path, data)
	if err != nil {
		return Sound{}, err
	}
	s := Sound{decodeAnchored(r, soundSchema)}
	return s, r.err
}

func (s Sound) WithPosition(p geometry.Point) Sound {
	return Sound{s.moved(p)}
}

func (s Sound) Clone() Sound {
	return Sound{s.clone()}
}
