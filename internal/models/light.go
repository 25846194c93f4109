package models

import "github.com/adventure-scaler/scaler/internal/geometry"

var lightSchema = &schema{
	kind: "light",
	fields: []field{
		required("_id"),
		required("flags"),
		required("t"),
		typed("x"),
		typed("y"),
		required("hidden"),
		required("rotation"),
		required("dim"),
		required("bright"),
		required("angle"),
		required("darknessThreshold"),
		required("tintAlpha"),
		required("lightAnimation"),
		optional("tintColor", `""`),
	},
}

// Light is an ambient light source.
type Light struct {
	anchored
}

// DecodeLight parses one ambient light object.
func DecodeLight(path string, data []byte) (Light, error) {
	r, err := readObject(path, data)
	if err != nil {
		return Light{}, err
	}
	l := Light{decodeAnchored(r, lightSchema)}
	return l, r.err
}

func (l Light) WithPosition(p geometry.Point) Light {
	return Light{l.moved(p)}
}

func (l Light) Clone() Light {
	return Light{l.clone()}
}
