package models

import "github.com/adventure-scaler/scaler/internal/geometry"

var tokenSchema = &schema{
	kind: "token",
	fields: []field{
		required("_id"),
		required("flags"),
		required("name"),
		required("displayName"),
		required("img"),
		required("tint"),
		required("width"),
		required("height"),
		required("scale"),
		typed("x"),
		typed("y"),
		required("elevation"),
		required("lockRotation"),
		required("rotation"),
		required("effects"),
		required("hidden"),
		required("vision"),
		required("dimSight"),
		required("brightSight"),
		required("dimLight"),
		required("brightLight"),
		required("sightAngle"),
		required("lightAngle"),
		required("lightAlpha"),
		required("lightAnimation"),
		required("actorId"),
		required("actorLink"),
		required("actorData"),
		required("disposition"),
		required("displayBars"),
		required("bar1"),
		required("bar2"),
		optional("mirrorX", "null"),
		optional("mirrorY", "null"),
		optional("lightColor", "null"),
	},
}

// Token is an actor placed on the scene. Only its anchor is rescaled; size,
// vision and light radii are scene-unit values and stay as they are.
type Token struct {
	anchored
}

// DecodeToken parses one token object; path is used in error messages.
func DecodeToken(path string, data []byte) (Token, error) {
	r, err := readObject(path, data)
	if err != nil {
		return Token{}, err
	}
	t := Token{decodeAnchored(r, tokenSchema)}
	return t, r.err
}

// WithPosition returns a copy of the token moved to p.
func (t Token) WithPosition(p geometry.Point) Token {
	return Token{t.moved(p)}
}

// Clone returns a deep copy of the token.
func (t Token) Clone() Token {
	return Token{t.clone()}
}
