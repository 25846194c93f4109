package models

import "github.com/adventure-scaler/scaler/internal/geometry"

var noteSchema = &schema{
	kind: "note",
	fields: []field{
		required("_id"),
		required("flags"),
		required("entryId"),
		typed("x"),
		typed("y"),
		required("icon"),
		required("iconSize"),
		required("iconTint"),
		required("text"),
		required("fontFamily"),
		required("fontSize"),
		required("textAnchor"),
		required("textColor"),
	},
}

// Note is a map pin linking to a journal entry.
type Note struct {
	anchored
}

// DecodeNote parses one map note object.
func DecodeNote(path string, data []byte) (Note, error) {
	r, err := readObject(path, data)
	if err != nil {
		return Note{}, err
	}
	n := Note{decodeAnchored(r, noteSchema)}
	return n, r.err
}

func (n Note) WithPosition(p geometry.Point) Note {
	return Note{n.moved(p)}
}

func (n Note) Clone() Note {
	return Note{n.clone()}
}
