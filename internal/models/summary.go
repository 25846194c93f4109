package models

import "github.com/adventure-scaler/scaler/internal/geometry"

// EntityCounts is the number of entities per collection.
type EntityCounts struct {
	Tokens   int `json:"tokens" msgpack:"tokens"`
	Walls    int `json:"walls" msgpack:"walls"`
	Lights   int `json:"lights" msgpack:"lights"`
	Sounds   int `json:"sounds" msgpack:"sounds"`
	Notes    int `json:"notes" msgpack:"notes"`
	Drawings int `json:"drawings" msgpack:"drawings"`
}

// SceneSummary describes one scene entry of an adventure archive.
type SceneSummary struct {
	Entry  string       `json:"entry" msgpack:"entry"`
	ID     string       `json:"id" msgpack:"id"`
	Name   string       `json:"name" msgpack:"name"`
	Width  int64        `json:"width" msgpack:"width"`
	Height int64        `json:"height" msgpack:"height"`
	Grid   int64        `json:"grid" msgpack:"grid"`
	ShiftX int64        `json:"shiftX" msgpack:"shiftX"`
	ShiftY int64        `json:"shiftY" msgpack:"shiftY"`
	Counts EntityCounts `json:"counts" msgpack:"counts"`
}

// Counts returns the size of every entity collection.
func (s *Scene) Counts() EntityCounts {
	return EntityCounts{
		Tokens:   len(s.Tokens),
		Walls:    len(s.Walls),
		Lights:   len(s.Lights),
		Sounds:   len(s.Sounds),
		Notes:    len(s.Notes),
		Drawings: len(s.Drawings),
	}
}

// Summarize describes the scene stored under entry.
func (s *Scene) Summarize(entry string) SceneSummary {
	return SceneSummary{
		Entry:  entry,
		ID:     s.ID(),
		Name:   s.Name(),
		Width:  geometry.RoundInt(s.Width),
		Height: geometry.RoundInt(s.Height),
		Grid:   geometry.RoundInt(s.Grid),
		ShiftX: geometry.RoundInt(s.ShiftX),
		ShiftY: geometry.RoundInt(s.ShiftY),
		Counts: s.Counts(),
	}
}
