// Package adventure rescales the scenes of an adventure archive.
package adventure

import (
	"archive/zip"
	"path"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/adventure-scaler/scaler/internal/models"
)

// IsSceneEntry reports whether an archive member is a scene document, i.e.
// its last two path segments match "scene/*.json".
func IsSceneEntry(name string) bool {
	if strings.HasSuffix(name, "/") {
		return false
	}
	parts := strings.Split(path.Clean(name), "/")
	if len(parts) < 2 || parts[len(parts)-2] != "scene" {
		return false
	}
	ok, _ := path.Match("*.json", parts[len(parts)-1])
	return ok
}

type bundleEntry struct {
	header zip.FileHeader
	scene  *models.Scene
}

// Bundle holds the parsed scenes of one archive by entry path, in the order
// they were read. It lives for a single run.
type Bundle struct {
	order   []string
	entries map[string]*bundleEntry
}

// NewBundle creates an empty bundle.
func NewBundle() *Bundle {
	return &Bundle{entries: make(map[string]*bundleEntry)}
}

// Add stores scene under the entry described by header. A repeated path
// replaces the earlier scene but keeps its position.
func (b *Bundle) Add(header zip.FileHeader, scene *models.Scene) {
	if e, ok := b.entries[header.Name]; ok {
		e.header = header
		e.scene = scene
		return
	}
	b.order = append(b.order, header.Name)
	b.entries[header.Name] = &bundleEntry{header: header, scene: scene}
}

// Len returns the number of held scenes.
func (b *Bundle) Len() int {
	return len(b.order)
}

// Scene returns the scene stored under entry.
func (b *Bundle) Scene(entry string) (*models.Scene, bool) {
	e, ok := b.entries[entry]
	if !ok {
		return nil, false
	}
	return e.scene, true
}

// ScaleAll scales every held scene in place.
func (b *Bundle) ScaleAll(ratio decimal.Decimal, opts models.ScaleOptions) {
	for _, name := range b.order {
		b.entries[name].scene.Scale(ratio, opts)
	}
}

// Summaries describes every held scene in order.
func (b *Bundle) Summaries() []models.SceneSummary {
	out := make([]models.SceneSummary, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, b.entries[name].scene.Summarize(name))
	}
	return out
}

func (b *Bundle) each(fn func(header zip.FileHeader, scene *models.Scene) error) error {
	for _, name := range b.order {
		e := b.entries[name]
		if err := fn(e.header, e.scene); err != nil {
			return err
		}
	}
	return nil
}
