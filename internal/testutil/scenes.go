// scenes.go - Scene document fixtures for testing
package testutil

import (
	"testing"

	"github.com/goccy/go-json"
)

// Doc is a JSON object fixture.
type Doc map[string]any

// Without returns a copy of d with the given keys removed.
func (d Doc) Without(keys ...string) Doc {
	out := make(Doc, len(d))
	for k, v := range d {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// With returns a copy of d with key set to value.
func (d Doc) With(key string, value any) Doc {
	out := d.Without()
	out[key] = value
	return out
}

// JSON encodes d, failing the test on error.
func (d Doc) JSON(t testing.TB) []byte {
	t.Helper()
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	return data
}

// Token returns a token object with every declared field set.
func Token(id string, x, y int64) Doc {
	return Doc{
		"_id":            id,
		"flags":          map[string]any{"core": map[string]any{"sheet": "default"}},
		"name":           "Goblin " + id,
		"displayName":    0,
		"img":            "tokens/goblin.png",
		"tint":           nil,
		"width":          1,
		"height":         1,
		"scale":          1.25,
		"x":              x,
		"y":              y,
		"elevation":      0,
		"lockRotation":   false,
		"rotation":       0,
		"effects":        []any{},
		"hidden":         false,
		"vision":         true,
		"dimSight":       30,
		"brightSight":    0,
		"dimLight":       0,
		"brightLight":    0,
		"sightAngle":     360,
		"lightAngle":     360,
		"lightAlpha":     0.25,
		"lightAnimation": map[string]any{"speed": 5, "intensity": 5},
		"actorId":        "actor-" + id,
		"actorLink":      false,
		"actorData":      map[string]any{},
		"disposition":    -1,
		"displayBars":    0,
		"bar1":           map[string]any{"attribute": "attributes.hp"},
		"bar2":           map[string]any{"attribute": nil},
	}
}

// Wall returns a wall object between (x1, y1) and (x2, y2).
func Wall(id string, x1, y1, x2, y2 int64) Doc {
	return Doc{
		"_id":   id,
		"flags": map[string]any{},
		"c":     []int64{x1, y1, x2, y2},
		"move":  1,
		"sense": 1,
		"door":  0,
		"ds":    0,
	}
}

// Light returns an ambient light object.
func Light(id string, x, y int64) Doc {
	return Doc{
		"_id":               id,
		"flags":             map[string]any{},
		"t":                 "l",
		"x":                 x,
		"y":                 y,
		"hidden":            false,
		"rotation":          0,
		"dim":               40,
		"bright":            20,
		"angle":             360,
		"darknessThreshold": 0,
		"tintAlpha":         0.05,
		"lightAnimation":    map[string]any{"type": nil},
	}
}

// Sound returns an ambient sound object.
func Sound(id string, x, y int64) Doc {
	return Doc{
		"_id":    id,
		"flags":  map[string]any{},
		"path":   "sounds/drips.ogg",
		"repeat": true,
		"volume": 0.5,
		"type":   "l",
		"x":      x,
		"y":      y,
		"radius": 12.5,
		"easing": true,
	}
}

// Note returns a map note object.
func Note(id string, x, y int64) Doc {
	return Doc{
		"_id":        id,
		"flags":      map[string]any{},
		"entryId":    "journal-" + id,
		"x":          x,
		"y":          y,
		"icon":       "icons/svg/book.svg",
		"iconSize":   40,
		"iconTint":   "",
		"text":       "",
		"fontFamily": "Signika",
		"fontSize":   48,
		"textAnchor": 1,
		"textColor":  "#FFFFFF",
	}
}

// Drawing returns a rectangle drawing anchored at (x, y).
func Drawing(id string, x, y, width, height int64) Doc {
	return Doc{
		"_id":          id,
		"flags":        map[string]any{},
		"type":         "r",
		"author":       "gm",
		"x":            x,
		"y":            y,
		"width":        width,
		"height":       height,
		"rotation":     0,
		"z":            0,
		"hidden":       false,
		"locked":       false,
		"points":       []any{},
		"bezierFactor": 0,
		"fillType":     1,
		"fillColor":    "#000000",
		"fillAlpha":    0.5,
		"strokeWidth":  8,
		"strokeColor":  "#FFFFFF",
		"strokeAlpha":  1,
		"texture":      nil,
		"text":         nil,
		"fontFamily":   "Signika",
		"fontSize":     48,
		"textColor":    "#FFFFFF",
		"textAlpha":    1,
	}
}

// Scene returns a scene document with the given sizing fields and no entities.
func Scene(id string, width, height, grid, shiftX, shiftY int64) Doc {
	return Doc{
		"_id":                  id,
		"name":                 "Scene " + id,
		"folder":               nil,
		"sort":                 100,
		"flags":                map[string]any{},
		"description":          "<p>A damp cave.</p>",
		"navigation":           true,
		"navOrder":             0,
		"navName":              "",
		"active":               false,
		"initial":              nil,
		"img":                  "maps/cave.webp",
		"thumb":                "maps/cave-thumb.webp",
		"width":                width,
		"height":               height,
		"padding":              0.25,
		"backgroundColor":      "#999999",
		"tiles":                []any{},
		"gridType":             1,
		"grid":                 grid,
		"shiftX":               shiftX,
		"shiftY":               shiftY,
		"gridColor":            "#000000",
		"gridAlpha":            0.2,
		"gridDistance":         5,
		"gridUnits":            "ft",
		"tokens":               []any{},
		"walls":                []any{},
		"tokenVision":          true,
		"fogExploration":       true,
		"lights":               []any{},
		"globalLight":          false,
		"globalLightThreshold": nil,
		"darkness":             0,
		"playlist":             "",
		"sounds":               []any{},
		"templates":            []any{},
		"journal":              "",
		"notes":                []any{},
		"weather":              "",
		"drawings":             []any{},
		"size":                 nil,
	}
}

// PopulatedScene returns a scene with one entity of every kind.
func PopulatedScene(id string) Doc {
	return Scene(id, 1000, 800, 100, 50, 50).
		With("tokens", []any{Token("t1", 125, 25), Token("t2", 300, 400)}).
		With("walls", []any{Wall("w1", 0, 0, 100, 100), Wall("w2", 25, 25, 425, 25)}).
		With("lights", []any{Light("l1", 500, 500)}).
		With("sounds", []any{Sound("s1", 75, 125)}).
		With("notes", []any{Note("n1", 10, 20)}).
		With("drawings", []any{Drawing("d1", 200, 200, 150, 75)})
}
