package models_test

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/adventure-scaler/scaler/internal/errors"
	"github.com/adventure-scaler/scaler/internal/geometry"
	"github.com/adventure-scaler/scaler/internal/models"
	"github.com/adventure-scaler/scaler/internal/testutil"
)

func ratio(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decode(t *testing.T, data []byte) map[string]json.RawMessage {
	t.Helper()
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestParseScene(t *testing.T) {
	doc := testutil.PopulatedScene("s1")
	scene, err := models.ParseScene(doc.JSON(t))
	require.NoError(t, err)

	assert.Equal(t, "s1", scene.ID())
	assert.Equal(t, "Scene s1", scene.Name())
	assert.True(t, scene.Width.Equal(decimal.NewFromInt(1000)))
	assert.True(t, scene.ShiftX.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, models.EntityCounts{Tokens: 2, Walls: 2, Lights: 1, Sounds: 1, Notes: 1, Drawings: 1}, scene.Counts())

	assert.True(t, scene.Tokens[0].Position().Equal(geometry.NewPoint(125, 25)))
	a, b := scene.Walls[1].Endpoints()
	assert.True(t, a.Equal(geometry.NewPoint(25, 25)))
	assert.True(t, b.Equal(geometry.NewPoint(425, 25)))
	assert.Equal(t, "drawing", scene.Drawings[0].Kind())
}

func TestParseSceneDefaults(t *testing.T) {
	doc := testutil.Scene("s1", 1000, 800, 100, 0, 0).
		With("tokens", []any{testutil.Token("t1", 10, 10)}).
		With("walls", []any{testutil.Wall("w1", 0, 0, 10, 10)}).
		With("lights", []any{testutil.Light("l1", 5, 5)}).
		Without("notes", "drawings", "sounds", "journal")

	scene, err := models.ParseScene(doc.JSON(t))
	require.NoError(t, err)
	assert.Empty(t, scene.Notes)
	assert.Empty(t, scene.Drawings)

	tok := decode(t, mustJSON(t, scene.Tokens[0]))
	assert.JSONEq(t, `null`, string(tok["mirrorX"]))
	assert.JSONEq(t, `null`, string(tok["lightColor"]))

	wall := decode(t, mustJSON(t, scene.Walls[0]))
	assert.JSONEq(t, `0`, string(wall["dir"]))

	light := decode(t, mustJSON(t, scene.Lights[0]))
	assert.JSONEq(t, `""`, string(light["tintColor"]))

	out := decode(t, mustJSON(t, scene))
	assert.JSONEq(t, `[]`, string(out["notes"]))
	assert.JSONEq(t, `null`, string(out["journal"]))
}

func mustJSON(t *testing.T, v interface{ MarshalJSON() ([]byte, error) }) []byte {
	t.Helper()
	data, err := v.MarshalJSON()
	require.NoError(t, err)
	return data
}

func TestParseSceneMalformed(t *testing.T) {
	base := testutil.Scene("s1", 1000, 800, 100, 50, 50)

	tests := []struct {
		name  string
		doc   []byte
		field string
	}{
		{"missing width", base.Without("width").JSON(t), "width"},
		{"shift is a string", base.With("shiftX", "50").JSON(t), "shiftX"},
		{"tokens is null", base.With("tokens", nil).JSON(t), "tokens"},
		{"walls is an object", base.With("walls", map[string]any{}).JSON(t), "walls"},
		{"token missing y", base.With("tokens", []any{testutil.Token("t1", 1, 2).Without("y")}).JSON(t), "tokens[0].y"},
		{"token missing required opaque field", base.With("tokens", []any{testutil.Token("t1", 1, 2), testutil.Token("t2", 1, 2).Without("bar2")}).JSON(t), "tokens[1].bar2"},
		{"wall with three coordinates", base.With("walls", []any{testutil.Wall("w1", 0, 0, 1, 1).With("c", []int{0, 0, 1})}).JSON(t), "walls[0].c"},
		{"wall without c", base.With("walls", []any{testutil.Wall("w1", 0, 0, 1, 1).Without("c")}).JSON(t), "walls[0].c"},
		{"drawing width not numeric", base.With("drawings", []any{testutil.Drawing("d1", 0, 0, 1, 1).With("width", true)}).JSON(t), "drawings[0].width"},
		{"note is not an object", base.With("notes", []any{"pin"}).JSON(t), "notes[0]"},
		{"document is an array", []byte(`[]`), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := models.ParseScene(tt.doc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrMalformedScene), "got %v", err)

			var appErr *apperrors.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.field, appErr.Field())
		})
	}
}

func TestEncodeRoundTripKeepsFields(t *testing.T) {
	doc := testutil.PopulatedScene("s1").
		With("customModule", map[string]any{"enabled": true}).
		With("tokens", []any{testutil.Token("t1", 125, 25).With("vendorKey", []int{1, 2})})

	scene, err := models.ParseScene(doc.JSON(t))
	require.NoError(t, err)

	data, err := scene.Encode(models.EncodeOptions{})
	require.NoError(t, err)

	out := decode(t, data)
	assert.JSONEq(t, `{"enabled":true}`, string(out["customModule"]))
	assert.JSONEq(t, `true`, string(out["navigation"]))
	assert.JSONEq(t, `"<p>A damp cave.</p>"`, string(out["description"]))

	var tokens []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out["tokens"], &tokens))
	require.Len(t, tokens, 1)
	assert.JSONEq(t, `[1,2]`, string(tokens[0]["vendorKey"]))
	assert.JSONEq(t, `1.25`, string(tokens[0]["scale"]))
	assert.JSONEq(t, `{"attribute":"attributes.hp"}`, string(tokens[0]["bar1"]))
}

func TestEncodeNavigationFromDescription(t *testing.T) {
	scene, err := models.ParseScene(testutil.Scene("s1", 100, 100, 50, 0, 0).JSON(t))
	require.NoError(t, err)

	data, err := json.Marshal(scene)
	require.NoError(t, err)
	out := decode(t, data)
	assert.JSONEq(t, `"<p>A damp cave.</p>"`, string(out["navigation"]))

	data, err = scene.Encode(models.EncodeOptions{NavigationFromDescription: false})
	require.NoError(t, err)
	out = decode(t, data)
	assert.JSONEq(t, `true`, string(out["navigation"]))
}

func TestEncodeKeyOrder(t *testing.T) {
	scene, err := models.ParseScene(testutil.Scene("s1", 100, 100, 50, 0, 0).With("zzz", 1).With("aaa", 2).JSON(t))
	require.NoError(t, err)

	data, err := scene.Encode(models.DefaultEncodeOptions())
	require.NoError(t, err)

	s := string(data)
	assert.Regexp(t, `^\{"_id":"s1","name":"Scene s1","folder":null,`, s)
	assert.Regexp(t, `"size":null,"aaa":2,"zzz":1\}$`, s)
}

func TestUnmarshalJSON(t *testing.T) {
	var scene models.Scene
	require.NoError(t, json.Unmarshal(testutil.PopulatedScene("s9").JSON(t), &scene))
	assert.Equal(t, "s9", scene.ID())
	assert.Len(t, scene.Tokens, 2)
}
