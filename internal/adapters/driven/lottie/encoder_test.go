package lottie

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/glaximini/internal/core/domain"
	"github.com/custodia-labs/glaximini/internal/exporter"
)

func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func items(t *testing.T, v any) []any {
	t.Helper()
	m, ok := v.(map[string]any)
	require.True(t, ok, "%T", v)
	list, ok := m["it"].([]any)
	require.True(t, ok)
	return list
}

func compiled() *domain.Animation {
	doc := domain.NewDocument(1, "d", domain.Timeline{Width: 512, Height: 256, FPS: 60, Duration: 180, Start: 0})
	g := domain.NewShape("g", domain.KindGroup, domain.Props{"scale": []any{2.0, 2.0}})
	r := domain.NewShape("r", domain.KindRectangle, domain.Props{"width": 10.0, "height": 10.0})
	r.SetKeyframe(30, domain.Props{"width": 20.0})
	p := domain.NewShape("p", domain.KindBezier, domain.Props{"bezier": []any{
		[]any{0.0, 0.0}, []any{1.0, 0.0}, []any{2.0, 1.0}, []any{3.0, 3.0},
	}})
	doc.AddShape(g)
	doc.AddShape(r)
	doc.AddShape(p)
	r.SetParent(g)
	return exporter.Compile(doc)
}

func TestEncoder_Document(t *testing.T) {
	data, err := NewEncoder().Encode(compiled())
	require.NoError(t, err)

	out := decode(t, data)
	assert.Equal(t, Version, out["v"])
	assert.Equal(t, 60.0, out["fr"])
	assert.Equal(t, 0.0, out["ip"])
	assert.Equal(t, 180.0, out["op"])
	assert.Equal(t, 512.0, out["w"])
	assert.Equal(t, 256.0, out["h"])

	layers := out["layers"].([]any)
	require.Len(t, layers, 1)
	layer := layers[0].(map[string]any)
	assert.Equal(t, 4.0, layer["ty"])

	shapes := layer["shapes"].([]any)
	require.Len(t, shapes, 2)
	assert.Equal(t, "p", shapes[0].(map[string]any)["nm"])
	assert.Equal(t, "g", shapes[1].(map[string]any)["nm"])
}

func TestEncoder_GroupsEndWithTransform(t *testing.T) {
	data, err := NewEncoder().Encode(compiled())
	require.NoError(t, err)
	shapes := decode(t, data)["layers"].([]any)[0].(map[string]any)["shapes"].([]any)

	path := items(t, shapes[0])
	require.Len(t, path, 4)
	assert.Equal(t, "sh", path[0].(map[string]any)["ty"])
	assert.Equal(t, "st", path[1].(map[string]any)["ty"])
	assert.Equal(t, "fl", path[2].(map[string]any)["ty"])
	assert.Equal(t, "tr", path[3].(map[string]any)["ty"], "identity transform appended")

	group := items(t, shapes[1])
	require.Len(t, group, 2)
	tr := group[1].(map[string]any)
	assert.Equal(t, "tr", tr["ty"])
	assert.Equal(t, []any{200.0, 200.0}, tr["s"].(map[string]any)["k"])

	rect := items(t, group[0])
	require.Len(t, rect, 4)
	assert.Equal(t, "rc", rect[0].(map[string]any)["ty"])
}

func TestEncoder_OutPointIsDuration(t *testing.T) {
	doc := domain.NewDocument(1, "d", domain.Timeline{Width: 64, Height: 64, FPS: 30, Duration: 90, Start: 15})

	data, err := NewEncoder().Encode(exporter.Compile(doc))
	require.NoError(t, err)

	out := decode(t, data)
	assert.Equal(t, 15.0, out["ip"])
	assert.Equal(t, 90.0, out["op"])
	layer := out["layers"].([]any)[0].(map[string]any)
	assert.Equal(t, 15.0, layer["ip"])
	assert.Equal(t, 90.0, layer["op"])
}

func TestEncoder_KeyframedProperty(t *testing.T) {
	data, err := NewEncoder().Encode(compiled())
	require.NoError(t, err)
	shapes := decode(t, data)["layers"].([]any)[0].(map[string]any)["shapes"].([]any)
	rc := items(t, items(t, shapes[1])[0])[0].(map[string]any)

	size := rc["s"].(map[string]any)
	assert.Equal(t, 1.0, size["a"])
	keys := size["k"].([]any)
	require.Len(t, keys, 2)

	first := keys[0].(map[string]any)
	assert.Equal(t, 0.0, first["t"])
	assert.Equal(t, []any{10.0, 10.0}, first["s"])
	assert.Equal(t, 1.0, first["h"])

	second := keys[1].(map[string]any)
	assert.Equal(t, 30.0, second["t"])
	assert.Equal(t, []any{20.0, 10.0}, second["s"])
	assert.NotContains(t, second, "h")
	assert.Contains(t, second, "i")

	st := items(t, items(t, shapes[1])[0])[1].(map[string]any)
	width := st["w"].(map[string]any)
	assert.Equal(t, 1.0, width["a"], "paint of a keyframed shape is tracked too")
	widthKeys := width["k"].([]any)
	require.Len(t, widthKeys, 2)
	assert.Equal(t, []any{4.0}, widthKeys[0].(map[string]any)["s"])
	assert.Equal(t, 1.0, widthKeys[0].(map[string]any)["h"])
	assert.Equal(t, []any{4.0}, widthKeys[1].(map[string]any)["s"])
	assert.Equal(t, 30.0, widthKeys[1].(map[string]any)["t"])
}

func TestEncoder_BezierPath(t *testing.T) {
	data, err := NewEncoder().Encode(compiled())
	require.NoError(t, err)
	shapes := decode(t, data)["layers"].([]any)[0].(map[string]any)["shapes"].([]any)
	sh := items(t, shapes[0])[0].(map[string]any)

	k := sh["ks"].(map[string]any)["k"].(map[string]any)
	assert.Equal(t, false, k["c"])
	assert.Equal(t, []any{[]any{0.0, 0.0}, []any{3.0, 3.0}}, k["v"])
	assert.Equal(t, []any{[]any{1.0, 0.0}, []any{0.0, 0.0}}, k["o"])
}

func TestEncoder_Sticker(t *testing.T) {
	enc := NewEncoder()
	data, err := enc.Encode(compiled())
	require.NoError(t, err)

	sticker, err := enc.Sticker(data)
	require.NoError(t, err)

	zr, err := gzip.NewReader(bytes.NewReader(sticker))
	require.NoError(t, err)
	raw, err := io.ReadAll(zr)
	require.NoError(t, err)

	out := decode(t, raw)
	assert.Equal(t, 1.0, out["tgs"])
	assert.Equal(t, Version, out["v"])
}

func TestEncoder_StickerRejectsGarbage(t *testing.T) {
	_, err := NewEncoder().Sticker([]byte("not json"))
	assert.Error(t, err)
}
