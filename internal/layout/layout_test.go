package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deviceLayout = `{
  "numPanels": 4,
  "sideLength": 100,
  "positionData": [
    {"panelId": 300, "x": 0, "y": 0, "o": 0, "shapeType": 7},
    {"panelId": 58, "x": 100, "y": 0, "o": 60, "shapeType": 7},
    {"panelId": 11, "x": 50, "y": 86, "o": 180, "shapeType": 8},
    {"panelId": 0, "x": -50, "y": 0, "o": 0, "shapeType": 12}
  ]
}`

func TestLoad(t *testing.T) {
	l, err := Load([]byte(deviceLayout))
	require.NoError(t, err)

	assert.Equal(t, 4, l.NumPanels)
	assert.Equal(t, 100, l.SideLength)
	require.Equal(t, 4, l.Len())
	assert.Equal(t, Panel{ID: 58, ShapeType: HexagonShapes, X: 100, Y: 0, Orientation: 60}, l.Panels[1])
	assert.Equal(t, []uint16{300, 58, 11, 0}, l.IDs())
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `<html>`},
		{"no position data", `{"numPanels": 0}`},
		{"missing panel id", `{"positionData": [{"x": 0, "y": 0, "o": 0, "shapeType": 7}]}`},
		{"missing shape", `{"positionData": [{"panelId": 1, "x": 0, "y": 0, "o": 0}]}`},
		{"missing x", `{"positionData": [{"panelId": 1, "y": 0, "o": 0, "shapeType": 7}]}`},
		{"missing orientation", `{"positionData": [{"panelId": 1, "x": 0, "y": 0, "shapeType": 7}]}`},
		{"id too large", `{"positionData": [{"panelId": 65536, "x": 0, "y": 0, "o": 0, "shapeType": 7}]}`},
		{"negative id", `{"positionData": [{"panelId": -1, "x": 0, "y": 0, "o": 0, "shapeType": 7}]}`},
		{"fractional id", `{"positionData": [{"panelId": 1.5, "x": 0, "y": 0, "o": 0, "shapeType": 7}]}`},
		{"negative shape", `{"positionData": [{"panelId": 1, "x": 0, "y": 0, "o": 0, "shapeType": -7}]}`},
		{"duplicate id", `{"positionData": [
			{"panelId": 1, "x": 0, "y": 0, "o": 0, "shapeType": 7},
			{"panelId": 1, "x": 9, "y": 9, "o": 0, "shapeType": 7}]}`},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			l, err := Load([]byte(tc.raw))
			assert.Nil(t, l)
			assert.ErrorIs(t, err, ErrMalformedLayout)
		})
	}
}

func TestLoadEmpty(t *testing.T) {
	l, err := Load([]byte(`{"numPanels": 0, "sideLength": 0, "positionData": []}`))
	require.NoError(t, err)
	assert.Zero(t, l.Len())
	assert.Empty(t, l.ByShape())
}

func TestQueries(t *testing.T) {
	l, err := Load([]byte(deviceLayout))
	require.NoError(t, err)

	hex := l.ByShape(HexagonShapes)
	require.Len(t, hex, 2)
	assert.Equal(t, uint16(300), hex[0].ID)
	assert.Equal(t, uint16(58), hex[1].ID)

	assert.Len(t, l.ByShape(HexagonShapes, TriangleShapes), 3)
	assert.Len(t, l.ByShape(), 4)
	assert.Empty(t, l.ByShape(LightLines))

	p, ok := l.Find(11)
	assert.True(t, ok)
	assert.Equal(t, TriangleShapes, p.ShapeType)
	_, ok = l.Find(12)
	assert.False(t, ok)

	assert.Equal(t, map[ShapeType]int{HexagonShapes: 2, TriangleShapes: 1, ShapesController: 1}, l.Shapes())
}

func TestByShapeDoesNotAlias(t *testing.T) {
	l, err := Load([]byte(deviceLayout))
	require.NoError(t, err)

	all := l.ByShape()
	all[0].ID = 1
	assert.Equal(t, uint16(300), l.Panels[0].ID)
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "hexagon", HexagonShapes.String())
	assert.Equal(t, "shape(99)", ShapeType(99).String())
}
