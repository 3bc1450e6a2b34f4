package layout

import "fmt"

// ShapeType classifies the physical geometry of a panel as reported by the firmware.
type ShapeType uint32

const (
	Triangle               ShapeType = 0
	Rhythm                 ShapeType = 1
	Square                 ShapeType = 2
	ControlSquareMaster    ShapeType = 3
	ControlSquarePassive   ShapeType = 4
	HexagonShapes          ShapeType = 7
	TriangleShapes         ShapeType = 8
	MiniTriangleShapes     ShapeType = 9
	ShapesController       ShapeType = 12
	ElementsHexagons       ShapeType = 13
	ElementsHexagonsCorner ShapeType = 14
	LinesConnector         ShapeType = 15
	LightLines             ShapeType = 17
	LightLinesSingleZone   ShapeType = 18
	ControllerCap          ShapeType = 19
	PowerConnector         ShapeType = 20
)

var shapeNames = map[ShapeType]string{
	Triangle:               "triangle",
	Rhythm:                 "rhythm",
	Square:                 "square",
	ControlSquareMaster:    "control-square-master",
	ControlSquarePassive:   "control-square-passive",
	HexagonShapes:          "hexagon",
	TriangleShapes:         "shapes-triangle",
	MiniTriangleShapes:     "shapes-mini-triangle",
	ShapesController:       "shapes-controller",
	ElementsHexagons:       "elements-hexagon",
	ElementsHexagonsCorner: "elements-hexagon-corner",
	LinesConnector:         "lines-connector",
	LightLines:             "light-lines",
	LightLinesSingleZone:   "light-lines-single-zone",
	ControllerCap:          "controller-cap",
	PowerConnector:         "power-connector",
}

func (s ShapeType) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("shape(%d)", uint32(s))
}
