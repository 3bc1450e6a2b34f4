package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrMalformedLayout is returned when the device response does not describe a valid layout.
var ErrMalformedLayout = errors.New("malformed layout")

// Panel is a single physical lighting unit.
type Panel struct {
	ID          uint16
	ShapeType   ShapeType
	X           int
	Y           int
	Orientation int
}

// Layout is the set of panels reported by the device for one streaming session.
// It is read-only once loaded.
type Layout struct {
	NumPanels  int
	SideLength int
	Panels     []Panel
}

// Wire form of panelLayout/layout. Pointers let Load tell a missing key from a zero value.
type rawLayout struct {
	NumPanels    *int           `json:"numPanels"`
	SideLength   *int           `json:"sideLength"`
	PositionData *[]rawPosition `json:"positionData"`
}

type rawPosition struct {
	PanelID   *int64 `json:"panelId"`
	X         *int   `json:"x"`
	Y         *int   `json:"y"`
	O         *int   `json:"o"`
	ShapeType *int64 `json:"shapeType"`
}

// Load parses the device's panel layout response.
func Load(raw []byte) (*Layout, error) {
	var r rawLayout
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLayout, err)
	}
	if r.PositionData == nil {
		return nil, fmt.Errorf("%w: positionData is missing", ErrMalformedLayout)
	}

	l := &Layout{Panels: make([]Panel, 0, len(*r.PositionData))}
	if r.NumPanels != nil {
		l.NumPanels = *r.NumPanels
	}
	if r.SideLength != nil {
		l.SideLength = *r.SideLength
	}

	seen := make(map[uint16]struct{}, len(*r.PositionData))
	for i, p := range *r.PositionData {
		panel, err := p.panel()
		if err != nil {
			return nil, fmt.Errorf("%w: positionData[%d]: %v", ErrMalformedLayout, i, err)
		}
		if _, ok := seen[panel.ID]; ok {
			return nil, fmt.Errorf("%w: positionData[%d]: duplicate panelId %d", ErrMalformedLayout, i, panel.ID)
		}
		seen[panel.ID] = struct{}{}
		l.Panels = append(l.Panels, panel)
	}

	return l, nil
}

func (p rawPosition) panel() (Panel, error) {
	switch {
	case p.PanelID == nil:
		return Panel{}, errors.New("panelId is missing")
	case p.ShapeType == nil:
		return Panel{}, errors.New("shapeType is missing")
	case p.X == nil, p.Y == nil:
		return Panel{}, errors.New("position is missing")
	case p.O == nil:
		return Panel{}, errors.New("orientation is missing")
	}
	if *p.PanelID < 0 || *p.PanelID > math.MaxUint16 {
		return Panel{}, fmt.Errorf("panelId %d does not fit 16 bits", *p.PanelID)
	}
	if *p.ShapeType < 0 || *p.ShapeType > math.MaxUint32 {
		return Panel{}, fmt.Errorf("shapeType %d out of range", *p.ShapeType)
	}

	return Panel{
		ID:          uint16(*p.PanelID),
		ShapeType:   ShapeType(*p.ShapeType),
		X:           *p.X,
		Y:           *p.Y,
		Orientation: *p.O,
	}, nil
}

// Len returns the number of panels.
func (l *Layout) Len() int {
	return len(l.Panels)
}

// ByShape returns the panels whose shape is one of shapes, in layout order.
// With no shapes every panel is returned.
func (l *Layout) ByShape(shapes ...ShapeType) []Panel {
	if len(shapes) == 0 {
		out := make([]Panel, len(l.Panels))
		copy(out, l.Panels)
		return out
	}

	var out []Panel
	for _, p := range l.Panels {
		for _, s := range shapes {
			if p.ShapeType == s {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// Find looks a panel up by id.
func (l *Layout) Find(id uint16) (Panel, bool) {
	for _, p := range l.Panels {
		if p.ID == id {
			return p, true
		}
	}
	return Panel{}, false
}

// IDs returns the panel ids in layout order.
func (l *Layout) IDs() []uint16 {
	ids := make([]uint16, len(l.Panels))
	for i, p := range l.Panels {
		ids[i] = p.ID
	}
	return ids
}

// Shapes counts panels per shape type.
func (l *Layout) Shapes() map[ShapeType]int {
	m := make(map[ShapeType]int)
	for _, p := range l.Panels {
		m[p.ShapeType]++
	}
	return m
}
