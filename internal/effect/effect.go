package effect

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"leafstream/internal/frame"
	"leafstream/internal/layout"
)

// ErrUnknownEffect is returned for effect names FromSpec does not know.
var ErrUnknownEffect = errors.New("unknown effect")

// Color is an RGB color. The white channel is fixed by the encoder.
type Color struct {
	R, G, B uint8
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor parses "#rrggbb" or "rrggbb".
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Policy decides, once per tick, which panels to light and how.
type Policy interface {
	Name() string
	Frame(l *layout.Layout, now time.Time) frame.Frame
}

// Solid lights every selected panel with the same color.
type Solid struct {
	Shapes     []layout.ShapeType
	Color      Color
	Transition uint16
}

func (s *Solid) Name() string {
	return "solid"
}

func (s *Solid) Frame(l *layout.Layout, _ time.Time) frame.Frame {
	var f frame.Frame
	for _, p := range l.ByShape(s.Shapes...) {
		f.Add(frame.Assignment{
			PanelID:        p.ID,
			Red:            s.Color.R,
			Green:          s.Color.G,
			Blue:           s.Color.B,
			TransitionTime: s.Transition,
		})
	}
	return f
}

// Random gives every selected panel a new random color on each tick.
type Random struct {
	Shapes     []layout.ShapeType
	Transition uint16

	rnd *rand.Rand
}

// NewRandom returns a Random policy using its own source seeded with seed.
func NewRandom(seed int64, transition uint16, shapes ...layout.ShapeType) *Random {
	return &Random{
		Shapes:     shapes,
		Transition: transition,
		rnd:        rand.New(rand.NewSource(seed)),
	}
}

func (r *Random) Name() string {
	return "random"
}

func (r *Random) Frame(l *layout.Layout, now time.Time) frame.Frame {
	if r.rnd == nil {
		r.rnd = rand.New(rand.NewSource(now.UnixNano()))
	}
	var f frame.Frame
	for _, p := range l.ByShape(r.Shapes...) {
		v := r.rnd.Uint32()
		f.Add(frame.Assignment{
			PanelID:        p.ID,
			Red:            uint8(v >> 16),
			Green:          uint8(v >> 8),
			Blue:           uint8(v),
			TransitionTime: r.Transition,
		})
	}
	return f
}

// Spec is the serializable description of a policy, used by the config file
// and by external trigger messages.
type Spec struct {
	Effect     string   `json:"effect"`
	Shapes     []uint32 `json:"shapes,omitempty"`
	Color      string   `json:"color,omitempty"`
	Transition *int     `json:"transition,omitempty"`
}

// FromSpec builds the policy described by s. A missing transition means 1.
func FromSpec(s Spec) (Policy, error) {
	transition := 1
	if s.Transition != nil {
		transition = *s.Transition
	}
	if err := frame.ValidateTransition(transition); err != nil {
		return nil, err
	}

	shapes := make([]layout.ShapeType, len(s.Shapes))
	for i, v := range s.Shapes {
		shapes[i] = layout.ShapeType(v)
	}

	switch strings.ToLower(s.Effect) {
	case "solid", "":
		c := Color{R: 255}
		if s.Color != "" {
			var err error
			if c, err = ParseColor(s.Color); err != nil {
				return nil, err
			}
		}
		return &Solid{Shapes: shapes, Color: c, Transition: uint16(transition)}, nil
	case "off":
		return &Solid{Shapes: shapes, Transition: uint16(transition)}, nil
	case "random":
		return NewRandom(time.Now().UnixNano(), uint16(transition), shapes...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, s.Effect)
	}
}

// ParseCommand decodes a JSON Spec and builds its policy.
func ParseCommand(payload []byte) (Policy, error) {
	var s Spec
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("invalid effect command: %w", err)
	}
	return FromSpec(s)
}
