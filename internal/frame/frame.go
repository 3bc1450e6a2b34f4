// Package frame encodes panel color updates into the external-control (v2) streaming format.
//
// Wire layout, all multi-byte fields big-endian:
//
//	0      reserved, always 0
//	1      number of panels n
//	2+8i   panel id (2 bytes)
//	4+8i   red
//	5+8i   green
//	6+8i   blue
//	7+8i   white, always 255
//	8+8i   transition time (2 bytes), in the device's time unit
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	// HeaderSize is the length of the frame header.
	HeaderSize = 2
	// AssignmentSize is the encoded length of one panel entry.
	AssignmentSize = 8
	// MaxPanels is the largest panel count the one-byte header can carry.
	MaxPanels = math.MaxUint8
	// White is the value of the white channel in every entry.
	White = 0xFF
)

var (
	// ErrFrameTooLarge is returned for frames with more than MaxPanels assignments.
	ErrFrameTooLarge = errors.New("frame too large")
	// ErrInvalidAssignment is returned when an assignment field does not fit the wire format.
	ErrInvalidAssignment = errors.New("invalid assignment")
	// ErrMalformedFrame is returned by Decode for buffers that are not a valid frame.
	ErrMalformedFrame = errors.New("malformed frame")
)

// Assignment is the color one panel should fade to within TransitionTime.
type Assignment struct {
	PanelID        uint16
	Red            uint8
	Green          uint8
	Blue           uint8
	TransitionTime uint16
}

// NewAssignment validates the id and transition time before narrowing them to 16 bits.
func NewAssignment(panelID int, red, green, blue uint8, transition int) (Assignment, error) {
	if panelID < 0 || panelID > math.MaxUint16 {
		return Assignment{}, fmt.Errorf("%w: panel id %d", ErrInvalidAssignment, panelID)
	}
	if err := ValidateTransition(transition); err != nil {
		return Assignment{}, err
	}
	return Assignment{
		PanelID:        uint16(panelID),
		Red:            red,
		Green:          green,
		Blue:           blue,
		TransitionTime: uint16(transition),
	}, nil
}

// ValidateTransition reports whether t can be sent as a transition time.
func ValidateTransition(t int) error {
	if t < 0 || t > math.MaxUint16 {
		return fmt.Errorf("%w: transition time %d", ErrInvalidAssignment, t)
	}
	return nil
}

// Frame is one streaming update. Order is kept as added.
type Frame struct {
	Assignments []Assignment
}

// Add appends an assignment.
func (f *Frame) Add(a Assignment) {
	f.Assignments = append(f.Assignments, a)
}

// Solid sets a panel to a color with the shortest transition.
func (f *Frame) Solid(panelID uint16, red, green, blue uint8) {
	f.Add(Assignment{PanelID: panelID, Red: red, Green: green, Blue: blue, TransitionTime: 1})
}

// Len returns the number of assignments.
func (f Frame) Len() int {
	return len(f.Assignments)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (f Frame) MarshalBinary() ([]byte, error) {
	return Encode(f)
}

// Encode returns the datagram payload for f.
func Encode(f Frame) ([]byte, error) {
	n := len(f.Assignments)
	if n > MaxPanels {
		return nil, fmt.Errorf("%w: %d panels, max %d", ErrFrameTooLarge, n, MaxPanels)
	}

	buf := make([]byte, HeaderSize+AssignmentSize*n)
	buf[0] = 0
	buf[1] = uint8(n)
	for i, a := range f.Assignments {
		b := buf[HeaderSize+AssignmentSize*i:]
		binary.BigEndian.PutUint16(b[0:2], a.PanelID)
		b[2] = a.Red
		b[3] = a.Green
		b[4] = a.Blue
		b[5] = White
		binary.BigEndian.PutUint16(b[6:8], a.TransitionTime)
	}
	return buf, nil
}

// Decode parses a payload produced by Encode. The white channel is not returned.
func Decode(buf []byte) (Frame, error) {
	if len(buf) < HeaderSize {
		return Frame{}, fmt.Errorf("%w: %d bytes", ErrMalformedFrame, len(buf))
	}
	if buf[0] != 0 {
		return Frame{}, fmt.Errorf("%w: reserved byte is %#x", ErrMalformedFrame, buf[0])
	}
	n := int(buf[1])
	if len(buf) != HeaderSize+AssignmentSize*n {
		return Frame{}, fmt.Errorf("%w: %d panels in header, %d bytes", ErrMalformedFrame, n, len(buf))
	}

	f := Frame{Assignments: make([]Assignment, n)}
	for i := range f.Assignments {
		b := buf[HeaderSize+AssignmentSize*i:]
		f.Assignments[i] = Assignment{
			PanelID:        binary.BigEndian.Uint16(b[0:2]),
			Red:            b[2],
			Green:          b[3],
			Blue:           b[4],
			TransitionTime: binary.BigEndian.Uint16(b[6:8]),
		}
	}
	return f, nil
}
