package frame

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeSinglePanel(t *testing.T) {
	f := Frame{}
	f.Add(Assignment{PanelID: 300, Red: 255, TransitionTime: 10})

	buf, err := Encode(f)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01, 0x01, 0x2C, 0xFF, 0x00, 0x00, 0xFF, 0x00, 0x0A}, buf)
}

func TestEncodeEmpty(t *testing.T) {
	buf, err := Encode(Frame{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00}, buf)
}

func TestEncodeLengthAndWhite(t *testing.T) {
	for _, n := range []int{1, 2, 7, 128, MaxPanels} {
		f := Frame{}
		for i := 0; i < n; i++ {
			f.Add(Assignment{
				PanelID:        uint16(i * 257),
				Red:            uint8(i),
				Green:          uint8(255 - i),
				Blue:           uint8(i * 3),
				TransitionTime: uint16(i * 100),
			})
		}

		buf, err := Encode(f)
		require.NoError(t, err)
		require.Len(t, buf, HeaderSize+AssignmentSize*n)
		assert.Equal(t, byte(0), buf[0])
		assert.Equal(t, n, int(buf[1]))
		for i := 0; i < n; i++ {
			assert.Equal(t, byte(White), buf[7+AssignmentSize*i], "white byte of panel %d", i)
		}

		back, err := Decode(buf)
		require.NoError(t, err)
		assert.Equal(t, f, back)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	f := Frame{}
	f.Solid(1, 10, 20, 30)
	f.Solid(2, 40, 50, 60)

	a, err := Encode(f)
	require.NoError(t, err)
	b, err := f.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncodeTooLarge(t *testing.T) {
	f := Frame{Assignments: make([]Assignment, MaxPanels+1)}
	buf, err := Encode(f)
	assert.Nil(t, buf)
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestSolid(t *testing.T) {
	f := Frame{}
	f.Solid(42, 1, 2, 3)
	require.Equal(t, 1, f.Len())
	assert.Equal(t, Assignment{PanelID: 42, Red: 1, Green: 2, Blue: 3, TransitionTime: 1}, f.Assignments[0])
}

func TestNewAssignment(t *testing.T) {
	a, err := NewAssignment(300, 255, 0, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, Assignment{PanelID: 300, Red: 255, TransitionTime: 10}, a)

	_, err = NewAssignment(math.MaxUint16+1, 0, 0, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidAssignment)
	_, err = NewAssignment(-1, 0, 0, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidAssignment)
	_, err = NewAssignment(1, 0, 0, 0, math.MaxUint16+1)
	assert.ErrorIs(t, err, ErrInvalidAssignment)
	_, err = NewAssignment(1, 0, 0, 0, -5)
	assert.ErrorIs(t, err, ErrInvalidAssignment)
}

func TestDecodeMalformed(t *testing.T) {
	for _, buf := range [][]byte{
		nil,
		{0x00},
		{0x01, 0x00},
		{0x00, 0x01, 0x00},
		{0x00, 0x00, 0x00},
	} {
		_, err := Decode(buf)
		assert.ErrorIs(t, err, ErrMalformedFrame, "%v", buf)
	}
}
