package artnet

import (
	"testing"

	"github.com/Haba1234/go-artnet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"leafstream/internal/frame"
)

func TestFrameToUniverses(t *testing.T) {
	var f frame.Frame
	f.Solid(300, 255, 0, 0)
	f.Solid(58, 1, 2, 3)

	m := FrameToUniverses(f, 4)
	require.Len(t, m, 1)
	u := m[4]
	assert.Equal(t, []byte{255, 0, 0, 1, 2, 3, 0}, u[:7])
}

func TestFrameToUniversesSpills(t *testing.T) {
	var f frame.Frame
	for i := 0; i < PanelsPerUniverse+2; i++ {
		f.Solid(uint16(i), uint8(i), 0, 0)
	}

	m := FrameToUniverses(f, 0)
	require.Len(t, m, 2)
	first := m[0]
	second := m[1]
	assert.Equal(t, byte(PanelsPerUniverse-1), first[(PanelsPerUniverse-1)*ChannelsPerPanel])
	assert.Equal(t, []byte{byte(PanelsPerUniverse), 0, 0, byte(PanelsPerUniverse + 1)}, second[:4])
}

func TestFrameToUniversesEmpty(t *testing.T) {
	assert.Empty(t, FrameToUniverses(frame.Frame{}, 0))
}

func TestUniverseToAddress(t *testing.T) {
	assert.Equal(t, artnet.Address{Net: 0x01, SubUni: 0x02}, universeToAddress(0x0102))
	assert.Equal(t, artnet.Address{}, universeToAddress(0))
}

func TestMirrorDropsWhenBusy(t *testing.T) {
	c := &ArtNet{sendTrigger: make(chan UniverseStateMap, 1), universe: 2}

	var f frame.Frame
	f.Solid(1, 9, 8, 7)
	require.NoError(t, c.Mirror(f))
	assert.ErrorIs(t, c.Mirror(f), ErrBusy)

	queued := <-c.sendTrigger
	u := queued[2]
	assert.Equal(t, []byte{9, 8, 7}, u[:3])
}

func TestFindArtNetIPBadNetwork(t *testing.T) {
	_, err := FindArtNetIP("not-a-cidr")
	assert.Error(t, err)
}

func TestFindArtNetIPLoopback(t *testing.T) {
	ip, err := FindArtNetIP("127.0.0.0/8")
	require.NoError(t, err)
	if ip != nil {
		assert.True(t, ip.IsLoopback())
	}
}
