package clientmqtt

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"leafstream/internal/effect"
	"leafstream/internal/layout"
	"leafstream/internal/logger"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func newTestClient(ctx context.Context, ch chan effect.Policy) *ClientMQTT {
	c := NewClient(logger.Discard(), MQTTConf{Host: "localhost", Port: "1883", Topic: "leafstream/effect/set"})
	c.ctx = ctx
	c.policyCh = ch
	return c
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(logger.Discard(), MQTTConf{})
	assert.True(t, strings.HasPrefix(c.cfgClient.ClientID, "leafstream-"))
	assert.Equal(t, "tcp", c.cfgClient.Schema)
	assert.Equal(t, Status{State: StateOnline}, c.currentStatus())

	c = NewClient(logger.Discard(), MQTTConf{ClientID: "fixed"})
	assert.Equal(t, "fixed", c.cfgClient.ClientID)
}

func TestMessageHandlerForwardsPolicy(t *testing.T) {
	ch := make(chan effect.Policy, 1)
	c := newTestClient(context.Background(), ch)

	c.messageHandler(nil, fakeMessage{
		topic:   "leafstream/effect/set",
		payload: []byte(`{"effect": "solid", "shapes": [7], "color": "#00ff00", "transition": 4}`),
	})

	select {
	case p := <-ch:
		assert.Equal(t, &effect.Solid{Shapes: []layout.ShapeType{layout.HexagonShapes}, Color: effect.Color{G: 255}, Transition: 4}, p)
	case <-time.After(time.Second):
		t.Fatal("policy was not forwarded")
	}
	assert.Equal(t, "solid", c.currentStatus().Effect)
}

func TestMessageHandlerDropsInvalid(t *testing.T) {
	ch := make(chan effect.Policy, 1)
	c := newTestClient(context.Background(), ch)

	c.messageHandler(nil, fakeMessage{payload: []byte(`{"effect": "strobe"}`)})
	c.messageHandler(nil, fakeMessage{payload: []byte(`not json`)})

	assert.Empty(t, ch)
	assert.Empty(t, c.currentStatus().Effect)
}

func TestMessageHandlerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := newTestClient(ctx, make(chan effect.Policy))

	done := make(chan struct{})
	go func() {
		c.messageHandler(nil, fakeMessage{payload: []byte(`{"effect": "off"}`)})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler blocked after cancel")
	}
}

func TestPublishStatusWithoutConnection(t *testing.T) {
	c := newTestClient(context.Background(), nil)
	require.NoError(t, c.PublishStatus(Status{State: StateStreaming, Panels: 9, Effect: "random"}))
	assert.Equal(t, Status{State: StateStreaming, Panels: 9, Effect: "random"}, c.currentStatus())
	require.NoError(t, c.Stop())
}
