package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"leafstream/internal/config"
	"leafstream/internal/effect"
	"leafstream/internal/layout"
)

func TestConvertConfigGateway(t *testing.T) {
	c := ConvertConfigGateway(config.DeviceConf{
		Address: "10.0.0.3",
		Token:   "tok",
		APIPort: 16021,
		Timeout: config.Duration{Duration: 3 * time.Second},
	})
	assert.Equal(t, "10.0.0.3", c.Address)
	assert.Equal(t, "tok", c.Token)
	assert.Equal(t, 16021, c.Port)
	assert.Equal(t, 3*time.Second, c.Timeout)
}

func TestConvertConfigEffect(t *testing.T) {
	p, err := effect.FromSpec(ConvertConfigEffect(config.Default().Effect))
	require.NoError(t, err)
	assert.Equal(t, &effect.Solid{
		Shapes:     []layout.ShapeType{layout.HexagonShapes},
		Color:      effect.Color{R: 255},
		Transition: 1,
	}, p)

	spec := ConvertConfigEffect(config.EffectConf{Name: "random"})
	require.NotNil(t, spec.Transition)
	assert.Equal(t, 0, *spec.Transition)
}

func TestConvertConfigClientMQTT(t *testing.T) {
	c := ConvertConfigClientMQTT(config.MQTTConf{Host: "broker", Port: "1883", Qos: 1, Topic: "a", StatusTopic: "b"})
	assert.Equal(t, "tcp", c.Schema)
	assert.Equal(t, "broker", c.Host)
	assert.Equal(t, byte(1), c.Qos)
	assert.Equal(t, "a", c.Topic)
	assert.Equal(t, "b", c.StatusTopic)
}
