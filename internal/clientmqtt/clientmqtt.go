package clientmqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"leafstream/internal/effect"
	"leafstream/internal/logger"
)

// ClientMQTT принимает команды смены эффекта и публикует статус.
type ClientMQTT struct {
	ctx       context.Context
	log       logger.Logger
	cfgClient MQTTConf
	client    mqtt.Client
	opts      *mqtt.ClientOptions
	policyCh  chan<- effect.Policy

	mu     sync.Mutex
	status Status
}

// MQTTClient is a convenience interface to use within this application.
type MQTTClient interface {
	Start(ctx context.Context, policyCh chan<- effect.Policy) error
	Stop() error
	PublishStatus(status Status) error
}

// NewClient конструктор.
func NewClient(log logger.Logger, cfgClient MQTTConf) *ClientMQTT {
	if cfgClient.ClientID == "" {
		cfgClient.ClientID = "leafstream-" + uuid.NewString()
	}
	if cfgClient.Schema == "" {
		cfgClient.Schema = "tcp"
	}
	return &ClientMQTT{
		log:       log,
		cfgClient: cfgClient,
		status:    Status{State: StateOnline},
	}
}

func (c *ClientMQTT) Start(ctx context.Context, policyCh chan<- effect.Policy) error {
	if c.log.GetLevel() == "debug" {
		paho := c.log.Module("paho")
		mqtt.ERROR = log.New(paho.WriterLevel(logrus.ErrorLevel), "", 0)
		mqtt.CRITICAL = log.New(paho.WriterLevel(logrus.ErrorLevel), "[CRIT] ", 0)
		mqtt.WARN = log.New(paho.WriterLevel(logrus.WarnLevel), "", 0)
	}

	c.ctx = ctx
	c.policyCh = policyCh

	offline, _ := json.Marshal(Status{State: StateOffline})
	c.opts = mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("%s://%s:%s", c.cfgClient.Schema, c.cfgClient.Host, c.cfgClient.Port)).
		SetUsername(c.cfgClient.User).
		SetPassword(c.cfgClient.Password).
		SetDefaultPublishHandler(c.messageHandler).
		SetOnConnectHandler(c.connectHandler).
		SetConnectionLostHandler(c.connectLostHandler).
		SetClientID(c.cfgClient.ClientID).
		SetBinaryWill(c.cfgClient.StatusTopic, offline, c.cfgClient.Qos, true).
		SetOrderMatters(false).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetMaxReconnectInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second)

	c.client = mqtt.NewClient(c.opts)

	token := c.client.Connect()
	select {
	case <-token.Done():
		if token.Error() != nil {
			return token.Error()
		}
	case <-c.ctx.Done():
		return errors.New("context canceled")
	}

	c.log.Module("mqtt").Infof("Status: %v", c.client.IsConnected())
	return nil
}

func (c *ClientMQTT) Stop() error {
	if c.client != nil && c.client.IsConnected() {
		if err := c.PublishStatus(Status{State: StateOffline}); err != nil {
			c.log.Module("mqtt").Warnf("failed to publish offline status: %v", err)
		}
		c.client.Disconnect(500)
	}
	return nil
}

// PublishStatus replaces the retained status message.
func (c *ClientMQTT) PublishStatus(status Status) error {
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()

	if c.client == nil || c.cfgClient.StatusTopic == "" {
		return nil
	}
	msg, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("status marshal: %w", err)
	}

	token := c.client.Publish(c.cfgClient.StatusTopic, c.cfgClient.Qos, true, msg)
	if !token.WaitTimeout(2 * time.Second) {
		return fmt.Errorf("publish %s: timeout", c.cfgClient.StatusTopic)
	}
	return token.Error()
}

// currentStatus returns the last published status.
func (c *ClientMQTT) currentStatus() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *ClientMQTT) connectHandler(client mqtt.Client) {
	c.log.Module("mqtt").Info("client connected to server")

	// The session is clean, so the subscription is renewed on every reconnect.
	token := client.Subscribe(c.cfgClient.Topic, c.cfgClient.Qos, nil)
	go func() {
		select {
		case <-c.ctx.Done():
			return
		case <-token.Done():
			if token.Error() != nil {
				c.log.Module("mqtt").Errorf("topic %s subscription error. %v", c.cfgClient.Topic, token.Error())
				return
			}
		}
		c.log.Module("mqtt").Debugf("topic %s subscribed", c.cfgClient.Topic)

		if err := c.PublishStatus(c.currentStatus()); err != nil {
			c.log.Module("mqtt").Warnf("failed to publish status: %v", err)
		}
	}()
}

func (c *ClientMQTT) connectLostHandler(_ mqtt.Client, err error) {
	c.log.Module("mqtt").Errorf("server connect lost: %v", err)
}

func (c *ClientMQTT) messageHandler(_ mqtt.Client, msg mqtt.Message) {
	c.log.Module("mqtt").Debugf("received message: %s from topic: %s", msg.Payload(), msg.Topic())

	policy, err := effect.ParseCommand(msg.Payload())
	if err != nil {
		c.log.Module("mqtt").Errorf("message could not be parsed (%s): %v", msg.Payload(), err)
		return
	}

	select {
	case c.policyCh <- policy:
	case <-c.ctx.Done():
		return
	}

	status := c.currentStatus()
	status.Effect = policy.Name()
	if err := c.PublishStatus(status); err != nil {
		c.log.Module("mqtt").Warnf("failed to publish status: %v", err)
	}
}
