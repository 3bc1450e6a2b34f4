package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"leafstream/internal/artnet"
	"leafstream/internal/clientmqtt"
	"leafstream/internal/config"
	"leafstream/internal/effect"
	"leafstream/internal/gateway"
	"leafstream/internal/logger"
	"leafstream/internal/stream"
	"leafstream/internal/transport"
)

var (
	configFile string
	pair       bool
)

func init() {
	flag.StringVar(&configFile, "config", "configs/conf.toml", "Path to configuration file")
	flag.BoolVar(&pair, "pair", false, "Request a new access token (hold the controller power button first) and exit")
}

func main() {
	flag.Parse()
	cfg, err := config.NewConfig(configFile)
	if err != nil {
		fmt.Printf("configuration file read error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Printf("failed to create a logger: %v\n", err)
		os.Exit(1)
	}

	log.Module("logger").Debug("newLogger created ok")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	device := gateway.New(log, ConvertConfigGateway(cfg.Device))

	if pair {
		token, err := device.Pair(ctx)
		if err != nil {
			log.Module("gateway").Errorf("pairing failed: %v", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	if info, err := device.Info(ctx); err != nil {
		log.Module("gateway").Warnf("failed to read device info: %v", err)
	} else {
		log.Module("gateway").Infof("connected to %s %q (%s, firmware %s)", info.Manufacturer, info.Name, info.Model, info.FirmwareVersion)
	}

	policy, err := effect.FromSpec(ConvertConfigEffect(cfg.Effect))
	if err != nil {
		log.Module("effect").Errorf("invalid effect configuration: %v", err)
		os.Exit(1)
	}

	udp, err := transport.NewUDP(cfg.Device.Address, cfg.Stream.Port)
	if err != nil {
		log.Module("transport").Errorf("failed to open stream socket: %v", err)
		os.Exit(1)
	}
	defer udp.Close()
	log.Module("transport").Debugf("streaming to %s", udp.Remote())

	// Канал для смены эффекта по командам MQTT.
	policyCh := make(chan effect.Policy, 1)
	opts := []stream.Option{
		stream.WithInterval(cfg.Stream.Interval.Duration),
		stream.WithPolicyUpdates(policyCh),
	}

	var client *clientmqtt.ClientMQTT
	if cfg.MQTT.Enabled {
		client = clientmqtt.NewClient(log, ConvertConfigClientMQTT(cfg.MQTT))
		if err = client.Start(ctx, policyCh); err != nil {
			log.Module("mqtt").Errorf("failed to start MQTT service: %v", err)
			os.Exit(1)
		}
		log.Module("mqtt").Debug("NewClient created ok")
	}

	var mirror *artnet.ArtNet
	if cfg.ArtNet.Enabled {
		mirror, err = artnet.NewMirror(log, artnet.Conf{Network: cfg.ArtNet.Network, Universe: cfg.ArtNet.Universe})
		if err != nil {
			log.Module("art-net").Errorf("error while creating a new controller art-net. %v", err)
			os.Exit(1)
		}
		if err = mirror.Start(ctx); err != nil {
			log.Module("art-net").Errorf("failed to start art-net service: %v", err)
			os.Exit(1)
		}
		opts = append(opts, stream.WithMirror(mirror))
	}

	streamer := stream.New(log, device, udp, policy, opts...)
	if err = streamer.Open(ctx); err != nil {
		log.Module("stream").Errorf("failed to open streaming session: %v", err)
		os.Exit(1)
	}

	if client != nil {
		status := clientmqtt.Status{State: clientmqtt.StateStreaming, Panels: streamer.Layout().Len(), Effect: policy.Name()}
		if err := client.PublishStatus(status); err != nil {
			log.Module("mqtt").Warnf("failed to publish status: %v", err)
		}
	}

	if err = streamer.Run(ctx); err != nil {
		log.Module("stream").Errorf("streaming aborted: %v", err)
	}

	stats := streamer.Stats()
	log.Module("stream").Infof("ticks=%d sent=%d failed=%d", stats.Ticks, stats.Sent, stats.Failed)

	if client != nil {
		if err := client.Stop(); err != nil {
			log.Module("mqtt").Errorf("failed to stop MQTT service: %v", err)
		}
	}
	if mirror != nil {
		mirror.Stop()
	}

	log.Info("shutdown complete")
	if err != nil {
		os.Exit(1)
	}
}

// ConvertConfigGateway преобразует структуры.
func ConvertConfigGateway(cfg config.DeviceConf) gateway.Conf {
	return gateway.Conf{
		Address: cfg.Address,
		Token:   cfg.Token,
		Port:    cfg.APIPort,
		Timeout: cfg.Timeout.Duration,
	}
}

// ConvertConfigEffect преобразует структуры.
func ConvertConfigEffect(cfg config.EffectConf) effect.Spec {
	transition := cfg.Transition
	return effect.Spec{
		Effect:     cfg.Name,
		Shapes:     cfg.Shapes,
		Color:      cfg.Color,
		Transition: &transition,
	}
}

// ConvertConfigClientMQTT преобразует структуры.
func ConvertConfigClientMQTT(cfg config.MQTTConf) clientmqtt.MQTTConf {
	return clientmqtt.MQTTConf{
		ClientID:    cfg.ClientID,
		Schema:      "tcp",
		Host:        cfg.Host,
		Port:        cfg.Port,
		User:        cfg.User,
		Password:    cfg.Password,
		Qos:         cfg.Qos,
		Topic:       cfg.Topic,
		StatusTopic: cfg.StatusTopic,
	}
}
