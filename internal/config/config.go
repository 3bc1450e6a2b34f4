package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config структура конфигурации.
type Config struct {
	Logger LogConf    // Logger - конфигурация регистратора.
	Device DeviceConf // Device - адрес и токен панели.
	Stream StreamConf // Stream - параметры потоковой передачи кадров.
	Effect EffectConf // Effect - эффект по умолчанию.
	MQTT   MQTTConf   // MQTT - конфигурация MQTT клиента.
	ArtNet ArtNetConf // ArtNet - зеркалирование кадров в Art-Net.
}

// LogConf структура конфигурации.
type LogConf struct {
	Level string `toml:"log-level"` // Level - уровень логирования.
}

// DeviceConf describes how to reach the panel controller.
type DeviceConf struct {
	Address string   `toml:"address"`  // Address - IP адрес контроллера.
	Token   string   `toml:"token"`    // Token - токен доступа (или $ACCESS_TOKEN).
	APIPort int      `toml:"api-port"` // APIPort - порт HTTP API.
	Timeout Duration `toml:"timeout"`  // Timeout - таймаут HTTP запросов.
}

// StreamConf структура конфигурации.
type StreamConf struct {
	Port     int      `toml:"port"`     // Port - UDP порт приема кадров.
	Interval Duration `toml:"interval"` // Interval - период отправки кадров.
}

// EffectConf is the policy the loop starts with.
type EffectConf struct {
	Name       string   `toml:"name"`       // Name - "solid" или "random".
	Shapes     []uint32 `toml:"shapes"`     // Shapes - типы панелей; пусто - все панели.
	Color      string   `toml:"color"`      // Color - цвет в формате #rrggbb.
	Transition int      `toml:"transition"` // Transition - время перехода, сотые доли секунды.
}

// MQTTConf структура конфигурации.
type MQTTConf struct {
	Enabled     bool   `toml:"enabled"`      // Enabled - включить MQTT.
	ClientID    string `toml:"clientID"`     // ClientID - имя клиента.
	Host        string `toml:"server"`       // Host - адрес MQTT сервера.
	Port        string `toml:"port"`         // Port - порт MQTT сервера.
	User        string `toml:"user"`         // User - логин для подключения к MQTT серверу.
	Password    string `toml:"password"`     // Password - пароль для подключения к MQTT серверу.
	Qos         byte   `toml:"qos"`          // Qos - качество обслуживания.
	Topic       string `toml:"topic"`        // Topic - топик команд смены эффекта.
	StatusTopic string `toml:"status-topic"` // StatusTopic - топик статуса.
}

// ArtNetConf структура конфигурации.
type ArtNetConf struct {
	Enabled  bool   `toml:"enabled"`  // Enabled - включить зеркалирование.
	Network  string `toml:"network"`  // Network - CIDR сети Art-Net.
	Universe uint16 `toml:"universe"` // Universe: старший байт - Net, младший байт - SubUni.
}

// Duration is a time.Duration that toml decodes from strings like "1s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when a key is absent from the file.
func Default() Config {
	return Config{
		Logger: LogConf{Level: "info"},
		Device: DeviceConf{
			APIPort: 16021,
			Timeout: Duration{5 * time.Second},
		},
		Stream: StreamConf{
			Port:     60222,
			Interval: Duration{time.Second},
		},
		Effect: EffectConf{
			Name:       "solid",
			Shapes:     []uint32{7},
			Color:      "#ff0000",
			Transition: 1,
		},
		MQTT: MQTTConf{
			Port:        "1883",
			Topic:       "leafstream/effect/set",
			StatusTopic: "leafstream/status",
		},
		ArtNet: ArtNetConf{
			Network: "192.168.6.0/24",
		},
	}
}

// NewConfig конструктор.
func NewConfig(path string) (*Config, error) {
	// default values
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return &cfg, err
	}
	if cfg.Device.Token == "" {
		cfg.Device.Token = os.Getenv("ACCESS_TOKEN")
	}
	return &cfg, cfg.Validate()
}

// Validate checks the values the streaming session cannot start without.
func (c *Config) Validate() error {
	if c.Device.Address == "" {
		return fmt.Errorf("device.address is required")
	}
	if c.Stream.Port <= 0 || c.Stream.Port > 65535 {
		return fmt.Errorf("stream.port out of range: %d", c.Stream.Port)
	}
	if c.Device.APIPort <= 0 || c.Device.APIPort > 65535 {
		return fmt.Errorf("device.api-port out of range: %d", c.Device.APIPort)
	}
	if c.Stream.Interval.Duration <= 0 {
		return fmt.Errorf("stream.interval must be positive")
	}
	return nil
}
