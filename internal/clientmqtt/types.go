package clientmqtt

type MQTTConf struct {
	ClientID    string // ClientID - уникальное имя клиента для брокеров.
	Schema      string // Schema - тип подключения.
	Host        string // Host - адрес MQTT сервера.
	Port        string // Port - порт MQTT сервера.
	User        string // User - логин для подключения к MQTT серверу.
	Password    string // Password - пароль для подключения к MQTT серверу.
	Qos         byte   // Qos - качество обслуживания.
	Topic       string // Topic - топик команд смены эффекта.
	StatusTopic string // StatusTopic - топик статуса (retained).
}

// Status is published retained on the status topic.
type Status struct {
	State  string `json:"state"`
	Panels int    `json:"panels,omitempty"`
	Effect string `json:"effect,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Values of Status.State.
const (
	StateOnline    = "online"
	StateStreaming = "streaming"
	StateOffline   = "offline"
)
