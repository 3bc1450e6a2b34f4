package gateway

// BoolValue is the {"value": bool} wrapper used by the state endpoints.
type BoolValue struct {
	Value bool `json:"value"`
}

// Range is a numeric state value with its bounds.
type Range struct {
	Value int `json:"value"`
	Max   int `json:"max"`
	Min   int `json:"min"`
}

type State struct {
	On         BoolValue `json:"on"`
	Brightness Range     `json:"brightness"`
	Hue        Range     `json:"hue"`
	Sat        Range     `json:"sat"`
	Ct         Range     `json:"ct"`
	ColorMode  string    `json:"colorMode"`
}

type Effects struct {
	Select      string   `json:"select"`
	EffectsList []string `json:"effectsList"`
}

// Rhythm describes the optional sound module. Most fields are absent when it is not connected.
type Rhythm struct {
	Connected       bool    `json:"rhythmConnected"`
	Active          *bool   `json:"rhythmActive,omitempty"`
	ID              *string `json:"rhythmId,omitempty"`
	HardwareVersion *string `json:"hardwareVersion,omitempty"`
	FirmwareVersion *string `json:"firmwareVersion,omitempty"`
	AuxAvailable    *bool   `json:"auxAvailable,omitempty"`
	Mode            *string `json:"rhythmMode,omitempty"`
	Pos             *bool   `json:"rhythmPos,omitempty"`
}

// Info is the controller description returned by GET /api/v1/{token}/.
type Info struct {
	Name            string  `json:"name"`
	SerialNo        string  `json:"serialNo"`
	Manufacturer    string  `json:"manufacturer"`
	FirmwareVersion string  `json:"firmwareVersion"`
	Model           string  `json:"model"`
	State           State   `json:"state"`
	Effects         Effects `json:"effects"`
	PanelLayout     struct {
		GlobalOrientation Range `json:"globalOrientation"`
	} `json:"panelLayout"`
	Rhythm Rhythm `json:"rhythm"`
}
