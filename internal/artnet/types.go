package artnet

// ChannelsPerPanel is the number of DMX channels a mirrored panel uses (R, G, B).
const ChannelsPerPanel = 3

// PanelsPerUniverse is how many panels fit one 512 channel universe.
const PanelsPerUniverse = len(Universe{}) / ChannelsPerPanel

// Universe wraps the 512 byte array for convenience.
type Universe [512]byte

func (u Universe) toByteSlice() [512]byte {
	return u
}

// UniverseStateMap holds the state of all used universes.
type UniverseStateMap map[uint16]Universe

// Conf структура конфигурации зеркала.
type Conf struct {
	Network  string // Network - CIDR сети Art-Net.
	Universe uint16 // Universe - первый universe: старший байт - Net, младший байт - SubUni.
}
