package artnet

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Haba1234/go-artnet"
	"leafstream/internal/frame"
	"leafstream/internal/logger"
)

// maxFPS caps how often the controller refreshes each universe.
const maxFPS = 30

// ErrBusy is returned by Mirror when the previous frames have not been sent yet.
var ErrBusy = errors.New("art-net sender busy, frame dropped")

// ArtNet mirrors panel frames to Art-Net nodes, three DMX channels per panel.
type ArtNet struct {
	logger      logger.Logger
	sender      *artnet.Controller
	universe    uint16
	sendTrigger chan UniverseStateMap
	ctx         context.Context
}

// NewMirror returns an Art-Net mirror bound to the local interface inside cfg.Network.
func NewMirror(log logger.Logger, cfg Conf) (*ArtNet, error) {
	ip, err := FindArtNetIP(cfg.Network)
	if err != nil {
		return nil, fmt.Errorf("failed to find the art-net IP: %w", err)
	}

	if len(ip) == 0 {
		return nil, errors.New("failed to find the art-net IP: No interface found")
	}

	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve hostname: %w", err)
	}

	host = strings.ToLower(strings.Split(host, ".")[0])
	log.Module("art-net").Infof("Using ArtNet IP %s and hostname %s", ip.String(), host)

	level := "info"
	if log.GetLevel() == "debug" {
		level = "debug"
	}
	senderLogger := artnet.NewDefaultLogger(level)

	return &ArtNet{
		logger:      log,
		sender:      artnet.NewController(host, ip, senderLogger, artnet.MaxFPS(maxFPS)),
		universe:    cfg.Universe,
		sendTrigger: make(chan UniverseStateMap, 1),
	}, nil
}

// Start the ArtNet.
func (c *ArtNet) Start(ctx context.Context) error {
	if err := c.sender.Start(); err != nil {
		return fmt.Errorf("failed to start Controller: %w", err)
	}

	c.ctx = ctx
	go c.sendBackground()
	go c.debugDevices()
	return nil
}

// Stop the ArtNet.
func (c *ArtNet) Stop() {
	c.sender.Stop()
}

// Mirror queues f for sending. It never blocks the streaming loop.
func (c *ArtNet) Mirror(f frame.Frame) error {
	select {
	case c.sendTrigger <- FrameToUniverses(f, c.universe):
		return nil
	default:
		return ErrBusy
	}
}

// FrameToUniverses lays the panels of f out as consecutive RGB triples,
// starting at channel 0 of universe base and spilling into the next universes.
func FrameToUniverses(f frame.Frame, base uint16) UniverseStateMap {
	out := UniverseStateMap{}
	for i, a := range f.Assignments {
		u := base + uint16(i/PanelsPerUniverse)
		ch := (i % PanelsPerUniverse) * ChannelsPerPanel
		dmx := out[u]
		dmx[ch] = a.Red
		dmx[ch+1] = a.Green
		dmx[ch+2] = a.Blue
		out[u] = dmx
	}
	return out
}

func (c *ArtNet) sendBackground() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case data := <-c.sendTrigger:
			for u, dmx := range data {
				c.logger.Module("art-net").Debugf("DMX. sending universe %v", u)
				c.sender.SendDMXToAddress(dmx.toByteSlice(), universeToAddress(u))
			}
		}
	}
}

// universeToAddress converts a dmx universe to art-net address
// universe: старший байт - Net, младший байт - SubUni.
func universeToAddress(universe uint16) artnet.Address {
	v := make([]uint8, 2)
	binary.BigEndian.PutUint16(v, universe)

	return artnet.Address{
		Net:    v[0],
		SubUni: v[1],
	}
}

// NodeToString returns a string representation of the given Node.
func NodeToString(n *artnet.ControlledNode) string {
	var inputs, outputs []string
	for _, p := range n.Node.InputPorts {
		inputs = append(inputs, fmt.Sprintf("%s: %s", p.Address.String(), p.Type.String()))
	}
	for _, p := range n.Node.OutputPorts {
		outputs = append(outputs, p.Address.String())
	}

	return fmt.Sprintf(
		" | IP=%s name=%q type=%q manufacturer=%q desc=%q inputs=%q outputs=%q",
		n.UDPAddress.String(), n.Node.Name, n.Node.Type,
		n.Node.Manufacturer, n.Node.Description,
		strings.Join(inputs, "; "), strings.Join(outputs, "; "),
	)
}

func (c *ArtNet) debugDevices() {
	t := time.NewTicker(30 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-t.C:
			nodes := c.sender.Nodes
			descs := make([]string, 0, len(nodes))
			for _, n := range nodes {
				descs = append(descs, NodeToString(n))
			}
			c.logger.Module("art-net").Debugf("Currently %d devices are registered: %v", len(nodes), descs)
		}
	}
}
