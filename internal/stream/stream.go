package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"leafstream/internal/effect"
	"leafstream/internal/frame"
	"leafstream/internal/layout"
	"leafstream/internal/logger"
)

// DefaultInterval is the period between two frames.
const DefaultInterval = time.Second

var (
	ErrNotStreaming     = errors.New("device is not armed for external control")
	ErrAlreadyStreaming = errors.New("streaming session already open")
)

// State of a streaming session. The only transition is Idle -> Streaming.
type State int32

const (
	Idle State = iota
	Streaming
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Streaming:
		return "streaming"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Device is the part of the management plane the loop depends on.
type Device interface {
	FetchLayout(ctx context.Context) (*layout.Layout, error)
	ArmStreaming(ctx context.Context) error
}

// Transport delivers one encoded frame. Delivery is best-effort.
type Transport interface {
	Send(p []byte) error
}

// Mirror receives every frame that was built, before it is sent.
type Mirror interface {
	Mirror(f frame.Frame) error
}

// Stats are counters of a streaming session.
type Stats struct {
	Ticks          uint64
	Sent           uint64
	Failed         uint64
	MirrorFailures uint64
}

// Streamer drives the device in external control mode.
type Streamer struct {
	// Accessed atomically, kept first for 64-bit alignment.
	ticks          uint64
	sent           uint64
	failed         uint64
	mirrorFailures uint64

	log       logger.Logger
	device    Device
	transport Transport
	policy    effect.Policy
	updates   <-chan effect.Policy
	mirrors   []Mirror
	interval  time.Duration
	newTicker func(time.Duration) Ticker

	mu     sync.Mutex
	state  State
	layout *layout.Layout
}

// Option configures a Streamer.
type Option func(*Streamer)

// WithInterval sets the tick period.
func WithInterval(d time.Duration) Option {
	return func(s *Streamer) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithTicker replaces the ticker constructor, used to drive the loop from tests.
func WithTicker(fn func(time.Duration) Ticker) Option {
	return func(s *Streamer) {
		s.newTicker = fn
	}
}

// WithPolicyUpdates makes the loop switch to policies received on ch between ticks.
func WithPolicyUpdates(ch <-chan effect.Policy) Option {
	return func(s *Streamer) {
		s.updates = ch
	}
}

// WithMirror adds a frame mirror.
func WithMirror(m Mirror) Option {
	return func(s *Streamer) {
		s.mirrors = append(s.mirrors, m)
	}
}

// New creates an idle Streamer.
func New(log logger.Logger, device Device, transport Transport, policy effect.Policy, opts ...Option) *Streamer {
	s := &Streamer{
		log:       log,
		device:    device,
		transport: transport,
		policy:    policy,
		interval:  DefaultInterval,
		newTicker: NewTicker,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open fetches the layout and arms the device. It must succeed before Run.
func (s *Streamer) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Streaming {
		return ErrAlreadyStreaming
	}

	l, err := s.device.FetchLayout(ctx)
	if err != nil {
		return err
	}
	s.log.Module("stream").Infof("layout loaded: %d panels %v", l.Len(), l.Shapes())

	if err := s.device.ArmStreaming(ctx); err != nil {
		return err
	}

	s.layout = l
	s.state = Streaming
	return nil
}

// State returns the session state.
func (s *Streamer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Layout returns the layout of the open session, nil while idle.
func (s *Streamer) Layout() *layout.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}

// Stats returns a snapshot of the counters.
func (s *Streamer) Stats() Stats {
	return Stats{
		Ticks:          atomic.LoadUint64(&s.ticks),
		Sent:           atomic.LoadUint64(&s.sent),
		Failed:         atomic.LoadUint64(&s.failed),
		MirrorFailures: atomic.LoadUint64(&s.mirrorFailures),
	}
}

// Run sends a frame right away and then one per interval until ctx is done.
// Cancellation is only observed between ticks. Send failures are logged and
// skipped; an error is returned only for frames the encoder rejects.
func (s *Streamer) Run(ctx context.Context) error {
	if s.State() != Streaming {
		return ErrNotStreaming
	}
	l := s.Layout()
	log := s.log.Module("stream")

	updates := s.updates
	ticker := s.newTicker(s.interval)
	defer ticker.Stop()

	log.Infof("streaming %q every %v", s.policy.Name(), s.interval)
	if err := s.tick(l, time.Now()); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("streaming stopped")
			return nil
		case p, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			if p == nil {
				continue
			}
			log.Infof("effect changed: %s -> %s", s.policy.Name(), p.Name())
			s.policy = p
		case now := <-ticker.C():
			if err := s.tick(l, now); err != nil {
				return err
			}
		}
	}
}

func (s *Streamer) tick(l *layout.Layout, now time.Time) error {
	n := atomic.AddUint64(&s.ticks, 1)

	f := s.policy.Frame(l, now)
	buf, err := frame.Encode(f)
	if err != nil {
		return fmt.Errorf("tick %d: %w", n, err)
	}

	for _, m := range s.mirrors {
		if err := m.Mirror(f); err != nil {
			atomic.AddUint64(&s.mirrorFailures, 1)
			s.log.Module("stream").Debugf("tick %d: mirror failed: %v", n, err)
		}
	}

	if err := s.transport.Send(buf); err != nil {
		atomic.AddUint64(&s.failed, 1)
		s.log.With(logger.Fields{"module": "stream", "tick": n}).Warnf("frame dropped: %v", err)
		return nil
	}
	atomic.AddUint64(&s.sent, 1)
	s.log.With(logger.Fields{"module": "stream", "tick": n}).Debugf("sent %d panels (%d bytes)", f.Len(), len(buf))
	return nil
}
