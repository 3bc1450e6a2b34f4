package stream

import "time"

// Ticker is the clock of the loop.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time {
	return t.t.C
}

func (t timeTicker) Stop() {
	t.t.Stop()
}

// NewTicker wraps time.NewTicker.
func NewTicker(d time.Duration) Ticker {
	return timeTicker{time.NewTicker(d)}
}
