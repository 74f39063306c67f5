// Package gesture holds the touch state machines of the browse list and the
// details gallery.
package gesture

import "time"

type Phase int

const (
	Idle Phase = iota
	Pulling
	Refreshing
)

func (p Phase) String() string {
	switch p {
	case Pulling:
		return "pulling"
	case Refreshing:
		return "refreshing"
	}
	return "idle"
}

type Config struct {
	Threshold  float64
	Resistance float64
	Overshoot  float64
	Hold       float64
	Delay      time.Duration
}

func DefaultConfig() Config {
	return Config{Threshold: 80, Resistance: 0.5, Overshoot: 40, Hold: 60, Delay: 1500 * time.Millisecond}
}

// Cap is the furthest the content can be pulled down.
func (c Config) Cap() float64 { return c.Threshold + c.Overshoot }

// Puller is the pull-to-refresh state machine. Not safe for concurrent use.
type Puller struct {
	cfg      Config
	phase    Phase
	tracking bool
	startY   float64
	pos      float64
}

func NewPuller(cfg Config) *Puller {
	if cfg.Threshold <= 0 {
		cfg = DefaultConfig()
	}
	return &Puller{cfg: cfg}
}

func (p *Puller) Config() Config { return p.cfg }

// TouchStart begins tracking only when the list is scrolled to the top and no
// refresh is in flight.
func (p *Puller) TouchStart(scrollTop, y float64) {
	if p.phase == Refreshing || scrollTop > 0 {
		p.tracking = false
		return
	}
	p.tracking = true
	p.startY = y
}

func (p *Puller) TouchMove(y float64) {
	if !p.tracking || p.phase == Refreshing {
		return
	}
	delta := y - p.startY
	if delta <= 0 {
		return
	}
	p.pos = min(delta*p.cfg.Resistance, p.cfg.Cap())
	p.phase = Pulling
}

// TouchEnd releases the pull. It reports true when a refresh was triggered;
// the caller runs it and calls Complete when done.
func (p *Puller) TouchEnd() bool {
	if !p.tracking || p.phase == Refreshing {
		return false
	}
	p.tracking = false
	if p.pos >= p.cfg.Threshold {
		p.phase = Refreshing
		p.pos = p.cfg.Hold
		return true
	}
	p.phase = Idle
	p.pos = 0
	return false
}

func (p *Puller) Complete() {
	p.phase = Idle
	p.pos = 0
	p.tracking = false
}

func (p *Puller) Phase() Phase      { return p.phase }
func (p *Puller) Position() float64 { return p.pos }
func (p *Puller) Refreshing() bool  { return p.phase == Refreshing }
func (p *Puller) Armed() bool       { return p.phase == Pulling && p.pos >= p.cfg.Threshold }

// Progress is the indicator fill in [0,1].
func (p *Puller) Progress() float64 {
	if p.phase == Refreshing {
		return 1
	}
	return min(p.pos/p.cfg.Threshold, 1)
}
