// ABOUTME: Cancellable one-second countdown primitive for resend and success timers
// ABOUTME: Tickets tie each tick to one run so stale ticks after a restart are ignored

package countdown

import "time"

// Interval is the time between two ticks
const Interval = time.Second

// Ticket identifies one scheduled tick of one countdown run
type Ticket struct {
	Name string
	Gen  uint64
}

// Countdown counts down from a fixed start to zero, one tick at a time
type Countdown struct {
	name      string
	start     int
	remaining int
	running   bool
	expired   bool
	gen       uint64
}

// New creates a stopped countdown that starts at the given value
func New(name string, start int) *Countdown {
	if start < 0 {
		start = 0
	}
	return &Countdown{name: name, start: start}
}

// Name returns the countdown name
func (c *Countdown) Name() string {
	return c.name
}

// Start (re)starts the countdown from its initial value and returns the ticket
// for the first tick. Tickets from earlier runs become stale.
func (c *Countdown) Start() Ticket {
	c.gen++
	c.remaining = c.start
	c.running = c.start > 0
	c.expired = !c.running
	return c.ticket()
}

// Tick consumes one tick. ok is false when the ticket is stale or the
// countdown is not running, in which case nothing changes.
func (c *Countdown) Tick(t Ticket) (remaining int, done bool, ok bool) {
	if !c.running || t.Name != c.name || t.Gen != c.gen {
		return c.remaining, !c.running, false
	}
	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		c.running = false
		c.expired = true
		return 0, true, true
	}
	return c.remaining, false, true
}

// Next returns the ticket for the following tick of the current run
func (c *Countdown) Next() Ticket {
	return c.ticket()
}

// Cancel stops the countdown and invalidates outstanding tickets
func (c *Countdown) Cancel() {
	c.gen++
	c.running = false
	c.expired = false
	c.remaining = 0
}

// Remaining returns the seconds left
func (c *Countdown) Remaining() int {
	return c.remaining
}

// Running reports whether the countdown is still ticking
func (c *Countdown) Running() bool {
	return c.running
}

// Expired reports whether the current run reached zero
func (c *Countdown) Expired() bool {
	return c.expired
}

func (c *Countdown) ticket() Ticket {
	return Ticket{Name: c.name, Gen: c.gen}
}
