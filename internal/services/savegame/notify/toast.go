// Package notify shows transient save/load messages on a fade timeline:
// fade in, hold, fade out, hidden. Only the latest message is visible.
package notify

import (
	"log"
	"sync"
	"time"

	"github.com/louisbranch/savepoint/internal/services/savegame/host"
)

const (
	FadeIn    = 250 * time.Millisecond
	Hold      = 2 * time.Second
	ErrorHold = 3 * time.Second
	FadeOut   = 500 * time.Millisecond
)

// Phase is where a toast is on its timeline.
type Phase int

const (
	Hidden Phase = iota
	FadingIn
	Holding
	FadingOut
)

func (p Phase) String() string {
	switch p {
	case FadingIn:
		return "fading_in"
	case Holding:
		return "holding"
	case FadingOut:
		return "fading_out"
	default:
		return "hidden"
	}
}

// Toast is one message and its elapsed display time.
type Toast struct {
	Message string
	IsError bool
	Elapsed time.Duration
}

func (t Toast) hold() time.Duration {
	if t.IsError {
		return ErrorHold
	}
	return Hold
}

// Lifetime is the full time the toast stays on screen.
func (t Toast) Lifetime() time.Duration {
	return FadeIn + t.hold() + FadeOut
}

// Phase reports the timeline phase at Elapsed.
func (t Toast) Phase() Phase {
	switch e := t.Elapsed; {
	case e < FadeIn:
		return FadingIn
	case e < FadeIn+t.hold():
		return Holding
	case e < t.Lifetime():
		return FadingOut
	default:
		return Hidden
	}
}

// Alpha is the opacity in [0, 1] at Elapsed.
func (t Toast) Alpha() float64 {
	switch t.Phase() {
	case FadingIn:
		return float64(t.Elapsed) / float64(FadeIn)
	case Holding:
		return 1
	case FadingOut:
		left := t.Lifetime() - t.Elapsed
		return float64(left) / float64(FadeOut)
	default:
		return 0
	}
}

// Center is a host.Notifier that keeps the latest toast and advances it with
// the frame clock.
type Center struct {
	mu      sync.Mutex
	current *Toast
	history []Toast
	logger  *log.Logger
}

// NewCenter builds a notification center. A nil logger means log.Default.
func NewCenter(logger *log.Logger) *Center {
	if logger == nil {
		logger = log.Default()
	}
	return &Center{logger: logger}
}

// Notify implements host.Notifier. The new message replaces any visible one.
func (c *Center) Notify(message string, isError bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := Toast{Message: message, IsError: isError}
	c.current = &t
	c.history = append(c.history, t)
	if isError {
		c.logger.Printf("notify error: %s", message)
		return
	}
	c.logger.Printf("notify: %s", message)
}

// Advance moves the visible toast forward by dt and drops it once hidden.
func (c *Center) Advance(dt time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return
	}
	c.current.Elapsed += dt
	if c.current.Phase() == Hidden {
		c.current = nil
	}
}

// Current returns the visible toast, if any.
func (c *Center) Current() (Toast, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Toast{}, false
	}
	return *c.current, true
}

// History returns every message shown, oldest first.
func (c *Center) History() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Toast, len(c.history))
	copy(out, c.history)
	return out
}

var _ host.Notifier = (*Center)(nil)
