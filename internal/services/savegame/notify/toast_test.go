package notify

import (
	"bytes"
	"log"
	"strings"
	"testing"
	"time"
)

func TestToastTimeline(t *testing.T) {
	tests := []struct {
		name    string
		isError bool
		elapsed time.Duration
		phase   Phase
		alpha   float64
	}{
		{name: "start", elapsed: 0, phase: FadingIn, alpha: 0},
		{name: "mid fade in", elapsed: 125 * time.Millisecond, phase: FadingIn, alpha: 0.5},
		{name: "hold", elapsed: time.Second, phase: Holding, alpha: 1},
		{name: "mid fade out", elapsed: FadeIn + Hold + 250*time.Millisecond, phase: FadingOut, alpha: 0.5},
		{name: "gone", elapsed: FadeIn + Hold + FadeOut, phase: Hidden, alpha: 0},
		{name: "error still holding", isError: true, elapsed: FadeIn + Hold + 250*time.Millisecond, phase: Holding, alpha: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toast := Toast{Message: "m", IsError: tt.isError, Elapsed: tt.elapsed}
			if got := toast.Phase(); got != tt.phase {
				t.Fatalf("phase = %s, want %s", got, tt.phase)
			}
			if got := toast.Alpha(); got != tt.alpha {
				t.Fatalf("alpha = %v, want %v", got, tt.alpha)
			}
		})
	}
}

func TestCenterReplacesAndExpires(t *testing.T) {
	var buf bytes.Buffer
	c := NewCenter(log.New(&buf, "", 0))
	c.Notify("Game saved to slot 1.", false)
	c.Advance(time.Second)
	c.Notify("Slot 2 is empty.", true)

	current, ok := c.Current()
	if !ok || current.Message != "Slot 2 is empty." || current.Elapsed != 0 {
		t.Fatalf("current = %+v, %v", current, ok)
	}
	c.Advance(current.Lifetime())
	if _, ok := c.Current(); ok {
		t.Fatal("toast should be hidden after its lifetime")
	}
	if len(c.History()) != 2 {
		t.Fatalf("history = %d", len(c.History()))
	}
	if !strings.Contains(buf.String(), "notify error: Slot 2 is empty.") {
		t.Fatalf("log = %q", buf.String())
	}
}
