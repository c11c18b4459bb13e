package parking

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type boundsChecker struct {
	mu     sync.Mutex
	events []Event
	bad    []Event
}

func (b *boundsChecker) Notify(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
	if e.Occupied < 0 || e.Occupied > e.Capacity {
		b.bad = append(b.bad, e)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSimulateFillsThenEmpties(t *testing.T) {
	l := newLot(t, 5, PolicyStrict)
	chk := &boundsChecker{}
	l.Subscribe(chk)

	cfg := SimConfig{
		InitialFill: 100 * time.Millisecond,
		Delay:       func(time.Duration) time.Duration { return 0 },
	}
	if err := Simulate(context.Background(), l, cfg, discardLogger()); err != nil {
		t.Fatalf("Simulate: %v", err)
	}

	if !l.IsEmpty() {
		t.Errorf("occupied = %d, want 0", l.Occupied())
	}
	if len(chk.bad) != 0 {
		t.Errorf("events out of bounds: %+v", chk.bad)
	}
	if len(chk.events) != 10 {
		t.Fatalf("events = %d, want 10", len(chk.events))
	}
	for i, e := range chk.events {
		want := ActionEnter
		if i >= 5 {
			want = ActionExit
		}
		if e.Action != want {
			t.Errorf("event[%d] action = %s, want %s", i, e.Action, want)
		}
	}
}

func TestSimulateCancelled(t *testing.T) {
	l := newLot(t, 3, PolicyAbsorb)
	cfg := SimConfig{
		FillMax:     time.Hour,
		EmptyMax:    time.Hour,
		InitialFill: time.Hour,
		Delay:       func(max time.Duration) time.Duration { return max },
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := Simulate(ctx, l, cfg, discardLogger())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Simulate did not stop promptly")
	}
}

func TestRandomDelayBounds(t *testing.T) {
	if RandomDelay(0) != 0 || RandomDelay(-time.Second) != 0 {
		t.Error("non-positive max should yield 0")
	}
	for i := 0; i < 200; i++ {
		d := RandomDelay(10 * time.Millisecond)
		if d < 0 || d > 10*time.Millisecond {
			t.Fatalf("delay %v out of range", d)
		}
	}
}

func TestDefaultSimConfig(t *testing.T) {
	cfg := DefaultSimConfig()
	if cfg.FillMax != time.Second || cfg.EmptyMax != 2*time.Second || cfg.InitialFill != 5*time.Second {
		t.Errorf("defaults = %+v", cfg)
	}
}
