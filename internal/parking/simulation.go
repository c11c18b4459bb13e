package parking

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"
)

// SimConfig controls the fill/empty simulation.
type SimConfig struct {
	// FillMax bounds the random wait before each arrival.
	FillMax time.Duration
	// EmptyMax bounds the random wait before each departure.
	EmptyMax time.Duration
	// InitialFill is how long the lot only fills before cars start leaving.
	InitialFill time.Duration
	// Delay picks a wait in [0, max]. Nil means uniform random.
	Delay func(max time.Duration) time.Duration
}

// DefaultSimConfig returns the stock timings.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		FillMax:     time.Second,
		EmptyMax:    2 * time.Second,
		InitialFill: 5 * time.Second,
	}
}

// RandomDelay returns a uniformly distributed duration in [0, max].
func RandomDelay(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return rand.N(max + 1)
}

// Simulate fills lot until it is full and, after cfg.InitialFill, empties it
// until it is empty. The two loops run concurrently; each loop's steps are
// sequential. Simulate returns when both loops end or ctx is cancelled.
func Simulate(ctx context.Context, lot *Lot, cfg SimConfig, logger *slog.Logger) error {
	delay := cfg.Delay
	if delay == nil {
		delay = RandomDelay
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for !lot.IsFull() {
			if err := sleep(gCtx, delay(cfg.FillMax)); err != nil {
				return err
			}
			if err := lot.Enter(); err != nil {
				return err
			}
		}
		logger.Debug("simulation: lot full", slog.String("lot", lot.Name()))
		return nil
	})

	g.Go(func() error {
		if err := sleep(gCtx, cfg.InitialFill); err != nil {
			return err
		}
		for !lot.IsEmpty() {
			if err := sleep(gCtx, delay(cfg.EmptyMax)); err != nil {
				return err
			}
			if err := lot.Exit(); err != nil {
				return err
			}
		}
		logger.Debug("simulation: lot empty", slog.String("lot", lot.Name()))
		return nil
	})

	return g.Wait()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
