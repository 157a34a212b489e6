package game

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Clock drives a run in real time: one simulated month per Interval, scaled
// by Speed. A pending review pauses progress until the player resolves it.
type Clock struct {
	Game     *Game
	Interval time.Duration

	// OnMonth is called after every advanced month.
	OnMonth func(MonthReport)

	mu    sync.Mutex
	speed float64
}

// NewClock returns a clock at real-time speed.
func NewClock(g *Game, interval time.Duration) *Clock {
	return &Clock{Game: g, Interval: interval, speed: 1.0}
}

// Speed returns the current multiplier. 0 means paused.
func (c *Clock) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// SetSpeed changes the multiplier. Negative values pause.
func (c *Clock) SetSpeed(s float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = max(0, s)
}

// Run advances the run until ctx is cancelled.
func (c *Clock) Run(ctx context.Context) {
	slog.Info("clock started", "interval", c.Interval, "speed", c.Speed())
	defer slog.Info("clock stopped", "month", c.Game.Status().Month)

	for {
		speed := c.Speed()
		if speed <= 0 {
			if !sleep(ctx, 100*time.Millisecond) {
				return
			}
			continue
		}

		start := time.Now()
		c.step()

		target := time.Duration(float64(c.Interval) / speed)
		if elapsed := time.Since(start); elapsed < target {
			if !sleep(ctx, target-elapsed) {
				return
			}
		} else if ctx.Err() != nil {
			return
		}
	}
}

// step advances one month. A review checkpoint is left for the player.
func (c *Clock) step() {
	rep, err := c.Game.AdvanceTick()
	switch {
	case errors.Is(err, ErrReviewPending):
		return
	case err != nil:
		slog.Error("tick failed", "error", err)
		return
	case rep.Review != nil:
		slog.Info("awaiting review", "project", rep.ProjectID, "rating", rep.Review.FinalRating)
		return
	}
	if c.OnMonth != nil {
		c.OnMonth(rep)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
