package steward

import (
	"context"
	"log/slog"
	"time"
)

// Steward runs observe, decide, act cycles against one server.
type Steward struct {
	Observer *Observer
	Actor    *Actor
	Policy   Policy
}

// New returns a steward with the default policy.
func New(baseURL, adminKey string) *Steward {
	return &Steward{
		Observer: NewObserver(baseURL),
		Actor:    NewActor(baseURL, adminKey),
		Policy:   DefaultPolicy(),
	}
}

// Cycle executes one observe, decide, act pass and returns the decision.
func (s *Steward) Cycle(ctx context.Context) (Decision, error) {
	snap, err := s.Observer.Observe(ctx)
	if err != nil {
		return Decision{}, err
	}
	h := Triage(snap)
	d := Decide(snap, h, s.Policy)
	slog.Debug("steward decision", "month", snap.Status.Month, "level", h.Level, "action", d.Action, "rationale", d.Rationale)

	if err := s.Actor.Act(ctx, d); err != nil {
		return d, err
	}
	if d.Action != ActionNone {
		slog.Info("steward acted", "action", d.Action, "target", d.Target, "rationale", d.Rationale)
	}
	return d, nil
}

// Run cycles every interval until ctx is done. Failed cycles are logged and
// retried on the next tick.
func (s *Steward) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := s.Cycle(ctx); err != nil && ctx.Err() == nil {
			slog.Error("steward cycle failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// WaitReady polls the status endpoint with exponential backoff until it
// answers or ctx is done.
func (s *Steward) WaitReady(ctx context.Context) error {
	backoff := 500 * time.Millisecond
	const maxBackoff = 30 * time.Second
	for {
		if s.Observer.Ready(ctx) {
			return nil
		}
		slog.Info("server not ready, retrying...", "backoff", backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}
