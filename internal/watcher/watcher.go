package watcher

import (
	"context"
	"log"
	"time"

	"github.com/Nopass0/hh-autopilot/internal/config"
)

// TokenProvider yields a usable access token, refreshing it when needed.
type TokenProvider interface {
	ValidToken(ctx context.Context) (string, error)
}

// SearchRunner is the discovery side of a tick.
type SearchRunner interface {
	DueForSearch(ctx context.Context) (bool, error)
	RunSearchCycle(ctx context.Context, token string) error
}

// NegotiationMonitor is the conversation side of a tick.
type NegotiationMonitor interface {
	PollStatuses(ctx context.Context, token string) error
	ProcessMessages(ctx context.Context, token string) error
}

// Watcher drives the polling loop. Every tick refreshes the token, polls
// negotiation statuses and messages, and runs a search cycle when one is
// due. A failed phase is logged and the loop carries on; the failed work is
// picked up again on the next tick.
type Watcher struct {
	cfg      *config.Config
	session  TokenProvider
	pipeline SearchRunner
	monitor  NegotiationMonitor
}

func New(cfg *config.Config, session TokenProvider, pipeline SearchRunner, monitor NegotiationMonitor) *Watcher {
	return &Watcher{
		cfg:      cfg,
		session:  session,
		pipeline: pipeline,
		monitor:  monitor,
	}
}

// Start runs the polling loop until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	log.Println("Starting autopilot watcher...")

	// First tick immediately, then on the poll interval
	w.tick(ctx)

	ticker := time.NewTicker(time.Duration(w.cfg.PollInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Watcher shutting down...")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

// tick runs one full pass. Without a valid token nothing can proceed, so an
// auth failure aborts the whole tick.
func (w *Watcher) tick(ctx context.Context) {
	token, err := w.session.ValidToken(ctx)
	if err != nil {
		log.Printf("Skipping tick, no valid token: %v", err)
		return
	}

	if err := w.monitor.PollStatuses(ctx, token); err != nil {
		log.Printf("Error polling negotiation statuses: %v", err)
	}
	if err := w.monitor.ProcessMessages(ctx, token); err != nil {
		log.Printf("Error processing messages: %v", err)
	}

	due, err := w.pipeline.DueForSearch(ctx)
	if err != nil {
		log.Printf("Error checking search schedule: %v", err)
		return
	}
	if !due {
		return
	}
	if err := w.pipeline.RunSearchCycle(ctx, token); err != nil {
		log.Printf("Error running search cycle: %v", err)
	}
}
