// Package coordinator runs the event loop that feeds the overlay controller.
package coordinator

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/phinze/jumpscare/internal/overlay"
)

// DefaultPollInterval is how often the backend is drained for events.
const DefaultPollInterval = 16 * time.Millisecond

// Backend is a display that also reports output events.
type Backend interface {
	overlay.Display

	// Poll returns events that arrived since the last call without
	// blocking. An error ends the run; events returned with it are still
	// dispatched.
	Poll() ([]overlay.Event, error)

	Close() error
}

// Dispatcher consumes events. *overlay.Controller implements it.
type Dispatcher interface {
	Dispatch(overlay.Event) error
}

// Coordinator pumps backend events and timer ticks into a Dispatcher on a
// single goroutine.
type Coordinator struct {
	backend      Backend
	dispatcher   Dispatcher
	timer        *ToggleTimer
	pollInterval time.Duration
}

// New creates a Coordinator. A zero pollInterval uses DefaultPollInterval.
func New(backend Backend, dispatcher Dispatcher, timer *ToggleTimer, pollInterval time.Duration) *Coordinator {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Coordinator{
		backend:      backend,
		dispatcher:   dispatcher,
		timer:        timer,
		pollInterval: pollInterval,
	}
}

// Run dispatches events until ctx is done, the backend fails or a dispatch
// returns an error. On the way out the dispatcher gets a Shutdown event so
// the overlay is taken down. Run returns nil only when ctx ended the loop.
func (c *Coordinator) Run(ctx context.Context) error {
	defer c.timer.Stop()

	err := c.loop(ctx)

	if shutdownErr := c.dispatcher.Dispatch(overlay.Event{Kind: overlay.Shutdown}); shutdownErr != nil {
		log.Warn("Shutdown dispatch failed", "err", shutdownErr)
	}
	return err
}

func (c *Coordinator) loop(ctx context.Context) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	// Outputs are announced before the first toggle can fire.
	if err := c.poll(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.timer.C():
			c.timer.Rearm()
			if err := c.dispatcher.Dispatch(overlay.Event{Kind: overlay.Tick}); err != nil {
				return err
			}
		case <-ticker.C:
			if err := c.poll(); err != nil {
				return err
			}
		}
	}
}

func (c *Coordinator) poll() error {
	events, pollErr := c.backend.Poll()
	for _, ev := range events {
		if err := c.dispatcher.Dispatch(ev); err != nil {
			return errors.Join(err, pollErr)
		}
	}
	return pollErr
}
