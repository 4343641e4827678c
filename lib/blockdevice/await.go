package blockdevice

import (
	"context"
	"fmt"
	"time"

	"github.com/ngrewe/digitalocean-flocker-plugin/lib/logger"
)

const (
	defaultPollInterval = time.Second
	defaultAwaitTimeout = 60 * time.Second
)

// refreshFunc re-fetches the current state of an action from the provider.
type refreshFunc func(ctx context.Context) (*Action, error)

// awaitAction blocks until action reaches a terminal state or the wait
// budget elapses. It returns true when the action completed and false when
// there was nothing to wait for; the caller decides what a missing action
// means. The deadline is measured from when waiting begins, not from action
// creation, and the loop sleeps between polls rather than spinning.
func (c *Controller) awaitAction(ctx context.Context, action *Action, refresh refreshFunc) (bool, error) {
	if action == nil {
		return false, nil
	}
	if action.Status == actionCompleted {
		return true, nil
	}

	log := logger.FromContext(ctx).With(
		"action_id", action.ID,
		"action_type", action.Type,
	)

	start := time.Now()
	iterations := 0
	for action.Status == actionInProgress {
		elapsed := time.Since(start)
		if elapsed >= c.awaitTimeout {
			break
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(min(c.pollInterval, c.awaitTimeout-elapsed)):
		}
		next, err := refresh(ctx)
		if err != nil {
			return false, fmt.Errorf("poll action %d: %w", action.ID, err)
		}
		action = next
		iterations++
	}

	if action.Status == actionCompleted {
		log.Info("action completed", "iterations", iterations, "action_status", action.Status)
		c.recordAwait(ctx, action.Type, iterations, action.Status)
		return true, nil
	}

	log.Error("wait unsuccessful", "iterations", iterations, "action_status", action.Status)
	c.recordAwait(ctx, action.Type, iterations, action.Status)
	if action.Status == actionInProgress {
		return false, fmt.Errorf("action %d: %w", action.ID, ErrAwaitTimeout)
	}
	return false, &ActionError{ActionID: action.ID, Status: action.Status}
}

// awaitVolumeAction waits for an action returned by a volume mutation.
func (c *Controller) awaitVolumeAction(ctx context.Context, volumeID string, action *Action) (bool, error) {
	if action == nil {
		return false, nil
	}
	return c.awaitAction(ctx, action, func(ctx context.Context) (*Action, error) {
		return c.provider.VolumeAction(ctx, volumeID, action.ID)
	})
}

// awaitDropletAction waits for an action returned by a droplet mutation.
func (c *Controller) awaitDropletAction(ctx context.Context, dropletID int, action *Action) (bool, error) {
	if action == nil {
		return false, nil
	}
	return c.awaitAction(ctx, action, func(ctx context.Context) (*Action, error) {
		return c.provider.DropletAction(ctx, dropletID, action.ID)
	})
}
