package blockdevice

import (
	"context"
	"fmt"
	"strconv"

	"github.com/samber/lo"

	"github.com/ngrewe/digitalocean-flocker-plugin/lib/logger"
)

// ListLiveNodes returns the ids of all droplets currently in the active
// state.
func (c *Controller) ListLiveNodes(ctx context.Context) ([]string, error) {
	droplets, err := c.provider.ListDroplets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list droplets: %w", err)
	}
	return lo.FilterMap(droplets, func(d ProviderDroplet, _ int) (string, bool) {
		return strconv.Itoa(d.ID), d.Status == DropletActive
	}), nil
}

// StartNode powers on a droplet and waits for the power-on action to
// complete. A droplet that is already active is a no-op.
func (c *Controller) StartNode(ctx context.Context, nodeID string) error {
	dropletID, err := strconv.Atoi(nodeID)
	if err != nil {
		return fmt.Errorf("parse node id %q: %w", nodeID, err)
	}

	droplet, err := c.provider.GetDroplet(ctx, dropletID)
	if err != nil {
		return fmt.Errorf("get droplet %d: %w", dropletID, err)
	}
	if droplet.Status == DropletActive {
		return nil
	}

	action, err := c.provider.PowerOnDroplet(ctx, droplet.ID)
	if err != nil {
		return fmt.Errorf("power on droplet %d: %w", droplet.ID, err)
	}
	if _, err := c.awaitDropletAction(ctx, droplet.ID, action); err != nil {
		return fmt.Errorf("power on droplet %d: %w", droplet.ID, err)
	}

	logger.FromContext(ctx).Info("powered on droplet", "droplet_id", droplet.ID)
	return nil
}
