package blockdevice

import (
	"context"
	"fmt"
	"path/filepath"
)

// devicePathFormat is where the kernel exposes DigitalOcean volumes by
// name.
const devicePathFormat = "/dev/disk/by-id/scsi-0DO_Volume_%s"

// GetDevicePath returns the host device node of an attached volume. The
// path is predicted from the volume name and resolved through its symlink
// best-effort; resolution failures fall back to the unresolved path rather
// than erroring.
//
// Unattached volumes fail with ErrNotAttached. DESIGN.md records the
// rejected alternative of returning the predicted path regardless.
func (c *Controller) GetDevicePath(ctx context.Context, id string) (string, error) {
	vol, err := c.provider.GetVolume(ctx, id)
	if err != nil {
		return "", fmt.Errorf("get volume %s: %w", id, err)
	}
	if len(vol.DropletIDs) == 0 {
		return "", fmt.Errorf("volume %s: %w", id, ErrNotAttached)
	}

	path := fmt.Sprintf(devicePathFormat, vol.Name)
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved, nil
	}
	return path, nil
}
