// Package blockdevice maps the Flocker block device contract onto
// DigitalOcean block storage.
//
// Limitations carried over from the provider:
//   - volumes cannot move between regions, so each cluster is single-region
//   - a droplet can hold at most five attached volumes
//   - clusters may share an account, but must not share dataset ids
package blockdevice

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/ngrewe/digitalocean-flocker-plugin/lib/logger"
)

// BlockDeviceAPI is the volume lifecycle capability consumed by the dataset
// agent.
type BlockDeviceAPI interface {
	AllocationUnit() int64
	ComputeInstanceID(ctx context.Context) (string, error)
	ListVolumes(ctx context.Context) ([]Volume, error)
	CreateVolume(ctx context.Context, datasetID uuid.UUID, sizeBytes int64) (*Volume, error)
	DestroyVolume(ctx context.Context, id string) error
	AttachVolume(ctx context.Context, id string, nodeID string) (*Volume, error)
	DetachVolume(ctx context.Context, id string) (*Volume, error)
	GetDevicePath(ctx context.Context, id string) (string, error)
}

// CloudAPI is the compute node capability. It is separate from
// BlockDeviceAPI so callers that only manage volumes do not depend on node
// power control.
type CloudAPI interface {
	ListLiveNodes(ctx context.Context) ([]string, error)
	StartNode(ctx context.Context, nodeID string) error
}

// Config holds the immutable identity and wait tuning of a Controller.
type Config struct {
	// ClusterID distinguishes this cluster's volumes from other clusters
	// sharing the account.
	ClusterID string
	// PollInterval between action status polls. Defaults to 1s.
	PollInterval time.Duration
	// AwaitTimeout bounds the total wait for one action. Defaults to 60s.
	AwaitTimeout time.Duration
}

// Controller implements both capability interfaces against an injected
// provider client. Multiple independently-configured controllers may
// coexist in one process.
type Controller struct {
	clusterID    string
	provider     Provider
	metadata     MetadataSource
	pollInterval time.Duration
	awaitTimeout time.Duration
	metrics      *Metrics

	// node caches the droplet metadata after the first successful load.
	mu   sync.Mutex
	node *NodeMetadata
}

var (
	_ BlockDeviceAPI = (*Controller)(nil)
	_ CloudAPI       = (*Controller)(nil)
)

// NewController creates a controller for one cluster. provider and metadata
// are required; zero durations in cfg fall back to the defaults.
func NewController(cfg Config, provider Provider, metadata MetadataSource) *Controller {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.AwaitTimeout <= 0 {
		cfg.AwaitTimeout = defaultAwaitTimeout
	}
	return &Controller{
		clusterID:    cfg.ClusterID,
		provider:     provider,
		metadata:     metadata,
		pollInterval: cfg.PollInterval,
		awaitTimeout: cfg.AwaitTimeout,
	}
}

// AllocationUnit returns the provider's allocation granularity: 1 GiB in
// bytes.
func (c *Controller) AllocationUnit() int64 {
	return int64(datasize.GB.Bytes())
}

// ComputeInstanceID returns the droplet id of the node this controller runs
// on.
func (c *Controller) ComputeInstanceID(ctx context.Context) (string, error) {
	node, err := c.nodeMetadata(ctx)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(node.DropletID), nil
}

// nodeMetadata loads droplet identity from the metadata service once and
// caches it for the life of the process. The mutex keeps concurrent first
// calls from loading twice.
func (c *Controller) nodeMetadata(ctx context.Context) (*NodeMetadata, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.node != nil {
		return c.node, nil
	}
	node, err := c.metadata.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load droplet metadata: %w", err)
	}
	logger.FromContext(ctx).Info("loaded droplet metadata",
		"droplet_id", node.DropletID,
		"hostname", node.Hostname,
		"region", node.Region,
	)
	c.node = node
	return node, nil
}

// toVolume converts a provider volume descriptor into the normalized form.
func toVolume(v *ProviderVolume) *Volume {
	vol := &Volume{
		ID:        v.ID,
		SizeBytes: v.SizeGigaBytes * int64(datasize.GB.Bytes()),
	}
	if len(v.DropletIDs) > 0 {
		vol.AttachedTo = strconv.Itoa(v.DropletIDs[0])
	}
	if id, ok := datasetForVolumeName(v.Name); ok {
		vol.DatasetID = &id
	}
	return vol
}

// ListVolumes returns all volumes owned by this cluster. Foreign volumes
// are counted and skipped; volumes stamped by another cluster are reported
// at error level but never touched. The listing is always fetched fresh
// because the provider is the source of truth.
func (c *Controller) ListVolumes(ctx context.Context) ([]Volume, error) {
	log := logger.FromContext(ctx)

	all, err := c.provider.ListVolumes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list volumes: %w", err)
	}

	sets := classifyVolumes(all, clusterStamp(c.clusterID))
	if len(sets.foreign) > 0 {
		log.Info("ignored unrelated volumes", "count", len(sets.foreign))
	}
	for _, v := range sets.wrongCluster {
		log.Error("volume follows naming convention but is not owned by our cluster",
			"volume", v.Name, "description", v.Description)
	}
	c.recordWrongCluster(ctx, len(sets.wrongCluster))

	owned := lo.Map(sets.owned, func(v ProviderVolume, _ int) Volume {
		return *toVolume(&v)
	})
	log.Info("listed volumes",
		"owned", len(owned),
		"foreign", len(sets.foreign),
		"wrong_cluster", len(sets.wrongCluster),
	)
	return owned, nil
}

// CreateVolume provisions a volume for datasetID in this node's region. The
// size is truncated to whole GiB per the provider's allocation unit.
func (c *Controller) CreateVolume(ctx context.Context, datasetID uuid.UUID, sizeBytes int64) (*Volume, error) {
	start := time.Now()
	node, err := c.nodeMetadata(ctx)
	if err != nil {
		return nil, err
	}

	req := VolumeCreateRequest{
		Name:          volumeNameForDataset(datasetID),
		Description:   clusterStamp(c.clusterID),
		Region:        node.Region,
		SizeGigaBytes: int64(datasize.ByteSize(sizeBytes) / datasize.GB),
	}
	vol, err := c.provider.CreateVolume(ctx, req)
	if err != nil {
		c.recordOperation(ctx, "create", start, err)
		return nil, fmt.Errorf("create volume %s: %w", req.Name, err)
	}

	logger.FromContext(ctx).Info("created volume",
		"volume_id", vol.ID,
		"name", vol.Name,
		"region", vol.Region,
		"size_gb", vol.SizeGigaBytes,
	)
	c.recordOperation(ctx, "create", start, nil)
	return toVolume(vol), nil
}

// DestroyVolume deletes a volume, detaching it first when necessary. A
// detach that fails or times out blocks the destroy so that the volume is
// never deleted out from under a node that still holds it.
func (c *Controller) DestroyVolume(ctx context.Context, id string) error {
	start := time.Now()
	log := logger.FromContext(ctx).With("volume_id", id)

	vol, err := c.provider.GetVolume(ctx, id)
	if err != nil {
		return fmt.Errorf("get volume %s: %w", id, err)
	}

	if len(vol.DropletIDs) > 0 {
		log.Info("volume needs to be detached first", "attached_to", vol.DropletIDs[0])
		action, err := c.provider.DetachVolume(ctx, vol.ID, vol.DropletIDs[0])
		if err != nil {
			c.recordOperation(ctx, "destroy", start, err)
			return fmt.Errorf("detach before destroy of %s: %w", id, err)
		}
		if _, err := c.awaitVolumeAction(ctx, vol.ID, action); err != nil {
			c.recordOperation(ctx, "destroy", start, err)
			return fmt.Errorf("detach before destroy of %s: %w", id, err)
		}
	}

	if err := c.provider.DeleteVolume(ctx, vol.ID); err != nil {
		c.recordOperation(ctx, "destroy", start, err)
		return fmt.Errorf("destroy volume %s: %w", id, err)
	}
	log.Info("destroyed volume")
	c.recordOperation(ctx, "destroy", start, nil)
	return nil
}

// AttachVolume attaches a volume to the given node and waits for the attach
// action to complete. The provider technically permits multiple
// attachments, but the dataset contract is single-attach, so an existing
// attachment fails the call before any mutation is issued.
func (c *Controller) AttachVolume(ctx context.Context, id string, nodeID string) (*Volume, error) {
	start := time.Now()
	dropletID, err := strconv.Atoi(nodeID)
	if err != nil {
		return nil, fmt.Errorf("parse node id %q: %w", nodeID, err)
	}

	vol, err := c.provider.GetVolume(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get volume %s: %w", id, err)
	}
	if len(vol.DropletIDs) > 0 {
		return nil, fmt.Errorf("volume %s: %w", id, ErrAlreadyAttached)
	}

	action, err := c.provider.AttachVolume(ctx, vol.ID, dropletID)
	if err != nil {
		c.recordOperation(ctx, "attach", start, err)
		return nil, fmt.Errorf("attach volume %s: %w", id, err)
	}
	if _, err := c.awaitVolumeAction(ctx, vol.ID, action); err != nil {
		c.recordOperation(ctx, "attach", start, err)
		return nil, fmt.Errorf("attach volume %s: %w", id, err)
	}

	vol.DropletIDs = []int{dropletID}
	logger.FromContext(ctx).Info("attached volume", "volume_id", vol.ID, "droplet_id", dropletID)
	c.recordOperation(ctx, "attach", start, nil)
	return toVolume(vol), nil
}

// DetachVolume detaches a volume from its current node and waits for the
// detach action to complete.
func (c *Controller) DetachVolume(ctx context.Context, id string) (*Volume, error) {
	start := time.Now()

	vol, err := c.provider.GetVolume(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get volume %s: %w", id, err)
	}
	if len(vol.DropletIDs) == 0 {
		return nil, fmt.Errorf("volume %s: %w", id, ErrNotAttached)
	}

	detachFrom := vol.DropletIDs[0]
	action, err := c.provider.DetachVolume(ctx, vol.ID, detachFrom)
	if err != nil {
		c.recordOperation(ctx, "detach", start, err)
		return nil, fmt.Errorf("detach volume %s: %w", id, err)
	}
	if _, err := c.awaitVolumeAction(ctx, vol.ID, action); err != nil {
		c.recordOperation(ctx, "detach", start, err)
		return nil, fmt.Errorf("detach volume %s: %w", id, err)
	}

	vol.DropletIDs = nil
	logger.FromContext(ctx).Info("detached volume",
		"volume_id", vol.ID,
		"droplet_id", detachFrom,
		"region", vol.Region,
	)
	c.recordOperation(ctx, "detach", start, nil)
	return toVolume(vol), nil
}
