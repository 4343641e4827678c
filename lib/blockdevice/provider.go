package blockdevice

import "context"

// Action mirrors a provider-tracked asynchronous operation. The provider
// drives its state; this package only observes it.
type Action struct {
	ID     int
	Type   string
	Status string
}

// Action statuses the wait loop distinguishes. Anything else is a terminal
// failure.
const (
	actionInProgress = "in-progress"
	actionCompleted  = "completed"
)

// DropletActive is the provider status of a powered-on droplet.
const DropletActive = "active"

// ProviderVolume is a raw volume descriptor as reported by the provider.
type ProviderVolume struct {
	ID            string
	Name          string
	Description   string
	Region        string
	SizeGigaBytes int64
	DropletIDs    []int
}

// ProviderDroplet is a raw compute node descriptor.
type ProviderDroplet struct {
	ID     int
	Status string
}

// VolumeCreateRequest describes a volume to be provisioned.
type VolumeCreateRequest struct {
	Name          string
	Description   string
	Region        string
	SizeGigaBytes int64
}

// Provider is the slice of the DigitalOcean API the controller consumes.
// Implementations return ErrNotFound / ErrNodeNotFound for missing ids and
// wrap transport failures in opaque errors.
type Provider interface {
	ListVolumes(ctx context.Context) ([]ProviderVolume, error)
	GetVolume(ctx context.Context, id string) (*ProviderVolume, error)
	CreateVolume(ctx context.Context, req VolumeCreateRequest) (*ProviderVolume, error)
	DeleteVolume(ctx context.Context, id string) error
	AttachVolume(ctx context.Context, volumeID string, dropletID int) (*Action, error)
	DetachVolume(ctx context.Context, volumeID string, dropletID int) (*Action, error)
	VolumeAction(ctx context.Context, volumeID string, actionID int) (*Action, error)
	ListDroplets(ctx context.Context) ([]ProviderDroplet, error)
	GetDroplet(ctx context.Context, id int) (*ProviderDroplet, error)
	PowerOnDroplet(ctx context.Context, id int) (*Action, error)
	DropletAction(ctx context.Context, dropletID, actionID int) (*Action, error)
}

// MetadataSource loads this droplet's identity from the metadata service.
type MetadataSource interface {
	Load(ctx context.Context) (*NodeMetadata, error)
}
