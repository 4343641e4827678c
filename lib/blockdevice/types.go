package blockdevice

import "github.com/google/uuid"

// Volume is the normalized, provider-agnostic view of a block storage
// volume.
type Volume struct {
	// ID is the provider-assigned volume id, immutable once created.
	ID string
	// SizeBytes is a multiple of the 1 GiB allocation unit.
	SizeBytes int64
	// AttachedTo is the droplet id as a decimal string, empty when the
	// volume is unattached. A volume has at most one attachment.
	AttachedTo string
	// DatasetID is the dataset encoded in the volume name, nil when the
	// name does not follow our convention.
	DatasetID *uuid.UUID
}

// NodeMetadata is this droplet's identity as reported by the metadata
// service.
type NodeMetadata struct {
	DropletID int
	Hostname  string
	Region    string
}
