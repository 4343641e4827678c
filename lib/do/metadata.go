package do

import (
	"context"
	"fmt"

	metadata "github.com/digitalocean/go-metadata"

	"github.com/ngrewe/digitalocean-flocker-plugin/lib/blockdevice"
)

// MetadataSource reads this droplet's identity from the link-local metadata
// service. It only works on a droplet.
type MetadataSource struct {
	client *metadata.Client
}

// NewMetadataSource creates a metadata source with the default client.
func NewMetadataSource() *MetadataSource {
	return &MetadataSource{client: metadata.NewClient()}
}

var _ blockdevice.MetadataSource = (*MetadataSource)(nil)

// Load fetches the full metadata document once and extracts the identity
// fields the controller needs.
func (m *MetadataSource) Load(_ context.Context) (*blockdevice.NodeMetadata, error) {
	all, err := m.client.Metadata()
	if err != nil {
		return nil, fmt.Errorf("droplet metadata unavailable: %w", err)
	}
	return &blockdevice.NodeMetadata{
		DropletID: all.DropletID,
		Hostname:  all.Hostname,
		Region:    all.Region,
	}, nil
}
