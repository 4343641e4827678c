// Package do adapts the public DigitalOcean API and the droplet metadata
// service to the contracts consumed by the blockdevice controller.
package do

import (
	"context"
	"fmt"
	"net/http"

	"github.com/digitalocean/godo"

	"github.com/ngrewe/digitalocean-flocker-plugin/lib/blockdevice"
)

const listPageSize = 200

// Client is a blockdevice.Provider backed by godo.
type Client struct {
	api *godo.Client
}

// NewClient creates a provider client authenticated with a personal access
// token.
func NewClient(token string) *Client {
	return &Client{api: godo.NewFromToken(token)}
}

var _ blockdevice.Provider = (*Client)(nil)

func fromVolume(v godo.Volume) blockdevice.ProviderVolume {
	region := ""
	if v.Region != nil {
		region = v.Region.Slug
	}
	return blockdevice.ProviderVolume{
		ID:            v.ID,
		Name:          v.Name,
		Description:   v.Description,
		Region:        region,
		SizeGigaBytes: v.SizeGigaBytes,
		DropletIDs:    v.DropletIDs,
	}
}

func fromAction(a *godo.Action) *blockdevice.Action {
	if a == nil {
		return nil
	}
	return &blockdevice.Action{ID: a.ID, Type: a.Type, Status: a.Status}
}

func isNotFound(resp *godo.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}

// nextPage advances paginated listings; it returns 0 when resp was the last
// page.
func nextPage(resp *godo.Response) (int, error) {
	if resp.Links == nil || resp.Links.IsLastPage() {
		return 0, nil
	}
	page, err := resp.Links.CurrentPage()
	if err != nil {
		return 0, err
	}
	return page + 1, nil
}

// ListVolumes returns every volume in the account, across all pages.
func (c *Client) ListVolumes(ctx context.Context) ([]blockdevice.ProviderVolume, error) {
	params := &godo.ListVolumeParams{
		ListOptions: &godo.ListOptions{Page: 1, PerPage: listPageSize},
	}
	var out []blockdevice.ProviderVolume
	for {
		vols, resp, err := c.api.Storage.ListVolumes(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("list volumes: %w", err)
		}
		for _, v := range vols {
			out = append(out, fromVolume(v))
		}
		page, err := nextPage(resp)
		if err != nil {
			return nil, fmt.Errorf("paginate volumes: %w", err)
		}
		if page == 0 {
			return out, nil
		}
		params.ListOptions.Page = page
	}
}

func (c *Client) GetVolume(ctx context.Context, id string) (*blockdevice.ProviderVolume, error) {
	vol, resp, err := c.api.Storage.GetVolume(ctx, id)
	if err != nil {
		if isNotFound(resp) {
			return nil, blockdevice.ErrNotFound
		}
		return nil, fmt.Errorf("get volume %s: %w", id, err)
	}
	v := fromVolume(*vol)
	return &v, nil
}

func (c *Client) CreateVolume(ctx context.Context, req blockdevice.VolumeCreateRequest) (*blockdevice.ProviderVolume, error) {
	vol, _, err := c.api.Storage.CreateVolume(ctx, &godo.VolumeCreateRequest{
		Name:          req.Name,
		Description:   req.Description,
		Region:        req.Region,
		SizeGigaBytes: req.SizeGigaBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("create volume %s: %w", req.Name, err)
	}
	v := fromVolume(*vol)
	return &v, nil
}

func (c *Client) DeleteVolume(ctx context.Context, id string) error {
	resp, err := c.api.Storage.DeleteVolume(ctx, id)
	if err != nil {
		if isNotFound(resp) {
			return blockdevice.ErrNotFound
		}
		return fmt.Errorf("delete volume %s: %w", id, err)
	}
	return nil
}

func (c *Client) AttachVolume(ctx context.Context, volumeID string, dropletID int) (*blockdevice.Action, error) {
	action, resp, err := c.api.StorageActions.Attach(ctx, volumeID, dropletID)
	if err != nil {
		if isNotFound(resp) {
			return nil, blockdevice.ErrNotFound
		}
		return nil, fmt.Errorf("attach volume %s to droplet %d: %w", volumeID, dropletID, err)
	}
	return fromAction(action), nil
}

func (c *Client) DetachVolume(ctx context.Context, volumeID string, dropletID int) (*blockdevice.Action, error) {
	action, resp, err := c.api.StorageActions.DetachByDropletID(ctx, volumeID, dropletID)
	if err != nil {
		if isNotFound(resp) {
			return nil, blockdevice.ErrNotFound
		}
		return nil, fmt.Errorf("detach volume %s from droplet %d: %w", volumeID, dropletID, err)
	}
	return fromAction(action), nil
}

func (c *Client) VolumeAction(ctx context.Context, volumeID string, actionID int) (*blockdevice.Action, error) {
	action, _, err := c.api.StorageActions.Get(ctx, volumeID, actionID)
	if err != nil {
		return nil, fmt.Errorf("get volume action %d: %w", actionID, err)
	}
	return fromAction(action), nil
}

// ListDroplets returns every droplet in the account, across all pages.
func (c *Client) ListDroplets(ctx context.Context) ([]blockdevice.ProviderDroplet, error) {
	opt := &godo.ListOptions{Page: 1, PerPage: listPageSize}
	var out []blockdevice.ProviderDroplet
	for {
		droplets, resp, err := c.api.Droplets.List(ctx, opt)
		if err != nil {
			return nil, fmt.Errorf("list droplets: %w", err)
		}
		for _, d := range droplets {
			out = append(out, blockdevice.ProviderDroplet{ID: d.ID, Status: d.Status})
		}
		page, err := nextPage(resp)
		if err != nil {
			return nil, fmt.Errorf("paginate droplets: %w", err)
		}
		if page == 0 {
			return out, nil
		}
		opt.Page = page
	}
}

func (c *Client) GetDroplet(ctx context.Context, id int) (*blockdevice.ProviderDroplet, error) {
	droplet, resp, err := c.api.Droplets.Get(ctx, id)
	if err != nil {
		if isNotFound(resp) {
			return nil, blockdevice.ErrNodeNotFound
		}
		return nil, fmt.Errorf("get droplet %d: %w", id, err)
	}
	return &blockdevice.ProviderDroplet{ID: droplet.ID, Status: droplet.Status}, nil
}

func (c *Client) PowerOnDroplet(ctx context.Context, id int) (*blockdevice.Action, error) {
	action, resp, err := c.api.DropletActions.PowerOn(ctx, id)
	if err != nil {
		if isNotFound(resp) {
			return nil, blockdevice.ErrNodeNotFound
		}
		return nil, fmt.Errorf("power on droplet %d: %w", id, err)
	}
	return fromAction(action), nil
}

func (c *Client) DropletAction(ctx context.Context, dropletID, actionID int) (*blockdevice.Action, error) {
	action, _, err := c.api.DropletActions.Get(ctx, dropletID, actionID)
	if err != nil {
		return nil, fmt.Errorf("get droplet action %d: %w", actionID, err)
	}
	return fromAction(action), nil
}
