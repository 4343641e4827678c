package blockdevice

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeProvider is an in-memory Provider. Mutations return already-completed
// actions unless initialActionStatus scripts a polling sequence; successive
// polls consume pollStatuses and fall back to completed.
type fakeProvider struct {
	mu sync.Mutex

	volumes  map[string]*ProviderVolume
	droplets map[int]*ProviderDroplet

	initialActionStatus string
	pollStatuses        []string

	nextActionID int

	createCalls  int
	deleteCalls  int
	attachCalls  int
	detachCalls  int
	powerOnCalls int
	pollCalls    int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		volumes:  make(map[string]*ProviderVolume),
		droplets: make(map[int]*ProviderDroplet),
	}
}

func (f *fakeProvider) addVolume(v ProviderVolume) {
	f.volumes[v.ID] = &v
}

func (f *fakeProvider) addDroplet(d ProviderDroplet) {
	f.droplets[d.ID] = &d
}

func (f *fakeProvider) newAction(actionType string) *Action {
	f.nextActionID++
	status := f.initialActionStatus
	if status == "" {
		status = actionCompleted
	}
	return &Action{ID: f.nextActionID, Type: actionType, Status: status}
}

func (f *fakeProvider) poll(id int) *Action {
	f.pollCalls++
	status := actionCompleted
	if len(f.pollStatuses) > 0 {
		status = f.pollStatuses[0]
		f.pollStatuses = f.pollStatuses[1:]
	}
	return &Action{ID: id, Status: status}
}

func (f *fakeProvider) ListVolumes(_ context.Context) ([]ProviderVolume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ProviderVolume
	for _, v := range f.volumes {
		out = append(out, *v)
	}
	return out, nil
}

func (f *fakeProvider) GetVolume(_ context.Context, id string) (*ProviderVolume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.volumes[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v
	cp.DropletIDs = append([]int(nil), v.DropletIDs...)
	return &cp, nil
}

func (f *fakeProvider) CreateVolume(_ context.Context, req VolumeCreateRequest) (*ProviderVolume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	v := &ProviderVolume{
		ID:            fmt.Sprintf("vol-%d", len(f.volumes)+1),
		Name:          req.Name,
		Description:   req.Description,
		Region:        req.Region,
		SizeGigaBytes: req.SizeGigaBytes,
	}
	f.volumes[v.ID] = v
	cp := *v
	return &cp, nil
}

func (f *fakeProvider) DeleteVolume(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.volumes[id]; !ok {
		return ErrNotFound
	}
	f.deleteCalls++
	delete(f.volumes, id)
	return nil
}

func (f *fakeProvider) AttachVolume(_ context.Context, volumeID string, dropletID int) (*Action, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.volumes[volumeID]
	if !ok {
		return nil, ErrNotFound
	}
	f.attachCalls++
	v.DropletIDs = []int{dropletID}
	return f.newAction("attach_volume"), nil
}

func (f *fakeProvider) DetachVolume(_ context.Context, volumeID string, _ int) (*Action, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.volumes[volumeID]
	if !ok {
		return nil, ErrNotFound
	}
	f.detachCalls++
	v.DropletIDs = nil
	return f.newAction("detach_volume"), nil
}

func (f *fakeProvider) VolumeAction(_ context.Context, _ string, actionID int) (*Action, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.poll(actionID), nil
}

func (f *fakeProvider) ListDroplets(_ context.Context) ([]ProviderDroplet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ProviderDroplet
	for _, d := range f.droplets {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeProvider) GetDroplet(_ context.Context, id int) (*ProviderDroplet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.droplets[id]
	if !ok {
		return nil, ErrNodeNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeProvider) PowerOnDroplet(_ context.Context, id int) (*Action, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.droplets[id]
	if !ok {
		return nil, ErrNodeNotFound
	}
	f.powerOnCalls++
	d.Status = DropletActive
	return f.newAction("power_on"), nil
}

func (f *fakeProvider) DropletAction(_ context.Context, _ int, actionID int) (*Action, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.poll(actionID), nil
}

// fakeMetadata serves fixed droplet identity and counts loads.
type fakeMetadata struct {
	mu    sync.Mutex
	loads int
	meta  NodeMetadata
	err   error
}

func (f *fakeMetadata) Load(_ context.Context) (*NodeMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.err != nil {
		return nil, f.err
	}
	cp := f.meta
	return &cp, nil
}

func newTestController(t *testing.T, fake *fakeProvider) (*Controller, *fakeMetadata) {
	t.Helper()
	meta := &fakeMetadata{meta: NodeMetadata{DropletID: 4242, Hostname: "node-1", Region: "fra1"}}
	ctrl := NewController(Config{
		ClusterID:    "test-cluster",
		PollInterval: time.Millisecond,
		AwaitTimeout: 50 * time.Millisecond,
	}, fake, meta)
	return ctrl, meta
}
