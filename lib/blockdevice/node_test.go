package blockdevice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListLiveNodes(t *testing.T) {
	fake := newFakeProvider()
	fake.addDroplet(ProviderDroplet{ID: 42, Status: DropletActive})
	fake.addDroplet(ProviderDroplet{ID: 43, Status: "off"})
	fake.addDroplet(ProviderDroplet{ID: 44, Status: DropletActive})
	ctrl, _ := newTestController(t, fake)

	nodes, err := ctrl.ListLiveNodes(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"42", "44"}, nodes)
}

func TestListLiveNodesEmpty(t *testing.T) {
	ctrl, _ := newTestController(t, newFakeProvider())

	nodes, err := ctrl.ListLiveNodes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestStartNodeAlreadyActive(t *testing.T) {
	fake := newFakeProvider()
	fake.addDroplet(ProviderDroplet{ID: 42, Status: DropletActive})
	ctrl, _ := newTestController(t, fake)

	require.NoError(t, ctrl.StartNode(context.Background(), "42"))
	assert.Zero(t, fake.powerOnCalls, "an active droplet is a no-op")
}

func TestStartNodePowersOn(t *testing.T) {
	fake := newFakeProvider()
	fake.addDroplet(ProviderDroplet{ID: 42, Status: "off"})
	ctrl, _ := newTestController(t, fake)

	require.NoError(t, ctrl.StartNode(context.Background(), "42"))
	assert.Equal(t, 1, fake.powerOnCalls)
}

func TestStartNodeWaitsForAction(t *testing.T) {
	fake := newFakeProvider()
	fake.addDroplet(ProviderDroplet{ID: 42, Status: "off"})
	fake.initialActionStatus = actionInProgress
	fake.pollStatuses = []string{actionInProgress, actionCompleted}
	ctrl, _ := newTestController(t, fake)

	require.NoError(t, ctrl.StartNode(context.Background(), "42"))
	assert.Equal(t, 2, fake.pollCalls)
}

func TestStartNodeUnknown(t *testing.T) {
	ctrl, _ := newTestController(t, newFakeProvider())

	err := ctrl.StartNode(context.Background(), "42")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestStartNodeBadID(t *testing.T) {
	ctrl, _ := newTestController(t, newFakeProvider())

	err := ctrl.StartNode(context.Background(), "not-a-number")
	assert.Error(t, err)
}
