package blockdevice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyVolumes(t *testing.T) {
	stamp := clusterStamp("cluster-a")

	owned := ProviderVolume{
		ID:          "vol-1",
		Name:        "flocker-v1-0ff663594f6347c8a950ff5de6f6225e",
		Description: stamp,
	}
	wrongCluster := ProviderVolume{
		ID:          "vol-2",
		Name:        "flocker-v1-aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		Description: clusterStamp("cluster-b"),
	}
	foreign := ProviderVolume{
		ID:          "vol-3",
		Name:        "custom-volume",
		Description: stamp, // a matching stamp does not rescue a foreign name
	}

	sets := classifyVolumes([]ProviderVolume{foreign, wrongCluster, owned}, stamp)

	require.Len(t, sets.owned, 1)
	assert.Equal(t, "vol-1", sets.owned[0].ID)
	require.Len(t, sets.wrongCluster, 1)
	assert.Equal(t, "vol-2", sets.wrongCluster[0].ID)
	require.Len(t, sets.foreign, 1)
	assert.Equal(t, "vol-3", sets.foreign[0].ID)
}

func TestClassifyVolumesEmpty(t *testing.T) {
	sets := classifyVolumes(nil, clusterStamp("cluster-a"))
	assert.Empty(t, sets.owned)
	assert.Empty(t, sets.foreign)
	assert.Empty(t, sets.wrongCluster)
}

func TestClusterStamp(t *testing.T) {
	assert.Equal(t, "flocker-v1-cluster-id: cluster-a", clusterStamp("cluster-a"))
}
