package blockdevice

import (
	"fmt"
	"strings"
)

// clusterStamp returns the description string every volume owned by the
// given cluster carries. The provider has no namespacing primitive, so the
// description disambiguates clusters that share an account.
func clusterStamp(clusterID string) string {
	return fmt.Sprintf("flocker-v1-cluster-id: %s", clusterID)
}

// volumeSets is the three-way ownership partition of a provider volume
// listing.
type volumeSets struct {
	// owned volumes carry our name prefix and our cluster stamp.
	owned []ProviderVolume
	// foreign volumes do not follow our naming convention at all.
	foreign []ProviderVolume
	// wrongCluster volumes follow the convention but are stamped by a
	// different cluster. They must never be touched, only reported.
	wrongCluster []ProviderVolume
}

// classifyVolumes partitions vols by ownership in a single pass. Input
// order is irrelevant and partition order is not stable.
func classifyVolumes(vols []ProviderVolume, stamp string) volumeSets {
	var sets volumeSets
	for _, v := range vols {
		switch {
		case !strings.HasPrefix(v.Name, namePrefix):
			sets.foreign = append(sets.foreign, v)
		case v.Description != stamp:
			sets.wrongCluster = append(sets.wrongCluster, v)
		default:
			sets.owned = append(sets.owned, v)
		}
	}
	return sets
}
