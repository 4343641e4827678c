package blockdevice

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// namePrefix marks volumes managed by this driver. Volumes named outside
// the convention are left alone.
const namePrefix = "flocker-v1-"

// volumeNameForDataset mangles a dataset UUID into a provider volume name:
// the fixed prefix followed by the UUID's 32 hex digits.
func volumeNameForDataset(datasetID uuid.UUID) string {
	return namePrefix + hex.EncodeToString(datasetID[:])
}

// datasetForVolumeName recovers the dataset UUID encoded in a volume name.
// The second return is false for names that do not follow our convention,
// which is a normal outcome for volumes created by other tools.
func datasetForVolumeName(name string) (uuid.UUID, bool) {
	rest, ok := strings.CutPrefix(name, namePrefix)
	if !ok {
		return uuid.UUID{}, false
	}
	id, err := uuid.Parse(rest)
	if err != nil {
		return uuid.UUID{}, false
	}
	return id, true
}
