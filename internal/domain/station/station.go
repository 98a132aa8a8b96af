// Package station provides the station catalog derived from now-playing snapshots.
package station

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownStation is returned when a requested station id is not in the catalog.
var ErrUnknownStation = errors.New("unknown station")

// Descriptor identifies a selectable station. Identity is the ID.
type Descriptor struct {
	ID   int
	Name string
	URL  string
}

// Merge combines the primary relays and fallback mounts of one snapshot into
// a single catalog, sorted ascending by ID so user-facing selection order is
// deterministic. The inputs are not modified.
func Merge(remotes, mounts []Descriptor) []Descriptor {
	merged := make([]Descriptor, 0, len(remotes)+len(mounts))
	merged = append(merged, remotes...)
	merged = append(merged, mounts...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].ID < merged[j].ID
	})

	return merged
}

// Find returns the station with the given id.
func Find(list []Descriptor, id int) (Descriptor, error) {
	for _, d := range list {
		if d.ID == id {
			return d, nil
		}
	}
	return Descriptor{}, fmt.Errorf("%w: id %d", ErrUnknownStation, id)
}

// FindByURL returns the station with the given listen URL, if any.
func FindByURL(list []Descriptor, url string) (Descriptor, bool) {
	for _, d := range list {
		if d.URL == url {
			return d, true
		}
	}
	return Descriptor{}, false
}
