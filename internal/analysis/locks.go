// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package analysis

import (
	"sort"
	"sync"
)

const vesselLockStripes = 64

// vesselLocks serialises event lifecycle changes per vessel. Vessels share
// a fixed set of stripes.
type vesselLocks struct {
	stripes [vesselLockStripes]sync.Mutex
}

// lock acquires the stripes of every given MMSI in ascending stripe order
// and returns the function releasing them.
func (l *vesselLocks) lock(mmsis ...int) func() {
	idx := make([]int, 0, len(mmsis))
	for _, mmsi := range mmsis {
		i := mmsi % vesselLockStripes
		if i < 0 {
			i = -i
		}
		idx = append(idx, i)
	}
	sort.Ints(idx)

	held := idx[:0]
	for _, i := range idx {
		if len(held) > 0 && held[len(held)-1] == i {
			continue
		}
		l.stripes[i].Lock()
		held = append(held, i)
	}
	return func() {
		for j := len(held) - 1; j >= 0; j-- {
			l.stripes[held[j]].Unlock()
		}
	}
}
