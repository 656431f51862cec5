// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"golang.org/x/exp/slices"
)

// sortForDelivery orders hs for frame delivery: active handlers
// first, then awaiting ones, each by ascending activation index,
// then the rest in their original order.
func sortForDelivery(hs []*Handler) {
	slices.SortStableFunc(hs, compareHandlers)
}

func compareHandlers(a, b *Handler) int {
	switch {
	case a.active && b.active, a.awaiting && b.awaiting:
		switch {
		case a.activationIndex < b.activationIndex:
			return -1
		case a.activationIndex > b.activationIndex:
			return 1
		}
		return 0
	case a.active:
		return -1
	case b.active:
		return 1
	case a.awaiting:
		return -1
	case b.awaiting:
		return 1
	default:
		return 0
	}
}
