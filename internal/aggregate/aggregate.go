/*
 * bgprouter. Copyright (C) 2021-present the bgprouter authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

// Package aggregate implements the fixed-point coalescing pass that
// merges sibling prefixes with identical attributes into a one-bit-
// shorter parent. It operates on a single neighbor's route list
// at a time; the caller (internal/store) is responsible for wiring it
// to the right slice and for rebuilding from disaggregated ground
// truth on withdraw.
package aggregate

import (
	"github.com/oranjuce/BGP-Router/internal/ipaddr"
	"github.com/oranjuce/BGP-Router/internal/route"
)

// siblings reports whether a and b are mergeable: equal mask length,
// identical prefix bits except for the final bit, and attribute-equal.
// Equal mask length is required here, not merely same-network-under-mask.
func siblings(a, b route.Entry) bool {
	if a.Prefix.Netmask != b.Prefix.Netmask {
		return false
	}
	if !a.Attributes.Equal(b.Attributes) {
		return false
	}

	length := a.Prefix.Len()
	if length == 0 {
		// the /0 default route has no sibling to merge with.
		return false
	}

	parentMask := ipaddr.Shorten(a.Prefix.Netmask)
	return ipaddr.SameNetwork(a.Prefix.Network, b.Prefix.Network, parentMask) &&
		a.Prefix.Network != b.Prefix.Network
}

// merge combines two sibling entries into their common one-bit-shorter
// parent. Attributes are copied from either input (they are required
// equal by siblings); the network is the numerically lower of the two.
func merge(a, b route.Entry) route.Entry {
	network := a.Prefix.Network
	if b.Prefix.Network < network {
		network = b.Prefix.Network
	}

	return route.Entry{
		Prefix: route.Prefix{
			Network: network,
			Netmask: ipaddr.Shorten(a.Prefix.Netmask),
		},
		Attributes: a.Attributes,
		Peer:       a.Peer,
	}
}

// Run coalesces entries to a fixed point: repeatedly scanning ordered
// pairs (i, j), i < j, for the first mergeable pair and restarting the
// pass whenever one is found. Total work is bounded by the sum of
// prefix lengths, which strictly decreases on every merge, so this
// terminates. The result is independent of which mergeable pair fires
// first at each step (merges on disjoint pairs commute), so the final
// fixed point is unique.
func Run(entries []route.Entry) []route.Entry {
	current := append([]route.Entry(nil), entries...)

	for {
		merged := false

		for i := 0; i < len(current) && !merged; i++ {
			for j := i + 1; j < len(current); j++ {
				if !siblings(current[i], current[j]) {
					continue
				}

				next := make([]route.Entry, 0, len(current)-1)
				next = append(next, current[:i]...)
				next = append(next, merge(current[i], current[j]))
				for k := i + 1; k < len(current); k++ {
					if k == j {
						continue
					}
					next = append(next, current[k])
				}

				current = next
				merged = true
				break
			}
		}

		if !merged {
			return current
		}
	}
}
