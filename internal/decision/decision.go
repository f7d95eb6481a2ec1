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

// Package decision implements the longest-prefix-match candidate
// selection and the BGP tie-break chain: given a destination
// address and the full set of stored entries across every neighbor, it
// returns the single nexthop neighbor the router should use, or none.
package decision

import (
	"github.com/oranjuce/BGP-Router/internal/ipaddr"
	"github.com/oranjuce/BGP-Router/internal/route"
)

// Best runs the five-step tie-break chain over a candidate set that
// has already been reduced to the longest matching prefix length. Each
// step eliminates entries that do not match the best value for that
// step; the chain stops as soon as one candidate remains.
func Best(candidates []route.Entry) (route.Entry, bool) {
	if len(candidates) == 0 {
		return route.Entry{}, false
	}
	if len(candidates) == 1 {
		return candidates[0], true
	}

	// Step 1: highest localpref.
	candidates = filterMax(candidates, func(e route.Entry) uint32 { return e.Attributes.LocalPref })
	if len(candidates) == 1 {
		return candidates[0], true
	}

	// Step 2: selfOrigin == true preferred, if any candidate has it.
	var selfOriginated []route.Entry
	for _, e := range candidates {
		if e.Attributes.SelfOrigin {
			selfOriginated = append(selfOriginated, e)
		}
	}
	if len(selfOriginated) > 0 {
		candidates = selfOriginated
	}
	if len(candidates) == 1 {
		return candidates[0], true
	}

	// Step 3: shortest ASPath.
	candidates = filterMin(candidates, func(e route.Entry) int { return len(e.Attributes.ASPath) })
	if len(candidates) == 1 {
		return candidates[0], true
	}

	// Step 4: best origin, IGP > EGP > UNK.
	best := candidates[0].Attributes.Origin
	for _, e := range candidates[1:] {
		if e.Attributes.Origin.Better(best) {
			best = e.Attributes.Origin
		}
	}
	var byOrigin []route.Entry
	for _, e := range candidates {
		if e.Attributes.Origin == best {
			byOrigin = append(byOrigin, e)
		}
	}
	candidates = byOrigin
	if len(candidates) == 1 {
		return candidates[0], true
	}

	// Step 5: lowest learned-from neighbor address, numeric order.
	candidates = filterMin(candidates, func(e route.Entry) int { return int(e.Peer) })

	return candidates[0], true
}

// filterMax keeps only the entries whose key() is maximal.
func filterMax(entries []route.Entry, key func(route.Entry) uint32) []route.Entry {
	best := key(entries[0])
	for _, e := range entries[1:] {
		if k := key(e); k > best {
			best = k
		}
	}

	var out []route.Entry
	for _, e := range entries {
		if key(e) == best {
			out = append(out, e)
		}
	}
	return out
}

// filterMin keeps only the entries whose key() is minimal.
func filterMin(entries []route.Entry, key func(route.Entry) int) []route.Entry {
	best := key(entries[0])
	for _, e := range entries[1:] {
		if k := key(e); k < best {
			best = k
		}
	}

	var out []route.Entry
	for _, e := range entries {
		if key(e) == best {
			out = append(out, e)
		}
	}
	return out
}

// LongestPrefixMatch scans every entry across every neighbor in table
// and returns the subset that covers destination d with the maximum
// prefix length (step 1 of the decision procedure, before the tie-break
// chain in Best). table maps neighbor address to that
// neighbor's aggregated entries.
func LongestPrefixMatch(table map[ipaddr.Addr][]route.Entry, d ipaddr.Addr) []route.Entry {
	var candidates []route.Entry
	var longest uint8

	for _, entries := range table {
		for _, e := range entries {
			if !e.Prefix.Covers(d) {
				continue
			}
			length := e.Prefix.Len()
			switch {
			case len(candidates) == 0 || length > longest:
				candidates = []route.Entry{e}
				longest = length
			case length == longest:
				candidates = append(candidates, e)
			}
		}
	}

	return candidates
}

// Nexthop runs the full decision procedure for destination d: longest-
// prefix match followed by the tie-break chain. It returns the
// surviving entry's learned-from neighbor, or ok=false if step 1
// yielded no candidate.
func Nexthop(table map[ipaddr.Addr][]route.Entry, d ipaddr.Addr) (ipaddr.Addr, bool) {
	candidates := LongestPrefixMatch(table, d)
	entry, ok := Best(candidates)
	if !ok {
		return 0, false
	}
	return entry.Peer, true
}
