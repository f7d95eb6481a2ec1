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

// Package store holds the two parallel per-neighbor route tables
// disaggregated ground truth and the aggregated forwarding
// view derived from it. The Store is the single owner of both; nothing
// outside internal/router mutates it.
package store

import (
	"github.com/oranjuce/BGP-Router/internal/aggregate"
	"github.com/oranjuce/BGP-Router/internal/ipaddr"
	"github.com/oranjuce/BGP-Router/internal/route"
)

// Store holds, per neighbor address, the disaggregated and aggregated
// route lists. The zero value is not ready to use (its maps are nil);
// build one with New.
type Store struct {
	disaggregated map[ipaddr.Addr][]route.Entry
	aggregated    map[ipaddr.Addr][]route.Entry
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		disaggregated: make(map[ipaddr.Addr][]route.Entry),
		aggregated:    make(map[ipaddr.Addr][]route.Entry),
	}
}

// Insert appends entry to both disaggregated[from] and
// aggregated[from], then re-runs the aggregator on from's list.
func (s *Store) Insert(from ipaddr.Addr, entry route.Entry) {
	s.disaggregated[from] = append(s.disaggregated[from], entry.Clone())
	s.aggregated[from] = append(s.aggregated[from], entry.Clone())
	s.aggregated[from] = aggregate.Run(s.aggregated[from])
}

// Withdraw removes, from disaggregated[from], every entry whose
// (network, netmask) matches any victim prefix under that prefix's own
// netmask, then rebuilds aggregated as a deep re-aggregation of
// disaggregated across every neighbor. Withdrawing a prefix that
// was never announced is a no-op, not an error.
func (s *Store) Withdraw(from ipaddr.Addr, victims []route.Prefix) {
	kept := s.disaggregated[from][:0:0]
	for _, e := range s.disaggregated[from] {
		victim := false
		for _, v := range victims {
			if e.Prefix.Netmask == v.Netmask && ipaddr.SameNetwork(e.Prefix.Network, v.Network, v.Netmask) {
				victim = true
				break
			}
		}
		if !victim {
			kept = append(kept, e)
		}
	}
	s.disaggregated[from] = kept

	s.rebuild()
}

// rebuild recomputes aggregated for every neighbor as a deep copy of
// disaggregated, then re-runs the aggregator. Prior aggregations may
// have fused the withdrawn prefix with siblings that must now be
// re-expanded; starting over from ground truth avoids partial
// unmerging.
func (s *Store) rebuild() {
	s.aggregated = make(map[ipaddr.Addr][]route.Entry, len(s.disaggregated))
	for neighbor, entries := range s.disaggregated {
		cloned := make([]route.Entry, len(entries))
		for i, e := range entries {
			cloned[i] = e.Clone()
		}
		s.aggregated[neighbor] = aggregate.Run(cloned)
	}
}

// Aggregated returns the current forwarding view for neighbor n.
func (s *Store) Aggregated(n ipaddr.Addr) []route.Entry {
	return s.aggregated[n]
}

// Disaggregated returns the ground-truth list for neighbor n.
func (s *Store) Disaggregated(n ipaddr.Addr) []route.Entry {
	return s.disaggregated[n]
}

// AllAggregated returns the aggregated table for every neighbor, keyed
// by neighbor address — used by the decision engine's longest-prefix
// match, which scans across all neighbors at once.
func (s *Store) AllAggregated() map[ipaddr.Addr][]route.Entry {
	return s.aggregated
}

// Dump concatenates the aggregated table across every neighbor into a
// flat list, each entry already tagging its own Peer field (
// dump()).
func (s *Store) Dump() []route.Entry {
	var out []route.Entry
	for _, entries := range s.aggregated {
		out = append(out, entries...)
	}
	return out
}
