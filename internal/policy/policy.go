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

// Package policy decides, for any announce/withdraw event and any data
// forward, which neighbor categories may receive traffic or route
// information — the commercial "at least one end must be a
// customer" rule and the customer/non-customer export split.
package policy

import "github.com/oranjuce/BGP-Router/internal/neighbor"

// CanForward reports whether a data datagram arriving from source
// relation src may be forwarded to a nexthop of relation next. At
// least one end of the path must be a customer.
func CanForward(src, next neighbor.Relation) bool {
	return src == neighbor.Customer || next == neighbor.Customer
}

// ExportTargets returns, given the relation of the neighbor an
// announce or withdraw arrived from, a predicate over candidate
// export-target relations: a customer source is re-announced to every
// other neighbor; a peer or provider source is re-announced only to
// customers.
func ExportTargets(src neighbor.Relation) func(candidate neighbor.Relation) bool {
	if src == neighbor.Customer {
		return func(neighbor.Relation) bool { return true }
	}
	return func(candidate neighbor.Relation) bool { return candidate == neighbor.Customer }
}
