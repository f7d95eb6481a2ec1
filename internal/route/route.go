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

// Package route holds the data model shared by the route store, the
// aggregator and the decision engine: prefixes, route attributes and
// the learned-from neighbor identifier that ties an entry back to its
// source.
package route

import (
	"fmt"

	"github.com/oranjuce/BGP-Router/internal/ipaddr"
)

// Origin ranks IGP above EGP above UNK, per RFC 4271 §9.1.2.2's
// tie-break ordering.
type Origin int

const (
	IGP Origin = iota
	EGP
	UNK
)

func (o Origin) String() string {
	switch o {
	case IGP:
		return "IGP"
	case EGP:
		return "EGP"
	case UNK:
		return "UNK"
	default:
		return "UNK"
	}
}

// ParseOrigin converts the wire string form into an Origin, defaulting
// unrecognized values to UNK rather than failing — an unknown origin
// string is not a parse error, it's just the weakest preference.
func ParseOrigin(s string) Origin {
	switch s {
	case "IGP":
		return IGP
	case "EGP":
		return EGP
	default:
		return UNK
	}
}

// Better reports whether o is strictly preferred over other under the
// IGP > EGP > UNK total order.
func (o Origin) Better(other Origin) bool {
	return o < other
}

// Prefix is a (network, netmask) pair. Both fields are packed,
// MSB-first uint32s; netmask must be CIDR-legal for any Prefix stored
// in the aggregated table — malformed masks are rejected at the
// wire boundary, not here.
type Prefix struct {
	Network ipaddr.Addr
	Netmask ipaddr.Addr
}

// Len returns the prefix length (mask popcount).
func (p Prefix) Len() uint8 {
	return ipaddr.PrefixLen(p.Netmask)
}

// Covers reports whether destination address d falls under this
// prefix: (p.Netmask & d) == (p.Netmask & p.Network).
func (p Prefix) Covers(d ipaddr.Addr) bool {
	return ipaddr.SameNetwork(d, p.Network, p.Netmask)
}

// Equal reports whether p and q name the same masked network at the
// same prefix length — the aggregation precondition requires both,
// not just same-network-under-mask.
func (p Prefix) Equal(q Prefix) bool {
	return p.Netmask == q.Netmask && p.Network == q.Network
}

func (p Prefix) String() string {
	return fmt.Sprintf("%s/%d", ipaddr.Unpack(p.Network), p.Len())
}

// Attributes carries the per-announcement BGP-style path attributes
// the decision engine's tie-break chain consumes.
type Attributes struct {
	LocalPref  uint32
	SelfOrigin bool
	ASPath     []int
	Origin     Origin
}

// Equal reports whether two attribute sets are identical in every
// field the aggregator is required to compare: it is not enough
// for the ASPath slices to have the same length, they must hold the
// same AS numbers in the same order.
func (a Attributes) Equal(b Attributes) bool {
	if a.LocalPref != b.LocalPref || a.SelfOrigin != b.SelfOrigin || a.Origin != b.Origin {
		return false
	}
	if len(a.ASPath) != len(b.ASPath) {
		return false
	}
	for i := range a.ASPath {
		if a.ASPath[i] != b.ASPath[i] {
			return false
		}
	}
	return true
}

// WithPrependedASN returns a copy of a with asn prepended to the front
// of ASPath, the way an originating speaker extends AS_PATH on every
// re-announcement (RFC 4271 §5.1.2) — here applied uniformly on every
// propagated update rather than only on eBGP egress.
func (a Attributes) WithPrependedASN(asn int) Attributes {
	path := make([]int, 0, len(a.ASPath)+1)
	path = append(path, asn)
	path = append(path, a.ASPath...)
	b := a
	b.ASPath = path
	return b
}

// Entry is a stored route: a prefix, its attributes, and the neighbor
// it was learned from.
type Entry struct {
	Prefix     Prefix
	Attributes Attributes
	Peer       ipaddr.Addr
}

// Clone returns a deep copy of e, safe to mutate independently of e —
// used when rebuilding the aggregated table from disaggregated ground
// truth on withdraw.
func (e Entry) Clone() Entry {
	c := e
	c.Attributes.ASPath = append([]int(nil), e.Attributes.ASPath...)
	return c
}
