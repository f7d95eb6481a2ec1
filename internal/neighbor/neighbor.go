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

// Package neighbor describes a BGP-style neighbor: its address, its
// commercial relationship to the router, and the transport handle the
// dispatcher uses to reach it.
package neighbor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oranjuce/BGP-Router/internal/ipaddr"
)

// Relation is the commercial relationship governing export and
// forwarding policy.
type Relation int

const (
	Customer Relation = iota
	Peer
	Provider
)

func (r Relation) String() string {
	switch r {
	case Customer:
		return "cust"
	case Peer:
		return "peer"
	case Provider:
		return "prov"
	default:
		return "unknown"
	}
}

func parseRelation(s string) (Relation, error) {
	switch s {
	case "cust":
		return Customer, nil
	case "peer":
		return Peer, nil
	case "prov":
		return Provider, nil
	default:
		return 0, fmt.Errorf("neighbor: unknown relation %q", s)
	}
}

// Transport is the send side of a neighbor's datagram channel. The
// dispatcher owns one per neighbor and never exposes it; the core
// decision/policy packages never import this interface ("shared
// resources").
type Transport interface {
	Send(msg []byte) error
}

// Neighbor is one configured peer of the router.
type Neighbor struct {
	Port      int
	Address   ipaddr.Addr
	Relation  Relation
	Transport Transport
}

// RouterAddress returns the router's own address on this neighbor's
// subnet: the neighbor's address with the last octet replaced by 1
// ("point-to-point /24-ish links where the router is always host
// .1").
func (n Neighbor) RouterAddress() ipaddr.Addr {
	return (n.Address &^ 0xff) | 1
}

// ParseDescriptor parses a "port-neighborIP-relation" startup
// descriptor, e.g. "7000-192.0.0.2-cust".
func ParseDescriptor(s string) (port int, address ipaddr.Addr, relation Relation, err error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, 0, fmt.Errorf("neighbor: malformed descriptor %q", s)
	}

	port, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("neighbor: invalid port in %q: %w", s, err)
	}

	rest := strings.SplitN(parts[1], "-", 2)
	if len(rest) != 2 {
		return 0, 0, 0, fmt.Errorf("neighbor: malformed descriptor %q", s)
	}

	address, err = ipaddr.Pack(rest[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("neighbor: invalid address in %q: %w", s, err)
	}

	relation, err = parseRelation(rest[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("neighbor: %w", err)
	}

	return port, address, relation, nil
}
