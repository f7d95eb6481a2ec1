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

// Package router implements the Dispatcher: a single Router
// value owns the route store and the configured neighbor set, and
// HandleMessage turns one inbound control message into zero or more
// outbound ones. There is no global state — every
// mutation goes through a Router method.
package router

import (
	"github.com/sirupsen/logrus"

	"github.com/oranjuce/BGP-Router/internal/decision"
	"github.com/oranjuce/BGP-Router/internal/ipaddr"
	"github.com/oranjuce/BGP-Router/internal/message"
	"github.com/oranjuce/BGP-Router/internal/neighbor"
	"github.com/oranjuce/BGP-Router/internal/policy"
	"github.com/oranjuce/BGP-Router/internal/route"
	"github.com/oranjuce/BGP-Router/internal/store"
)

// Router owns the route store and the configured neighbors for a
// single autonomous system. The zero value is not ready to use; build
// one with New.
type Router struct {
	asn       int
	neighbors map[ipaddr.Addr]neighbor.Neighbor
	store     *store.Store
	log       *logrus.Logger
}

// New constructs a Router for the given ASN and neighbor set.
func New(asn int, neighbors []neighbor.Neighbor, log *logrus.Logger) *Router {
	if log == nil {
		log = logrus.New()
	}

	byAddr := make(map[ipaddr.Addr]neighbor.Neighbor, len(neighbors))
	for _, n := range neighbors {
		byAddr[n.Address] = n
	}

	return &Router{
		asn:       asn,
		neighbors: byAddr,
		store:     store.New(),
		log:       log,
	}
}

// Outbound pairs a message with nothing else — it's simply the set of
// messages HandleMessage wants sent, in the order they must go out.
type Outbound = message.Message

// HandleMessage dispatches one decoded inbound message to the
// appropriate handler and returns the outbound messages it produces,
// in order ("outbound messages caused by message M are emitted
// before any work for the message following M begins" — the caller is
// expected to send these to completion before reading the next
// datagram).
func (r *Router) HandleMessage(m message.Message) []Outbound {
	switch v := m.(type) {
	case message.Update:
		return r.handleUpdate(v)
	case message.Withdraw:
		return r.handleWithdraw(v)
	case message.Data:
		return r.handleData(v)
	case message.Dump:
		return r.handleDump(v)
	case message.Handshake:
		// No response is specified for a neighbor-initiated handshake;
		// the router only ever sends this one, at startup.
		return nil
	default:
		r.log.WithField("type", m.Type()).Warn("router: unhandled message type")
		return nil
	}
}

func (r *Router) handleUpdate(u message.Update) []Outbound {
	from, ok := r.neighbors[u.Source()]
	if !ok {
		r.log.WithField("neighbor", ipaddr.Unpack(u.Source())).Warn("router: update from unknown neighbor")
		return nil
	}

	u.Entry.Peer = from.Address
	r.store.Insert(from.Address, u.Entry)
	r.log.WithFields(logrus.Fields{
		"neighbor": ipaddr.Unpack(from.Address),
		"prefix":   u.Entry.Prefix.String(),
	}).Info("router: accepted update")

	return r.propagate(from, u.Entry.Attributes, func(attrs route.Attributes) message.Message {
		entry := u.Entry
		entry.Attributes = attrs
		return message.Update{Entry: entry}
	})
}

func (r *Router) handleWithdraw(w message.Withdraw) []Outbound {
	from, ok := r.neighbors[w.Source()]
	if !ok {
		r.log.WithField("neighbor", ipaddr.Unpack(w.Source())).Warn("router: withdraw from unknown neighbor")
		return nil
	}

	r.store.Withdraw(from.Address, w.Prefixes)
	r.log.WithField("neighbor", ipaddr.Unpack(from.Address)).Info("router: processed withdraw")

	return r.propagate(from, route.Attributes{}, func(route.Attributes) message.Message {
		return message.Withdraw{Prefixes: w.Prefixes}
	})
}

// propagate implements the export rule: a customer source goes to
// every other neighbor, a peer/provider source goes only to customers.
// build receives the ASN-prepended attributes (ignored by withdraw,
// which carries no attributes) and returns the message to address and
// send to each eligible target.
func (r *Router) propagate(from neighbor.Neighbor, attrs route.Attributes, build func(route.Attributes) message.Message) []Outbound {
	eligible := policy.ExportTargets(from.Relation)
	prepended := attrs.WithPrependedASN(r.asn)

	var out []Outbound
	for addr, n := range r.neighbors {
		if addr == from.Address || !eligible(n.Relation) {
			continue
		}

		out = append(out, addressed(build(prepended), n.RouterAddress(), n.Address))
	}
	return out
}

func (r *Router) handleData(d message.Data) []Outbound {
	src, ok := r.neighbors[d.Source()]
	if !ok {
		r.log.WithField("neighbor", ipaddr.Unpack(d.Source())).Warn("router: data from unknown neighbor")
		return nil
	}

	next, ok := decision.Nexthop(r.store.AllAggregated(), d.Destination())
	if !ok {
		r.log.WithField("destination", ipaddr.Unpack(d.Destination())).Warn("router: no route")
		return []Outbound{addressed(message.NoRoute{}, src.RouterAddress(), src.Address)}
	}

	nextHop, ok := r.neighbors[next]
	if !ok || !policy.CanForward(src.Relation, nextHop.Relation) {
		r.log.WithFields(logrus.Fields{
			"destination": ipaddr.Unpack(d.Destination()),
			"nexthop":     ipaddr.Unpack(next),
		}).Warn("router: no route")
		return []Outbound{addressed(message.NoRoute{}, src.RouterAddress(), src.Address)}
	}

	forwarded := message.Data{Payload: d.Payload}
	return []Outbound{addressed(forwarded, nextHop.RouterAddress(), d.Destination())}
}

func (r *Router) handleDump(d message.Dump) []Outbound {
	entries := r.store.Dump()
	n, ok := r.neighbors[d.Source()]
	if !ok {
		return nil
	}
	return []Outbound{addressed(message.Table{Entries: entries}, n.RouterAddress(), n.Address)}
}

// addressed stamps a freshly built message with its src/dst before it
// goes out; the message types themselves carry Src/Dst as part of
// their embedded base, but handlers build them without addresses set
// since the addressing depends on which neighbor is being sent to.
func addressed(m message.Message, src, dst ipaddr.Addr) message.Message {
	switch v := m.(type) {
	case message.Update:
		v.SetAddresses(src, dst)
		return v
	case message.Withdraw:
		v.SetAddresses(src, dst)
		return v
	case message.Data:
		v.SetAddresses(src, dst)
		return v
	case message.NoRoute:
		v.SetAddresses(src, dst)
		return v
	case message.Table:
		v.SetAddresses(src, dst)
		return v
	default:
		return m
	}
}
