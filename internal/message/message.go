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

// Package message defines the open tagged variant the dispatcher
// switches on: rather than a string-keyed table of
// closures, decoded control messages are one of a small, closed set of
// concrete Go types behind the Message interface.
package message

import (
	"encoding/json"
	"fmt"

	"github.com/oranjuce/BGP-Router/internal/ipaddr"
	"github.com/oranjuce/BGP-Router/internal/route"
	"github.com/oranjuce/BGP-Router/internal/wire"
)

// Message is any decoded control-channel message. Src and Dst are the
// envelope's addresses; Type names the wire type string, which Encode
// writes into the envelope and handlers use in log fields — dispatch is
// by Go type via a type switch, never by re-inspecting Type.
type Message interface {
	Source() ipaddr.Addr
	Destination() ipaddr.Addr
	Type() string
}

type base struct {
	Src ipaddr.Addr
	Dst ipaddr.Addr
}

func (b base) Source() ipaddr.Addr      { return b.Src }
func (b base) Destination() ipaddr.Addr { return b.Dst }

func (b *base) setAddresses(src, dst ipaddr.Addr) {
	b.Src = src
	b.Dst = dst
}

// Handshake is sent router -> neighbor once at startup.
type Handshake struct {
	base
}

func (Handshake) Type() string { return "handshake" }

// SetAddresses sets the envelope src/dst this message will be sent with.
func (m *Handshake) SetAddresses(src, dst ipaddr.Addr) { m.base.setAddresses(src, dst) }

// Update carries one announced route.
type Update struct {
	base
	Entry route.Entry
}

func (Update) Type() string { return "update" }

// SetAddresses sets the envelope src/dst this message will be sent with.
func (m *Update) SetAddresses(src, dst ipaddr.Addr) { m.base.setAddresses(src, dst) }

// Withdraw carries the list of victim prefixes to retract.
type Withdraw struct {
	base
	Prefixes []route.Prefix
}

func (Withdraw) Type() string { return "withdraw" }

// SetAddresses sets the envelope src/dst this message will be sent with.
func (m *Withdraw) SetAddresses(src, dst ipaddr.Addr) { m.base.setAddresses(src, dst) }

// Data carries an opaque application payload the router never
// inspects beyond Dst.
type Data struct {
	base
	Payload json.RawMessage
}

func (Data) Type() string { return "data" }

// SetAddresses sets the envelope src/dst this message will be sent with.
func (m *Data) SetAddresses(src, dst ipaddr.Addr) { m.base.setAddresses(src, dst) }

// NoRoute is sent router -> sender of an undeliverable Data message.
type NoRoute struct {
	base
}

func (NoRoute) Type() string { return "no route" }

// SetAddresses sets the envelope src/dst this message will be sent with.
func (m *NoRoute) SetAddresses(src, dst ipaddr.Addr) { m.base.setAddresses(src, dst) }

// Dump is a request from a neighbor for the router's current table.
type Dump struct {
	base
}

func (Dump) Type() string { return "dump" }

// SetAddresses sets the envelope src/dst this message will be sent with.
func (m *Dump) SetAddresses(src, dst ipaddr.Addr) { m.base.setAddresses(src, dst) }

// Table is the router's reply to Dump.
type Table struct {
	base
	Entries []route.Entry
}

func (Table) Type() string { return "table" }

// SetAddresses sets the envelope src/dst this message will be sent with.
func (m *Table) SetAddresses(src, dst ipaddr.Addr) { m.base.setAddresses(src, dst) }

// Decode converts a wire envelope into a concrete Message. An unknown
// Type is a protocol error: the dispatcher logs and drops rather
// than propagating it.
func Decode(e wire.Envelope) (Message, error) {
	src, err := ipaddr.Pack(e.Src)
	if err != nil {
		return nil, fmt.Errorf("message: decode src: %w", err)
	}
	dst, err := ipaddr.Pack(e.Dst)
	if err != nil {
		return nil, fmt.Errorf("message: decode dst: %w", err)
	}
	b := base{Src: src, Dst: dst}

	switch e.Type {
	case "handshake":
		return Handshake{base: b}, nil

	case "update":
		var p wire.UpdatePayload
		if err := json.Unmarshal(e.Msg, &p); err != nil {
			return nil, fmt.Errorf("message: decode update: %w", err)
		}
		entry, err := entryFromUpdate(src, p)
		if err != nil {
			return nil, fmt.Errorf("message: decode update: %w", err)
		}
		return Update{base: b, Entry: entry}, nil

	case "withdraw":
		var victims []wire.WithdrawEntry
		if err := json.Unmarshal(e.Msg, &victims); err != nil {
			return nil, fmt.Errorf("message: decode withdraw: %w", err)
		}
		prefixes, err := prefixesFromWithdraw(victims)
		if err != nil {
			return nil, fmt.Errorf("message: decode withdraw: %w", err)
		}
		return Withdraw{base: b, Prefixes: prefixes}, nil

	case "data":
		return Data{base: b, Payload: append(json.RawMessage(nil), e.Msg...)}, nil

	case "no route":
		return NoRoute{base: b}, nil

	case "dump":
		return Dump{base: b}, nil

	case "table":
		var entries []wire.TableEntry
		if err := json.Unmarshal(e.Msg, &entries); err != nil {
			return nil, fmt.Errorf("message: decode table: %w", err)
		}
		decoded, err := entriesFromTable(entries)
		if err != nil {
			return nil, fmt.Errorf("message: decode table: %w", err)
		}
		return Table{base: b, Entries: decoded}, nil

	default:
		return nil, fmt.Errorf("message: unknown type %q", e.Type)
	}
}

// Encode converts a concrete Message back into a wire envelope.
func Encode(m Message) (wire.Envelope, error) {
	e := wire.Envelope{
		Src:  ipaddr.Unpack(m.Source()),
		Dst:  ipaddr.Unpack(m.Destination()),
		Type: m.Type(),
	}

	var payload any
	switch v := m.(type) {
	case Handshake, NoRoute, Dump:
		payload = struct{}{}

	case Update:
		payload = updateFromEntry(v.Entry)

	case Withdraw:
		payload = withdrawFromPrefixes(v.Prefixes)

	case Data:
		e.Msg = append(json.RawMessage(nil), v.Payload...)
		return e, nil

	case Table:
		payload = tableFromEntries(v.Entries)

	default:
		return wire.Envelope{}, fmt.Errorf("message: encode: unknown message type %T", m)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return wire.Envelope{}, fmt.Errorf("message: encode %s: %w", m.Type(), err)
	}
	e.Msg = raw
	return e, nil
}

func entryFromUpdate(peer ipaddr.Addr, p wire.UpdatePayload) (route.Entry, error) {
	network, err := ipaddr.Pack(p.Network)
	if err != nil {
		return route.Entry{}, fmt.Errorf("network: %w", err)
	}
	netmask, err := ipaddr.Pack(p.Netmask)
	if err != nil {
		return route.Entry{}, fmt.Errorf("netmask: %w", err)
	}
	if netmask != ipaddr.MaskFromLen(ipaddr.PrefixLen(netmask)) {
		return route.Entry{}, fmt.Errorf("netmask: %q is not contiguous", p.Netmask)
	}

	return route.Entry{
		Prefix: route.Prefix{Network: network, Netmask: netmask},
		Attributes: route.Attributes{
			LocalPref:  p.LocalPref,
			SelfOrigin: p.SelfOrigin,
			ASPath:     append([]int(nil), p.ASPath...),
			Origin:     route.ParseOrigin(p.Origin),
		},
		Peer: peer,
	}, nil
}

func updateFromEntry(e route.Entry) wire.UpdatePayload {
	return wire.UpdatePayload{
		Network:    ipaddr.Unpack(e.Prefix.Network),
		Netmask:    ipaddr.Unpack(e.Prefix.Netmask),
		LocalPref:  e.Attributes.LocalPref,
		SelfOrigin: e.Attributes.SelfOrigin,
		ASPath:     e.Attributes.ASPath,
		Origin:     e.Attributes.Origin.String(),
	}
}

func prefixesFromWithdraw(in []wire.WithdrawEntry) ([]route.Prefix, error) {
	out := make([]route.Prefix, 0, len(in))
	for _, w := range in {
		network, err := ipaddr.Pack(w.Network)
		if err != nil {
			return nil, fmt.Errorf("network: %w", err)
		}
		netmask, err := ipaddr.Pack(w.Netmask)
		if err != nil {
			return nil, fmt.Errorf("netmask: %w", err)
		}
		out = append(out, route.Prefix{Network: network, Netmask: netmask})
	}
	return out, nil
}

func withdrawFromPrefixes(in []route.Prefix) []wire.WithdrawEntry {
	out := make([]wire.WithdrawEntry, 0, len(in))
	for _, p := range in {
		out = append(out, wire.WithdrawEntry{
			Network: ipaddr.Unpack(p.Network),
			Netmask: ipaddr.Unpack(p.Netmask),
		})
	}
	return out
}

func entriesFromTable(in []wire.TableEntry) ([]route.Entry, error) {
	out := make([]route.Entry, 0, len(in))
	for _, w := range in {
		network, err := ipaddr.Pack(w.Network)
		if err != nil {
			return nil, fmt.Errorf("network: %w", err)
		}
		netmask, err := ipaddr.Pack(w.Netmask)
		if err != nil {
			return nil, fmt.Errorf("netmask: %w", err)
		}
		peer, err := ipaddr.Pack(w.Peer)
		if err != nil {
			return nil, fmt.Errorf("peer: %w", err)
		}
		out = append(out, route.Entry{
			Prefix: route.Prefix{Network: network, Netmask: netmask},
			Attributes: route.Attributes{
				LocalPref:  w.LocalPref,
				SelfOrigin: w.SelfOrigin,
				ASPath:     append([]int(nil), w.ASPath...),
				Origin:     route.ParseOrigin(w.Origin),
			},
			Peer: peer,
		})
	}
	return out, nil
}

func tableFromEntries(in []route.Entry) []wire.TableEntry {
	out := make([]wire.TableEntry, 0, len(in))
	for _, e := range in {
		out = append(out, wire.TableEntry{
			Network:    ipaddr.Unpack(e.Prefix.Network),
			Netmask:    ipaddr.Unpack(e.Prefix.Netmask),
			Peer:       ipaddr.Unpack(e.Peer),
			LocalPref:  e.Attributes.LocalPref,
			SelfOrigin: e.Attributes.SelfOrigin,
			ASPath:     e.Attributes.ASPath,
			Origin:     e.Attributes.Origin.String(),
		})
	}
	return out
}
