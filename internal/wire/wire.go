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

// Package wire is the JSON framing of the control channel: the
// envelope every datagram carries (src, dst, type, msg) and its
// decode/encode. This is an adapter-side concern, kept
// out of scope for the core — the core packages decode/encode
// nothing and never import this package directly; internal/message
// sits between the two.
package wire

import (
	"encoding/json"
	"fmt"
)

// Envelope is the wire shape of every control-channel datagram.
type Envelope struct {
	Src  string          `json:"src"`
	Dst  string          `json:"dst"`
	Type string          `json:"type"`
	Msg  json.RawMessage `json:"msg"`
}

// Decode parses a raw datagram into an Envelope. A JSON parse failure
// here is the "malformed message" error kind: the caller logs
// and drops, the connection stays open.
func Decode(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("wire: decode envelope: %w", err)
	}
	return e, nil
}

// Encode serializes an Envelope back to its wire form.
func Encode(e Envelope) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("wire: encode envelope: %w", err)
	}
	return data, nil
}

// UpdatePayload is the msg payload of an update message.
type UpdatePayload struct {
	Network    string `json:"network"`
	Netmask    string `json:"netmask"`
	LocalPref  uint32 `json:"localpref"`
	SelfOrigin bool   `json:"selfOrigin"`
	ASPath     []int  `json:"ASPath"`
	Origin     string `json:"origin"`
}

// WithdrawEntry is one element of a withdraw message's msg payload.
type WithdrawEntry struct {
	Network string `json:"network"`
	Netmask string `json:"netmask"`
}

// TableEntry is one element of a table reply's msg payload.
type TableEntry struct {
	Network    string `json:"network"`
	Netmask    string `json:"netmask"`
	Peer       string `json:"peer"`
	LocalPref  uint32 `json:"localpref"`
	SelfOrigin bool   `json:"selfOrigin"`
	ASPath     []int  `json:"ASPath"`
	Origin     string `json:"origin"`
}
