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

// Package ipaddr provides pure bit-arithmetic over packed IPv4 addresses
// and CIDR-legal netmasks: dotted-quad parsing/formatting, prefix length
// by popcount, and the mask shortening used by the aggregator.
//
// Addresses and masks are both represented as a plain uint32, most
// significant octet first. Nothing here validates that a mask is
// contiguous; callers that need CIDR-legal masks reject malformed input
// at ingress (see internal/message), not here.
package ipaddr

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// Addr is a packed 32-bit IPv4 address or netmask, MSB first.
type Addr uint32

// Pack parses a dotted-quad string into an Addr. It fails when the
// string is not exactly four decimal octets in 0..=255.
func Pack(dotted string) (Addr, error) {
	octets := strings.Split(dotted, ".")
	if len(octets) != 4 {
		return 0, fmt.Errorf("ipaddr: %q is not a dotted-quad address", dotted)
	}

	var a uint32
	for _, o := range octets {
		n, err := strconv.Atoi(o)
		if err != nil || n < 0 || n > 255 {
			return 0, fmt.Errorf("ipaddr: invalid octet %q in %q", o, dotted)
		}
		a = (a << 8) | uint32(n)
	}

	return Addr(a), nil
}

// Unpack formats an Addr as a dotted-quad string, most-significant
// octet first.
func Unpack(a Addr) string {
	return fmt.Sprintf("%d.%d.%d.%d",
		byte(a>>24), byte(a>>16), byte(a>>8), byte(a))
}

// PrefixLen returns the number of set bits in mask. This is popcount,
// not "count of leading ones" — for a non-contiguous mask it still
// returns the bit count, matching the source behavior the aggregator
// depends on. Reject non-contiguous masks at ingress if that matters
// to the caller; PrefixLen itself has no opinion.
func PrefixLen(mask Addr) uint8 {
	return uint8(bits.OnesCount32(uint32(mask)))
}

// MaskFromLen returns the CIDR-legal netmask with the given number of
// leading one-bits (0..=32).
func MaskFromLen(length uint8) Addr {
	if length == 0 {
		return 0
	}
	if length >= 32 {
		return 0xffffffff
	}
	return Addr(^uint32(0) << (32 - length))
}

// SameNetwork reports whether a and b agree under mask.
func SameNetwork(a, b, mask Addr) bool {
	return (a & mask) == (b & mask)
}

// Shorten drops the lowest set bit of mask, i.e. clears the bit at
// position prefix_len(mask)-1 (counting from the MSB), producing a
// mask one bit shorter. The caller is responsible for ensuring mask is
// not already the zero-length /0 mask.
func Shorten(mask Addr) Addr {
	l := PrefixLen(mask)
	if l == 0 {
		return mask
	}
	return mask &^ (1 << (32 - l))
}
