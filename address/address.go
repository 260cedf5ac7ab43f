// Copyright 2024 by the Authors
// This file is part of the cw-sdk library.
//
// The cw-sdk library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The cw-sdk library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the cw-sdk library. If not, see <http://www.gnu.org/licenses/>.

// Package address implements bech32 account addressing and the label-based
// contract address deriver.
package address

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// Prefix is the build-time human-readable bech32 prefix for every address
// in this chain. A real deployment would make this a linker flag; tests in
// this module all use the default.
var Prefix = "cw"

// addressSize is the number of raw bytes every address decodes to.
const addressSize = 20

// IllegalLabelPrefix is the reserved prefix ("cw1" with the default Prefix)
// that a user-chosen contract label must never begin with, since it is
// indistinguishable from a real bech32 address's separator position.
func IllegalLabelPrefix() string {
	return Prefix + "1"
}

// ValidateLabel rejects labels that could be confused for a real address.
func ValidateLabel(label string) bool {
	return !strings.HasPrefix(label, IllegalLabelPrefix())
}

// Encode bech32-encodes raw address bytes using the chain's Prefix.
func Encode(raw []byte) (string, error) {
	converted, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("address: convert bits: %w", err)
	}
	return bech32.Encode(Prefix, converted)
}

// Decode parses a bech32 address string into its raw bytes, verifying the
// human-readable prefix matches the chain's configured Prefix.
func Decode(addr string) ([]byte, error) {
	hrp, data, err := bech32.Decode(addr)
	if err != nil {
		return nil, fmt.Errorf("address: decode: %w", err)
	}
	if hrp != Prefix {
		return nil, fmt.Errorf("address: unexpected prefix %q, want %q", hrp, Prefix)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("address: convert bits: %w", err)
	}
	return raw, nil
}

// DeriveFromLabel deterministically computes a contract address from its
// instantiation label: bech32(Prefix, sha256("module" || label)[:20]).
// The same label always derives the same address, across processes and
// rebuilds, which is the invariant Instantiate relies on to detect label
// collisions.
func DeriveFromLabel(label string) (string, error) {
	h := sha256.Sum256(append([]byte("module"), []byte(label)...))
	return Encode(h[:addressSize])
}
