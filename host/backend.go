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

// Package host implements the host ABI exposed to contract code: storage
// primitives bound to one contract's substore, address canonicalize/
// humanize, and the query_chain stub.
package host

import (
	"errors"
	"fmt"

	"github.com/envoylabs/cw-sdk/address"
	"github.com/envoylabs/cw-sdk/kvstore"
)

// ErrUnsupportedQuery is returned by Querier.Query for anything other than
// what this core exercises from within contract calls (nothing, today —
// this core never issues query_chain calls itself).
var ErrUnsupportedQuery = errors.New("host: query_chain is unsupported")

// Storage is the subset of substore.Store the host ABI needs: plain
// byte read/write/delete/scan, nothing substore-specific leaks through.
type Storage interface {
	Get(key []byte) ([]byte, bool)
	Set(key, value []byte)
	Delete(key []byte)
	Range(start, end []byte, order kvstore.Order) kvstore.Iterator
}

// AddressAPI canonicalizes and humanizes addresses. Implemented directly in
// terms of the chain's bech32 scheme (address.Encode/Decode); a real WASM
// environment might do this via a syscall, this core does it in-process.
type AddressAPI struct{}

// CanonicalizeAddress parses a human bech32 address into raw bytes.
func (AddressAPI) CanonicalizeAddress(human string) ([]byte, error) {
	raw, err := address.Decode(human)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: %w", err)
	}
	return raw, nil
}

// HumanizeAddress bech32-encodes raw address bytes.
func (AddressAPI) HumanizeAddress(canonical []byte) (string, error) {
	human, err := address.Encode(canonical)
	if err != nil {
		return "", fmt.Errorf("humanize: %w", err)
	}
	return human, nil
}

// Querier answers query_chain host calls. The minimal contract for this
// core: everything is unsupported, since no in-process caller ever issues
// a query_chain call (cross-contract queries are out of scope). It exists
// purely so the host ABI has a concrete, always-present implementation for
// the VM to bind against, the way a real WASM sandbox's host module would.
type Querier interface {
	Query(request []byte) ([]byte, error)
}

// UnsupportedQuerier implements Querier by always returning
// ErrUnsupportedQuery, never panicking or aborting the caller.
type UnsupportedQuerier struct{}

func (UnsupportedQuerier) Query([]byte) ([]byte, error) {
	return nil, ErrUnsupportedQuery
}

// Backend bundles the three things a VM instance is given for the duration
// of one entry-point call: address API, the contract's namespaced storage,
// and a querier. The VM Adapter constructs a fresh Backend per call; its
// Storage is the caller's own substore, so writes land in the caller's
// overlay as the call runs and nothing is handed back when it returns.
type Backend struct {
	API     AddressAPI
	Storage Storage
	Querier Querier
}

// NewBackend builds a Backend over storage with the default address API and
// an unsupported querier, matching the "Querier" contract this core needs.
func NewBackend(storage Storage) Backend {
	return Backend{API: AddressAPI{}, Storage: storage, Querier: UnsupportedQuerier{}}
}

// Iterator handles for the host's scan/next calls. A real WASM host ABI
// would hand back an opaque integer handle and store the live iterator
// server-side; this in-process core exposes the same shape (Scan returns a
// Handle, Next consumes it) for an engine to bind. The reference engine in
// package vm does not use it: its contracts use Backend.Storage directly.
type Handle uint32

// Scanner tracks open iterator handles for one contract call so Scan/Next
// can be invoked repeatedly without leaking the underlying kvstore.Iterator
// type across the host boundary.
type Scanner struct {
	storage Storage
	open    map[Handle]kvstore.Iterator
	nextID  Handle
}

// NewScanner constructs a Scanner bound to storage.
func NewScanner(storage Storage) *Scanner {
	return &Scanner{storage: storage, open: make(map[Handle]kvstore.Iterator)}
}

// Scan opens a new iterator over [start, end) and returns its handle.
func (s *Scanner) Scan(start, end []byte, order kvstore.Order) Handle {
	s.nextID++
	handle := s.nextID
	s.open[handle] = s.storage.Range(start, end, order)
	return handle
}

// Next advances the iterator identified by handle and returns its current
// key/value, or ok=false once exhausted. An unknown handle returns
// ok=false rather than panicking, per the host ABI's never-abort contract.
func (s *Scanner) Next(handle Handle) (key, value []byte, ok bool) {
	it, found := s.open[handle]
	if !found || !it.Valid() {
		if found {
			_ = it.Close()
			delete(s.open, handle)
		}
		return nil, nil, false
	}
	key, value = it.Key(), it.Value()
	it.Next()
	return key, value, true
}

// CloseAll releases every iterator still open on this scanner, for use once
// the VM call that owns this Scanner returns.
func (s *Scanner) CloseAll() {
	for h, it := range s.open {
		_ = it.Close()
		delete(s.open, h)
	}
}
