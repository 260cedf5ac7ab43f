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

// Package substore implements the per-contract namespaced view of a cached
// store: every key a contract reads or writes is transparently prefixed so
// one underlying store can serve every contract without their keyspaces
// colliding.
package substore

import (
	"encoding/binary"

	"github.com/envoylabs/cw-sdk/kvstore"
)

// Store is a prefix lens over a kvstore.Cached, scoped to one contract
// address. Every key the contract sees is translated to
// len_be(addr) || addr || key before touching the underlying cache; range
// bounds are rewritten the same way and the prefix is stripped back off
// before keys are handed back to the caller.
type Store struct {
	cache  *kvstore.Cached
	prefix []byte
}

// New returns a Store scoped to addr over cache.
func New(cache *kvstore.Cached, addr []byte) *Store {
	return &Store{cache: cache, prefix: Prefix(addr)}
}

// Prefix computes the substore key prefix for an address: a big-endian
// length tag followed by the address bytes, so distinct addresses with one
// a byte-prefix of another (e.g. one address byte-string fully containing
// another) can never alias the same contract keyspace.
func Prefix(addr []byte) []byte {
	out := make([]byte, 4+len(addr))
	binary.BigEndian.PutUint32(out[:4], uint32(len(addr)))
	copy(out[4:], addr)
	return out
}

func (s *Store) prefixed(key []byte) []byte {
	out := make([]byte, len(s.prefix)+len(key))
	copy(out, s.prefix)
	copy(out[len(s.prefix):], key)
	return out
}

func (s *Store) Get(key []byte) ([]byte, bool) {
	return s.cache.Get(s.prefixed(key))
}

func (s *Store) Set(key, value []byte) {
	s.cache.Set(s.prefixed(key), value)
}

func (s *Store) Delete(key []byte) {
	s.cache.Delete(s.prefixed(key))
}

// Range scans [start, end) within this contract's namespace only; returned
// keys have the prefix already stripped, and the scan can never observe a
// key outside the namespace regardless of what start/end are passed.
func (s *Store) Range(start, end []byte, order kvstore.Order) kvstore.Iterator {
	rangeStart := s.prefixed(nonNil(start))
	var rangeEnd []byte
	if end != nil {
		rangeEnd = s.prefixed(end)
	} else {
		rangeEnd = prefixUpperBound(s.prefix)
	}
	return &strippingIterator{
		under:  s.cache.Range(rangeStart, rangeEnd, order),
		prefix: s.prefix,
	}
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}

// prefixUpperBound returns the smallest key strictly greater than every key
// beginning with prefix, i.e. prefix incremented as a big-endian integer.
// Since every substore prefix begins with a 4-byte big-endian length tag
// whose first byte is 0x00 for any realistic address length, no prefix is
// all 0xFF bytes in practice and a finite bound is always found.
func prefixUpperBound(prefix []byte) []byte {
	out := append([]byte(nil), prefix...)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] < 0xFF {
			out[i]++
			return out[:i+1]
		}
	}
	// prefix was all 0xFF: no finite upper bound needed, unbounded scan.
	return nil
}

// strippingIterator wraps an Iterator over prefixed keys and strips the
// fixed prefix off every key it yields.
type strippingIterator struct {
	under  kvstore.Iterator
	prefix []byte
}

func (s *strippingIterator) Valid() bool { return s.under.Valid() }
func (s *strippingIterator) Next()       { s.under.Next() }
func (s *strippingIterator) Key() []byte {
	k := s.under.Key()
	return k[len(s.prefix):]
}
func (s *strippingIterator) Value() []byte { return s.under.Value() }
func (s *strippingIterator) Close() error  { return s.under.Close() }
