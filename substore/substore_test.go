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

package substore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/envoylabs/cw-sdk/kvstore"
)

func TestStoreGetSetDelete(t *testing.T) {
	cache := kvstore.NewCached(kvstore.NewMemory())
	s := New(cache, []byte("contract-a"))

	_, ok := s.Get([]byte("k"))
	if ok {
		t.Fatal("expected no value for unset key")
	}

	s.Set([]byte("k"), []byte("v"))
	v, ok := s.Get([]byte("k"))
	require.True(t, ok)
	require.Equal(t, []byte("v"), v)

	s.Delete([]byte("k"))
	_, ok = s.Get([]byte("k"))
	require.False(t, ok)
}

func TestStoreIsolation(t *testing.T) {
	cache := kvstore.NewCached(kvstore.NewMemory())
	a := New(cache, []byte("contract-a"))
	b := New(cache, []byte("contract-b"))

	a.Set([]byte("key"), []byte("a-value"))
	b.Set([]byte("key"), []byte("b-value"))

	av, ok := a.Get([]byte("key"))
	require.True(t, ok)
	require.Equal(t, []byte("a-value"), av)

	bv, ok := b.Get([]byte("key"))
	require.True(t, ok)
	require.Equal(t, []byte("b-value"), bv)

	b.Delete([]byte("key"))
	av, ok = a.Get([]byte("key"))
	require.True(t, ok, "deleting b's key must not touch a's namespace")
	require.Equal(t, []byte("a-value"), av)
}

// An address that is a byte-prefix of another must not let one contract's
// substore alias another's, since the length tag makes every prefix
// structurally distinct regardless of byte content.
func TestStorePrefixOfAnotherAddressDoesNotAlias(t *testing.T) {
	cache := kvstore.NewCached(kvstore.NewMemory())
	short := New(cache, []byte("abc"))
	long := New(cache, []byte("abcdef"))

	short.Set([]byte("x"), []byte("short-x"))
	long.Set([]byte("x"), []byte("long-x"))

	sv, ok := short.Get([]byte("x"))
	require.True(t, ok)
	require.Equal(t, []byte("short-x"), sv)

	lv, ok := long.Get([]byte("x"))
	require.True(t, ok)
	require.Equal(t, []byte("long-x"), lv)
}

func TestStoreRangeStaysWithinNamespace(t *testing.T) {
	cache := kvstore.NewCached(kvstore.NewMemory())
	a := New(cache, []byte("contract-a"))
	b := New(cache, []byte("contract-b"))

	for _, k := range []string{"1", "2", "3"} {
		a.Set([]byte(k), []byte("a-"+k))
	}
	for _, k := range []string{"4", "5"} {
		b.Set([]byte(k), []byte("b-"+k))
	}

	it := a.Range(nil, nil, kvstore.Ascending)
	var gotKeys []string
	for it.Valid() {
		gotKeys = append(gotKeys, string(it.Key()))
		it.Next()
	}
	if err := it.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	require.Equal(t, []string{"1", "2", "3"}, gotKeys)
}

func TestPrefixDistinctForDifferentLengths(t *testing.T) {
	p1 := Prefix([]byte("a"))
	p2 := Prefix([]byte("aa"))
	if string(p1) == string(p2) {
		t.Fatal("prefixes for distinct-length addresses must differ")
	}
}
