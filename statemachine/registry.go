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

// Package statemachine implements message dispatch, the code/account
// registry, block commit, and the read-only query router over the
// kvstore/substore/vm stack.
package statemachine

import (
	"encoding/binary"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/envoylabs/cw-sdk/chainerr"
	"github.com/envoylabs/cw-sdk/kvstore"
	"github.com/envoylabs/cw-sdk/types"
)

// Persisted key layout, stable across restarts. Contract
// substore keys live in a structurally disjoint namespace: they begin with
// a 4-byte big-endian length tag (see substore.Prefix), whose first byte is
// 0x00 for any realistic address length, so they can never collide with the
// printable prefixes below.
const (
	keyCodeCount   = "code_count"
	codesPrefix    = "codes/"
	accountsPrefix = "accounts/"

	// defaultQueryLimit caps unbounded Accounts/Codes listing queries.
	defaultQueryLimit = 100
)

func codeKey(codeID uint64) []byte {
	b := make([]byte, len(codesPrefix)+8)
	copy(b, codesPrefix)
	binary.BigEndian.PutUint64(b[len(codesPrefix):], codeID)
	return b
}

func accountKey(addr string) []byte {
	return append([]byte(accountsPrefix), []byte(addr)...)
}

// prefixEnd returns the smallest byte string that sorts after every key
// beginning with prefix, by incrementing prefix's last byte. Used to bound
// a Range scan to "every key under this prefix".
func prefixEnd(prefix string) []byte {
	out := []byte(prefix)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] < 0xFF {
			out[i]++
			return out[:i+1]
		}
	}
	return nil
}

// CodeCount returns the number of codes stored so far.
func CodeCount(store kvstore.KVStore) uint64 {
	v, ok := store.Get([]byte(keyCodeCount))
	if !ok {
		return 0
	}
	return binary.BigEndian.Uint64(v)
}

func setCodeCount(store kvstore.KVStore, n uint64) {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	store.Set([]byte(keyCodeCount), b)
}

// NextCodeID increments the code counter and returns the freshly assigned
// id. code_id values are 1-based and strictly increasing with no gaps,
// satisfying invariant 1.
func NextCodeID(store kvstore.KVStore) uint64 {
	next := CodeCount(store) + 1
	setCodeCount(store, next)
	return next
}

// SaveCode persists code under its own code id. Codes are write-once; this
// function does not check for an existing entry because the only caller
// (StoreCode dispatch) always pairs it with a fresh NextCodeID.
func SaveCode(store kvstore.KVStore, code types.Code) error {
	raw, err := json.Marshal(code)
	if err != nil {
		return chainerr.Serde(err)
	}
	store.Set(codeKey(code.CodeID), raw)
	return nil
}

// LoadCode looks up a code by id.
func LoadCode(store kvstore.KVStore, codeID uint64) (types.Code, bool, error) {
	raw, ok := store.Get(codeKey(codeID))
	if !ok {
		return types.Code{}, false, nil
	}
	var code types.Code
	if err := json.Unmarshal(raw, &code); err != nil {
		return types.Code{}, false, chainerr.Serde(err)
	}
	return code, true, nil
}

// ListCodes returns codes in ascending code_id order, starting strictly
// after startAfter if given, bounded by limit (defaultQueryLimit if <= 0).
func ListCodes(store kvstore.KVStore, startAfter *uint64, limit int) ([]types.Code, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	start := []byte(codesPrefix)
	if startAfter != nil {
		start = codeKey(*startAfter + 1)
	}
	it := store.Range(start, prefixEnd(codesPrefix), kvstore.Ascending)
	defer it.Close()

	var out []types.Code
	for it.Valid() && len(out) < limit {
		var code types.Code
		if err := json.Unmarshal(it.Value(), &code); err != nil {
			return nil, chainerr.Serde(err)
		}
		out = append(out, code)
		it.Next()
	}
	return out, nil
}

// SaveAccount persists acct at addr, overwriting any existing entry. Callers
// that must enforce uniqueness (Instantiate) check AccountExists first.
func SaveAccount(store kvstore.KVStore, addr string, acct types.Account) error {
	raw, err := json.Marshal(acct)
	if err != nil {
		return chainerr.Serde(err)
	}
	store.Set(accountKey(addr), raw)
	return nil
}

// LoadAccount looks up the account at addr.
func LoadAccount(store kvstore.KVStore, addr string) (types.Account, bool, error) {
	raw, ok := store.Get(accountKey(addr))
	if !ok {
		return types.Account{}, false, nil
	}
	var acct types.Account
	if err := json.Unmarshal(raw, &acct); err != nil {
		return types.Account{}, false, chainerr.Serde(err)
	}
	return acct, true, nil
}

// AccountExists reports whether an account is registered at addr.
func AccountExists(store kvstore.KVStore, addr string) (bool, error) {
	_, found, err := LoadAccount(store, addr)
	return found, err
}

// IsContractAccount reports whether addr is a registered Contract account
// (as opposed to a Base account, or no account at all).
func IsContractAccount(store kvstore.KVStore, addr string) (bool, error) {
	acct, found, err := LoadAccount(store, addr)
	if err != nil || !found {
		return false, err
	}
	return acct.Contract != nil, nil
}

// HasAfterTransferHook reports whether addr is a Contract account that
// opted into the after-transfer hook at instantiate time. A contract
// account that never declared the hook is never notified, regardless of
// how many transfers touch it.
func HasAfterTransferHook(store kvstore.KVStore, addr string) (bool, error) {
	acct, found, err := LoadAccount(store, addr)
	if err != nil || !found {
		return false, err
	}
	return acct.Contract != nil && acct.Contract.AfterTransferHook, nil
}

// CodeByContractAddress resolves a contract account's code blob, failing
// with ContractNotFound or CodeNotFound as appropriate.
func CodeByContractAddress(store kvstore.KVStore, addr string) (types.Code, error) {
	acct, found, err := LoadAccount(store, addr)
	if err != nil {
		return types.Code{}, err
	}
	if !found || acct.Contract == nil {
		return types.Code{}, chainerr.ContractNotFound(addr)
	}
	code, found, err := LoadCode(store, acct.Contract.CodeID)
	if err != nil {
		return types.Code{}, err
	}
	if !found {
		return types.Code{}, chainerr.CodeNotFound(acct.Contract.CodeID)
	}
	return code, nil
}

// countContractAccounts scans every account and counts the Contract
// variant, for the Info query's contract_count field. Unbounded scan: Info
// is an occasional operational query, not a hot path.
func countContractAccounts(store kvstore.KVStore) (uint64, error) {
	it := store.Range([]byte(accountsPrefix), prefixEnd(accountsPrefix), kvstore.Ascending)
	defer it.Close()

	var n uint64
	for it.Valid() {
		var acct types.Account
		if err := json.Unmarshal(it.Value(), &acct); err != nil {
			return 0, chainerr.Serde(err)
		}
		if acct.Contract != nil {
			n++
		}
		it.Next()
	}
	return n, nil
}

// AccountEntry pairs an address with its account, used by ListAccounts and
// the Accounts query response.
type AccountEntry struct {
	Address string
	Account types.Account
}

// ListAccounts returns accounts in ascending address order, starting
// strictly after startAfter if given, bounded by limit (defaultQueryLimit
// if <= 0).
func ListAccounts(store kvstore.KVStore, startAfter *string, limit int) ([]AccountEntry, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	start := []byte(accountsPrefix)
	if startAfter != nil {
		start = append(accountKey(*startAfter), 0x00)
	}
	it := store.Range(start, prefixEnd(accountsPrefix), kvstore.Ascending)
	defer it.Close()

	var out []AccountEntry
	for it.Valid() && len(out) < limit {
		addr := strings.TrimPrefix(string(it.Key()), accountsPrefix)
		var acct types.Account
		if err := json.Unmarshal(it.Value(), &acct); err != nil {
			return nil, chainerr.Serde(err)
		}
		out = append(out, AccountEntry{Address: addr, Account: acct})
		it.Next()
	}
	return out, nil
}
