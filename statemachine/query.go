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

package statemachine

import (
	"fmt"

	"github.com/envoylabs/cw-sdk/address"
	"github.com/envoylabs/cw-sdk/chainerr"
	"github.com/envoylabs/cw-sdk/kvstore"
	"github.com/envoylabs/cw-sdk/substore"
	"github.com/envoylabs/cw-sdk/types"
	"github.com/envoylabs/cw-sdk/vm"
)

// QueryRouter answers every read-only query kind over the committed store,
// never flushing a pending write. WasmRaw reads through a throwaway Cached
// overlay only because a substore is built over one. WasmSmart is the one
// query that touches the VM: it binds a throwaway Cached overlay that is
// never flushed, so a misbehaving contract's query-time writes vanish with
// the call instead of reaching committed state.
type QueryRouter struct {
	store   kvstore.KVStore
	adapter *vm.Adapter
	chainID string
	block   func() types.BlockInfo
}

// NewQueryRouter builds a QueryRouter over the committed store. block is
// called fresh for every WasmSmart query so the env a contract observes
// always reflects the chain's current height.
func NewQueryRouter(store kvstore.KVStore, adapter *vm.Adapter, chainID string, block func() types.BlockInfo) *QueryRouter {
	return &QueryRouter{store: store, adapter: adapter, chainID: chainID, block: block}
}

// Route dispatches q to the matching handler.
func (r *QueryRouter) Route(q types.Query) (interface{}, error) {
	switch {
	case q.Info != nil:
		return r.info()
	case q.Account != nil:
		return r.account(q.Account.Address)
	case q.Accounts != nil:
		return r.accounts(q.Accounts.StartAfter, intOrZero(q.Accounts.Limit))
	case q.Code != nil:
		return r.code(q.Code.CodeID)
	case q.Codes != nil:
		return r.codes(q.Codes.StartAfter, intOrZero(q.Codes.Limit))
	case q.WasmRaw != nil:
		return r.wasmRaw(q.WasmRaw.Contract, q.WasmRaw.Key)
	case q.WasmSmart != nil:
		return r.wasmSmart(q.WasmSmart.Contract, q.WasmSmart.Msg)
	default:
		return nil, chainerr.Serde(fmt.Errorf("query envelope has no recognized variant set"))
	}
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func (r *QueryRouter) info() (types.InfoResponse, error) {
	contractCount, err := countContractAccounts(r.store)
	if err != nil {
		return types.InfoResponse{}, err
	}
	block := r.block()
	return types.InfoResponse{
		ChainID:       r.chainID,
		Height:        uint64(block.Height),
		CodeCount:     CodeCount(r.store),
		ContractCount: contractCount,
	}, nil
}

func (r *QueryRouter) account(addr string) (types.AccountResponse, error) {
	acct, found, err := LoadAccount(r.store, addr)
	if err != nil {
		return types.AccountResponse{}, err
	}
	resp := types.AccountResponse{Address: addr}
	if found {
		resp.Account = &acct
	}
	return resp, nil
}

func (r *QueryRouter) accounts(startAfter *string, limit int) (types.AccountsResponse, error) {
	entries, err := ListAccounts(r.store, startAfter, limit)
	if err != nil {
		return types.AccountsResponse{}, err
	}
	out := make([]types.AccountResponse, 0, len(entries))
	for _, e := range entries {
		acct := e.Account
		out = append(out, types.AccountResponse{Address: e.Address, Account: &acct})
	}
	return types.AccountsResponse{Accounts: out}, nil
}

func (r *QueryRouter) code(codeID uint64) (types.CodeResponse, error) {
	code, found, err := LoadCode(r.store, codeID)
	if err != nil {
		return types.CodeResponse{}, err
	}
	if !found {
		return types.CodeResponse{CodeID: codeID}, nil
	}
	return types.CodeResponse{CodeID: codeID, WasmByteCode: code.WasmByteCode}, nil
}

func (r *QueryRouter) codes(startAfter *uint64, limit int) (types.CodesResponse, error) {
	codes, err := ListCodes(r.store, startAfter, limit)
	if err != nil {
		return types.CodesResponse{}, err
	}
	out := make([]types.CodeResponse, 0, len(codes))
	for _, c := range codes {
		out = append(out, types.CodeResponse{CodeID: c.CodeID, WasmByteCode: c.WasmByteCode})
	}
	return types.CodesResponse{Codes: out}, nil
}

func (r *QueryRouter) wasmRaw(contract string, key []byte) (types.WasmRawResponse, error) {
	if _, err := CodeByContractAddress(r.store, contract); err != nil {
		return types.WasmRawResponse{}, err
	}
	addrBytes, err := address.Decode(contract)
	if err != nil {
		return types.WasmRawResponse{}, fmt.Errorf("decoding contract address: %w", err)
	}
	sub := substore.New(kvstore.NewCached(r.store), addrBytes)
	value, ok := sub.Get(key)
	resp := types.WasmRawResponse{Contract: contract, Key: key}
	if ok {
		resp.Value = value
	}
	return resp, nil
}

func (r *QueryRouter) wasmSmart(contract string, msg []byte) (types.WasmSmartResponse, error) {
	code, err := CodeByContractAddress(r.store, contract)
	if err != nil {
		return types.WasmSmartResponse{}, err
	}
	addrBytes, err := address.Decode(contract)
	if err != nil {
		return types.WasmSmartResponse{}, fmt.Errorf("decoding contract address: %w", err)
	}

	// A throwaway overlay that is never flushed: a malicious or buggy
	// contract can write all it wants during a query, and none of it ever
	// reaches the committed store.
	snapshot := kvstore.NewCached(r.store)
	sub := substore.New(snapshot, addrBytes)
	env := types.Env{Block: r.block(), Contract: types.ContractInfo{Address: contract}}

	result, err := r.adapter.CallQuery(code.WasmByteCode, sub, env, msg)
	if err != nil {
		return types.WasmSmartResponse{}, fmt.Errorf("%w: %s", chainerr.ErrVm, err)
	}
	return types.WasmSmartResponse{Contract: contract, Result: result}, nil
}
