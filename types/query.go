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

package types

// Query is a tagged union over every read-only query kind the Query Router
// accepts. Exactly one field is set per decoded query.
type Query struct {
	Info      *QueryInfo      `json:"info,omitempty"`
	Account   *QueryAccount   `json:"account,omitempty"`
	Accounts  *QueryAccounts  `json:"accounts,omitempty"`
	Code      *QueryCode      `json:"code,omitempty"`
	Codes     *QueryCodes     `json:"codes,omitempty"`
	WasmRaw   *QueryWasmRaw   `json:"wasm_raw,omitempty"`
	WasmSmart *QueryWasmSmart `json:"wasm_smart,omitempty"`
}

type QueryInfo struct{}

type QueryAccount struct {
	Address string `json:"address"`
}

type QueryAccounts struct {
	StartAfter *string `json:"start_after,omitempty"`
	Limit      *int    `json:"limit,omitempty"`
}

type QueryCode struct {
	CodeID uint64 `json:"code_id"`
}

type QueryCodes struct {
	StartAfter *uint64 `json:"start_after,omitempty"`
	Limit      *int    `json:"limit,omitempty"`
}

type QueryWasmRaw struct {
	Contract string `json:"contract"`
	Key      []byte `json:"key"`
}

type QueryWasmSmart struct {
	Contract string `json:"contract"`
	Msg      []byte `json:"msg"`
}

// InfoResponse answers QueryInfo.
type InfoResponse struct {
	ChainID       string `json:"chain_id"`
	Height        uint64 `json:"height"`
	CodeCount     uint64 `json:"code_count"`
	ContractCount uint64 `json:"contract_count"`
}

// AccountResponse answers QueryAccount. Account is nil if no account exists
// at the address.
type AccountResponse struct {
	Address string   `json:"address"`
	Account *Account `json:"account"`
}

// AccountsResponse answers QueryAccounts.
type AccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// CodeResponse answers QueryCode. WasmByteCode is nil if the code id does
// not exist.
type CodeResponse struct {
	CodeID       uint64 `json:"code_id"`
	WasmByteCode []byte `json:"wasm_byte_code,omitempty"`
}

// CodesResponse answers QueryCodes.
type CodesResponse struct {
	Codes []CodeResponse `json:"codes"`
}

// WasmRawResponse answers QueryWasmRaw. Value is nil if the key is absent.
type WasmRawResponse struct {
	Contract string `json:"contract"`
	Key      []byte `json:"key"`
	Value    []byte `json:"value,omitempty"`
}

// SmartQueryResult mirrors ContractResult's Ok/Err shape for a smart-query
// call, but Ok carries raw bytes rather than a Response.
type SmartQueryResult struct {
	Ok  []byte `json:"ok,omitempty"`
	Err string `json:"error,omitempty"`
}

// WasmSmartResponse answers QueryWasmSmart.
type WasmSmartResponse struct {
	Contract string           `json:"contract"`
	Result   SmartQueryResult `json:"result"`
}
