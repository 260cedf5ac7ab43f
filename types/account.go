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

// Account is a tagged union over the two account variants: a signing Base
// account, or a Contract account instantiated from some code id.
type Account struct {
	Base     *BaseAccount     `json:"base,omitempty"`
	Contract *ContractAccount `json:"contract,omitempty"`
}

// BaseAccount is a plain signing account tracked for sequence bookkeeping.
// It is created or updated by the authenticator, never by message dispatch.
type BaseAccount struct {
	PubKey   []byte `json:"pubkey,omitempty"`
	Sequence uint64 `json:"sequence"`
}

// ContractAccount is a contract instantiated from a code id.
type ContractAccount struct {
	CodeID uint64  `json:"code_id"`
	Label  string  `json:"label"`
	Admin  *string `json:"admin,omitempty"`

	// AfterTransferHook declares, at instantiate time, that this contract
	// wants a sudo AfterTransfer call whenever a bank transfer credits or
	// debits it. False by default: an ordinary contract account never
	// receives the hook just by existing.
	AfterTransferHook bool `json:"after_transfer_hook,omitempty"`
}

// Code is an immutable stored wasm code blob.
type Code struct {
	CodeID       uint64 `json:"code_id"`
	WasmByteCode []byte `json:"wasm_byte_code"`
	Hash         []byte `json:"hash"`
}
