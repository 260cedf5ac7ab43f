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

// Msg is a tagged union: exactly one field is set per decoded message,
// matching the `{"store_code": {...}}`-style envelope from the wire spec.
type Msg struct {
	StoreCode   *MsgStoreCode   `json:"store_code,omitempty"`
	Instantiate *MsgInstantiate `json:"instantiate,omitempty"`
	Execute     *MsgExecute     `json:"execute,omitempty"`
	Migrate     *MsgMigrate     `json:"migrate,omitempty"`
}

// MsgStoreCode stores an immutable wasm code blob.
type MsgStoreCode struct {
	WasmByteCode []byte `json:"wasm_byte_code"`
}

// MsgInstantiate creates a new contract account from an existing code id.
type MsgInstantiate struct {
	CodeID uint64  `json:"code_id"`
	Msg    []byte  `json:"msg"`
	Funds  []Coin  `json:"funds"`
	Label  string  `json:"label"`
	Admin  *string `json:"admin"`

	// AfterTransferHook opts this contract into the after-transfer hook at
	// instantiation; see ContractAccount.AfterTransferHook.
	AfterTransferHook bool `json:"after_transfer_hook,omitempty"`
}

// MsgExecute calls an existing contract's execute entry point.
type MsgExecute struct {
	Contract string `json:"contract"`
	Msg      []byte `json:"msg"`
	Funds    []Coin `json:"funds"`
}

// MsgMigrate is accepted by the envelope but always rejected by dispatch
// with MigrationUnsupported (migration is an explicit non-goal).
type MsgMigrate struct {
	Contract string `json:"contract"`
	CodeID   uint64 `json:"code_id"`
	Msg      []byte `json:"msg"`
}

// TxBody is the signed payload of a transaction: an ordered list of
// messages from a single sender.
type TxBody struct {
	Sender   string `json:"sender"`
	ChainID  string `json:"chain_id"`
	Sequence uint64 `json:"sequence"`
	Msgs     []Msg  `json:"msgs"`
}

// Tx is a full transaction envelope. Signature verification itself is
// delegated to an external Authenticator (see statemachine.Authenticator);
// Signature is carried here only so that collaborator can consume it.
type Tx struct {
	Body      TxBody `json:"body"`
	PubKey    []byte `json:"pubkey,omitempty"`
	Signature []byte `json:"signature,omitempty"`
}

// GenesisState is the genesis app-state payload: a deployer address and a
// list of messages replayed as a single no-auth transaction from it.
type GenesisState struct {
	DeployerAddress string `json:"deployer_address"`
	GenMsgs         []Msg  `json:"gen_msgs"`
}
