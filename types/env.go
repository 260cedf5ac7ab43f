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

// Package types holds the wire types shared between the state machine and
// contract code: the Env/MessageInfo the VM passes into every call, the
// Response/ContractResult it returns, and the JSON message and query
// envelopes the outer driver speaks.
package types

// BlockInfo is the trusted subset of block context passed into every
// contract call. Nothing here may come from the transaction itself.
type BlockInfo struct {
	Height  int64  `json:"height"`
	Time    int64  `json:"time"`
	ChainID string `json:"chain_id"`
}

// MessageInfo carries the sender and any funds attached to the call.
type MessageInfo struct {
	Sender string `json:"sender"`
	Funds  []Coin `json:"funds"`
}

// ContractInfo identifies the contract the call is being made against.
type ContractInfo struct {
	Address string `json:"address"`
}

// Env is the full environment handed to a contract entry point. It is
// JSON-encoded before crossing the host/VM boundary.
type Env struct {
	Block    BlockInfo    `json:"block"`
	Contract ContractInfo `json:"contract"`
}

// Coin is a denom/amount pair; Amount is a decimal string, matching the
// wire convention of every chain this spec's wire format descends from.
type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}
