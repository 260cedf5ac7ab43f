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

// BankSudoMsg is the sudo envelope the state machine sends to the
// well-known "bank" contract (and, for the after-transfer hook, to any
// contract account party to a transfer that opted into the hook at
// instantiate time). Exactly one field is set.
type BankSudoMsg struct {
	Transfer      *BankTransfer      `json:"transfer,omitempty"`
	AfterTransfer *BankAfterTransfer `json:"after_transfer,omitempty"`
}

// BankTransfer instructs the bank contract to move coins between two
// addresses, debiting from and crediting to.
type BankTransfer struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Coins []Coin `json:"coins"`
}

// BankAfterTransfer notifies a contract account that a transfer it was
// party to (as sender or recipient) has completed, one call per coin moved.
type BankAfterTransfer struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}
