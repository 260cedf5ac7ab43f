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

	"github.com/envoylabs/cw-sdk/chainerr"
	"github.com/envoylabs/cw-sdk/kvstore"
	"github.com/envoylabs/cw-sdk/types"
)

// Authenticator is an external collaborator responsible for transaction
// authentication: given a transaction and the current committed state,
// it yields the sender's address or an AuthError. Cryptographic signature
// verification is explicitly that collaborator's job, not the state
// machine's; Chain only ever calls Authenticate before dispatching a tx's
// messages.
type Authenticator interface {
	Authenticate(store kvstore.KVStore, tx types.Tx) (sender string, err error)
}

// SequenceAuthenticator checks a transaction's chain id and strictly
// increasing sequence number against the sender's BaseAccount, creating a
// fresh BaseAccount on a sender's first appearance. It does not verify
// Tx.Signature — signature cryptography is delegated elsewhere; a
// production deployment wraps this type (or replaces it) with one that
// does.
type SequenceAuthenticator struct {
	chainID string
}

// NewSequenceAuthenticator builds a SequenceAuthenticator bound to chainID.
func NewSequenceAuthenticator(chainID string) *SequenceAuthenticator {
	return &SequenceAuthenticator{chainID: chainID}
}

func (a *SequenceAuthenticator) Authenticate(store kvstore.KVStore, tx types.Tx) (string, error) {
	if tx.Body.ChainID != a.chainID {
		return "", chainerr.Auth(fmt.Sprintf("chain id mismatch: tx has %q, chain is %q", tx.Body.ChainID, a.chainID))
	}

	acct, found, err := LoadAccount(store, tx.Body.Sender)
	if err != nil {
		return "", err
	}

	var base types.BaseAccount
	if found {
		if acct.Base == nil {
			return "", chainerr.Auth(fmt.Sprintf("sender %s is a contract account, cannot sign transactions", tx.Body.Sender))
		}
		base = *acct.Base
		if tx.Body.Sequence != base.Sequence {
			return "", chainerr.Auth(fmt.Sprintf("sequence mismatch: tx has %d, account has %d", tx.Body.Sequence, base.Sequence))
		}
	} else if tx.Body.Sequence != 0 {
		return "", chainerr.Auth(fmt.Sprintf("sequence mismatch: tx has %d, new account expects 0", tx.Body.Sequence))
	}

	base.PubKey = tx.PubKey
	base.Sequence++
	if err := SaveAccount(store, tx.Body.Sender, types.Account{Base: &base}); err != nil {
		return "", err
	}

	return tx.Body.Sender, nil
}
