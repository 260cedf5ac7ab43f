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
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/envoylabs/cw-sdk/address"
	"github.com/envoylabs/cw-sdk/chainerr"
	"github.com/envoylabs/cw-sdk/kvstore"
	"github.com/envoylabs/cw-sdk/log"
	"github.com/envoylabs/cw-sdk/types"
	"github.com/envoylabs/cw-sdk/vm"
)

// Chain is the top-level orchestrator: one committed KV store, one
// Dispatcher, one QueryRouter, one block height counter. It is the thing
// cmd/chaind and queryhttp both drive.
type Chain struct {
	committed  kvstore.KVStore
	dispatcher *Dispatcher
	query      *QueryRouter
	auth       Authenticator
	chainID    string
	height     uint64
	clock      func() int64
}

// Option configures a Chain at construction time.
type Option func(*Chain)

// WithClock overrides the wall-clock source used to populate BlockInfo.Time.
// Tests that need byte-exact events pass a fixed clock.
func WithClock(clock func() int64) Option {
	return func(c *Chain) { c.clock = clock }
}

// WithAuthenticator overrides the default SequenceAuthenticator.
func WithAuthenticator(auth Authenticator) Option {
	return func(c *Chain) { c.auth = auth }
}

// NewChain wires a Chain over committed, dispatching through adapter.
func NewChain(committed kvstore.KVStore, adapter *vm.Adapter, chainID string, opts ...Option) *Chain {
	c := &Chain{
		committed:  committed,
		dispatcher: NewDispatcher(adapter),
		auth:       NewSequenceAuthenticator(chainID),
		chainID:    chainID,
		clock:      func() int64 { return time.Now().Unix() },
	}
	for _, opt := range opts {
		opt(c)
	}
	c.query = NewQueryRouter(c.committed, adapter, c.chainID, c.blockInfo)
	return c
}

func (c *Chain) blockInfo() types.BlockInfo {
	return types.BlockInfo{Height: int64(c.height), Time: c.clock(), ChainID: c.chainID}
}

// InitChain replays a genesis app-state's messages as a single no-auth
// transaction from its deployer, bypassing Authenticate entirely (genesis
// messages carry no signature to check) but applying every other dispatch
// rule. Height is left at 0; the returned app_hash reflects post-genesis
// state at that height.
func (c *Chain) InitChain(appStateBytes []byte) (appHash []byte, err error) {
	var genesis types.GenesisState
	if err := json.Unmarshal(appStateBytes, &genesis); err != nil {
		return nil, chainerr.Serde(err)
	}
	if _, err := address.Decode(genesis.DeployerAddress); err != nil {
		return nil, fmt.Errorf("invalid deployer address: %w", err)
	}

	for i, msg := range genesis.GenMsgs {
		overlay := kvstore.NewCached(c.committed)
		if _, err := c.dispatcher.Dispatch(overlay, c.blockInfo(), genesis.DeployerAddress, msg); err != nil {
			overlay.Discard()
			return nil, fmt.Errorf("genesis message %d: %w", i, err)
		}
		overlay.Flush()
	}

	log.Info("initialized chain", "chain_id", c.chainID, "gen_msgs", len(genesis.GenMsgs))
	return c.appHash(), nil
}

// HandleTx authenticates tx, then executes its messages in order, each
// inside its own cached overlay over the committed store. The first
// failing message discards only its own overlay and aborts the whole
// transaction; every message flushed before it stays flushed (§9.1).
func (c *Chain) HandleTx(tx types.Tx) ([]types.Event, error) {
	sender, err := c.auth.Authenticate(c.committed, tx)
	if err != nil {
		return nil, err
	}

	block := c.blockInfo()
	var events []types.Event
	for i, msg := range tx.Body.Msgs {
		overlay := kvstore.NewCached(c.committed)
		msgEvents, err := c.dispatcher.Dispatch(overlay, block, sender, msg)
		if err != nil {
			overlay.Discard()
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		overlay.Flush()
		events = append(events, msgEvents...)
	}
	return events, nil
}

// HandleQuery answers a read-only query over committed state. It never
// creates a durable overlay; see QueryRouter for the WasmSmart exception.
func (c *Chain) HandleQuery(q types.Query) (interface{}, error) {
	return c.query.Route(q)
}

// Commit advances the block height and returns the new (height, app_hash)
// pair, matching an ABCI-like commit/info contract.
func (c *Chain) Commit() (height uint64, appHash []byte) {
	c.height++
	return c.height, c.appHash()
}

// Info reports the chain's current summary: chain id, height, and registry
// counts. Used by both the Info query kind and the query transport's
// liveness endpoint.
func (c *Chain) Info() (types.InfoResponse, error) {
	resp, err := c.query.info()
	if err != nil {
		return types.InfoResponse{}, err
	}
	resp.Height = c.height
	return resp, nil
}

// appHash is a pure function of height: sha256(u64_be(height)). A real
// Merkle digest over (codes, accounts, contract stores) is future work.
func (c *Chain) appHash() []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, c.height)
	h := sha256.Sum256(b)
	return h[:]
}
