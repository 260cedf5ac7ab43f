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
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/envoylabs/cw-sdk/address"
	"github.com/envoylabs/cw-sdk/host"
	"github.com/envoylabs/cw-sdk/kvstore"
	"github.com/envoylabs/cw-sdk/types"
	"github.com/envoylabs/cw-sdk/vm"
)

const testChainID = "cw-test"

// deployer is a fixed bech32 address used as the sender of genesis messages
// and, where a test needs a signing account, the first transaction sender.
var deployer = mustEncode(1)

func mustEncode(fill byte) string {
	raw := make([]byte, 20)
	for i := range raw {
		raw[i] = fill
	}
	addr, err := address.Encode(raw)
	if err != nil {
		panic(err)
	}
	return addr
}

// echoContract is a minimal reference contract: instantiate and execute
// both succeed unconditionally; instantiate stores an "instantiated" marker
// and execute stores the last message it received, so tests can assert
// dispatch actually reached the VM.
func echoContract() vm.ContractDef {
	return vm.ContractDef{
		Instantiate: func(backend host.Backend, env types.Env, info types.MessageInfo, msg []byte) types.ContractResult {
			backend.Storage.Set([]byte("instantiated"), []byte("1"))
			return types.OkResult(types.Response{})
		},
		Execute: func(backend host.Backend, env types.Env, info types.MessageInfo, msg []byte) types.ContractResult {
			backend.Storage.Set([]byte("last_msg"), msg)
			return types.OkResult(types.Response{
				Attributes: []types.Attribute{{Key: "action", Value: "echo"}},
			})
		},
		Sudo: func(backend host.Backend, env types.Env, msg []byte) types.ContractResult {
			return types.OkResult(types.Response{})
		},
	}
}

// echoContractWithoutSudo is echoContract minus the Sudo entry point, used to
// prove that a funded Execute against a contract that never declared the
// after-transfer hook does not require one.
func echoContractWithoutSudo() vm.ContractDef {
	return vm.ContractDef{
		Instantiate: func(backend host.Backend, env types.Env, info types.MessageInfo, msg []byte) types.ContractResult {
			return types.OkResult(types.Response{})
		},
		Execute: func(backend host.Backend, env types.Env, info types.MessageInfo, msg []byte) types.ContractResult {
			return types.OkResult(types.Response{})
		},
	}
}

// failingContract always returns a contract-level error from execute,
// useful for asserting that a failed VM call leaves state untouched.
func failingContract() vm.ContractDef {
	return vm.ContractDef{
		Instantiate: func(backend host.Backend, env types.Env, info types.MessageInfo, msg []byte) types.ContractResult {
			return types.OkResult(types.Response{})
		},
		Execute: func(backend host.Backend, env types.Env, info types.MessageInfo, msg []byte) types.ContractResult {
			return types.ErrResult("deliberate failure")
		},
	}
}

// bankContract answers Transfer sudo calls with a "transfer" event and
// records AfterTransfer calls in hookCalls; it keeps no balances in storage.
// That is enough to exercise the fund-transfer and after-transfer-hook paths
// end to end.
func bankContract(hookCalls *[]string) vm.ContractDef {
	return vm.ContractDef{
		Instantiate: func(backend host.Backend, env types.Env, info types.MessageInfo, msg []byte) types.ContractResult {
			return types.OkResult(types.Response{})
		},
		Sudo: func(backend host.Backend, env types.Env, msg []byte) types.ContractResult {
			var sudo types.BankSudoMsg
			if err := json.Unmarshal(msg, &sudo); err != nil {
				return types.ErrResult(err.Error())
			}
			if sudo.Transfer != nil {
				return types.OkResult(types.Response{
					Events: []types.Event{
						types.NewEvent("transfer").
							WithAttr("from", sudo.Transfer.From).
							WithAttr("to", sudo.Transfer.To),
					},
				})
			}
			if sudo.AfterTransfer != nil {
				*hookCalls = append(*hookCalls, env.Contract.Address+":"+sudo.AfterTransfer.Denom)
				return types.OkResult(types.Response{})
			}
			return types.ErrResult("unrecognized bank sudo message")
		},
	}
}

type testHarness struct {
	chain   *Chain
	db      kvstore.KVStore
	engine  *vm.ReferenceEngine
	adapter *vm.Adapter
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	engine := vm.NewReferenceEngine()
	adapter, err := vm.NewAdapter(engine)
	require.NoError(t, err)
	db := kvstore.NewMemory()
	chain := NewChain(db, adapter, testChainID, WithClock(func() int64 { return 1000 }))
	return &testHarness{chain: chain, db: db, engine: engine, adapter: adapter}
}

func storeCodeMsg(code []byte) types.Msg {
	return types.Msg{StoreCode: &types.MsgStoreCode{WasmByteCode: code}}
}

func instantiateMsg(codeID uint64, label string, funds []types.Coin) types.Msg {
	return types.Msg{Instantiate: &types.MsgInstantiate{CodeID: codeID, Label: label, Msg: []byte("{}"), Funds: funds}}
}

func instantiateMsgWithHook(codeID uint64, label string, funds []types.Coin) types.Msg {
	return types.Msg{Instantiate: &types.MsgInstantiate{
		CodeID: codeID, Label: label, Msg: []byte("{}"), Funds: funds, AfterTransferHook: true,
	}}
}

func executeMsg(contract string, payload []byte, funds []types.Coin) types.Msg {
	return types.Msg{Execute: &types.MsgExecute{Contract: contract, Msg: payload, Funds: funds}}
}

func genesis(msgs ...types.Msg) []byte {
	raw, err := json.Marshal(types.GenesisState{DeployerAddress: deployer, GenMsgs: msgs})
	if err != nil {
		panic(err)
	}
	return raw
}

// TestInitChainStoreCodeAndInstantiate covers scenario 1 (StoreCode
// sequencing via genesis) and the first half of scenario 2 (Instantiate
// registers the well-known bank contract at its label-derived address).
func TestInitChainStoreCodeAndInstantiate(t *testing.T) {
	h := newHarness(t)
	bankCode := []byte("bank-code")
	h.engine.Register(bankCode, bankContract(&[]string{}))

	appHash, err := h.chain.InitChain(genesis(
		storeCodeMsg(bankCode),
		instantiateMsg(1, bankLabel, nil),
	))
	require.NoError(t, err)
	require.NotEmpty(t, appHash)

	require.Equal(t, uint64(1), CodeCount(h.db))

	bankAddr, err := address.DeriveFromLabel(bankLabel)
	require.NoError(t, err)
	exists, err := AccountExists(h.db, bankAddr)
	require.NoError(t, err)
	require.True(t, exists, "bank contract must be registered after instantiate")
}

// TestInstantiateAccountFoundOnCollision covers the second half of scenario
// 2: instantiating the same label twice must fail with AccountFound and
// must not silently overwrite the existing account.
func TestInstantiateAccountFoundOnCollision(t *testing.T) {
	h := newHarness(t)
	code := []byte("some-contract")
	h.engine.Register(code, echoContract())

	_, err := h.chain.InitChain(genesis(
		storeCodeMsg(code),
		instantiateMsg(1, "widget", nil),
	))
	require.NoError(t, err)

	// A second instantiate under the same label, run as a fresh tx after
	// genesis, must fail without mutating the registry.
	tx := types.Tx{Body: types.TxBody{
		Sender: deployer, ChainID: testChainID, Sequence: 0,
		Msgs: []types.Msg{instantiateMsg(1, "widget", nil)},
	}}
	_, err = h.chain.HandleTx(tx)
	if err == nil {
		t.Fatal("expected AccountFound instantiating the same label twice")
	}

	addr, err := address.DeriveFromLabel("widget")
	require.NoError(t, err)
	acct, found, err := LoadAccount(h.db, addr)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(1), acct.Contract.CodeID)
}

// TestInstantiateIllegalLabelRejected covers scenario 3: a label colliding
// with the reserved address prefix is rejected, and neither code_count nor
// the account registry changes as a result.
func TestInstantiateIllegalLabelRejected(t *testing.T) {
	h := newHarness(t)
	code := []byte("some-contract")
	h.engine.Register(code, echoContract())

	_, err := h.chain.InitChain(genesis(storeCodeMsg(code)))
	require.NoError(t, err)

	// Authentication creates the sender's base account before any message
	// runs, whatever the messages' outcome, so register the sender first and
	// take the snapshot once that account exists.
	_, err = h.chain.HandleTx(types.Tx{Body: types.TxBody{Sender: deployer, ChainID: testChainID, Sequence: 0}})
	require.NoError(t, err)

	accountsBefore, err := ListAccounts(h.db, nil, 0)
	require.NoError(t, err)
	codeCountBefore := CodeCount(h.db)

	tx := types.Tx{Body: types.TxBody{
		Sender: deployer, ChainID: testChainID, Sequence: 1,
		Msgs: []types.Msg{instantiateMsg(1, address.IllegalLabelPrefix()+"evil", nil)},
	}}
	_, err = h.chain.HandleTx(tx)
	if err == nil {
		t.Fatal("expected illegal label to be rejected")
	}

	accountsAfter, err := ListAccounts(h.db, nil, 0)
	require.NoError(t, err)
	require.Equal(t, len(accountsBefore), len(accountsAfter))
	require.Equal(t, codeCountBefore, CodeCount(h.db))
}

// TestExecuteContractErrorLeavesWasmRawUnchanged covers scenario 4: a
// contract execute call that fails leaves previously-written storage exactly
// as it was, since the per-message overlay is discarded rather than flushed.
func TestExecuteContractErrorLeavesWasmRawUnchanged(t *testing.T) {
	h := newHarness(t)
	code := []byte("flaky-contract")
	h.engine.Register(code, failingContract())

	_, err := h.chain.InitChain(genesis(
		storeCodeMsg(code),
		instantiateMsg(1, "flaky", nil),
	))
	require.NoError(t, err)

	addr, err := address.DeriveFromLabel("flaky")
	require.NoError(t, err)

	before, err := h.chain.HandleQuery(types.Query{WasmRaw: &types.QueryWasmRaw{Contract: addr, Key: []byte("anything")}})
	require.NoError(t, err)

	tx := types.Tx{Body: types.TxBody{
		Sender: deployer, ChainID: testChainID, Sequence: 0,
		Msgs: []types.Msg{executeMsg(addr, []byte("{}"), nil)},
	}}
	_, err = h.chain.HandleTx(tx)
	if err == nil {
		t.Fatal("expected execute to fail")
	}

	after, err := h.chain.HandleQuery(types.Query{WasmRaw: &types.QueryWasmRaw{Contract: addr, Key: []byte("anything")}})
	require.NoError(t, err)
	require.Equal(t, before, after)
}

// TestCommitAdvancesHeightAndChangesAppHash covers scenario 5: two Commits
// on an otherwise-idle chain produce strictly increasing heights and
// distinct app hashes.
func TestCommitAdvancesHeightAndChangesAppHash(t *testing.T) {
	h := newHarness(t)

	height1, hash1 := h.chain.Commit()
	height2, hash2 := h.chain.Commit()

	require.Equal(t, uint64(1), height1)
	require.Equal(t, uint64(2), height2)
	if string(hash1) == string(hash2) {
		t.Error("app hash must differ across distinct heights")
	}
}

// TestMigrateAlwaysRejected covers scenario 6: migrate is always rejected,
// regardless of contract or sender, and dispatch never reaches the VM.
func TestMigrateAlwaysRejected(t *testing.T) {
	h := newHarness(t)
	code := []byte("some-contract")
	h.engine.Register(code, echoContract())

	_, err := h.chain.InitChain(genesis(
		storeCodeMsg(code),
		instantiateMsg(1, "widget", nil),
	))
	require.NoError(t, err)

	addr, err := address.DeriveFromLabel("widget")
	require.NoError(t, err)

	tx := types.Tx{Body: types.TxBody{
		Sender: deployer, ChainID: testChainID, Sequence: 0,
		Msgs: []types.Msg{{Migrate: &types.MsgMigrate{Contract: addr, CodeID: 1, Msg: []byte("{}")}}},
	}}
	_, err = h.chain.HandleTx(tx)
	if err == nil {
		t.Fatal("expected migrate to always fail")
	}
}

// TestEventOrderingFundsThenPrimaryThenResponseEvents covers invariant 6:
// fund-transfer events precede the primary execute_contract event, which
// itself precedes the contract response's own events, and the primary
// event's attributes include both the chain-assigned ones and the
// contract's own.
func TestEventOrderingFundsThenPrimaryThenResponseEvents(t *testing.T) {
	h := newHarness(t)
	bankCode := []byte("bank-code")
	var hookCalls []string
	h.engine.Register(bankCode, bankContract(&hookCalls))

	payingCode := []byte("paying-contract")
	h.engine.Register(payingCode, vm.ContractDef{
		Instantiate: func(host.Backend, types.Env, types.MessageInfo, []byte) types.ContractResult {
			return types.OkResult(types.Response{})
		},
		Execute: func(backend host.Backend, env types.Env, info types.MessageInfo, msg []byte) types.ContractResult {
			return types.OkResult(types.Response{
				Attributes: []types.Attribute{{Key: "custom", Value: "yes"}},
				Events:     []types.Event{types.NewEvent("widget_used")},
			})
		},
	})

	_, err := h.chain.InitChain(genesis(
		storeCodeMsg(bankCode),
		instantiateMsg(1, bankLabel, nil),
		storeCodeMsg(payingCode),
		instantiateMsg(2, "payee", nil),
	))
	require.NoError(t, err)

	payeeAddr, err := address.DeriveFromLabel("payee")
	require.NoError(t, err)

	tx := types.Tx{Body: types.TxBody{
		Sender: deployer, ChainID: testChainID, Sequence: 0,
		Msgs: []types.Msg{executeMsg(payeeAddr, []byte("{}"), []types.Coin{{Denom: "ucoin", Amount: "5"}})},
	}}
	events, err := h.chain.HandleTx(tx)
	require.NoError(t, err)

	require.Len(t, events, 3)
	require.Equal(t, "transfer", events[0].Type)
	require.Equal(t, "execute_contract", events[1].Type)
	require.Equal(t, "widget_used", events[2].Type)

	var sawCustom bool
	for _, attr := range events[1].Attributes {
		if attr.Key == "custom" && attr.Value == "yes" {
			sawCustom = true
		}
	}
	require.True(t, sawCustom, "primary event must fold in the contract response's own attributes")
	require.Empty(t, hookCalls, "a contract that never declared the hook must not receive it")
}

// TestFundedExecuteWithoutHookOptInNeedsNoSudoEntryPoint guards against a
// funded Execute unconditionally requiring its target to implement Sudo: a
// contract that never declared AfterTransferHook must receive funds and run
// its own Execute entry point without the state machine ever attempting a
// sudo call against it.
func TestFundedExecuteWithoutHookOptInNeedsNoSudoEntryPoint(t *testing.T) {
	h := newHarness(t)
	bankCode := []byte("bank-code")
	h.engine.Register(bankCode, bankContract(&[]string{}))

	// No Sudo entry point registered at all: a sudo call against this
	// contract would fail outright.
	plainCode := []byte("plain-contract")
	h.engine.Register(plainCode, echoContractWithoutSudo())

	_, err := h.chain.InitChain(genesis(
		storeCodeMsg(bankCode),
		instantiateMsg(1, bankLabel, nil),
		storeCodeMsg(plainCode),
		instantiateMsg(2, "plain", nil),
	))
	require.NoError(t, err)

	plainAddr, err := address.DeriveFromLabel("plain")
	require.NoError(t, err)

	tx := types.Tx{Body: types.TxBody{
		Sender: deployer, ChainID: testChainID, Sequence: 0,
		Msgs: []types.Msg{executeMsg(plainAddr, []byte("{}"), []types.Coin{{Denom: "ucoin", Amount: "5"}})},
	}}
	_, err = h.chain.HandleTx(tx)
	require.NoError(t, err)
}

// TestAfterTransferHookNotifiesContractParties exercises the supplemental
// after-transfer hook: the recipient, having opted in at instantiate time,
// receives one sudo AfterTransfer call for the single coin moved.
func TestAfterTransferHookNotifiesContractParties(t *testing.T) {
	h := newHarness(t)
	bankCode := []byte("bank-code")
	var hookCalls []string
	h.engine.Register(bankCode, bankContract(&hookCalls))

	recipientCode := []byte("recipient-contract")
	h.engine.Register(recipientCode, vm.ContractDef{
		Instantiate: func(host.Backend, types.Env, types.MessageInfo, []byte) types.ContractResult {
			return types.OkResult(types.Response{})
		},
		Execute: func(host.Backend, types.Env, types.MessageInfo, []byte) types.ContractResult {
			return types.OkResult(types.Response{})
		},
		Sudo: func(backend host.Backend, env types.Env, msg []byte) types.ContractResult {
			var sudo types.BankSudoMsg
			if err := json.Unmarshal(msg, &sudo); err != nil {
				return types.ErrResult(err.Error())
			}
			if sudo.AfterTransfer != nil {
				hookCalls = append(hookCalls, env.Contract.Address+":"+sudo.AfterTransfer.Denom)
			}
			return types.OkResult(types.Response{})
		},
	})

	_, err := h.chain.InitChain(genesis(
		storeCodeMsg(bankCode),
		instantiateMsg(1, bankLabel, nil),
		storeCodeMsg(recipientCode),
		instantiateMsgWithHook(2, "recipient", nil),
	))
	require.NoError(t, err)

	recipientAddr, err := address.DeriveFromLabel("recipient")
	require.NoError(t, err)

	// recipient is already a registered contract account; executing against
	// it with attached funds routes the transfer through the bank contract
	// and then fires the after-transfer hook back at recipient itself.
	tx := types.Tx{Body: types.TxBody{
		Sender: deployer, ChainID: testChainID, Sequence: 0,
		Msgs: []types.Msg{executeMsg(recipientAddr, []byte("{}"), []types.Coin{{Denom: "ucoin", Amount: "1"}})},
	}}
	_, err = h.chain.HandleTx(tx)
	require.NoError(t, err)

	require.NotEmpty(t, hookCalls)
}

// TestSequenceAuthenticatorRejectsReplay exercises the authenticator in
// isolation: a stale sequence number must be rejected even though the
// chain id matches.
func TestSequenceAuthenticatorRejectsReplay(t *testing.T) {
	h := newHarness(t)
	tx := types.Tx{Body: types.TxBody{Sender: deployer, ChainID: testChainID, Sequence: 0}}
	_, err := h.chain.HandleTx(tx)
	require.NoError(t, err)

	// Replaying sequence 0 again must fail: the account is now at sequence 1.
	_, err = h.chain.HandleTx(tx)
	if err == nil {
		t.Fatal("expected replayed sequence number to be rejected")
	}
}

func TestSequenceAuthenticatorRejectsWrongChainID(t *testing.T) {
	h := newHarness(t)
	tx := types.Tx{Body: types.TxBody{Sender: deployer, ChainID: "wrong-chain", Sequence: 0}}
	_, err := h.chain.HandleTx(tx)
	if err == nil {
		t.Fatal("expected mismatched chain id to be rejected")
	}
}
