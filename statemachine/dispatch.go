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
	"encoding/hex"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/envoylabs/cw-sdk/address"
	"github.com/envoylabs/cw-sdk/chainerr"
	"github.com/envoylabs/cw-sdk/kvstore"
	"github.com/envoylabs/cw-sdk/log"
	"github.com/envoylabs/cw-sdk/substore"
	"github.com/envoylabs/cw-sdk/types"
	"github.com/envoylabs/cw-sdk/vm"
)

// bankLabel is the reserved label that derives the well-known bank
// contract's address. Any contract instantiated with this label takes on
// bank delegation duties; nothing else distinguishes it in the registry.
const bankLabel = "bank"

// Dispatcher executes one decoded message against a per-message overlay.
// It owns no state of its own beyond the VM adapter; the overlay is always
// supplied by the caller (see Chain.HandleTx), which also owns the
// flush-on-success / discard-on-error decision — Dispatch only ever
// returns events or an error.
type Dispatcher struct {
	adapter *vm.Adapter
}

// NewDispatcher constructs a Dispatcher calling into adapter for every VM
// entry point.
func NewDispatcher(adapter *vm.Adapter) *Dispatcher {
	return &Dispatcher{adapter: adapter}
}

// Dispatch executes msg against overlay and returns the events it produced.
// A non-nil error means overlay must be discarded by the caller; overlay is
// otherwise left with msg's pending writes, ready to be flushed.
func (d *Dispatcher) Dispatch(overlay *kvstore.Cached, block types.BlockInfo, sender string, msg types.Msg) ([]types.Event, error) {
	switch {
	case msg.StoreCode != nil:
		return d.storeCode(overlay, sender, msg.StoreCode)
	case msg.Instantiate != nil:
		return d.instantiate(overlay, block, sender, msg.Instantiate)
	case msg.Execute != nil:
		return d.execute(overlay, block, sender, msg.Execute)
	case msg.Migrate != nil:
		return nil, chainerr.ErrMigrationUnsupported
	default:
		return nil, chainerr.Serde(fmt.Errorf("message envelope has no recognized variant set"))
	}
}

func (d *Dispatcher) storeCode(overlay *kvstore.Cached, sender string, m *types.MsgStoreCode) ([]types.Event, error) {
	codeID := NextCodeID(overlay)
	hash := sha256.Sum256(m.WasmByteCode)

	code := types.Code{CodeID: codeID, WasmByteCode: m.WasmByteCode, Hash: hash[:]}
	if err := SaveCode(overlay, code); err != nil {
		return nil, err
	}

	codeHash := hex.EncodeToString(hash[:])
	log.Info("stored code", "id", codeID, "hash", codeHash)

	event := types.NewEvent("store_code").
		WithAttr("sender", sender).
		WithAttr("code_id", strconv.FormatUint(codeID, 10)).
		WithAttr("code_hash", codeHash)
	return []types.Event{event}, nil
}

func (d *Dispatcher) instantiate(overlay *kvstore.Cached, block types.BlockInfo, sender string, m *types.MsgInstantiate) ([]types.Event, error) {
	if !address.ValidateLabel(m.Label) {
		return nil, chainerr.ErrIllegalLabel
	}
	contractAddr, err := address.DeriveFromLabel(m.Label)
	if err != nil {
		return nil, fmt.Errorf("deriving contract address: %w", err)
	}

	var fundEvents []types.Event
	if len(m.Funds) > 0 {
		fundEvents, err = d.transferFunds(overlay, block, sender, contractAddr, m.Funds)
		if err != nil {
			return nil, err
		}
	}

	code, found, err := LoadCode(overlay, m.CodeID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, chainerr.CodeNotFound(m.CodeID)
	}

	addrBytes, err := address.Decode(contractAddr)
	if err != nil {
		return nil, fmt.Errorf("decoding derived contract address: %w", err)
	}
	env := types.Env{Block: block, Contract: types.ContractInfo{Address: contractAddr}}
	info := types.MessageInfo{Sender: sender, Funds: m.Funds}
	sub := substore.New(overlay, addrBytes)

	result, err := d.adapter.CallInstantiate(code.WasmByteCode, sub, env, info, m.Msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", chainerr.ErrVm, err)
	}
	if !result.IsOk() {
		log.Debug("failed to instantiate contract", "code_id", m.CodeID, "label", m.Label, "reason", result.Err)
		return nil, chainerr.NewContractError(result.Err)
	}
	if len(result.Ok.Messages) > 0 {
		return nil, chainerr.ErrSubmessagesUnsupported
	}

	exists, err := AccountExists(overlay, contractAddr)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, chainerr.AccountFound(contractAddr)
	}
	acct := types.Account{Contract: &types.ContractAccount{
		CodeID:            m.CodeID,
		Label:             m.Label,
		Admin:             m.Admin,
		AfterTransferHook: m.AfterTransferHook,
	}}
	if err := SaveAccount(overlay, contractAddr, acct); err != nil {
		return nil, err
	}

	log.Info("instantiated contract", "address", contractAddr, "code_id", m.CodeID, "label", m.Label)

	primary := types.NewEvent("instantiate_contract").
		WithAttr("sender", sender).
		WithAttr("code_id", strconv.FormatUint(m.CodeID, 10)).
		WithAttr("contract_address", contractAddr)
	return buildEvents(fundEvents, primary, result.Ok), nil
}

func (d *Dispatcher) execute(overlay *kvstore.Cached, block types.BlockInfo, sender string, m *types.MsgExecute) ([]types.Event, error) {
	var fundEvents []types.Event
	var err error
	if len(m.Funds) > 0 {
		fundEvents, err = d.transferFunds(overlay, block, sender, m.Contract, m.Funds)
		if err != nil {
			return nil, err
		}
	}

	code, err := CodeByContractAddress(overlay, m.Contract)
	if err != nil {
		return nil, err
	}

	addrBytes, err := address.Decode(m.Contract)
	if err != nil {
		return nil, fmt.Errorf("decoding contract address: %w", err)
	}
	env := types.Env{Block: block, Contract: types.ContractInfo{Address: m.Contract}}
	info := types.MessageInfo{Sender: sender, Funds: m.Funds}
	sub := substore.New(overlay, addrBytes)

	result, err := d.adapter.CallExecute(code.WasmByteCode, sub, env, info, m.Msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", chainerr.ErrVm, err)
	}
	if !result.IsOk() {
		log.Debug("failed to execute contract", "address", m.Contract, "sender", sender, "reason", result.Err)
		return nil, chainerr.NewContractError(result.Err)
	}
	if len(result.Ok.Messages) > 0 {
		return nil, chainerr.ErrSubmessagesUnsupported
	}

	log.Info("executed contract", "address", m.Contract, "sender", sender)

	primary := types.NewEvent("execute_contract").
		WithAttr("sender", sender).
		WithAttr("contract_address", m.Contract)
	return buildEvents(fundEvents, primary, result.Ok), nil
}

// buildEvents assembles a message's final event list: fund-transfer events
// first, then the primary event (with the response's own attributes
// folded in), then the response's own events — the order invariant 6
// requires.
func buildEvents(fundEvents []types.Event, primary types.Event, resp *types.Response) []types.Event {
	primary.Attributes = append(primary.Attributes, resp.Attributes...)

	events := make([]types.Event, 0, len(fundEvents)+1+len(resp.Events))
	events = append(events, fundEvents...)
	events = append(events, primary)
	events = append(events, resp.Events...)
	return events
}

// transferFunds delegates a fund movement to the bank contract via a sudo
// call, then dispatches the after-transfer hook (§3.1 of the expanded
// design) to whichever of sender/recipient are contract accounts that
// opted into the hook. A bank-side failure, or an after-transfer hook failure,
// surfaces as FundTransferFailed.
func (d *Dispatcher) transferFunds(overlay *kvstore.Cached, block types.BlockInfo, sender, recipient string, coins []types.Coin) ([]types.Event, error) {
	bankAddr, err := address.DeriveFromLabel(bankLabel)
	if err != nil {
		return nil, fmt.Errorf("deriving bank address: %w", err)
	}

	code, err := CodeByContractAddress(overlay, bankAddr)
	if err != nil {
		return nil, chainerr.FundTransferFailed(err.Error())
	}

	bankAddrBytes, err := address.Decode(bankAddr)
	if err != nil {
		return nil, fmt.Errorf("decoding bank address: %w", err)
	}

	msg, err := json.Marshal(types.BankSudoMsg{Transfer: &types.BankTransfer{From: sender, To: recipient, Coins: coins}})
	if err != nil {
		return nil, chainerr.Serde(err)
	}

	sudoEnv := types.Env{Block: block, Contract: types.ContractInfo{Address: bankAddr}}
	sub := substore.New(overlay, bankAddrBytes)

	result, err := d.adapter.CallSudo(code.WasmByteCode, sub, sudoEnv, msg)
	if err != nil {
		return nil, chainerr.FundTransferFailed(err.Error())
	}
	if !result.IsOk() {
		return nil, chainerr.FundTransferFailed(result.Err)
	}
	if len(result.Ok.Messages) > 0 {
		return nil, chainerr.ErrSubmessagesUnsupported
	}

	hookEvents, err := d.afterTransferHook(overlay, block, sender, recipient, coins)
	if err != nil {
		return nil, err
	}

	events := make([]types.Event, 0, len(result.Ok.Events)+len(hookEvents))
	events = append(events, result.Ok.Events...)
	events = append(events, hookEvents...)
	return events, nil
}

// afterTransferHook notifies every transfer party (sender, recipient, or
// both) that declared the hook at instantiate time, with one sudo
// AfterTransfer call per coin moved. Base accounts, unrelated contracts,
// and contracts that never opted in are never notified.
func (d *Dispatcher) afterTransferHook(overlay *kvstore.Cached, block types.BlockInfo, from, to string, coins []types.Coin) ([]types.Event, error) {
	var events []types.Event
	for _, party := range []string{from, to} {
		wantsHook, err := HasAfterTransferHook(overlay, party)
		if err != nil {
			return nil, err
		}
		if !wantsHook {
			continue
		}
		for _, coin := range coins {
			partyEvents, err := d.sudoAfterTransfer(overlay, block, party, from, to, coin)
			if err != nil {
				return nil, chainerr.FundTransferFailed(err.Error())
			}
			events = append(events, partyEvents...)
		}
	}
	return events, nil
}

func (d *Dispatcher) sudoAfterTransfer(overlay *kvstore.Cached, block types.BlockInfo, target, from, to string, coin types.Coin) ([]types.Event, error) {
	code, err := CodeByContractAddress(overlay, target)
	if err != nil {
		return nil, err
	}
	addrBytes, err := address.Decode(target)
	if err != nil {
		return nil, fmt.Errorf("decoding hook target address: %w", err)
	}
	msg, err := json.Marshal(types.BankSudoMsg{AfterTransfer: &types.BankAfterTransfer{From: from, To: to, Denom: coin.Denom, Amount: coin.Amount}})
	if err != nil {
		return nil, chainerr.Serde(err)
	}

	env := types.Env{Block: block, Contract: types.ContractInfo{Address: target}}
	sub := substore.New(overlay, addrBytes)

	result, err := d.adapter.CallSudo(code.WasmByteCode, sub, env, msg)
	if err != nil {
		return nil, err
	}
	if !result.IsOk() {
		return nil, fmt.Errorf("after_transfer hook: %s", result.Err)
	}
	if len(result.Ok.Messages) > 0 {
		return nil, chainerr.ErrSubmessagesUnsupported
	}
	return result.Ok.Events, nil
}
