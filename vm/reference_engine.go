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

package vm

import (
	"fmt"
	"sync"

	"github.com/envoylabs/cw-sdk/host"
	"github.com/envoylabs/cw-sdk/types"
)

// ContractFunc is one signer-attributed entry point (instantiate/execute) of
// a registered reference contract.
type ContractFunc func(backend host.Backend, env types.Env, info types.MessageInfo, msg []byte) types.ContractResult

// SudoFunc is the sudo entry point: no MessageInfo, since sudo calls are
// chain-privileged, never attributed to a signer.
type SudoFunc func(backend host.Backend, env types.Env, msg []byte) types.ContractResult

// QueryFunc is the read-only query entry point.
type QueryFunc func(backend host.Backend, env types.Env, msg []byte) types.SmartQueryResult

// ContractDef is a reference contract: a bundle of Go closures standing in
// for a compiled wasm module's four entry points. Nil entries behave as
// "this contract does not implement this entry point" and return a
// contract-level error rather than panicking.
type ContractDef struct {
	Instantiate ContractFunc
	Execute     ContractFunc
	Sudo        SudoFunc
	Query       QueryFunc
}

// ReferenceEngine is a deterministic, in-process stand-in for a real
// sandboxed WASM engine. It never interprets bytecode: code bytes are only
// ever used as a registry lookup key, looked up against contracts
// Register'd ahead of time. This is the engine the bundled CLI and every
// statemachine test run against, analogous to go-core's core/vm/runtime
// package calling a contract's entry point directly instead of spinning up
// a full consensus node around it.
type ReferenceEngine struct {
	mu        sync.Mutex
	contracts map[string]ContractDef
}

// NewReferenceEngine constructs an empty ReferenceEngine.
func NewReferenceEngine() *ReferenceEngine {
	return &ReferenceEngine{contracts: make(map[string]ContractDef)}
}

// Register associates code with def. MsgStoreCode payloads using exactly
// these bytes will compile to def.
func (r *ReferenceEngine) Register(code []byte, def ContractDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contracts[string(code)] = def
}

// Compile implements Engine.
func (r *ReferenceEngine) Compile(code []byte) (Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	def, ok := r.contracts[string(code)]
	if !ok {
		return nil, fmt.Errorf("vm: no reference contract registered for this code")
	}
	return def, nil
}

// CallInstantiate implements Engine.
func (r *ReferenceEngine) CallInstantiate(module Module, backend host.Backend, env types.Env, info types.MessageInfo, msg []byte) types.ContractResult {
	def := module.(ContractDef)
	if def.Instantiate == nil {
		return types.ErrResult("reference contract has no instantiate entry point")
	}
	return def.Instantiate(backend, env, info, msg)
}

// CallExecute implements Engine.
func (r *ReferenceEngine) CallExecute(module Module, backend host.Backend, env types.Env, info types.MessageInfo, msg []byte) types.ContractResult {
	def := module.(ContractDef)
	if def.Execute == nil {
		return types.ErrResult("reference contract has no execute entry point")
	}
	return def.Execute(backend, env, info, msg)
}

// CallSudo implements Engine.
func (r *ReferenceEngine) CallSudo(module Module, backend host.Backend, env types.Env, msg []byte) types.ContractResult {
	def := module.(ContractDef)
	if def.Sudo == nil {
		return types.ErrResult("reference contract has no sudo entry point")
	}
	return def.Sudo(backend, env, msg)
}

// CallQuery implements Engine.
func (r *ReferenceEngine) CallQuery(module Module, backend host.Backend, env types.Env, msg []byte) types.SmartQueryResult {
	def := module.(ContractDef)
	if def.Query == nil {
		return types.SmartQueryResult{Err: "reference contract has no query entry point"}
	}
	return def.Query(backend, env, msg)
}
