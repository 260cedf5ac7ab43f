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
	"crypto/sha256"
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/envoylabs/cw-sdk/host"
	"github.com/envoylabs/cw-sdk/types"
)

// defaultModuleCacheSize bounds how many compiled modules the adapter keeps
// hot. A code blob not in cache is recompiled from its stored bytes, never
// refused.
const defaultModuleCacheSize = 64

// Adapter is the thing the state machine actually calls: it owns the
// module cache and binds a fresh host.Backend to every entry-point call, so
// package statemachine never touches Engine directly.
//
// Recycle, in the Rust original, explicitly reclaims the Backend's owned
// storage handle after a call. In Go, Storage is passed in as an interface
// value the caller already owns (normally a *substore.Store wrapping a
// shared *kvstore.Cached) — mutations land in the caller's overlay as the
// call runs, with no ownership transfer needed, so there's nothing for
// Adapter to hand back. The caller decides whether to flush or discard the
// underlying Cached once CallX returns.
type Adapter struct {
	engine Engine
	cache  *lru.Cache
}

// NewAdapter constructs an Adapter wrapping engine with a module cache of
// defaultModuleCacheSize entries.
func NewAdapter(engine Engine) (*Adapter, error) {
	return NewAdapterWithCacheSize(engine, defaultModuleCacheSize)
}

// NewAdapterWithCacheSize is NewAdapter with an explicit cache capacity.
func NewAdapterWithCacheSize(engine Engine, cacheSize int) (*Adapter, error) {
	c, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("vm: building module cache: %w", err)
	}
	return &Adapter{engine: engine, cache: c}, nil
}

// CodeHash is the cache key: a plain sha256 digest of the code's wasm
// bytes. The registry computes and stores this once per MsgStoreCode; the
// adapter recomputes it here so a caller can look up a module from bytes
// alone.
func CodeHash(code []byte) [32]byte {
	return sha256.Sum256(code)
}

func (a *Adapter) loadModule(hash [32]byte, code []byte) (Module, error) {
	if v, ok := a.cache.Get(hash); ok {
		return v.(Module), nil
	}
	module, err := a.engine.Compile(code)
	if err != nil {
		return nil, fmt.Errorf("vm: compiling code: %w", err)
	}
	a.cache.Add(hash, module)
	return module, nil
}

// CallInstantiate compiles (or reuses a cached compilation of) code and
// invokes its instantiate entry point against storage.
func (a *Adapter) CallInstantiate(code []byte, storage host.Storage, env types.Env, info types.MessageInfo, msg []byte) (types.ContractResult, error) {
	module, err := a.loadModule(CodeHash(code), code)
	if err != nil {
		return types.ContractResult{}, err
	}
	return a.engine.CallInstantiate(module, host.NewBackend(storage), env, info, msg), nil
}

// CallExecute is CallInstantiate's counterpart for the execute entry point.
func (a *Adapter) CallExecute(code []byte, storage host.Storage, env types.Env, info types.MessageInfo, msg []byte) (types.ContractResult, error) {
	module, err := a.loadModule(CodeHash(code), code)
	if err != nil {
		return types.ContractResult{}, err
	}
	return a.engine.CallExecute(module, host.NewBackend(storage), env, info, msg), nil
}

// CallSudo invokes the sudo entry point. Used for the after-transfer hook
// and any other chain-privileged dispatch; never reachable from a signed
// message directly.
func (a *Adapter) CallSudo(code []byte, storage host.Storage, env types.Env, msg []byte) (types.ContractResult, error) {
	module, err := a.loadModule(CodeHash(code), code)
	if err != nil {
		return types.ContractResult{}, err
	}
	return a.engine.CallSudo(module, host.NewBackend(storage), env, msg), nil
}

// CallQuery invokes the query entry point. The query router passes a
// substore over a throwaway Cached overlay that it never flushes, so a
// malicious or buggy contract's query-time writes never reach committed
// state.
func (a *Adapter) CallQuery(code []byte, storage host.Storage, env types.Env, msg []byte) (types.SmartQueryResult, error) {
	module, err := a.loadModule(CodeHash(code), code)
	if err != nil {
		return types.SmartQueryResult{}, err
	}
	return a.engine.CallQuery(module, host.NewBackend(storage), env, msg), nil
}
