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

// Package vm specifies the VM Adapter: the boundary between the state
// machine and the (out-of-scope) sandboxed WASM engine. Engine is the
// contract a real engine must satisfy; Adapter is the thing the state
// machine actually calls, adding artifact caching and backend binding on
// top of whatever Engine it's given.
package vm

import (
	"github.com/envoylabs/cw-sdk/host"
	"github.com/envoylabs/cw-sdk/types"
)

// Module is an opaque, engine-specific handle to a loaded/compiled code
// blob. The adapter never inspects it; only the Engine that produced it
// does.
type Module interface{}

// Engine is the host ABI contract a WASM runtime must implement: compile a
// code blob once, then dispatch any number of entry-point calls against the
// compiled Module. This core never implements Engine with a real sandbox —
// see ReferenceEngine for the in-process stand-in used by tests and the
// bundled CLI.
//
// Determinism requirement: given identical (module, backend-initial-state,
// env, info, msg), CallInstantiate/CallExecute/CallSudo/CallQuery must
// return a byte-equal ContractResult and leave byte-equal post-call
// substore contents. Nondeterministic host operations are forbidden.
type Engine interface {
	// Compile loads code into an engine-specific Module. May fail if the
	// bytes are not a module that this engine can load.
	Compile(code []byte) (Module, error)

	CallInstantiate(module Module, backend host.Backend, env types.Env, info types.MessageInfo, msg []byte) types.ContractResult
	CallExecute(module Module, backend host.Backend, env types.Env, info types.MessageInfo, msg []byte) types.ContractResult
	CallSudo(module Module, backend host.Backend, env types.Env, msg []byte) types.ContractResult
	CallQuery(module Module, backend host.Backend, env types.Env, msg []byte) types.SmartQueryResult
}
