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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/envoylabs/cw-sdk/host"
	"github.com/envoylabs/cw-sdk/kvstore"
	"github.com/envoylabs/cw-sdk/types"
)

func backendOverMemory() host.Backend {
	return host.NewBackend(kvstore.NewCached(kvstore.NewMemory()))
}

func TestReferenceEngineCompileUnregisteredFails(t *testing.T) {
	engine := NewReferenceEngine()
	_, err := engine.Compile([]byte("never registered"))
	if err == nil {
		t.Fatal("expected an error compiling unregistered code")
	}
}

func TestReferenceEngineCallInstantiate(t *testing.T) {
	engine := NewReferenceEngine()
	code := []byte("counter-contract")
	engine.Register(code, ContractDef{
		Instantiate: func(backend host.Backend, env types.Env, info types.MessageInfo, msg []byte) types.ContractResult {
			backend.Storage.Set([]byte("count"), []byte("0"))
			return types.OkResult(types.Response{
				Attributes: []types.Attribute{{Key: "action", Value: "instantiate"}},
			})
		},
	})

	module, err := engine.Compile(code)
	require.NoError(t, err)

	backend := backendOverMemory()
	result := engine.CallInstantiate(module, backend, types.Env{}, types.MessageInfo{Sender: "cw1sender"}, []byte("{}"))
	require.True(t, result.IsOk())
	require.Equal(t, "instantiate", result.Ok.Attributes[0].Value)

	v, ok := backend.Storage.Get([]byte("count"))
	require.True(t, ok)
	require.Equal(t, []byte("0"), v)
}

func TestReferenceEngineNilEntryPointsReturnErrorNotPanic(t *testing.T) {
	engine := NewReferenceEngine()
	code := []byte("instantiate-only")
	engine.Register(code, ContractDef{
		Instantiate: func(host.Backend, types.Env, types.MessageInfo, []byte) types.ContractResult {
			return types.OkResult(types.Response{})
		},
	})
	module, err := engine.Compile(code)
	require.NoError(t, err)

	backend := backendOverMemory()

	execResult := engine.CallExecute(module, backend, types.Env{}, types.MessageInfo{}, nil)
	if execResult.IsOk() {
		t.Error("execute on an instantiate-only contract should fail, not succeed")
	}

	sudoResult := engine.CallSudo(module, backend, types.Env{}, nil)
	if sudoResult.IsOk() {
		t.Error("sudo on an instantiate-only contract should fail, not succeed")
	}

	queryResult := engine.CallQuery(module, backend, types.Env{}, nil)
	if queryResult.Err == "" {
		t.Error("query on an instantiate-only contract should return an Err, not Ok")
	}
}

func TestAdapterModuleCacheDoesNotSkipCalls(t *testing.T) {
	engine := NewReferenceEngine()
	code := []byte("cached-contract")
	calls := 0
	engine.Register(code, ContractDef{
		Execute: func(backend host.Backend, env types.Env, info types.MessageInfo, msg []byte) types.ContractResult {
			calls++
			return types.OkResult(types.Response{})
		},
	})

	adapter, err := NewAdapter(engine)
	require.NoError(t, err)

	storage := kvstore.NewCached(kvstore.NewMemory())
	for i := 0; i < 3; i++ {
		_, err := adapter.CallExecute(code, storage, types.Env{}, types.MessageInfo{}, nil)
		require.NoError(t, err)
	}
	require.Equal(t, 3, calls, "module caching must not change how many times execute runs")
}

func TestAdapterUnregisteredCodeErrors(t *testing.T) {
	adapter, err := NewAdapter(NewReferenceEngine())
	require.NoError(t, err)

	storage := kvstore.NewCached(kvstore.NewMemory())
	_, err = adapter.CallExecute([]byte("nope"), storage, types.Env{}, types.MessageInfo{}, nil)
	if err == nil {
		t.Fatal("expected an error calling execute on unregistered code")
	}
}
