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

package main

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/envoylabs/cw-sdk/config"
	"github.com/envoylabs/cw-sdk/kvstore"
	"github.com/envoylabs/cw-sdk/statemachine"
	"github.com/envoylabs/cw-sdk/types"
	"github.com/envoylabs/cw-sdk/vm"
)

var queryCommand = cli.Command{
	Name:  "query",
	Usage: "one-shot read-only queries against this home's database",
	Flags: []cli.Flag{homeFlag},
	Subcommands: []cli.Command{
		{Name: "info", Action: withChain(queryInfo)},
		{Name: "codes", Action: withChain(queryCodes)},
		{Name: "accounts", Action: withChain(queryAccounts)},
		{
			Name:      "wasm-raw",
			ArgsUsage: "<contract-address> <hex-key>",
			Action:    withChain(queryWasmRaw),
		},
	},
}

// withChain opens the home's database read-through a fresh Chain for the
// duration of one CLI subcommand, closing it before returning.
func withChain(fn func(*cli.Context, *statemachine.Chain) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		cfg, err := config.Load(ctx.GlobalString("home"))
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		db, err := kvstore.OpenLevelDB(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		adapter, err := vm.NewAdapter(vm.NewReferenceEngine())
		if err != nil {
			return fmt.Errorf("building vm adapter: %w", err)
		}
		chain := statemachine.NewChain(db, adapter, cfg.ChainID)
		return fn(ctx, chain)
	}
}

func queryInfo(_ *cli.Context, chain *statemachine.Chain) error {
	info, err := chain.Info()
	if err != nil {
		return err
	}
	fmt.Printf("chain_id:       %s\n", info.ChainID)
	fmt.Printf("height:         %d\n", info.Height)
	fmt.Printf("code_count:     %d\n", info.CodeCount)
	fmt.Printf("contract_count: %d\n", info.ContractCount)
	return nil
}

func queryCodes(_ *cli.Context, chain *statemachine.Chain) error {
	result, err := chain.HandleQuery(types.Query{Codes: &types.QueryCodes{}})
	if err != nil {
		return err
	}
	resp := result.(types.CodesResponse)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"code_id", "size (bytes)"})
	for _, c := range resp.Codes {
		table.Append([]string{strconv.FormatUint(c.CodeID, 10), strconv.Itoa(len(c.WasmByteCode))})
	}
	table.Render()
	return nil
}

func queryAccounts(_ *cli.Context, chain *statemachine.Chain) error {
	result, err := chain.HandleQuery(types.Query{Accounts: &types.QueryAccounts{}})
	if err != nil {
		return err
	}
	resp := result.(types.AccountsResponse)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"address", "kind", "detail"})
	for _, a := range resp.Accounts {
		kind, detail := "base", ""
		if a.Account != nil && a.Account.Contract != nil {
			kind = "contract"
			detail = fmt.Sprintf("code_id=%d label=%s", a.Account.Contract.CodeID, a.Account.Contract.Label)
		} else if a.Account != nil && a.Account.Base != nil {
			detail = fmt.Sprintf("sequence=%d", a.Account.Base.Sequence)
		}
		table.Append([]string{a.Address, kind, detail})
	}
	table.Render()
	return nil
}

func queryWasmRaw(ctx *cli.Context, chain *statemachine.Chain) error {
	args := ctx.Args()
	if len(args) != 2 {
		return fmt.Errorf("usage: chaind query wasm-raw <contract-address> <hex-key>")
	}
	key, err := hex.DecodeString(args[1])
	if err != nil {
		return fmt.Errorf("decoding hex key: %w", err)
	}

	result, err := chain.HandleQuery(types.Query{WasmRaw: &types.QueryWasmRaw{Contract: args[0], Key: key}})
	if err != nil {
		return err
	}
	resp := result.(types.WasmRawResponse)
	if resp.Value == nil {
		fmt.Println("(absent)")
		return nil
	}
	fmt.Println(base64.StdEncoding.EncodeToString(resp.Value))
	return nil
}
