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
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/envoylabs/cw-sdk/config"
	"github.com/envoylabs/cw-sdk/types"
)

var initCommand = cli.Command{
	Name:  "init",
	Usage: "write a fresh home directory: config.toml and an empty genesis",
	Flags: []cli.Flag{
		homeFlag,
		cli.StringFlag{Name: "chain-id", Value: "cw-localnet", Usage: "chain id recorded in config.toml"},
		cli.StringFlag{Name: "deployer", Usage: "bech32 address to run genesis messages as"},
	},
	Action: runInit,
}

func runInit(ctx *cli.Context) error {
	home := ctx.String("home")
	cfg := config.Default(home)
	cfg.ChainID = ctx.String("chain-id")

	if err := config.Write(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	genesis := types.GenesisState{DeployerAddress: ctx.String("deployer")}
	raw, err := json.MarshalIndent(genesis, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding genesis: %w", err)
	}
	if err := os.WriteFile(cfg.GenesisPath, raw, 0o644); err != nil {
		return fmt.Errorf("writing genesis: %w", err)
	}

	fmt.Printf("initialized chaind home at %s (chain_id=%s)\n", home, cfg.ChainID)
	return nil
}
