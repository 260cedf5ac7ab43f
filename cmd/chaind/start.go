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
	"net/http"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/envoylabs/cw-sdk/config"
	"github.com/envoylabs/cw-sdk/kvstore"
	"github.com/envoylabs/cw-sdk/log"
	"github.com/envoylabs/cw-sdk/queryhttp"
	"github.com/envoylabs/cw-sdk/statemachine"
	"github.com/envoylabs/cw-sdk/vm"
)

// genesisAppliedKey marks that InitChain has already run against this
// database, so restarting chaind never replays genesis messages twice.
var genesisAppliedKey = []byte("chaind/genesis_applied")

var startCommand = cli.Command{
	Name:   "start",
	Usage:  "run the read-only query transport against this home's database",
	Flags:  []cli.Flag{homeFlag},
	Action: runStart,
}

func runStart(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.String("home"))
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

	if _, applied := db.Get(genesisAppliedKey); !applied {
		raw, err := os.ReadFile(cfg.GenesisPath)
		if err != nil {
			return fmt.Errorf("reading genesis: %w", err)
		}
		appHash, err := chain.InitChain(raw)
		if err != nil {
			return fmt.Errorf("applying genesis: %w", err)
		}
		db.Set(genesisAppliedKey, []byte{1})
		log.Info("genesis applied", "app_hash", fmt.Sprintf("%x", appHash))
	}

	server := queryhttp.New(chain)
	log.Info("starting query transport", "listen_addr", cfg.ListenAddr)
	return http.ListenAndServe(cfg.ListenAddr, server)
}
