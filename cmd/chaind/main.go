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

// Command chaind drives the state-transition core: it can write a fresh
// home directory, run the read-only query transport against a committed
// database, or answer one-shot queries against that database directly.
package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/envoylabs/cw-sdk/log"
)

var homeFlag = cli.StringFlag{
	Name:  "home",
	Usage: "chaind home directory",
	Value: defaultHome(),
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".chaind"
	}
	return home + string(os.PathSeparator) + ".chaind"
}

func main() {
	app := cli.NewApp()
	app.Name = "chaind"
	app.Usage = "wasm state-transition core driver"
	app.Flags = []cli.Flag{
		homeFlag,
		cli.BoolFlag{Name: "verbose", Usage: "enable debug logging"},
	}
	app.Before = func(ctx *cli.Context) error {
		log.SetLevel(ctx.GlobalBool("verbose"))
		return nil
	}
	app.Commands = []cli.Command{
		initCommand,
		startCommand,
		queryCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "chaind:", err)
		os.Exit(1)
	}
}
