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

// Package config loads chaind's TOML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/naoina/toml"
)

// FileName is the config file chaind looks for inside its home directory.
const FileName = "config.toml"

// Config is chaind's full runtime configuration.
type Config struct {
	ChainID       string `toml:"chain_id"`
	AddressPrefix string `toml:"address_prefix"`
	HomeDir       string `toml:"home_dir"`
	DBPath        string `toml:"db_path"`
	GenesisPath   string `toml:"genesis_path"`
	ListenAddr    string `toml:"listen_addr"`
}

// Default returns the configuration chaind init writes out for a fresh
// home directory.
func Default(homeDir string) Config {
	return Config{
		ChainID:       "cw-localnet",
		AddressPrefix: "cw",
		HomeDir:       homeDir,
		DBPath:        filepath.Join(homeDir, "data"),
		GenesisPath:   filepath.Join(homeDir, "genesis.json"),
		ListenAddr:    "127.0.0.1:1337",
	}
}

// Load reads and parses the config file at homeDir/config.toml.
func Load(homeDir string) (Config, error) {
	raw, err := os.ReadFile(filepath.Join(homeDir, FileName))
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", FileName, err)
	}
	var cfg Config
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", FileName, err)
	}
	return cfg, nil
}

// Write serializes cfg as TOML to homeDir/config.toml, creating homeDir if
// necessary.
func Write(cfg Config) error {
	if err := os.MkdirAll(cfg.HomeDir, 0o755); err != nil {
		return fmt.Errorf("config: creating home dir: %w", err)
	}
	raw, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encoding: %w", err)
	}
	path := filepath.Join(cfg.HomeDir, FileName)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}
