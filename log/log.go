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

// Package log is a thin structured-logging wrapper around a package-level
// *zap.SugaredLogger, matching go-core's own log package call-site idiom:
// log.Info(msg, "key", val, "key2", val2, ...) rather than a builder chain.
package log

import "go.uber.org/zap"

var sugar = newDefault()

func newDefault() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = "ts"
	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// Falling back to a no-op logger is worse than failing loudly: a
		// silently logless chain node hides the very failures operators
		// need to see.
		panic("log: building default logger: " + err.Error())
	}
	return logger.Sugar()
}

// SetLevel adjusts the minimum level the default logger emits. Exposed for
// cmd/chaind's --verbose flag.
func SetLevel(debug bool) {
	if debug {
		Configure(zap.NewDevelopmentConfig())
		return
	}
	Configure(zap.NewProductionConfig())
}

// Configure replaces the package-level logger built from cfg. Used by
// SetLevel, which cmd/chaind calls at startup.
func Configure(cfg zap.Config) {
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = "ts"
	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic("log: building configured logger: " + err.Error())
	}
	sugar = logger.Sugar()
}

// Discard replaces the package-level logger with one that drops everything.
// Nothing in this module calls it.
func Discard() {
	sugar = zap.NewNop().Sugar()
}

func Info(msg string, kv ...interface{})  { sugar.Infow(msg, kv...) }
func Debug(msg string, kv ...interface{}) { sugar.Debugw(msg, kv...) }
func Warn(msg string, kv ...interface{})  { sugar.Warnw(msg, kv...) }
func Error(msg string, kv ...interface{}) { sugar.Errorw(msg, kv...) }

// Sync flushes any buffered log entries. Call before process exit.
func Sync() {
	_ = sugar.Sync()
}
