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

// Package chainerr defines the typed failure taxonomy every message
// dispatch, query, and tx-envelope decode can fail with.
package chainerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for failure kinds that carry no parameters.
var (
	ErrIllegalLabel            = errors.New("label starts with reserved address prefix")
	ErrSubmessagesUnsupported  = errors.New("contract response includes submessages, which are not supported")
	ErrFundsUnsupported        = errors.New("sending funds is not supported in this build")
	ErrMigrationUnsupported    = errors.New("migrating contracts is not supported")
	ErrVm                      = errors.New("vm execution failed")
)

// AccountFoundError reports an address collision on instantiate.
type AccountFoundError struct {
	Address string
}

func AccountFound(addr string) error { return &AccountFoundError{Address: addr} }

func (e *AccountFoundError) Error() string {
	return fmt.Sprintf("account already exists at address %s", e.Address)
}

// CodeNotFoundError reports a reference to an unknown code id.
type CodeNotFoundError struct {
	CodeID uint64
}

func CodeNotFound(codeID uint64) error { return &CodeNotFoundError{CodeID: codeID} }

func (e *CodeNotFoundError) Error() string {
	return fmt.Sprintf("no code found with id %d", e.CodeID)
}

// ContractNotFoundError reports a reference to an unknown contract address.
type ContractNotFoundError struct {
	Address string
}

func ContractNotFound(addr string) error { return &ContractNotFoundError{Address: addr} }

func (e *ContractNotFoundError) Error() string {
	return fmt.Sprintf("no contract found at address %s", e.Address)
}

// FundTransferFailedError wraps a bank-contract sudo error encountered while
// delegating a fund transfer or after-transfer hook.
type FundTransferFailedError struct {
	Reason string
}

func FundTransferFailed(reason string) error { return &FundTransferFailedError{Reason: reason} }

func (e *FundTransferFailedError) Error() string {
	return fmt.Sprintf("fund transfer failed: %s", e.Reason)
}

// ContractError wraps the string a contract's entry point returned as
// ContractResult::Err.
type ContractError struct {
	Message string
}

func NewContractError(msg string) error { return &ContractError{Message: msg} }

func (e *ContractError) Error() string {
	return fmt.Sprintf("contract error: %s", e.Message)
}

// SerdeError wraps a malformed-JSON envelope error.
type SerdeError struct {
	Err error
}

func Serde(err error) error { return &SerdeError{Err: err} }

func (e *SerdeError) Error() string {
	return fmt.Sprintf("malformed envelope: %s", e.Err)
}

func (e *SerdeError) Unwrap() error { return e.Err }

// AuthError reports a signature/sequence/chain-id mismatch, rejecting the
// entire transaction before any message runs.
type AuthError struct {
	Reason string
}

func Auth(reason string) error { return &AuthError{Reason: reason} }

func (e *AuthError) Error() string {
	return fmt.Sprintf("tx authentication failed: %s", e.Reason)
}
