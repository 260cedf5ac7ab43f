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

package types

import json "github.com/goccy/go-json"

// Attribute is a single key/value pair attached to an Event or returned
// directly by a contract as a response attribute.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Event is a named attribute bag emitted by message execution. Events are
// never persisted; they only flow back to the caller of HandleTx.
type Event struct {
	Type       string      `json:"type"`
	Attributes []Attribute `json:"attributes"`
}

// NewEvent starts building an Event with the given type.
func NewEvent(eventType string) Event {
	return Event{Type: eventType}
}

// WithAttr appends an attribute and returns the Event for chaining, mirroring
// the builder idiom the contracts this wire format targets use.
func (e Event) WithAttr(key, value string) Event {
	e.Attributes = append(e.Attributes, Attribute{Key: key, Value: value})
	return e
}

// Response is what a successful contract entry-point call returns.
// Messages carries raw, opaque sub-messages the contract asked the chain to
// dispatch on its behalf; this core does not execute them (submessages are
// an explicit non-goal) and treats a non-empty Messages as a hard error.
type Response struct {
	Events     []Event           `json:"events"`
	Attributes []Attribute       `json:"attributes"`
	Messages   []json.RawMessage `json:"messages"`
	Data       []byte            `json:"data,omitempty"`
}

// ContractResult is the outcome of a VM entry-point call: exactly one of Ok
// or Err is set.
type ContractResult struct {
	Ok  *Response `json:"ok,omitempty"`
	Err string    `json:"error,omitempty"`
}

// OkResult wraps a successful Response.
func OkResult(resp Response) ContractResult {
	return ContractResult{Ok: &resp}
}

// ErrResult wraps a contract-reported failure message.
func ErrResult(msg string) ContractResult {
	return ContractResult{Err: msg}
}

// IsOk reports whether the call succeeded.
func (r ContractResult) IsOk() bool { return r.Ok != nil }
