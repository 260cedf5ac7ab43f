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

// Package queryhttp exposes the Query Router over a minimal read-only HTTP
// surface, distinct from (and much smaller than) the out-of-scope ABCI
// driver: it never touches tx delivery, only Chain.HandleQuery and
// Chain.Info.
package queryhttp

import (
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/julienschmidt/httprouter"

	"github.com/envoylabs/cw-sdk/log"
	"github.com/envoylabs/cw-sdk/types"
)

// Chain is the subset of *statemachine.Chain this server needs, kept as an
// interface so tests can stub it without building a full Chain.
type Chain interface {
	HandleQuery(q types.Query) (interface{}, error)
	Info() (types.InfoResponse, error)
}

// Server serves the query transport.
type Server struct {
	chain  Chain
	router *httprouter.Router
}

// New builds a Server answering queries against chain.
func New(chain Chain) *Server {
	s := &Server{chain: chain, router: httprouter.New()}
	s.router.POST("/query", s.handleQuery)
	s.router.GET("/healthz", s.handleHealthz)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var q types.Query
	if err := json.Unmarshal(body, &q); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.chain.HandleQuery(q)
	if err != nil {
		log.Debug("query failed", "reason", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	info, err := s.chain.Info()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"height":   info.Height,
		"chain_id": info.ChainID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("writing response body", "reason", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
