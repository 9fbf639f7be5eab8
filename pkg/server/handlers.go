package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/vpypenode/pkg/buildinfo"
	"github.com/matzehuels/vpypenode/pkg/node"
	"github.com/matzehuels/vpypenode/pkg/pipeline"
)

// NodeView is the JSON description of one node.
type NodeView struct {
	node.Info
	Schema node.Schema `json:"schema"`
}

// RunRequest is the body of POST /nodes/{name}/run and /plan.
type RunRequest struct {
	Params  map[string]any `json:"params"`
	NoCache bool           `json:"no_cache,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
	Nodes  int    `json:"nodes"`
	buildinfo.Info
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Nodes:  len(s.Runner.Registry.All()),
		Info:   buildinfo.Get(),
	})
}

func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	all := s.Runner.Registry.All()
	views := make([]NodeView, len(all))
	for i, n := range all {
		views[i] = NodeView{Info: n.Info(), Schema: n.Schema()}
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	n, err := s.Runner.Registry.Lookup(chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NodeView{Info: n.Info(), Schema: n.Schema()})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	res, err := s.Runner.Run(r.Context(), pipeline.Request{
		Node:        chi.URLParam(r, "name"),
		Params:      req.Params,
		NoCache:     req.NoCache,
		ContentOnly: true,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	plan, err := s.Runner.Plan(chi.URLParam(r, "name"), req.Params)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// decode reads a RunRequest. An empty body is an empty request.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (RunRequest, bool) {
	var req RunRequest
	if r.ContentLength == 0 {
		return req, true
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE",
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return req, false
		}
		writeError(w, r, http.StatusBadRequest, "INVALID_INPUT", "invalid JSON body: "+err.Error())
		return req, false
	}
	return req, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= 500 {
		s.Logger.Error("node request failed", "path", r.URL.Path, "code", code, "err", err, "request_id", RequestID(r.Context()))
	}
	writeError(w, r, status, code, message(err))
}
