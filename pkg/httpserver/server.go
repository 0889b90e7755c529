// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package httpserver implements the minimal HTTP service surface:
// submit a workflow, and poll it by id. Routing follows a chi-based
// transport convention (go-chi/chi/v5), scaled down to the two
// endpoints the core specifies — a broader agent-to-agent protocol
// surface is explicitly out of scope.
package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kadirpekel/refactorctl/pkg/configresolver"
	"github.com/kadirpekel/refactorctl/pkg/orchestrator"
)

// WorkflowRunner is the subset of the orchestrator this server depends
// on, so tests can substitute a fake without standing up real LLM
// providers.
type WorkflowRunner interface {
	ExecuteWorkflow(entryTeam string, ctx *configresolver.Node, maxTeams int) (orchestrator.Record, error)
}

// submitRequest is the POST /api/v1/workflow body.
type submitRequest struct {
	ProjectPath  string         `json:"project_path"`
	Intent       map[string]any `json:"intent"`
	AppConfig    map[string]any `json:"app_config"`
	SystemConfig map[string]any `json:"system_config"`
}

// workflowResponse is shared by both endpoints' success bodies.
type workflowResponse struct {
	WorkflowID  string `json:"workflow_id"`
	Status      string `json:"status"`
	StoragePath string `json:"storage_path,omitempty"`
}

// Server exposes the two workflow endpoints over HTTP, running each
// submitted workflow asynchronously and keeping an in-memory status
// table — the core does not persist workflows to a database.
type Server struct {
	runner      WorkflowRunner
	entryTeam   string
	maxTeams    int
	storageRoot string

	mu        sync.RWMutex
	workflows map[string]*workflowState

	router chi.Router
}

type workflowState struct {
	status      string
	storagePath string
	record      orchestrator.Record
	err         error
}

// New builds a Server around runner, exposing the chi-routed HTTP
// handlers.
func New(runner WorkflowRunner, entryTeam, storageRoot string, maxTeams int) *Server {
	s := &Server{
		runner:      runner,
		entryTeam:   entryTeam,
		maxTeams:    maxTeams,
		storageRoot: storageRoot,
		workflows:   map[string]*workflowState{},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/workflow", s.handleSubmit)
		r.Get("/workflow/{id}", s.handleGet)
	})

	s.router = r
	return s
}

// Handler returns the root http.Handler, ready to pass to http.Server.
func (s *Server) Handler() http.Handler { return s.router }

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("http.request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// handleSubmit implements POST /api/v1/workflow: kicks off a workflow
// asynchronously and returns its id immediately with status "started".
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.ProjectPath == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "project_path is required"})
		return
	}

	mergedConfig := configresolver.DeepMerge(req.SystemConfig, req.AppConfig)
	preparedConfig, ctx, err := orchestrator.InitializeWorkflow(req.ProjectPath, req.Intent, mergedConfig)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	_ = preparedConfig

	workflowID := orchestrator.ResolveWorkflowRunID(ctx)

	s.mu.Lock()
	s.workflows[workflowID] = &workflowState{status: "started"}
	s.mu.Unlock()

	go s.run(workflowID, ctx)

	writeJSON(w, http.StatusAccepted, workflowResponse{
		WorkflowID: workflowID,
		Status:     "started",
	})
}

func (s *Server) run(workflowID string, ctx *configresolver.Node) {
	record, err := s.runner.ExecuteWorkflow(s.entryTeam, ctx, s.maxTeams)

	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.workflows[workflowID]
	if state == nil {
		state = &workflowState{}
		s.workflows[workflowID] = state
	}
	if err != nil {
		state.status = "error"
		state.err = err
		return
	}
	state.status = record.Status
	state.record = record
	if s.storageRoot != "" {
		state.storagePath = s.storageRoot + "/" + workflowID
	}
}

// handleGet implements GET /api/v1/workflow/{id}.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.RLock()
	state, ok := s.workflows[id]
	s.mu.RUnlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workflow not found"})
		return
	}

	writeJSON(w, http.StatusOK, workflowResponse{
		WorkflowID:  id,
		Status:      state.status,
		StoragePath: state.storagePath,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
