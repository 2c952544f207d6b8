package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/gophtodo/internal/rpc"
	"github.com/dmitrijs2005/gophtodo/internal/server/wire"
	"github.com/go-chi/chi/v5"
)

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rpc.PingResponse{Status: "ok"})
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req rpc.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := s.users.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		s.fail(w, r, err, "Registration failed")
		return
	}
	writeJSON(w, http.StatusCreated, rpc.RegisterResponse{Message: "User registered successfully", User: wire.User(u)})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req rpc.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	tokens, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err, "Login failed")
		return
	}
	writeJSON(w, http.StatusOK, rpc.TokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken})
}

func (s *HTTPServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req rpc.RefreshTokenRequest
	if !decode(w, r, &req) {
		return
	}
	tokens, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		s.fail(w, r, err, "Token refresh failed")
		return
	}
	writeJSON(w, http.StatusOK, rpc.TokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken})
}

func (s *HTTPServer) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.tasks.List(r.Context(), userID(r))
	if err != nil {
		s.fail(w, r, err, "Failed to fetch todos")
		return
	}
	writeJSON(w, http.StatusOK, wire.Tasks(list))
}

func (s *HTTPServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req rpc.CreateTodoRequest
	if !decode(w, r, &req) {
		return
	}
	f, err := wire.CreateFields(&req)
	if err != nil {
		s.fail(w, r, err, "Failed to create todo")
		return
	}
	t, err := s.tasks.Create(r.Context(), userID(r), f)
	if err != nil {
		s.fail(w, r, err, "Failed to create todo")
		return
	}
	writeJSON(w, http.StatusCreated, wire.Task(t))
}

func (s *HTTPServer) handleGet(w http.ResponseWriter, r *http.Request) {
	t, err := s.tasks.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, "Failed to fetch todo")
		return
	}
	writeJSON(w, http.StatusOK, wire.Task(t))
}

func (s *HTTPServer) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req rpc.UpdateTodoRequest
	if !decode(w, r, &req) {
		return
	}
	patch, err := wire.Patch(&req)
	if err != nil {
		s.fail(w, r, err, "Failed to update todo")
		return
	}
	t, err := s.tasks.Update(r.Context(), userID(r), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.fail(w, r, err, "Failed to update todo")
		return
	}
	writeJSON(w, http.StatusOK, wire.Task(t))
}

func (s *HTTPServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.tasks.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err, "Failed to delete todo")
		return
	}
	writeJSON(w, http.StatusOK, rpc.DeleteTodoResponse{Success: true})
}

func (s *HTTPServer) handleClearCompleted(w http.ResponseWriter, r *http.Request) {
	n, err := s.tasks.ClearCompleted(r.Context(), userID(r))
	if err != nil {
		s.fail(w, r, err, "Failed to clear completed todos")
		return
	}
	writeJSON(w, http.StatusOK, rpc.ClearCompletedResponse{Success: true, DeletedCount: n})
}

func (s *HTTPServer) handleSync(w http.ResponseWriter, r *http.Request) {
	var req rpc.SyncRequest
	if !decode(w, r, &req) {
		return
	}
	list, err := s.sync.Reconcile(r.Context(), userID(r), wire.LastSync(req.LastSync), wire.ClientTasks(req.Todos))
	if err != nil {
		s.fail(w, r, err, "Sync failed")
		return
	}
	writeJSON(w, http.StatusOK, rpc.SyncResponse{Todos: wire.Tasks(list)})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	url, err := s.export.Export(r.Context(), userID(r))
	if err != nil {
		s.fail(w, r, err, "Export failed")
		return
	}
	writeJSON(w, http.StatusOK, rpc.ExportResponse{URL: url})
}
