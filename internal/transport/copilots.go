package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/crmdesk/internal/domain/copilot"
)

func (s *Server) copilotRoutes(r chi.Router) {
	r.Get("/", s.handleListCopilots)
	r.Post("/", s.handleCreateCopilot)
	r.Get("/{id}", s.handleGetCopilot)
	r.Put("/{id}", s.handleUpdateCopilot)
	r.Delete("/{id}", s.handleDeleteCopilot)
}

func (s *Server) handleListCopilots(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := page(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	copilots, err := s.svc.Copilots.List(r.Context(), copilot.ListOptions{
		Status:    query(r, "status"),
		Specialty: query(r, "specialty"),
		Query:     query(r, "q"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, copilots)
}

func (s *Server) handleCreateCopilot(w http.ResponseWriter, r *http.Request) {
	var req copilot.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.svc.Copilots.Create(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetCopilot(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Copilots.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCopilot(w http.ResponseWriter, r *http.Request) {
	var req copilot.UpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.svc.Copilots.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCopilot(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Copilots.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
