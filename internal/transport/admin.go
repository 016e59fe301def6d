package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/crmdesk/internal/domain/activity"
	"github.com/rpggio/crmdesk/internal/domain/apikey"
	"github.com/rpggio/crmdesk/internal/domain/reference"
)

func (s *Server) apiKeyRoutes(r chi.Router) {
	r.Get("/", s.handleListAPIKeys)
	r.Post("/", s.handleCreateAPIKey)
	r.Get("/{id}", s.handleGetAPIKey)
	r.Delete("/{id}", s.handleRevokeAPIKey)
}

func (s *Server) referenceRoutes(r chi.Router) {
	r.Get("/", s.handleListCategories)
	r.Get("/{category}", s.handleListReference)
	r.With(RequireScope(apikey.ScopeAdmin)).Post("/{category}", s.handleAddReference)
}

func (s *Server) handleListAPIKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := s.svc.APIKeys.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, keys)
}

// handleCreateAPIKey returns the plaintext token. It is not retrievable later.
func (s *Server) handleCreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req apikey.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	issued, err := s.svc.APIKeys.Create(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, issued)
}

func (s *Server) handleGetAPIKey(w http.ResponseWriter, r *http.Request) {
	key, err := s.svc.APIKeys.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, key)
}

func (s *Server) handleRevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.APIKeys.Revoke(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.svc.Reference.Categories(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleListReference(w http.ResponseWriter, r *http.Request) {
	values, err := s.svc.Reference.List(r.Context(), reference.Category(chi.URLParam(r, "category")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, values)
}

func (s *Server) handleAddReference(w http.ResponseWriter, r *http.Request) {
	var v reference.Value
	if err := decodeJSON(r, &v); err != nil {
		s.writeError(w, r, err)
		return
	}
	v.Category = reference.Category(chi.URLParam(r, "category"))
	added, err := s.svc.Reference.Add(r.Context(), v)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleListActivity(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := page(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	entries, err := s.svc.Activity.GetRecentActivity(r.Context(), activity.ListOptions{
		EntityType: activity.EntityType(query(r, "entity_type")),
		EntityID:   query(r, "entity_id"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
