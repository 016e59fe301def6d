package transport

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/crmdesk/internal/domain/jump"
	"github.com/rpggio/crmdesk/internal/domain/strlist"
	"github.com/rpggio/crmdesk/internal/repository"
	"github.com/rpggio/crmdesk/internal/uploads"
)

func (s *Server) jumpRoutes(r chi.Router) {
	r.Get("/", s.handleListJumps)
	r.Post("/", s.handleCreateJump)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetJump)
		r.Put("/", s.handleUpdateJump)
		r.Delete("/", s.handleDeleteJump)
		r.Get("/clients", s.handleListJumpClients)
		r.Put("/clients", s.handleSetJumpClients)
		r.Post("/clients/{clientID}", s.handleLinkJumpClient)
		r.Delete("/clients/{clientID}", s.handleUnlinkJumpClient)
		r.Post("/images", s.handleAddJumpImage)
	})
}

type jumpClientsRequest struct {
	ClientIDs []string `json:"client_ids"`
}

func (s *Server) handleListJumps(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := page(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jumps, err := s.svc.Jumps.List(r.Context(), jump.ListOptions{
		Status:   query(r, "status"),
		Category: query(r, "category"),
		Query:    query(r, "q"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jumps)
}

func (s *Server) handleCreateJump(w http.ResponseWriter, r *http.Request) {
	var req jump.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	j, err := s.svc.Jumps.Create(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, j)
}

func (s *Server) handleGetJump(w http.ResponseWriter, r *http.Request) {
	j, err := s.svc.Jumps.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (s *Server) handleUpdateJump(w http.ResponseWriter, r *http.Request) {
	var req jump.UpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	var previous strlist.List
	if req.Images != nil {
		before, err := s.svc.Jumps.Get(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		previous = before.Images
	}
	j, err := s.svc.Jumps.Update(r.Context(), id, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.removeImages(previous, j.Images)
	writeJSON(w, http.StatusOK, j)
}

func (s *Server) handleDeleteJump(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	j, err := s.svc.Jumps.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Jumps.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.removeImages(j.Images, nil)
	w.WriteHeader(http.StatusNoContent)
}

// removeImages deletes the stored files named in previous but not in kept.
// Names that are not stored uploads are skipped.
func (s *Server) removeImages(previous, kept strlist.List) {
	for _, name := range previous {
		if kept.Contains(name) {
			continue
		}
		if err := s.svc.Uploads.Remove(name); err != nil && !errors.Is(err, uploads.ErrInvalidName) {
			s.logger.Warn("failed to remove jump image", "name", name, "error", err)
		}
	}
}

func (s *Server) handleListJumpClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.svc.Jumps.ListClients(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

func (s *Server) handleSetJumpClients(w http.ResponseWriter, r *http.Request) {
	var req jumpClientsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	clients, err := s.svc.Jumps.SetClients(r.Context(), chi.URLParam(r, "id"), req.ClientIDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

func (s *Server) handleLinkJumpClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.svc.Jumps.LinkClient(r.Context(), id, chi.URLParam(r, "clientID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	clients, err := s.svc.Jumps.ListClients(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

func (s *Server) handleUnlinkJumpClient(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Jumps.UnlinkClient(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "clientID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAddJumpImage stores a multipart "image" file and appends its name to
// the jump's images.
func (s *Server) handleAddJumpImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.svc.Jumps.Get(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !isMultipart(r) {
		s.writeError(w, r, fmt.Errorf("%w: expected multipart/form-data", repository.ErrInvalidInput))
		return
	}
	if err := s.parseMultipart(w, r); err != nil {
		s.writeError(w, r, err)
		return
	}
	_, header, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: image file is required", repository.ErrInvalidInput))
		return
	}
	name, err := s.svc.Uploads.Save(header, uploads.ImageExtensions)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	j, err := s.svc.Jumps.AddImage(r.Context(), id, name)
	if err != nil {
		_ = s.svc.Uploads.Remove(name)
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, j)
}
