package transport

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/crmdesk/internal/domain/client"
	"github.com/rpggio/crmdesk/internal/domain/invoice"
	"github.com/rpggio/crmdesk/internal/domain/project"
	"github.com/rpggio/crmdesk/internal/repository"
	"github.com/rpggio/crmdesk/internal/uploads"
)

func (s *Server) clientRoutes(r chi.Router) {
	r.Get("/", s.handleListClients)
	r.Post("/", s.handleCreateClient)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetClient)
		r.Put("/", s.handleUpdateClient)
		r.Delete("/", s.handleDeleteClient)
		r.Get("/interactions", s.handleListInteractions)
		r.Post("/interactions", s.handleAddInteraction)
		r.Get("/projects", s.handleListClientProjects)
		r.Get("/invoices", s.handleListClientInvoices)
		r.Get("/jumps", s.handleListClientJumps)
	})
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := page(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	clients, err := s.svc.Clients.List(r.Context(), client.ListOptions{
		Status: query(r, "status"),
		Sector: query(r, "sector"),
		Query:  query(r, "q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req client.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.svc.Clients.Create(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Clients.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	var req client.UpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.svc.Clients.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Clients.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListInteractions(w http.ResponseWriter, r *http.Request) {
	interactions, err := s.svc.Clients.ListInteractions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, interactions)
}

// handleAddInteraction accepts JSON or a multipart form with an optional
// "attachment" file.
func (s *Server) handleAddInteraction(w http.ResponseWriter, r *http.Request) {
	var req client.InteractionRequest
	if isMultipart(r) {
		name, err := s.parseInteractionForm(w, r, &req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		req.Attachment = name
	} else if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	in, err := s.svc.Clients.AddInteraction(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		if req.Attachment != "" {
			_ = s.svc.Uploads.Remove(req.Attachment)
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) parseInteractionForm(w http.ResponseWriter, r *http.Request, req *client.InteractionRequest) (string, error) {
	if err := s.parseMultipart(w, r); err != nil {
		return "", err
	}
	req.Type = r.FormValue("type")
	req.Summary = r.FormValue("summary")
	req.Details = r.FormValue("details")
	if raw := strings.TrimSpace(r.FormValue("occurred_at")); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return "", fmt.Errorf("%w: occurred_at must be RFC 3339", repository.ErrInvalidInput)
		}
		req.OccurredAt = &at
	}

	_, header, err := r.FormFile("attachment")
	if err == http.ErrMissingFile {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: attachment: %v", repository.ErrInvalidInput, err)
	}
	return s.svc.Uploads.Save(header, uploads.AttachmentExtensions)
}

func (s *Server) handleListClientProjects(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.svc.Clients.Get(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	projects, err := s.svc.Projects.List(r.Context(), project.ListOptions{ClientID: id, Status: query(r, "status")})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleListClientInvoices(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.svc.Clients.Get(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	invoices, err := s.svc.Invoices.List(r.Context(), invoice.ListOptions{ClientID: id, Status: query(r, "status")})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

func (s *Server) handleListClientJumps(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.svc.Clients.Get(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	jumps, err := s.svc.Jumps.ListForClient(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jumps)
}
