package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/crmdesk/internal/domain/client"
	"github.com/rpggio/crmdesk/internal/domain/referral"
)

func (s *Server) referralRoutes(r chi.Router) {
	r.Get("/", s.handleListReferrals)
	r.Post("/", s.handleCreateReferral)
	r.Get("/{id}", s.handleGetReferral)
	r.Put("/{id}", s.handleUpdateReferral)
	r.Delete("/{id}", s.handleDeleteReferral)
	r.Post("/{id}/convert", s.handleConvertReferral)
}

type convertResponse struct {
	Referral *referral.Referral `json:"referral"`
	Client   *client.Client     `json:"client"`
}

func (s *Server) handleListReferrals(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := page(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	referrals, err := s.svc.Referrals.List(r.Context(), referral.ListOptions{
		Status:           query(r, "status"),
		ReferrerClientID: query(r, "referrer_client_id"),
		Limit:            limit,
		Offset:           offset,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, referrals)
}

func (s *Server) handleCreateReferral(w http.ResponseWriter, r *http.Request) {
	var req referral.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ref, err := s.svc.Referrals.Create(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ref)
}

func (s *Server) handleGetReferral(w http.ResponseWriter, r *http.Request) {
	ref, err := s.svc.Referrals.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ref)
}

func (s *Server) handleUpdateReferral(w http.ResponseWriter, r *http.Request) {
	var req referral.UpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ref, err := s.svc.Referrals.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ref)
}

func (s *Server) handleDeleteReferral(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Referrals.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleConvertReferral accepts an empty body, in which case the new client
// takes its fields from the referral alone.
func (s *Server) handleConvertReferral(w http.ResponseWriter, r *http.Request) {
	var req referral.ConvertRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	ref, c, err := s.svc.Referrals.Convert(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, convertResponse{Referral: ref, Client: c})
}
