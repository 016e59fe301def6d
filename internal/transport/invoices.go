package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/crmdesk/internal/domain/invoice"
)

func (s *Server) invoiceRoutes(r chi.Router) {
	r.Get("/", s.handleListInvoices)
	r.Post("/", s.handleCreateInvoice)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetInvoice)
		r.Put("/", s.handleUpdateInvoice)
		r.Delete("/", s.handleDeleteInvoice)
		r.Get("/items", s.handleListInvoiceItems)
		r.Post("/items", s.handleAddInvoiceItem)
		r.Delete("/items/{itemID}", s.handleDeleteInvoiceItem)
	})
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := page(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	invoices, err := s.svc.Invoices.List(r.Context(), invoice.ListOptions{
		ClientID:  query(r, "client_id"),
		ProjectID: query(r, "project_id"),
		Status:    query(r, "status"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoice.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	inv, err := s.svc.Invoices.Create(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := s.svc.Invoices.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoice.UpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	inv, err := s.svc.Invoices.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Invoices.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListInvoiceItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.Invoices.ListItems(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handleAddInvoiceItem responds with the whole invoice so the client sees
// the recomputed total.
func (s *Server) handleAddInvoiceItem(w http.ResponseWriter, r *http.Request) {
	var req invoice.ItemRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	inv, err := s.svc.Invoices.AddItem(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (s *Server) handleDeleteInvoiceItem(w http.ResponseWriter, r *http.Request) {
	inv, err := s.svc.Invoices.DeleteItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}
