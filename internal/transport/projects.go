package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/crmdesk/internal/domain/project"
)

func (s *Server) projectRoutes(r chi.Router) {
	r.Get("/", s.handleListProjects)
	r.Post("/", s.handleCreateProject)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetProject)
		r.Put("/", s.handleUpdateProject)
		r.Delete("/", s.handleDeleteProject)
		r.Get("/tasks", s.handleListProjectTasks)
		r.Post("/tasks", s.handleCreateProjectTask)
		r.Get("/copilots", s.handleListProjectCopilots)
		r.Put("/copilots", s.handleSetProjectCopilots)
		r.Post("/copilots/{copilotID}", s.handleAssignCopilot)
		r.Delete("/copilots/{copilotID}", s.handleUnassignCopilot)
		r.Get("/referrals", s.handleListProjectReferrals)
		r.Post("/referrals", s.handleLinkProjectReferral)
	})
}

func (s *Server) taskRoutes(r chi.Router) {
	r.Get("/", s.handleListTasks)
	r.Post("/", s.handleCreateTask)
	r.Get("/{id}", s.handleGetTask)
	r.Put("/{id}", s.handleUpdateTask)
	r.Delete("/{id}", s.handleDeleteTask)
}

type projectCopilotsRequest struct {
	Copilots []project.AssignmentRequest `json:"copilots"`
}

type assignCopilotRequest struct {
	Role string `json:"role"`
}

type linkReferralRequest struct {
	ReferralID string `json:"referral_id"`
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := page(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	projects, err := s.svc.Projects.List(r.Context(), project.ListOptions{
		ClientID: query(r, "client_id"),
		JumpID:   query(r, "jump_id"),
		Status:   query(r, "status"),
		Query:    query(r, "q"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req project.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.svc.Projects.Create(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req project.UpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.svc.Projects.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Projects.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListProjectTasks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.svc.Projects.Get(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	tasks, err := s.svc.Projects.ListTasks(r.Context(), project.TaskListOptions{ProjectID: id, Status: query(r, "status")})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateProjectTask(w http.ResponseWriter, r *http.Request) {
	var req project.TaskRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.ProjectID = chi.URLParam(r, "id")
	t, err := s.svc.Projects.CreateTask(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleListProjectCopilots(w http.ResponseWriter, r *http.Request) {
	copilots, err := s.svc.Projects.ListCopilots(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, copilots)
}

func (s *Server) handleSetProjectCopilots(w http.ResponseWriter, r *http.Request) {
	var req projectCopilotsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	copilots, err := s.svc.Projects.SetCopilots(r.Context(), chi.URLParam(r, "id"), req.Copilots)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, copilots)
}

// handleAssignCopilot takes an optional {"role": ...} body.
func (s *Server) handleAssignCopilot(w http.ResponseWriter, r *http.Request) {
	var body assignCopilotRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	id := chi.URLParam(r, "id")
	req := project.AssignmentRequest{CopilotID: chi.URLParam(r, "copilotID"), Role: body.Role}
	if err := s.svc.Projects.AssignCopilot(r.Context(), id, req); err != nil {
		s.writeError(w, r, err)
		return
	}
	copilots, err := s.svc.Projects.ListCopilots(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, copilots)
}

func (s *Server) handleUnassignCopilot(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Projects.UnassignCopilot(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "copilotID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListProjectReferrals(w http.ResponseWriter, r *http.Request) {
	referrals, err := s.svc.Projects.ListReferrals(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, referrals)
}

func (s *Server) handleLinkProjectReferral(w http.ResponseWriter, r *http.Request) {
	var req linkReferralRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.svc.Projects.LinkReferral(r.Context(), id, req.ReferralID); err != nil {
		s.writeError(w, r, err)
		return
	}
	referrals, err := s.svc.Projects.ListReferrals(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, referrals)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := page(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tasks, err := s.svc.Projects.ListTasks(r.Context(), project.TaskListOptions{
		ProjectID: query(r, "project_id"),
		Status:    query(r, "status"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req project.TaskRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.svc.Projects.CreateTask(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Projects.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req project.TaskUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.svc.Projects.UpdateTask(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Projects.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
