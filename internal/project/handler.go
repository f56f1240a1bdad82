package project

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/taskhive/task-management/internal/auth"
	"github.com/taskhive/task-management/internal/authz"
	"github.com/taskhive/task-management/internal/transport"
	"github.com/taskhive/task-management/pkg/logger"
)

type ServiceAPI interface {
	VisibleProjects(ctx context.Context, userID int64, includeArchived bool) ([]*Project, error)
	GetProject(ctx context.Context, projectID, userID int64) (*Project, error)
	CreateProject(ctx context.Context, dto CreateProjectDTO, actor authz.UserContext) (*Project, error)
	GetCollaborators(ctx context.Context, projectID int64) ([]Collaborator, error)
	RemoveCollaborator(ctx context.Context, projectID, userID int64, actor authz.UserContext) error
	GrantDepartmentAccess(ctx context.Context, projectID, departmentID int64, actor authz.UserContext) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

type ProjectsResponse struct {
	Projects []*Project `json:"projects"`
}

type CollaboratorsResponse struct {
	Collaborators []Collaborator `json:"collaborators"`
}

func (h *Handler) sessionUser(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	sessionUser, ok := auth.UserFromContext(r.Context())
	if !ok || sessionUser == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return sessionUser, true
}

func (h *Handler) projectID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid project id")
		return 0, false
	}
	return id, true
}

// GetProjects handles GET /projects
func (h *Handler) GetProjects(w http.ResponseWriter, r *http.Request) {
	sessionUser, ok := h.sessionUser(w, r)
	if !ok {
		return
	}

	includeArchived := r.URL.Query().Get("include_archived") == "true"
	projects, err := h.Service.VisibleProjects(r.Context(), sessionUser.ID, includeArchived)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ProjectsResponse{Projects: projects})
}

// GetProject handles GET /projects/{id}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	sessionUser, ok := h.sessionUser(w, r)
	if !ok {
		return
	}
	id, ok := h.projectID(w, r)
	if !ok {
		return
	}

	p, err := h.Service.GetProject(r.Context(), id, sessionUser.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

// CreateProject handles POST /projects
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	sessionUser, ok := h.sessionUser(w, r)
	if !ok {
		return
	}

	var dto CreateProjectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.Service.CreateProject(r.Context(), dto, sessionUser.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p)
}

// GetCollaborators handles GET /projects/{id}/collaborators
func (h *Handler) GetCollaborators(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessionUser(w, r); !ok {
		return
	}
	id, ok := h.projectID(w, r)
	if !ok {
		return
	}

	collaborators, err := h.Service.GetCollaborators(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CollaboratorsResponse{Collaborators: collaborators})
}

// RemoveCollaborator handles DELETE /projects/{id}/collaborators/{userID}
func (h *Handler) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	sessionUser, ok := h.sessionUser(w, r)
	if !ok {
		return
	}
	id, ok := h.projectID(w, r)
	if !ok {
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.Service.RemoveCollaborator(r.Context(), id, userID, sessionUser.Context()); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GrantDepartmentAccess handles POST /projects/{id}/departments
func (h *Handler) GrantDepartmentAccess(w http.ResponseWriter, r *http.Request) {
	sessionUser, ok := h.sessionUser(w, r)
	if !ok {
		return
	}
	id, ok := h.projectID(w, r)
	if !ok {
		return
	}

	var dto GrantDepartmentAccessDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.GrantDepartmentAccess(r.Context(), id, dto.DepartmentID, sessionUser.Context()); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
