package task

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/taskhive/task-management/internal/auth"
	"github.com/taskhive/task-management/internal/authz"
	"github.com/taskhive/task-management/internal/department"
	"github.com/taskhive/task-management/internal/transport"
	"github.com/taskhive/task-management/pkg/logger"
)

type ServiceAPI interface {
	GetUserTasks(ctx context.Context, userID int64, includeArchived bool) ([]*TaskWithAccess, error)
	GetDepartmentTasksForUser(ctx context.Context, user authz.UserContext) ([]*TaskWithAccess, error)
	GetDashboardTasks(ctx context.Context, user authz.UserContext) ([]*TaskWithAccess, error)
	GetAvailableParentTasks(ctx context.Context, user authz.UserContext) ([]*Task, error)
	GetSubtasks(ctx context.Context, parentID int64) ([]*Task, error)
	GetTask(ctx context.Context, taskID int64, user authz.UserContext) (*TaskWithAccess, error)
	GetInvolvedDepartments(ctx context.Context, taskID int64) ([]department.Ref, error)
	CreateTask(ctx context.Context, dto CreateTaskDTO, user authz.UserContext) (*Task, error)
	AssignUser(ctx context.Context, taskID, assigneeID int64, actor authz.UserContext) error
	RemoveAssignee(ctx context.Context, taskID, assigneeID int64, actor authz.UserContext) error
	AddComment(ctx context.Context, taskID int64, dto AddCommentDTO, actor authz.UserContext) (*Comment, error)
	ArchiveTask(ctx context.Context, taskID int64, user authz.UserContext) ([]int64, error)
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

type TasksResponse struct {
	Tasks []*TaskWithAccess `json:"tasks"`
}

type ArchiveResponse struct {
	ArchivedIDs []int64 `json:"archived_ids"`
}

func (h *Handler) sessionUser(w http.ResponseWriter, r *http.Request) (authz.UserContext, bool) {
	sessionUser, ok := auth.UserFromContext(r.Context())
	if !ok || sessionUser == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return authz.UserContext{}, false
	}
	return sessionUser.Context(), true
}

func (h *Handler) taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid task id")
		return 0, false
	}
	return id, true
}

// GetMyTasks handles GET /tasks/mine
func (h *Handler) GetMyTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := h.sessionUser(w, r)
	if !ok {
		return
	}

	includeArchived := r.URL.Query().Get("include_archived") == "true"
	tasks, err := h.Service.GetUserTasks(r.Context(), user.UserID, includeArchived)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, TasksResponse{Tasks: tasks})
}

// GetDepartmentTasks handles GET /tasks/department
func (h *Handler) GetDepartmentTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := h.sessionUser(w, r)
	if !ok {
		return
	}

	tasks, err := h.Service.GetDepartmentTasksForUser(r.Context(), user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, TasksResponse{Tasks: tasks})
}

// GetDashboardTasks handles GET /tasks/dashboard
func (h *Handler) GetDashboardTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := h.sessionUser(w, r)
	if !ok {
		return
	}

	tasks, err := h.Service.GetDashboardTasks(r.Context(), user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, TasksResponse{Tasks: tasks})
}

// GetParentCandidates handles GET /tasks/parents
func (h *Handler) GetParentCandidates(w http.ResponseWriter, r *http.Request) {
	user, ok := h.sessionUser(w, r)
	if !ok {
		return
	}

	tasks, err := h.Service.GetAvailableParentTasks(r.Context(), user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks})
}

// GetTask handles GET /tasks/{id}
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	user, ok := h.sessionUser(w, r)
	if !ok {
		return
	}
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	t, err := h.Service.GetTask(r.Context(), id, user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

// GetSubtasks handles GET /tasks/{id}/subtasks
func (h *Handler) GetSubtasks(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessionUser(w, r); !ok {
		return
	}
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	subtasks, err := h.Service.GetSubtasks(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"subtasks": subtasks})
}

// GetInvolvedDepartments handles GET /tasks/{id}/departments
func (h *Handler) GetInvolvedDepartments(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessionUser(w, r); !ok {
		return
	}
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	refs, err := h.Service.GetInvolvedDepartments(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"departments": refs})
}

// CreateTask handles POST /tasks
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := h.sessionUser(w, r)
	if !ok {
		return
	}

	var dto CreateTaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Service.CreateTask(r.Context(), dto, user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, t)
}

// AssignUser handles POST /tasks/{id}/assignees
func (h *Handler) AssignUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.sessionUser(w, r)
	if !ok {
		return
	}
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	var dto AssignTaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.AssignUser(r.Context(), id, dto.UserID, user); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveAssignee handles DELETE /tasks/{id}/assignees/{userID}
func (h *Handler) RemoveAssignee(w http.ResponseWriter, r *http.Request) {
	user, ok := h.sessionUser(w, r)
	if !ok {
		return
	}
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	assigneeID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.Service.RemoveAssignee(r.Context(), id, assigneeID, user); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddComment handles POST /tasks/{id}/comments
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	user, ok := h.sessionUser(w, r)
	if !ok {
		return
	}
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	var dto AddCommentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.AddComment(r.Context(), id, dto, user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

// ArchiveTask handles POST /tasks/{id}/archive
func (h *Handler) ArchiveTask(w http.ResponseWriter, r *http.Request) {
	user, ok := h.sessionUser(w, r)
	if !ok {
		return
	}
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	ids, err := h.Service.ArchiveTask(r.Context(), id, user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ArchiveResponse{ArchivedIDs: ids})
}
