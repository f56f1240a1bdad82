package project

import (
	"context"
	"log/slog"
	"time"

	internal "github.com/taskhive/task-management/internal"
	"github.com/taskhive/task-management/internal/authz"
	"github.com/taskhive/task-management/internal/core/events"
	"github.com/taskhive/task-management/internal/user"
)

// Repository defines the data access methods for projects and the
// collaborator cache.
type Repository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id int64) (*Project, error)
	GetAll(ctx context.Context, includeArchived bool) ([]*Project, error)
	GetVisible(ctx context.Context, departmentIDs []int64, includeArchived bool) ([]*Project, error)
	GetCollaborators(ctx context.Context, projectID int64) ([]Collaborator, error)
	GetUserAssignedTasks(ctx context.Context, projectID, userID int64) ([]AssignedTask, error)
	RemoveCollaborator(ctx context.Context, projectID, userID int64) error
	GrantDepartmentAccess(ctx context.Context, projectID, departmentID int64) error
}

// UserStore resolves acting user profiles for the visibility queries that
// start from a bare user id.
type UserStore interface {
	GetByID(ctx context.Context, userID int64) (*user.User, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo     Repository
	users    UserStore
	resolver authz.HierarchyResolver
	events   EventPublisher
	logger   *slog.Logger
}

func NewService(repo Repository, users UserStore, resolver authz.HierarchyResolver, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		resolver: resolver,
		events:   publisher,
		logger:   logger,
	}
}

// VisibleProjects returns the projects the user may see. HR admins see every
// project. Everyone else sees projects owned by a department in their
// hierarchy plus projects bridged into that hierarchy through a department
// access grant. Archived projects are excluded unless asked for; the archived
// filter applies after the scope is resolved.
func (s *Service) VisibleProjects(ctx context.Context, userID int64, includeArchived bool) ([]*Project, error) {
	if userID <= 0 {
		return nil, internal.ErrNotAuthenticated
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, internal.ErrUserProfileNotFound
	}

	if u.Role == authz.RoleHRAdmin {
		return s.repo.GetAll(ctx, includeArchived)
	}

	hierarchy, err := s.resolver.SubordinateDepartments(ctx, u.DepartmentID)
	if err != nil {
		s.logger.Error("failed to resolve hierarchy for project visibility",
			"error", err, "user_id", userID, "department_id", u.DepartmentID)
		return nil, err
	}

	return s.repo.GetVisible(ctx, hierarchy.IDs(), includeArchived)
}

// GetProject loads a single project after the same visibility check the
// listing applies.
func (s *Service) GetProject(ctx context.Context, projectID, userID int64) (*Project, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, internal.ErrUserProfileNotFound
	}

	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, internal.ErrProjectNotFound
	}

	if u.Role == authz.RoleHRAdmin {
		return p, nil
	}

	hierarchy, err := s.resolver.SubordinateDepartments(ctx, u.DepartmentID)
	if err != nil {
		return nil, err
	}
	if hierarchy.Contains(p.DepartmentID) {
		return p, nil
	}

	// single reads by id stay possible for archived projects, as with tasks
	visible, err := s.repo.GetVisible(ctx, hierarchy.IDs(), true)
	if err != nil {
		return nil, err
	}
	for _, v := range visible {
		if v.ID == p.ID {
			return p, nil
		}
	}

	return nil, internal.ErrProjectNotFound
}

// CreateProject creates a project owned by the given department.
func (s *Service) CreateProject(ctx context.Context, dto CreateProjectDTO, actor authz.UserContext) (*Project, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	p := &Project{
		Name:         dto.Name,
		DepartmentID: dto.DepartmentID,
		CreatorID:    actor.UserID,
		Status:       dto.Status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error("failed to create project", "error", err, "user_id", actor.UserID)
		return nil, err
	}

	s.logger.Info("project created", "project_id", p.ID, "department_id", p.DepartmentID, "creator_id", actor.UserID)
	return p, nil
}

// GetCollaborators lists the people working on the project, derived from the
// assignments of its top level tasks.
func (s *Service) GetCollaborators(ctx context.Context, projectID int64) ([]Collaborator, error) {
	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, internal.ErrProjectNotFound
	}
	return s.repo.GetCollaborators(ctx, projectID)
}

// RemoveCollaborator strips a user from every task of the project and drops
// their collaborator row. Only managers may do this, and the whole removal is
// validated before anything is written: if any affected task would be left
// without an assignee the call fails and no assignment changes.
func (s *Service) RemoveCollaborator(ctx context.Context, projectID, userID int64, actor authz.UserContext) error {
	if actor.Role != authz.RoleManager {
		s.logger.Warn("collaborator removal denied",
			"actor_id", actor.UserID, "actor_role", actor.Role, "project_id", projectID)
		return internal.ErrOnlyManagersCanRemove
	}

	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if p == nil {
		return internal.ErrProjectNotFound
	}

	assigned, err := s.repo.GetUserAssignedTasks(ctx, projectID, userID)
	if err != nil {
		s.logger.Error("failed to load assignments for removal check",
			"error", err, "project_id", projectID, "user_id", userID)
		return err
	}

	for _, t := range assigned {
		if t.AssigneeCount <= 1 {
			s.logger.Warn("collaborator removal blocked by assignee floor",
				"project_id", projectID, "user_id", userID, "task_id", t.TaskID)
			return internal.NewAssigneeFloorError(t.TaskID)
		}
	}

	if err := s.repo.RemoveCollaborator(ctx, projectID, userID); err != nil {
		s.logger.Error("failed to remove collaborator", "error", err, "project_id", projectID, "user_id", userID)
		return err
	}

	s.logger.Info("collaborator removed",
		"project_id", projectID, "user_id", userID, "actor_id", actor.UserID, "tasks_affected", len(assigned))
	s.events.Publish(ctx, events.NewCollaborationRemovedEvent(projectID, p.Name, userID, actor.UserID))

	return nil
}

// GrantDepartmentAccess bridges a project into another department's
// visibility. Duplicate grants are a no-op.
func (s *Service) GrantDepartmentAccess(ctx context.Context, projectID, departmentID int64, actor authz.UserContext) error {
	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if p == nil {
		return internal.ErrProjectNotFound
	}

	if err := s.repo.GrantDepartmentAccess(ctx, projectID, departmentID); err != nil {
		s.logger.Error("failed to grant department access",
			"error", err, "project_id", projectID, "department_id", departmentID)
		return err
	}

	s.logger.Info("department access granted",
		"project_id", projectID, "department_id", departmentID, "actor_id", actor.UserID)
	return nil
}
