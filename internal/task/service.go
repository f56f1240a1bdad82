package task

import (
	"context"
	"log/slog"
	"time"

	internal "github.com/taskhive/task-management/internal"
	"github.com/taskhive/task-management/internal/authz"
	"github.com/taskhive/task-management/internal/core/events"
)

// Repository defines the data access methods for tasks. Queries exclude
// archived rows unless the method says otherwise.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id int64) (*Task, error)
	GetByAssignee(ctx context.Context, userID int64, includeArchived bool) ([]*Task, error)
	GetByDepartments(ctx context.Context, departmentIDs []int64) ([]*Task, error)
	GetParentCandidatesByDepartments(ctx context.Context, departmentIDs []int64) ([]*Task, error)
	GetParentCandidatesByAssignee(ctx context.Context, userID int64) ([]*Task, error)
	GetSubtasks(ctx context.Context, parentID int64) ([]*Task, error)
	ArchiveSubtree(ctx context.Context, rootID int64) ([]int64, error)
	CreateAssignment(ctx context.Context, taskID int64, a Assignment) (created bool, err error)
	DeleteAssignment(ctx context.Context, taskID, userID int64) error
	CountAssignments(ctx context.Context, taskID int64) (int, error)
	CreateComment(ctx context.Context, taskID int64, c *Comment) error
	GetAssigneeDepartments(ctx context.Context, taskID int64) ([]AssigneeDepartment, error)
}

// CollaboratorStore is the slice of the project domain the assignment side
// effect needs: collaborator upsert with an "was it new" answer.
type CollaboratorStore interface {
	AddCollaborator(ctx context.Context, projectID, userID int64) (added bool, err error)
	GetProjectName(ctx context.Context, projectID int64) (string, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service handles task visibility and mutation logic.
type Service struct {
	repo          Repository
	resolver      authz.HierarchyResolver
	collaborators CollaboratorStore
	events        EventPublisher
	logger        *slog.Logger
}

func NewService(repo Repository, resolver authz.HierarchyResolver, collaborators CollaboratorStore, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:          repo,
		resolver:      resolver,
		collaborators: collaborators,
		events:        publisher,
		logger:        logger,
	}
}

// GetUserTasks returns the tasks the user is assigned to. A user's own
// assigned tasks are always editable by them, so every row carries
// CanEdit=true without consulting the hierarchy.
func (s *Service) GetUserTasks(ctx context.Context, userID int64, includeArchived bool) ([]*TaskWithAccess, error) {
	if userID <= 0 {
		return nil, internal.ErrNotAuthenticated
	}

	tasks, err := s.repo.GetByAssignee(ctx, userID, includeArchived)
	if err != nil {
		s.logger.Error("failed to get user tasks", "error", err, "user_id", userID)
		return nil, err
	}

	annotated := make([]*TaskWithAccess, len(tasks))
	for i, t := range tasks {
		annotated[i] = &TaskWithAccess{Task: t, CanEdit: true}
	}
	return annotated, nil
}

// GetDepartmentTasksForUser returns every non-archived task in the user's
// department hierarchy, each annotated with the role policy's edit decision.
// Staff see the whole hierarchy but can edit only their own assignments.
func (s *Service) GetDepartmentTasksForUser(ctx context.Context, user authz.UserContext) ([]*TaskWithAccess, error) {
	hierarchy, err := s.resolver.SubordinateDepartments(ctx, user.DepartmentID)
	if err != nil {
		s.logger.Error("failed to resolve department hierarchy", "error", err, "department_id", user.DepartmentID)
		return nil, err
	}

	tasks, err := s.repo.GetByDepartments(ctx, hierarchy.IDs())
	if err != nil {
		s.logger.Error("failed to get department tasks", "error", err, "department_id", user.DepartmentID)
		return nil, err
	}

	annotated := make([]*TaskWithAccess, len(tasks))
	for i, t := range tasks {
		annotated[i] = &TaskWithAccess{
			Task:    t,
			CanEdit: authz.CanEditTask(t.Scope(), user, hierarchy),
		}
	}
	return annotated, nil
}

// GetDashboardTasks is the manager-oriented aggregate: everything in the
// hierarchy with a blanket CanEdit=true. Staff are directed to the
// department view instead of receiving edit flags they do not hold.
func (s *Service) GetDashboardTasks(ctx context.Context, user authz.UserContext) ([]*TaskWithAccess, error) {
	if user.Role == authz.RoleStaff {
		s.logger.Warn("dashboard tasks denied for staff", "user_id", user.UserID)
		return nil, internal.ErrUnauthorizedAccess
	}

	hierarchy, err := s.resolver.SubordinateDepartments(ctx, user.DepartmentID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.repo.GetByDepartments(ctx, hierarchy.IDs())
	if err != nil {
		s.logger.Error("failed to get dashboard tasks", "error", err, "user_id", user.UserID)
		return nil, err
	}

	annotated := make([]*TaskWithAccess, len(tasks))
	for i, t := range tasks {
		annotated[i] = &TaskWithAccess{Task: t, CanEdit: true}
	}
	return annotated, nil
}

// GetAvailableParentTasks lists candidate parents for subtask creation,
// ordered by ascending due date. Managers pick from the whole hierarchy;
// staff and HR admins only from tasks they are assigned to.
func (s *Service) GetAvailableParentTasks(ctx context.Context, user authz.UserContext) ([]*Task, error) {
	if user.Role == authz.RoleManager {
		hierarchy, err := s.resolver.SubordinateDepartments(ctx, user.DepartmentID)
		if err != nil {
			return nil, err
		}
		return s.repo.GetParentCandidatesByDepartments(ctx, hierarchy.IDs())
	}

	return s.repo.GetParentCandidatesByAssignee(ctx, user.UserID)
}

// GetSubtasks returns the non-archived children of a task.
func (s *Service) GetSubtasks(ctx context.Context, parentID int64) ([]*Task, error) {
	return s.repo.GetSubtasks(ctx, parentID)
}

// GetTask loads a single task with its edit flag for the acting user.
func (s *Service) GetTask(ctx context.Context, taskID int64, user authz.UserContext) (*TaskWithAccess, error) {
	t, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, internal.ErrTaskNotFound
	}

	hierarchy, err := s.resolver.SubordinateDepartments(ctx, user.DepartmentID)
	if err != nil {
		return nil, err
	}

	return &TaskWithAccess{
		Task:    t,
		CanEdit: authz.CanEditTask(t.Scope(), user, hierarchy),
	}, nil
}

// CreateTask creates a task and assigns the requested users. Subtask
// invariants are checked against the parent before anything is written.
func (s *Service) CreateTask(ctx context.Context, dto CreateTaskDTO, user authz.UserContext) (*Task, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("task validation failed", "error", err, "user_id", user.UserID)
		return nil, err
	}

	if dto.ParentTaskID != nil {
		parent, err := s.repo.GetByID(ctx, *dto.ParentTaskID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.IsArchived {
			return nil, internal.ErrTaskNotFound
		}
		if err := dto.ValidateAgainstParent(parent); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	t := &Task{
		Title:        dto.Title,
		Description:  dto.Description,
		Priority:     dto.Priority,
		DueDate:      dto.DueDate,
		Status:       dto.Status,
		OwnerID:      user.UserID,
		DepartmentID: dto.DepartmentID,
		ProjectID:    dto.ProjectID,
		ParentTaskID: dto.ParentTaskID,
		Tags:         dto.Tags,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		s.logger.Error("failed to create task", "error", err, "user_id", user.UserID)
		return nil, err
	}

	for _, assigneeID := range dto.AssigneeIDs {
		if err := s.AssignUser(ctx, t.ID, assigneeID, user); err != nil {
			s.logger.Error("failed to assign user during task creation",
				"error", err, "task_id", t.ID, "assignee_id", assigneeID)
			return nil, err
		}
	}

	s.logger.Info("task created",
		"task_id", t.ID,
		"owner_id", user.UserID,
		"department_id", t.DepartmentID,
		"is_subtask", t.IsSubtask())

	return t, nil
}

// AssignUser adds an assignment row and runs the project collaboration side
// effect: a user newly assigned into a project gains a collaborator row and
// exactly one "added to project" notification. Re-assignment within the same
// project neither duplicates the row nor re-notifies.
func (s *Service) AssignUser(ctx context.Context, taskID, assigneeID int64, actor authz.UserContext) error {
	t, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if t == nil || t.IsArchived {
		return internal.ErrTaskNotFound
	}

	created, err := s.repo.CreateAssignment(ctx, taskID, Assignment{
		UserID:       assigneeID,
		AssignedByID: actor.UserID,
		AssignedAt:   time.Now(),
	})
	if err != nil {
		s.logger.Error("failed to create assignment", "error", err, "task_id", taskID, "assignee_id", assigneeID)
		return err
	}
	if !created {
		// already assigned; nothing to notify
		return nil
	}

	s.events.Publish(ctx, events.NewTaskAssignedEvent(taskID, assigneeID, actor.UserID))

	if t.ProjectID != nil {
		added, err := s.collaborators.AddCollaborator(ctx, *t.ProjectID, assigneeID)
		if err != nil {
			s.logger.Error("failed to upsert project collaborator",
				"error", err, "project_id", *t.ProjectID, "user_id", assigneeID)
			return err
		}
		if added {
			name, err := s.collaborators.GetProjectName(ctx, *t.ProjectID)
			if err != nil {
				s.logger.Warn("failed to load project name for notification", "error", err, "project_id", *t.ProjectID)
			}
			s.events.Publish(ctx, events.NewCollaborationAddedEvent(*t.ProjectID, name, assigneeID, taskID))
		}
	}

	return nil
}

// RemoveAssignee deletes one assignment, refusing to strip the last one.
func (s *Service) RemoveAssignee(ctx context.Context, taskID, assigneeID int64, actor authz.UserContext) error {
	t, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if t == nil {
		return internal.ErrTaskNotFound
	}
	if !t.HasAssignee(assigneeID) {
		return internal.ErrTaskNotFound
	}

	count, err := s.repo.CountAssignments(ctx, taskID)
	if err != nil {
		return err
	}
	if count <= 1 {
		return internal.NewAssigneeFloorError(taskID)
	}

	return s.repo.DeleteAssignment(ctx, taskID, assigneeID)
}

// AddComment records a comment and notifies the other assignees.
func (s *Service) AddComment(ctx context.Context, taskID int64, dto AddCommentDTO, actor authz.UserContext) (*Comment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	t, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t == nil || t.IsArchived {
		return nil, internal.ErrTaskNotFound
	}

	now := time.Now()
	c := &Comment{
		AuthorID:  actor.UserID,
		Body:      dto.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateComment(ctx, taskID, c); err != nil {
		s.logger.Error("failed to create comment", "error", err, "task_id", taskID)
		return nil, err
	}

	var recipients []int64
	for _, a := range t.Assignments {
		if a.UserID != actor.UserID {
			recipients = append(recipients, a.UserID)
		}
	}
	if len(recipients) > 0 {
		s.events.Publish(ctx, events.NewTaskCommentAddedEvent(taskID, c.ID, actor.UserID, recipients))
	}

	return c, nil
}
