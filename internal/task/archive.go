package task

import (
	"context"

	internal "github.com/taskhive/task-management/internal"
	"github.com/taskhive/task-management/internal/authz"
	"github.com/taskhive/task-management/internal/core/events"
)

// ArchiveTask archives a task together with its whole subtask tree. Staff may
// never archive; managers and HR admins may archive only tasks inside their
// department hierarchy. The subtree is collected and archived in a single
// repository transaction, so either the whole tree flips or nothing does.
func (s *Service) ArchiveTask(ctx context.Context, taskID int64, user authz.UserContext) ([]int64, error) {
	if user.Role == authz.RoleStaff {
		s.logger.Warn("archive denied for staff", "user_id", user.UserID, "task_id", taskID)
		return nil, internal.ErrOnlyManagersCanArchive
	}

	t, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, internal.ErrTaskNotFound
	}
	if t.IsArchived {
		return nil, internal.ErrTaskAlreadyArchived
	}

	hierarchy, err := s.resolver.SubordinateDepartments(ctx, user.DepartmentID)
	if err != nil {
		s.logger.Error("failed to resolve hierarchy for archive", "error", err, "user_id", user.UserID)
		return nil, err
	}
	if !hierarchy.Contains(t.DepartmentID) {
		s.logger.Warn("archive denied outside hierarchy",
			"user_id", user.UserID, "task_id", taskID, "task_department_id", t.DepartmentID)
		return nil, internal.ErrUnauthorizedAccess
	}

	ids, err := s.repo.ArchiveSubtree(ctx, taskID)
	if err != nil {
		s.logger.Error("failed to archive task tree", "error", err, "task_id", taskID)
		return nil, err
	}

	s.logger.Info("task tree archived", "task_id", taskID, "archived_count", len(ids), "user_id", user.UserID)
	s.events.Publish(ctx, events.NewTaskArchivedEvent(taskID, ids, user.UserID))

	return ids, nil
}
