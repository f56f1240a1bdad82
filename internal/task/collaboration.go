package task

import (
	"context"

	internal "github.com/taskhive/task-management/internal"
	"github.com/taskhive/task-management/internal/department"
)

// AssigneeDepartment pairs an assignee with the department they belong to,
// in assignment order.
type AssigneeDepartment struct {
	UserID         int64
	DepartmentID   int64
	DepartmentName string
}

// InvolvedDepartments derives the distinct departments touching a task from
// its assignees, in first-seen assignment order. For a subtask the parent
// task's department is forced to the front even when no assignee belongs to
// it, so the owning department is always listed.
func InvolvedDepartments(assignees []AssigneeDepartment, parentDepartmentID *int64) []department.Ref {
	seen := make(map[int64]struct{})
	var refs []department.Ref

	if parentDepartmentID != nil {
		seen[*parentDepartmentID] = struct{}{}
		refs = append(refs, department.Ref{ID: *parentDepartmentID})
	}

	for _, a := range assignees {
		if _, ok := seen[a.DepartmentID]; ok {
			// backfill the name when the parent department also has assignees
			if parentDepartmentID != nil && a.DepartmentID == *parentDepartmentID && refs[0].Name == "" {
				refs[0].Name = a.DepartmentName
			}
			continue
		}
		seen[a.DepartmentID] = struct{}{}
		refs = append(refs, department.Ref{ID: a.DepartmentID, Name: a.DepartmentName})
	}

	return refs
}

// GetInvolvedDepartments reports the departments involved in a task. For
// subtasks the parent task's department leads the list.
func (s *Service) GetInvolvedDepartments(ctx context.Context, taskID int64) ([]department.Ref, error) {
	t, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, internal.ErrTaskNotFound
	}

	assignees, err := s.repo.GetAssigneeDepartments(ctx, taskID)
	if err != nil {
		s.logger.Error("failed to load assignee departments", "error", err, "task_id", taskID)
		return nil, err
	}

	var parentDept *int64
	if t.IsSubtask() {
		parent, err := s.repo.GetByID(ctx, *t.ParentTaskID)
		if err != nil {
			return nil, err
		}
		if parent != nil {
			parentDept = &parent.DepartmentID
		}
	}

	return InvolvedDepartments(assignees, parentDept), nil
}
