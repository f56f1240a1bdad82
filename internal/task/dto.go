package task

import (
	"time"

	errors "github.com/taskhive/task-management/internal"
	"github.com/taskhive/task-management/internal/core/common/validation"
)

type CreateTaskDTO struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Priority     int       `json:"priority"`
	DueDate      time.Time `json:"due_date"`
	Status       string    `json:"status"`
	DepartmentID int64     `json:"department_id"`
	ProjectID    *int64    `json:"project_id,omitempty"`
	ParentTaskID *int64    `json:"parent_task_id,omitempty"`
	AssigneeIDs  []int64   `json:"assignee_ids,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
}

func (dto *CreateTaskDTO) Validate() error {
	if dto.Status == "" {
		dto.Status = StatusToDo
	}
	if dto.Priority == 0 {
		dto.Priority = 5
	}

	v := validation.NewValidator()
	v.Field("title", dto.Title).Required().MaxLength(255)
	v.Field("priority", dto.Priority).IntRange(PriorityMin, PriorityMax, errors.ErrCodeInvalidPriority)
	v.Field("due_date", dto.DueDate).Required()
	v.Field("status", dto.Status).OneOf(Statuses, errors.ErrCodeInvalidStatus)
	v.Field("department_id", dto.DepartmentID).Required()

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// ValidateAgainstParent enforces the subtask invariants: one level deep and
// due no later than the parent.
func (dto *CreateTaskDTO) ValidateAgainstParent(parent *Task) error {
	if parent.IsSubtask() {
		return errors.NewValidationError("subtasks cannot have their own subtasks", errors.ErrCodeSubtaskDepth)
	}

	v := validation.NewValidator()
	v.Field("due_date", dto.DueDate).NotAfter(parent.DueDate, errors.ErrCodeInvalidDueDate)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type AssignTaskDTO struct {
	UserID int64 `json:"user_id"`
}

func (dto AssignTaskDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("user_id", dto.UserID).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type AddCommentDTO struct {
	Body string `json:"body"`
}

func (dto AddCommentDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("body", dto.Body).Required().MaxLength(4000)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
