package task

import (
	"time"

	"github.com/taskhive/task-management/internal/authz"
	taskDatamodel "github.com/taskhive/task-management/internal/core/datamodel/task"
)

const (
	StatusToDo       = "TO_DO"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusBlocked    = "BLOCKED"
)

var Statuses = []string{StatusToDo, StatusInProgress, StatusCompleted, StatusBlocked}

const (
	PriorityMin = 1
	PriorityMax = 10
)

type Assignment struct {
	UserID       int64     `json:"user_id"`
	AssignedByID int64     `json:"assigned_by_id"`
	AssignedAt   time.Time `json:"assigned_at"`
}

type Comment struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Task struct {
	ID           int64        `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Priority     int          `json:"priority"`
	DueDate      time.Time    `json:"due_date"`
	Status       string       `json:"status"`
	OwnerID      int64        `json:"owner_id"`
	DepartmentID int64        `json:"department_id"`
	ProjectID    *int64       `json:"project_id,omitempty"`
	ParentTaskID *int64       `json:"parent_task_id,omitempty"`
	IsArchived   bool         `json:"is_archived"`
	Assignments  []Assignment `json:"assignments"`
	Tags         []string     `json:"tags,omitempty"`
	Comments     []Comment    `json:"comments,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (t *Task) IsSubtask() bool {
	return t.ParentTaskID != nil
}

func (t *Task) HasAssignee(userID int64) bool {
	for _, a := range t.Assignments {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

func (t *Task) AssigneeIDs() []int64 {
	ids := make([]int64, 0, len(t.Assignments))
	for _, a := range t.Assignments {
		ids = append(ids, a.UserID)
	}
	return ids
}

// Scope projects the task onto the facts the authorization policy consumes.
func (t *Task) Scope() authz.TaskScope {
	return authz.TaskScope{
		DepartmentID: t.DepartmentID,
		AssigneeIDs:  t.AssigneeIDs(),
	}
}

// TaskWithAccess is a task annotated with the acting user's edit permission,
// the shape every visibility query returns.
type TaskWithAccess struct {
	*Task
	CanEdit bool `json:"can_edit"`
}

func ToDataModel(t *Task) *taskDatamodel.Task {
	return &taskDatamodel.Task{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Priority:     t.Priority,
		DueDate:      t.DueDate,
		Status:       t.Status,
		OwnerID:      t.OwnerID,
		DepartmentID: t.DepartmentID,
		ProjectID:    t.ProjectID,
		ParentTaskID: t.ParentTaskID,
		IsArchived:   t.IsArchived,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func FromDataModel(t *taskDatamodel.Task) *Task {
	return &Task{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Priority:     t.Priority,
		DueDate:      t.DueDate,
		Status:       t.Status,
		OwnerID:      t.OwnerID,
		DepartmentID: t.DepartmentID,
		ProjectID:    t.ProjectID,
		ParentTaskID: t.ParentTaskID,
		IsArchived:   t.IsArchived,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func FromDataModelSlice(tasks []*taskDatamodel.Task) []*Task {
	result := make([]*Task, len(tasks))
	for i, t := range tasks {
		result[i] = FromDataModel(t)
	}
	return result
}
