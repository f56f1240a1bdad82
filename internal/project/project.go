package project

import (
	"time"

	projectDatamodel "github.com/taskhive/task-management/internal/core/datamodel/project"
)

const (
	StatusActive    = "ACTIVE"
	StatusCompleted = "COMPLETED"
	StatusOnHold    = "ON_HOLD"
)

var Statuses = []string{StatusActive, StatusCompleted, StatusOnHold}

type Project struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	DepartmentID int64     `json:"department_id"`
	CreatorID    int64     `json:"creator_id"`
	Status       string    `json:"status"`
	IsArchived   bool      `json:"is_archived"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Collaborator is derived from assignments on the project's top level tasks.
// Subtask assignments never contribute on their own.
type Collaborator struct {
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	TaskCount int       `json:"task_count"`
	AddedAt   time.Time `json:"added_at"`
}

// AssignedTask pairs a task in a project with its current assignee count,
// the shape the collaborator removal check consumes.
type AssignedTask struct {
	TaskID        int64
	AssigneeCount int
}

func ToDataModel(p *Project) *projectDatamodel.Project {
	return &projectDatamodel.Project{
		ID:           p.ID,
		Name:         p.Name,
		DepartmentID: p.DepartmentID,
		CreatorID:    p.CreatorID,
		Status:       p.Status,
		IsArchived:   p.IsArchived,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func FromDataModel(p *projectDatamodel.Project) *Project {
	return &Project{
		ID:           p.ID,
		Name:         p.Name,
		DepartmentID: p.DepartmentID,
		CreatorID:    p.CreatorID,
		Status:       p.Status,
		IsArchived:   p.IsArchived,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func FromDataModelSlice(projects []*projectDatamodel.Project) []*Project {
	result := make([]*Project, len(projects))
	for i, p := range projects {
		result[i] = FromDataModel(p)
	}
	return result
}
