package task

import "time"

type Task struct {
	ID           int64     `gorm:"primaryKey"`
	Title        string    `gorm:"column:title;not null"`
	Description  string    `gorm:"column:description"`
	Priority     int       `gorm:"column:priority;not null;default:5"`
	DueDate      time.Time `gorm:"column:due_date"`
	Status       string    `gorm:"column:status;not null;default:'TO_DO'"`
	OwnerID      int64     `gorm:"column:owner_id;not null"`
	DepartmentID int64     `gorm:"column:department_id;not null;index"`
	ProjectID    *int64    `gorm:"column:project_id;index"`
	ParentTaskID *int64    `gorm:"column:parent_task_id;index"`
	IsArchived   bool      `gorm:"column:is_archived;not null;default:false;index"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `gorm:"column:updated_at;default:now()"`
}

func (Task) TableName() string {
	return "tasks"
}

type TaskAssignment struct {
	ID           int64     `gorm:"primaryKey"`
	TaskID       int64     `gorm:"column:task_id;not null;index:idx_assignment_task_user,unique"`
	UserID       int64     `gorm:"column:user_id;not null;index:idx_assignment_task_user,unique"`
	AssignedByID int64     `gorm:"column:assigned_by_id;not null"`
	AssignedAt   time.Time `gorm:"column:assigned_at;default:now()"`
}

func (TaskAssignment) TableName() string {
	return "task_assignments"
}

type TaskComment struct {
	ID        int64     `gorm:"primaryKey"`
	TaskID    int64     `gorm:"column:task_id;not null;index"`
	AuthorID  int64     `gorm:"column:author_id;not null"`
	Body      string    `gorm:"column:body;not null"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (TaskComment) TableName() string {
	return "task_comments"
}

type TaskTag struct {
	ID     int64  `gorm:"primaryKey"`
	TaskID int64  `gorm:"column:task_id;not null;index:idx_tag_task_name,unique"`
	Name   string `gorm:"column:name;not null;index:idx_tag_task_name,unique"`
}

func (TaskTag) TableName() string {
	return "task_tags"
}
