package project

import "time"

type Project struct {
	ID           int64     `gorm:"primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	DepartmentID int64     `gorm:"column:department_id;not null;index"`
	CreatorID    int64     `gorm:"column:creator_id;not null"`
	Status       string    `gorm:"column:status;not null;default:'ACTIVE'"`
	IsArchived   bool      `gorm:"column:is_archived;not null;default:false;index"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `gorm:"column:updated_at;default:now()"`
}

func (Project) TableName() string {
	return "projects"
}

// ProjectDepartmentAccess is the bridge grant giving a department outside the
// owning hierarchy visibility of a project.
type ProjectDepartmentAccess struct {
	ID           int64     `gorm:"primaryKey"`
	ProjectID    int64     `gorm:"column:project_id;not null;index:idx_access_project_dept,unique"`
	DepartmentID int64     `gorm:"column:department_id;not null;index:idx_access_project_dept,unique"`
	GrantedAt    time.Time `gorm:"column:granted_at;default:now()"`
}

func (ProjectDepartmentAccess) TableName() string {
	return "project_department_access"
}

// ProjectCollaborator is the cached derivation of "user has at least one
// assignment within the project".
type ProjectCollaborator struct {
	ID        int64     `gorm:"primaryKey"`
	ProjectID int64     `gorm:"column:project_id;not null;index:idx_collab_project_user,unique"`
	UserID    int64     `gorm:"column:user_id;not null;index:idx_collab_project_user,unique"`
	AddedAt   time.Time `gorm:"column:added_at;default:now()"`
}

func (ProjectCollaborator) TableName() string {
	return "project_collaborators"
}
