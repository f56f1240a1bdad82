package postgres

import (
	"context"
	"time"

	internal "github.com/taskhive/task-management/internal"
	projectDatamodel "github.com/taskhive/task-management/internal/core/datamodel/project"
	taskDatamodel "github.com/taskhive/task-management/internal/core/datamodel/task"
	"github.com/taskhive/task-management/internal/project"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) error {
	dm := project.ToDataModel(p)
	if err := r.db.WithContext(ctx).Create(dm).Error; err != nil {
		return err
	}
	p.ID = dm.ID
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*project.Project, error) {
	var dm projectDatamodel.Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return project.FromDataModel(&dm), nil
}

func (r *ProjectRepository) GetAll(ctx context.Context, includeArchived bool) ([]*project.Project, error) {
	query := r.db.WithContext(ctx)
	if !includeArchived {
		query = query.Where("is_archived = ?", false)
	}

	var dms []*projectDatamodel.Project
	if err := query.Order("id ASC").Find(&dms).Error; err != nil {
		return nil, err
	}
	return project.FromDataModelSlice(dms), nil
}

// GetVisible returns projects owned by any of the given departments plus
// projects bridged into them through a department access grant.
func (r *ProjectRepository) GetVisible(ctx context.Context, departmentIDs []int64, includeArchived bool) ([]*project.Project, error) {
	if len(departmentIDs) == 0 {
		return nil, nil
	}

	query := r.db.WithContext(ctx).
		Distinct("projects.*").
		Joins("LEFT JOIN project_department_access pda ON pda.project_id = projects.id").
		Where("projects.department_id IN ? OR pda.department_id IN ?", departmentIDs, departmentIDs)
	if !includeArchived {
		query = query.Where("projects.is_archived = ?", false)
	}

	var dms []*projectDatamodel.Project
	if err := query.Order("projects.id ASC").Find(&dms).Error; err != nil {
		return nil, err
	}
	return project.FromDataModelSlice(dms), nil
}

// GetCollaborators derives the collaborator list from assignments on the
// project's top level tasks, ordered by when each user first joined.
func (r *ProjectRepository) GetCollaborators(ctx context.Context, projectID int64) ([]project.Collaborator, error) {
	var rows []project.Collaborator
	err := r.db.WithContext(ctx).
		Raw(`SELECT u.id AS user_id, u.name, u.email,
		            COUNT(DISTINCT t.id) AS task_count,
		            MIN(ta.assigned_at) AS added_at
		     FROM task_assignments ta
		     JOIN tasks t ON t.id = ta.task_id
		     JOIN users u ON u.id = ta.user_id
		     WHERE t.project_id = ?
		       AND t.parent_task_id IS NULL
		       AND t.is_archived = false
		     GROUP BY u.id, u.name, u.email
		     ORDER BY added_at ASC, u.id ASC`, projectID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetUserAssignedTasks reports every non-archived task in the project the
// user is assigned to, with each task's total assignee count.
func (r *ProjectRepository) GetUserAssignedTasks(ctx context.Context, projectID, userID int64) ([]project.AssignedTask, error) {
	var rows []project.AssignedTask
	err := r.db.WithContext(ctx).
		Raw(`SELECT t.id AS task_id,
		            (SELECT COUNT(*) FROM task_assignments c WHERE c.task_id = t.id) AS assignee_count
		     FROM tasks t
		     JOIN task_assignments ta ON ta.task_id = t.id AND ta.user_id = ?
		     WHERE t.project_id = ?
		       AND t.is_archived = false
		     ORDER BY t.id ASC`, userID, projectID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RemoveCollaborator deletes the user's assignments across the project's live
// tasks and their collaborator row in one transaction. The assignee floor is
// re-checked inside the transaction over the exact task set the delete
// targets, with the assignment rows locked on Postgres, so two concurrent
// removals of a task's last two assignees cannot both pass the check. sqlite
// has no FOR UPDATE; its single-writer transactions serialize on their own.
func (r *ProjectRepository) RemoveCollaborator(ctx context.Context, projectID, userID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taskIDs []int64
		err := tx.Model(&taskDatamodel.Task{}).
			Joins("JOIN task_assignments ta ON ta.task_id = tasks.id AND ta.user_id = ?", userID).
			Where("tasks.project_id = ? AND tasks.is_archived = ?", projectID, false).
			Pluck("tasks.id", &taskIDs).Error
		if err != nil {
			return err
		}

		if len(taskIDs) > 0 {
			query := tx.Where("task_id IN ?", taskIDs)
			if tx.Dialector.Name() == "postgres" {
				query = query.Clauses(clause.Locking{Strength: "UPDATE"})
			}
			var assignments []taskDatamodel.TaskAssignment
			if err := query.Find(&assignments).Error; err != nil {
				return err
			}

			counts := make(map[int64]int, len(taskIDs))
			for _, a := range assignments {
				counts[a.TaskID]++
			}
			for _, taskID := range taskIDs {
				if counts[taskID] <= 1 {
					return internal.NewAssigneeFloorError(taskID)
				}
			}

			err = tx.
				Where("user_id = ? AND task_id IN ?", userID, taskIDs).
				Delete(&taskDatamodel.TaskAssignment{}).Error
			if err != nil {
				return err
			}
		}

		return tx.
			Where("project_id = ? AND user_id = ?", projectID, userID).
			Delete(&projectDatamodel.ProjectCollaborator{}).Error
	})
}

func (r *ProjectRepository) GrantDepartmentAccess(ctx context.Context, projectID, departmentID int64) error {
	dm := projectDatamodel.ProjectDepartmentAccess{
		ProjectID:    projectID,
		DepartmentID: departmentID,
		GrantedAt:    time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "department_id"}},
			DoNothing: true,
		}).
		Create(&dm).Error
}

// AddCollaborator upserts the collaborator cache row, reporting whether it
// was newly inserted. The task assignment flow uses the answer to decide
// whether to notify.
func (r *ProjectRepository) AddCollaborator(ctx context.Context, projectID, userID int64) (bool, error) {
	dm := projectDatamodel.ProjectCollaborator{
		ProjectID: projectID,
		UserID:    userID,
		AddedAt:   time.Now(),
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&dm)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *ProjectRepository) GetProjectName(ctx context.Context, projectID int64) (string, error) {
	var name string
	err := r.db.WithContext(ctx).
		Model(&projectDatamodel.Project{}).
		Where("id = ?", projectID).
		Pluck("name", &name).Error
	return name, err
}
