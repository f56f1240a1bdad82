package postgres

import (
	"context"

	taskDatamodel "github.com/taskhive/task-management/internal/core/datamodel/task"
	"github.com/taskhive/task-management/internal/task"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) task.Repository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	dm := task.ToDataModel(t)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(dm).Error; err != nil {
			return err
		}
		t.ID = dm.ID
		for _, name := range t.Tags {
			tag := taskDatamodel.TaskTag{TaskID: dm.ID, Name: name}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	var dm taskDatamodel.Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	t := task.FromDataModel(&dm)
	if err := r.loadAssignments(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) GetByAssignee(ctx context.Context, userID int64, includeArchived bool) ([]*task.Task, error) {
	query := r.db.WithContext(ctx).
		Model(&taskDatamodel.Task{}).
		Joins("JOIN task_assignments ta ON ta.task_id = tasks.id").
		Where("ta.user_id = ?", userID)
	if !includeArchived {
		query = query.Where("tasks.is_archived = ?", false)
	}

	var dms []*taskDatamodel.Task
	if err := query.Order("tasks.due_date ASC").Find(&dms).Error; err != nil {
		return nil, err
	}
	return r.withAssignments(ctx, task.FromDataModelSlice(dms))
}

func (r *TaskRepository) GetByDepartments(ctx context.Context, departmentIDs []int64) ([]*task.Task, error) {
	if len(departmentIDs) == 0 {
		return nil, nil
	}

	var dms []*taskDatamodel.Task
	err := r.db.WithContext(ctx).
		Where("department_id IN ?", departmentIDs).
		Where("is_archived = ?", false).
		Order("due_date ASC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return r.withAssignments(ctx, task.FromDataModelSlice(dms))
}

func (r *TaskRepository) GetParentCandidatesByDepartments(ctx context.Context, departmentIDs []int64) ([]*task.Task, error) {
	if len(departmentIDs) == 0 {
		return nil, nil
	}

	var dms []*taskDatamodel.Task
	err := r.db.WithContext(ctx).
		Where("department_id IN ?", departmentIDs).
		Where("is_archived = ?", false).
		Where("parent_task_id IS NULL").
		Order("due_date ASC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return task.FromDataModelSlice(dms), nil
}

func (r *TaskRepository) GetParentCandidatesByAssignee(ctx context.Context, userID int64) ([]*task.Task, error) {
	var dms []*taskDatamodel.Task
	err := r.db.WithContext(ctx).
		Model(&taskDatamodel.Task{}).
		Joins("JOIN task_assignments ta ON ta.task_id = tasks.id").
		Where("ta.user_id = ?", userID).
		Where("tasks.is_archived = ?", false).
		Where("tasks.parent_task_id IS NULL").
		Order("tasks.due_date ASC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return task.FromDataModelSlice(dms), nil
}

func (r *TaskRepository) GetSubtasks(ctx context.Context, parentID int64) ([]*task.Task, error) {
	var dms []*taskDatamodel.Task
	err := r.db.WithContext(ctx).
		Where("parent_task_id = ?", parentID).
		Where("is_archived = ?", false).
		Order("due_date ASC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return r.withAssignments(ctx, task.FromDataModelSlice(dms))
}

// ArchiveSubtree walks the subtask tree breadth first and flips is_archived
// for root and every descendant, collection and update in one transaction.
// On Postgres each visited row is locked as the walk reaches it, so a
// concurrent archive or collaborator removal touching an overlapping subtree
// serializes against this one; sqlite's single-writer transactions serialize
// without the clause. The visited set guards against a parent_task_id cycle
// ever produced by bad data.
func (r *TaskRepository) ArchiveSubtree(ctx context.Context, rootID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lock := tx.Dialector.Name() == "postgres"

		root := tx.Model(&taskDatamodel.Task{}).Where("id = ?", rootID)
		if lock {
			root = root.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var rootIDs []int64
		if err := root.Pluck("id", &rootIDs).Error; err != nil {
			return err
		}

		visited := map[int64]struct{}{rootID: {}}
		ids = []int64{rootID}
		queue := []int64{rootID}

		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]

			children := tx.Model(&taskDatamodel.Task{}).Where("parent_task_id = ?", current)
			if lock {
				children = children.Clauses(clause.Locking{Strength: "UPDATE"})
			}
			var childIDs []int64
			if err := children.Pluck("id", &childIDs).Error; err != nil {
				return err
			}

			for _, id := range childIDs {
				if _, ok := visited[id]; ok {
					continue
				}
				visited[id] = struct{}{}
				ids = append(ids, id)
				queue = append(queue, id)
			}
		}

		return tx.Model(&taskDatamodel.Task{}).
			Where("id IN ?", ids).
			Update("is_archived", true).Error
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *TaskRepository) CreateAssignment(ctx context.Context, taskID int64, a task.Assignment) (bool, error) {
	dm := taskDatamodel.TaskAssignment{
		TaskID:       taskID,
		UserID:       a.UserID,
		AssignedByID: a.AssignedByID,
		AssignedAt:   a.AssignedAt,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&dm)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *TaskRepository) DeleteAssignment(ctx context.Context, taskID, userID int64) error {
	return r.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Delete(&taskDatamodel.TaskAssignment{}).Error
}

func (r *TaskRepository) CountAssignments(ctx context.Context, taskID int64) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&taskDatamodel.TaskAssignment{}).
		Where("task_id = ?", taskID).
		Count(&count).Error
	return int(count), err
}

func (r *TaskRepository) CreateComment(ctx context.Context, taskID int64, c *task.Comment) error {
	dm := taskDatamodel.TaskComment{
		TaskID:    taskID,
		AuthorID:  c.AuthorID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&dm).Error; err != nil {
		return err
	}
	c.ID = dm.ID
	return nil
}

func (r *TaskRepository) GetAssigneeDepartments(ctx context.Context, taskID int64) ([]task.AssigneeDepartment, error) {
	var rows []task.AssigneeDepartment
	err := r.db.WithContext(ctx).
		Raw(`SELECT ta.user_id, u.department_id, d.name AS department_name
		     FROM task_assignments ta
		     JOIN users u ON u.id = ta.user_id
		     JOIN departments d ON d.id = u.department_id
		     WHERE ta.task_id = ?
		     ORDER BY ta.assigned_at ASC, ta.id ASC`, taskID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *TaskRepository) loadAssignments(ctx context.Context, t *task.Task) error {
	var dms []taskDatamodel.TaskAssignment
	err := r.db.WithContext(ctx).
		Where("task_id = ?", t.ID).
		Order("assigned_at ASC, id ASC").
		Find(&dms).Error
	if err != nil {
		return err
	}
	t.Assignments = make([]task.Assignment, len(dms))
	for i, dm := range dms {
		t.Assignments[i] = task.Assignment{
			UserID:       dm.UserID,
			AssignedByID: dm.AssignedByID,
			AssignedAt:   dm.AssignedAt,
		}
	}
	return nil
}

func (r *TaskRepository) withAssignments(ctx context.Context, tasks []*task.Task) ([]*task.Task, error) {
	if len(tasks) == 0 {
		return tasks, nil
	}

	ids := make([]int64, len(tasks))
	byID := make(map[int64]*task.Task, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
		byID[t.ID] = t
	}

	var dms []taskDatamodel.TaskAssignment
	err := r.db.WithContext(ctx).
		Where("task_id IN ?", ids).
		Order("assigned_at ASC, id ASC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}

	for _, dm := range dms {
		if t, ok := byID[dm.TaskID]; ok {
			t.Assignments = append(t.Assignments, task.Assignment{
				UserID:       dm.UserID,
				AssignedByID: dm.AssignedByID,
				AssignedAt:   dm.AssignedAt,
			})
		}
	}
	return tasks, nil
}
