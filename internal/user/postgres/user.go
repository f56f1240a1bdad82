package postgres

import (
	"context"

	userDatamodel "github.com/taskhive/task-management/internal/core/datamodel/user"
	"github.com/taskhive/task-management/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*user.User, error) {
	var dm userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	u := user.FromDataModel(&dm)

	if dm.DepartmentID != nil {
		var name string
		row := r.db.WithContext(ctx).
			Raw("SELECT name FROM departments WHERE id = ?", *dm.DepartmentID).Row()
		if err := row.Scan(&name); err == nil {
			u.DepartmentName = name
		}
	}

	return u, nil
}
