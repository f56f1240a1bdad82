package project

import (
	errors "github.com/taskhive/task-management/internal"
	"github.com/taskhive/task-management/internal/core/common/validation"
)

type CreateProjectDTO struct {
	Name         string `json:"name"`
	DepartmentID int64  `json:"department_id"`
	Status       string `json:"status"`
}

func (dto *CreateProjectDTO) Validate() error {
	if dto.Status == "" {
		dto.Status = StatusActive
	}

	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(255)
	v.Field("department_id", dto.DepartmentID).Required()
	v.Field("status", dto.Status).OneOf(Statuses, errors.ErrCodeInvalidStatus)

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type GrantDepartmentAccessDTO struct {
	DepartmentID int64 `json:"department_id"`
}

func (dto GrantDepartmentAccessDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("department_id", dto.DepartmentID).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
