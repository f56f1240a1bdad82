package user

import (
	"time"

	"github.com/taskhive/task-management/internal/authz"
	userDatamodel "github.com/taskhive/task-management/internal/core/datamodel/user"
)

type User struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	PasswordHash   string     `json:"-"`
	Role           authz.Role `json:"role"`
	DepartmentID   int64      `json:"department_id,omitempty"`
	DepartmentName string     `json:"department_name,omitempty"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (u *User) IsActiveUser() bool {
	return u.IsActive
}

// Context builds the acting user context carried through visibility and
// authorization decisions.
func (u *User) Context() authz.UserContext {
	return authz.UserContext{
		UserID:       u.ID,
		Role:         u.Role,
		DepartmentID: u.DepartmentID,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	domainUser := &User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         authz.Role(u.Role),
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if u.DepartmentID != nil {
		domainUser.DepartmentID = *u.DepartmentID
	}
	return domainUser
}
