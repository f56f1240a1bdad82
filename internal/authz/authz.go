package authz

import "context"

// Role is the coarse access role carried by a user session. There is no
// permission table behind it; the three roles are the whole model.
type Role string

const (
	RoleStaff   Role = "STAFF"
	RoleManager Role = "MANAGER"
	RoleHRAdmin Role = "HR_ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStaff, RoleManager, RoleHRAdmin:
		return true
	}
	return false
}

// UserContext is the per-request acting user, supplied by the session layer.
// It is never persisted.
type UserContext struct {
	UserID       int64
	Role         Role
	DepartmentID int64
}

// HierarchySet is the set of department ids covered by a user's home
// department: the department itself plus every transitive descendant.
type HierarchySet map[int64]struct{}

func NewHierarchySet(ids ...int64) HierarchySet {
	set := make(HierarchySet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (h HierarchySet) Contains(departmentID int64) bool {
	_, ok := h[departmentID]
	return ok
}

func (h HierarchySet) IDs() []int64 {
	ids := make([]int64, 0, len(h))
	for id := range h {
		ids = append(ids, id)
	}
	return ids
}

// HierarchyResolver is the injected capability that computes a department's
// hierarchy set. Services take it as an explicit dependency so tests and
// other bounded contexts can substitute their own source.
type HierarchyResolver interface {
	SubordinateDepartments(ctx context.Context, rootID int64) (HierarchySet, error)
}

// HierarchyResolverFunc adapts a plain function to HierarchyResolver.
type HierarchyResolverFunc func(ctx context.Context, rootID int64) (HierarchySet, error)

func (f HierarchyResolverFunc) SubordinateDepartments(ctx context.Context, rootID int64) (HierarchySet, error) {
	return f(ctx, rootID)
}
