package authz

// TaskScope carries the two facts an edit decision needs about a task: which
// department it lives in and who is assigned to it.
type TaskScope struct {
	DepartmentID int64
	AssigneeIDs  []int64
}

func (s TaskScope) HasAssignee(userID int64) bool {
	for _, id := range s.AssigneeIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Policy decides task editability for one role. One value exists per role;
// callers dispatch through ForRole instead of branching on the role inline.
type Policy interface {
	CanEditTask(scope TaskScope, user UserContext, hierarchy HierarchySet) bool
}

// staffPolicy: purely assignment-based. Department membership alone never
// grants staff edit rights.
type staffPolicy struct{}

func (staffPolicy) CanEditTask(scope TaskScope, user UserContext, _ HierarchySet) bool {
	return scope.HasAssignee(user.UserID)
}

// managerPolicy: purely hierarchy-based. Personal assignment is irrelevant
// once hierarchy membership holds, and an empty hierarchy fails closed.
type managerPolicy struct{}

func (managerPolicy) CanEditTask(scope TaskScope, _ UserContext, hierarchy HierarchySet) bool {
	return hierarchy.Contains(scope.DepartmentID)
}

// hrAdminPolicy mirrors managerPolicy for task edits. HR_ADMIN is wider than
// MANAGER only in project visibility, not here.
type hrAdminPolicy struct{}

func (hrAdminPolicy) CanEditTask(scope TaskScope, _ UserContext, hierarchy HierarchySet) bool {
	return hierarchy.Contains(scope.DepartmentID)
}

var policies = map[Role]Policy{
	RoleStaff:   staffPolicy{},
	RoleManager: managerPolicy{},
	RoleHRAdmin: hrAdminPolicy{},
}

// ForRole returns the policy for a role. Unknown roles get a policy that
// denies everything.
func ForRole(role Role) Policy {
	if p, ok := policies[role]; ok {
		return p
	}
	return denyPolicy{}
}

type denyPolicy struct{}

func (denyPolicy) CanEditTask(TaskScope, UserContext, HierarchySet) bool { return false }

// CanEditTask is the decision function used by visibility annotation and as
// the precondition for task mutations.
func CanEditTask(scope TaskScope, user UserContext, hierarchy HierarchySet) bool {
	return ForRole(user.Role).CanEditTask(scope, user, hierarchy)
}
