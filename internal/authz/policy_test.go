package authz_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/taskhive/task-management/internal/authz"
)

func TestAuthzPolicy(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Authz Policy Suite")
}

var _ = Describe("CanEditTask", func() {
	var (
		scope     authz.TaskScope
		hierarchy authz.HierarchySet
	)

	BeforeEach(func() {
		scope = authz.TaskScope{
			DepartmentID: 20,
			AssigneeIDs:  []int64{7},
		}
		hierarchy = authz.NewHierarchySet(10, 20, 30)
	})

	Describe("STAFF", func() {
		It("allows editing a task the user is assigned to", func() {
			user := authz.UserContext{UserID: 7, Role: authz.RoleStaff, DepartmentID: 10}

			Expect(authz.CanEditTask(scope, user, hierarchy)).To(BeTrue())
		})

		It("denies an unassigned task even inside the user's hierarchy", func() {
			user := authz.UserContext{UserID: 8, Role: authz.RoleStaff, DepartmentID: 10}

			Expect(authz.CanEditTask(scope, user, hierarchy)).To(BeFalse())
		})

		It("allows an assigned task outside the user's hierarchy", func() {
			user := authz.UserContext{UserID: 7, Role: authz.RoleStaff, DepartmentID: 99}
			outside := authz.NewHierarchySet(99)

			Expect(authz.CanEditTask(scope, user, outside)).To(BeTrue())
		})
	})

	Describe("MANAGER", func() {
		It("allows any task whose department is in the hierarchy", func() {
			user := authz.UserContext{UserID: 42, Role: authz.RoleManager, DepartmentID: 10}

			Expect(authz.CanEditTask(scope, user, hierarchy)).To(BeTrue())
		})

		It("denies a task outside the hierarchy even when the manager is assigned", func() {
			user := authz.UserContext{UserID: 7, Role: authz.RoleManager, DepartmentID: 10}
			outside := authz.NewHierarchySet(10)

			Expect(authz.CanEditTask(scope, user, outside)).To(BeFalse())
		})

		It("denies everything with an empty hierarchy", func() {
			user := authz.UserContext{UserID: 42, Role: authz.RoleManager, DepartmentID: 10}

			Expect(authz.CanEditTask(scope, user, authz.NewHierarchySet())).To(BeFalse())
		})
	})

	Describe("HR_ADMIN", func() {
		It("follows the same hierarchy rule as managers", func() {
			user := authz.UserContext{UserID: 42, Role: authz.RoleHRAdmin, DepartmentID: 10}

			Expect(authz.CanEditTask(scope, user, hierarchy)).To(BeTrue())

			outside := authz.NewHierarchySet(99)
			Expect(authz.CanEditTask(scope, user, outside)).To(BeFalse())
		})

		It("does not fall back to assignment when outside the hierarchy", func() {
			user := authz.UserContext{UserID: 7, Role: authz.RoleHRAdmin, DepartmentID: 99}
			outside := authz.NewHierarchySet(99)

			Expect(authz.CanEditTask(scope, user, outside)).To(BeFalse())
		})
	})

	Describe("unknown role", func() {
		It("fails closed", func() {
			user := authz.UserContext{UserID: 7, Role: authz.Role("INTERN"), DepartmentID: 20}

			Expect(authz.CanEditTask(scope, user, hierarchy)).To(BeFalse())
		})
	})
})
