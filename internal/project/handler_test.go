package project_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/taskhive/task-management/internal/auth"
	"github.com/taskhive/task-management/internal/authz"
	"github.com/taskhive/task-management/internal/project"
	"github.com/taskhive/task-management/internal/user"
)

var _ = Describe("ProjectHandler", func() {
	var (
		handler *project.Handler
		repo    *mockProjectRepository
	)

	BeforeEach(func() {
		repo = newMockProjectRepository()
		users := &mockUserStore{users: map[int64]*user.User{
			100: {ID: 100, Role: authz.RoleManager, DepartmentID: 1, IsActive: true},
			200: {ID: 200, Role: authz.RoleStaff, DepartmentID: 2, IsActive: true},
			300: {ID: 300, Role: authz.RoleHRAdmin, DepartmentID: 4, IsActive: true},
		}}
		resolver := authz.HierarchyResolverFunc(func(ctx context.Context, rootID int64) (authz.HierarchySet, error) {
			if rootID == 1 {
				return authz.NewHierarchySet(1, 2, 3), nil
			}
			return authz.NewHierarchySet(rootID), nil
		})
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service := project.NewService(repo, users, resolver, &mockEventPublisher{}, logger)
		handler = project.NewHandler(service)
	})

	newRequest := func(method, target string, u *auth.User, params map[string]string) *http.Request {
		req := httptest.NewRequest(method, target, nil)
		rctx := chi.NewRouteContext()
		for key, value := range params {
			rctx.URLParams.Add(key, value)
		}
		ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
		ctx = auth.ContextWithUser(ctx, u)
		return req.WithContext(ctx)
	}

	Describe("RemoveCollaborator", func() {
		BeforeEach(func() {
			repo.add(&project.Project{ID: 1, Name: "Platform Revamp", DepartmentID: 2})
		})

		It("answers staff with the manager-only message", func() {
			staffUser := &auth.User{ID: 200, Role: authz.RoleStaff, DepartmentID: 2}
			rec := httptest.NewRecorder()

			handler.RemoveCollaborator(rec, newRequest(http.MethodDelete, "/api/v1/projects/1/collaborators/300", staffUser,
				map[string]string{"id": "1", "userID": "300"}))

			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(rec.Body.String()).To(ContainSubstring("Only managers can remove collaborators from projects"))
			Expect(repo.removeCalls).To(BeEmpty())
		})

		It("removes the collaborator for a manager", func() {
			managerUser := &auth.User{ID: 100, Role: authz.RoleManager, DepartmentID: 1}
			rec := httptest.NewRecorder()

			handler.RemoveCollaborator(rec, newRequest(http.MethodDelete, "/api/v1/projects/1/collaborators/300", managerUser,
				map[string]string{"id": "1", "userID": "300"}))

			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(repo.removeCalls).To(ConsistOf("1:300"))
		})
	})

	Describe("GetProjects", func() {
		BeforeEach(func() {
			repo.add(&project.Project{ID: 1, Name: "Platform Revamp", DepartmentID: 2})
			repo.add(&project.Project{ID: 2, Name: "Shelved", DepartmentID: 2, IsArchived: true})
		})

		It("hides archived projects unless include_archived is set", func() {
			hrUser := &auth.User{ID: 300, Role: authz.RoleHRAdmin, DepartmentID: 4}

			rec := httptest.NewRecorder()
			handler.GetProjects(rec, newRequest(http.MethodGet, "/api/v1/projects", hrUser, nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).ToNot(ContainSubstring("Shelved"))

			rec = httptest.NewRecorder()
			handler.GetProjects(rec, newRequest(http.MethodGet, "/api/v1/projects?include_archived=true", hrUser, nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("Shelved"))
		})
	})
})
