package task_test

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
	"github.com/taskhive/task-management/internal/task"
)

var _ = Describe("TaskHandler", func() {
	var (
		handler *task.Handler
		repo    *mockTaskRepository
	)

	BeforeEach(func() {
		repo = newMockTaskRepository()
		resolver := staticResolver(map[int64]authz.HierarchySet{
			1: authz.NewHierarchySet(1, 2, 3),
			2: authz.NewHierarchySet(2),
		})
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service := task.NewService(repo, resolver, newMockCollaboratorStore(), &mockEventPublisher{}, logger)
		handler = task.NewHandler(service)
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

	Describe("ArchiveTask", func() {
		BeforeEach(func() {
			repo.add(&task.Task{ID: 1, Title: "wrap up", DepartmentID: 2})
		})

		It("answers staff with the manager-only message", func() {
			staffUser := &auth.User{ID: 200, Role: authz.RoleStaff, DepartmentID: 2}
			rec := httptest.NewRecorder()

			handler.ArchiveTask(rec, newRequest(http.MethodPost, "/api/v1/tasks/1/archive", staffUser, map[string]string{"id": "1"}))

			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(rec.Body.String()).To(ContainSubstring("Unauthorized: Only managers can archive tasks"))
		})

		It("archives the tree for a manager", func() {
			managerUser := &auth.User{ID: 100, Role: authz.RoleManager, DepartmentID: 1}
			rec := httptest.NewRecorder()

			handler.ArchiveTask(rec, newRequest(http.MethodPost, "/api/v1/tasks/1/archive", managerUser, map[string]string{"id": "1"}))

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("archived_ids"))
			Expect(repo.tasks[1].IsArchived).To(BeTrue())
		})

		It("rejects a malformed task id", func() {
			managerUser := &auth.User{ID: 100, Role: authz.RoleManager, DepartmentID: 1}
			rec := httptest.NewRecorder()

			handler.ArchiveTask(rec, newRequest(http.MethodPost, "/api/v1/tasks/abc/archive", managerUser, map[string]string{"id": "abc"}))

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
