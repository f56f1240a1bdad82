package task_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal "github.com/taskhive/task-management/internal"
	"github.com/taskhive/task-management/internal/authz"
	"github.com/taskhive/task-management/internal/core/events"
	"github.com/taskhive/task-management/internal/task"
)

var errAssert = errors.New("archive write failed")

var _ = Describe("ArchiveTask", func() {
	var (
		service   *task.Service
		repo      *mockTaskRepository
		publisher *mockEventPublisher
		ctx       context.Context

		manager authz.UserContext
		staff   authz.UserContext
		hrAdmin authz.UserContext
	)

	BeforeEach(func() {
		repo = newMockTaskRepository()
		publisher = &mockEventPublisher{}
		resolver := staticResolver(map[int64]authz.HierarchySet{
			1: authz.NewHierarchySet(1, 2, 3),
			2: authz.NewHierarchySet(2),
		})
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = task.NewService(repo, resolver, newMockCollaboratorStore(), publisher, logger)
		ctx = context.Background()

		manager = authz.UserContext{UserID: 100, Role: authz.RoleManager, DepartmentID: 1}
		staff = authz.UserContext{UserID: 200, Role: authz.RoleStaff, DepartmentID: 2}
		hrAdmin = authz.UserContext{UserID: 300, Role: authz.RoleHRAdmin, DepartmentID: 1}
	})

	It("denies staff with the manager-only message", func() {
		repo.add(&task.Task{ID: 1, DepartmentID: 2})

		_, err := service.ArchiveTask(ctx, 1, staff)

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(Equal("Unauthorized: Only managers can archive tasks"))
		Expect(repo.tasks[1].IsArchived).To(BeFalse())
	})

	It("denies a manager whose hierarchy does not cover the task's department", func() {
		repo.add(&task.Task{ID: 1, DepartmentID: 9})

		_, err := service.ArchiveTask(ctx, 1, manager)

		Expect(err).To(MatchError(internal.ErrUnauthorizedAccess))
		Expect(repo.tasks[1].IsArchived).To(BeFalse())
	})

	It("archives the whole subtask tree in one repository call", func() {
		root := repo.add(&task.Task{ID: 1, DepartmentID: 2})
		childA := repo.add(&task.Task{ID: 2, DepartmentID: 2, ParentTaskID: &root.ID})
		childB := repo.add(&task.Task{ID: 3, DepartmentID: 3, ParentTaskID: &root.ID})
		grandchild := repo.add(&task.Task{ID: 4, DepartmentID: 3, ParentTaskID: &childB.ID})

		ids, err := service.ArchiveTask(ctx, root.ID, manager)

		Expect(err).ToNot(HaveOccurred())
		Expect(ids).To(ConsistOf(root.ID, childA.ID, childB.ID, grandchild.ID))
		Expect(repo.archiveCalls).To(HaveLen(1))
		Expect(repo.archiveCalls[0]).To(ConsistOf(root.ID, childA.ID, childB.ID, grandchild.ID))
		for _, id := range ids {
			Expect(repo.tasks[id].IsArchived).To(BeTrue())
		}
	})

	It("lets HR admins archive inside their hierarchy", func() {
		repo.add(&task.Task{ID: 1, DepartmentID: 3})

		ids, err := service.ArchiveTask(ctx, 1, hrAdmin)

		Expect(err).ToNot(HaveOccurred())
		Expect(ids).To(Equal([]int64{1}))
	})

	It("rejects archiving an already archived task", func() {
		repo.add(&task.Task{ID: 1, DepartmentID: 2, IsArchived: true})

		_, err := service.ArchiveTask(ctx, 1, manager)

		Expect(err).To(MatchError(internal.ErrTaskAlreadyArchived))
		Expect(repo.archiveCalls).To(BeEmpty())
	})

	It("returns not found for an unknown task", func() {
		_, err := service.ArchiveTask(ctx, 42, manager)

		Expect(err).To(MatchError(internal.ErrTaskNotFound))
	})

	It("publishes one archived event carrying the full id set", func() {
		root := repo.add(&task.Task{ID: 1, DepartmentID: 2})
		repo.add(&task.Task{ID: 2, DepartmentID: 2, ParentTaskID: &root.ID})

		_, err := service.ArchiveTask(ctx, 1, manager)

		Expect(err).ToNot(HaveOccurred())
		archived := publisher.ofType(events.EventTypeTaskArchived)
		Expect(archived).To(HaveLen(1))
		event := archived[0].(*events.TaskArchivedEvent)
		Expect(event.TaskID).To(Equal(int64(1)))
		Expect(event.ArchivedIDs).To(ConsistOf(int64(1), int64(2)))
		Expect(event.ArchivedBy).To(Equal(manager.UserID))
	})

	It("publishes nothing when the write fails", func() {
		repo.add(&task.Task{ID: 1, DepartmentID: 2})
		repo.archiveError = errAssert

		_, err := service.ArchiveTask(ctx, 1, manager)

		Expect(err).To(MatchError(errAssert))
		Expect(publisher.published).To(BeEmpty())
	})
})
