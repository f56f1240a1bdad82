package task_test

import (
	"context"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/taskhive/task-management/internal/department"
	"github.com/taskhive/task-management/internal/task"
)

var _ = Describe("InvolvedDepartments", func() {
	It("lists departments in first-seen assignment order", func() {
		assignees := []task.AssigneeDepartment{
			{UserID: 1, DepartmentID: 20, DepartmentName: "Developers"},
			{UserID: 2, DepartmentID: 30, DepartmentName: "Support"},
			{UserID: 3, DepartmentID: 20, DepartmentName: "Developers"},
		}

		refs := task.InvolvedDepartments(assignees, nil)

		Expect(refs).To(Equal([]department.Ref{
			{ID: 20, Name: "Developers"},
			{ID: 30, Name: "Support"},
		}))
	})

	It("returns nothing for a task with no assignees and no parent", func() {
		Expect(task.InvolvedDepartments(nil, nil)).To(BeEmpty())
	})

	It("puts the parent task's department first even without assignees in it", func() {
		parentDept := int64(10)
		assignees := []task.AssigneeDepartment{
			{UserID: 1, DepartmentID: 30, DepartmentName: "Support"},
		}

		refs := task.InvolvedDepartments(assignees, &parentDept)

		Expect(refs).To(HaveLen(2))
		Expect(refs[0].ID).To(Equal(int64(10)))
		Expect(refs[0].Name).To(BeEmpty())
		Expect(refs[1]).To(Equal(department.Ref{ID: 30, Name: "Support"}))
	})

	It("backfills the parent department's name from its own assignees", func() {
		parentDept := int64(20)
		assignees := []task.AssigneeDepartment{
			{UserID: 1, DepartmentID: 30, DepartmentName: "Support"},
			{UserID: 2, DepartmentID: 20, DepartmentName: "Developers"},
		}

		refs := task.InvolvedDepartments(assignees, &parentDept)

		Expect(refs).To(Equal([]department.Ref{
			{ID: 20, Name: "Developers"},
			{ID: 30, Name: "Support"},
		}))
	})
})

var _ = Describe("GetInvolvedDepartments", func() {
	var (
		service *task.Service
		repo    *mockTaskRepository
		ctx     context.Context
	)

	BeforeEach(func() {
		repo = newMockTaskRepository()
		resolver := staticResolver(nil)
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = task.NewService(repo, resolver, newMockCollaboratorStore(), &mockEventPublisher{}, logger)
		ctx = context.Background()
	})

	It("leads with the parent task's department for a subtask", func() {
		parent := repo.add(&task.Task{ID: 1, DepartmentID: 10})
		sub := repo.add(&task.Task{ID: 2, DepartmentID: 20, ParentTaskID: &parent.ID})
		repo.assigneeDeps[sub.ID] = []task.AssigneeDepartment{
			{UserID: 1, DepartmentID: 30, DepartmentName: "Support"},
		}

		refs, err := service.GetInvolvedDepartments(ctx, sub.ID)

		Expect(err).ToNot(HaveOccurred())
		Expect(refs).To(HaveLen(2))
		Expect(refs[0].ID).To(Equal(int64(10)))
		Expect(refs[1].ID).To(Equal(int64(30)))
	})

	It("uses assignment order for a top-level task", func() {
		t := repo.add(&task.Task{ID: 1, DepartmentID: 10})
		repo.assigneeDeps[t.ID] = []task.AssigneeDepartment{
			{UserID: 2, DepartmentID: 30, DepartmentName: "Support"},
			{UserID: 1, DepartmentID: 20, DepartmentName: "Developers"},
		}

		refs, err := service.GetInvolvedDepartments(ctx, t.ID)

		Expect(err).ToNot(HaveOccurred())
		Expect(refs).To(Equal([]department.Ref{
			{ID: 30, Name: "Support"},
			{ID: 20, Name: "Developers"},
		}))
	})
})
