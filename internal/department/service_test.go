package department_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	departmentDatamodel "github.com/taskhive/task-management/internal/core/datamodel/department"
	"github.com/taskhive/task-management/internal/department"
)

func TestDepartmentService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Department Service Suite")
}

type mockDepartmentRepository struct {
	departments map[int64]*departmentDatamodel.Department
	children    map[int64][]*departmentDatamodel.Department
	getError    error
}

func newMockDepartmentRepository() *mockDepartmentRepository {
	return &mockDepartmentRepository{
		departments: make(map[int64]*departmentDatamodel.Department),
		children:    make(map[int64][]*departmentDatamodel.Department),
	}
}

func (m *mockDepartmentRepository) add(id int64, name string, parentID *int64, active bool) {
	dm := &departmentDatamodel.Department{ID: id, Name: name, ParentID: parentID, IsActive: active}
	m.departments[id] = dm
	if parentID != nil {
		m.children[*parentID] = append(m.children[*parentID], dm)
	}
}

func (m *mockDepartmentRepository) GetByID(ctx context.Context, id int64) (*departmentDatamodel.Department, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.departments[id], nil
}

func (m *mockDepartmentRepository) GetByParent(ctx context.Context, parentID int64) ([]*departmentDatamodel.Department, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.children[parentID], nil
}

func (m *mockDepartmentRepository) GetAll(ctx context.Context) ([]*departmentDatamodel.Department, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	var all []*departmentDatamodel.Department
	for _, dm := range m.departments {
		all = append(all, dm)
	}
	return all, nil
}

func ptr(id int64) *int64 { return &id }

var _ = Describe("DepartmentService", func() {
	var (
		service *department.Service
		repo    *mockDepartmentRepository
		logger  *slog.Logger
		ctx     context.Context
	)

	BeforeEach(func() {
		repo = newMockDepartmentRepository()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = department.NewService(repo, logger)
		ctx = context.Background()
	})

	Describe("SubordinateDepartments", func() {
		Context("with a nested tree", func() {
			BeforeEach(func() {
				// Engineering -> Developers, Support; Developers -> Frontend
				repo.add(1, "Engineering", nil, true)
				repo.add(2, "Developers", ptr(1), true)
				repo.add(3, "Support", ptr(1), true)
				repo.add(4, "Frontend", ptr(2), true)
				repo.add(5, "Marketing", nil, true)
			})

			It("returns the root and every transitive descendant", func() {
				set, err := service.SubordinateDepartments(ctx, 1)

				Expect(err).ToNot(HaveOccurred())
				Expect(set).To(HaveLen(4))
				Expect(set.Contains(1)).To(BeTrue())
				Expect(set.Contains(2)).To(BeTrue())
				Expect(set.Contains(3)).To(BeTrue())
				Expect(set.Contains(4)).To(BeTrue())
				Expect(set.Contains(5)).To(BeFalse())
			})

			It("returns only the subtree for a mid-level root", func() {
				set, err := service.SubordinateDepartments(ctx, 2)

				Expect(err).ToNot(HaveOccurred())
				Expect(set).To(HaveLen(2))
				Expect(set.Contains(2)).To(BeTrue())
				Expect(set.Contains(4)).To(BeTrue())
				Expect(set.Contains(1)).To(BeFalse())
			})

			It("returns a singleton set for a leaf", func() {
				set, err := service.SubordinateDepartments(ctx, 4)

				Expect(err).ToNot(HaveOccurred())
				Expect(set).To(HaveLen(1))
				Expect(set.Contains(4)).To(BeTrue())
			})
		})

		Context("with an unknown root", func() {
			It("still returns a singleton set containing the root id", func() {
				set, err := service.SubordinateDepartments(ctx, 777)

				Expect(err).ToNot(HaveOccurred())
				Expect(set).To(HaveLen(1))
				Expect(set.Contains(777)).To(BeTrue())
			})
		})

		Context("with a cyclic parent chain", func() {
			BeforeEach(func() {
				// 1 -> 2 -> 3 -> back to 1
				repo.add(1, "A", ptr(3), true)
				repo.add(2, "B", ptr(1), true)
				repo.add(3, "C", ptr(2), true)
			})

			It("terminates and returns each department once", func() {
				set, err := service.SubordinateDepartments(ctx, 1)

				Expect(err).ToNot(HaveOccurred())
				Expect(set).To(HaveLen(3))
			})
		})

		Context("when the repository fails", func() {
			It("propagates the error", func() {
				repo.getError = errors.New("db down")

				_, err := service.SubordinateDepartments(ctx, 1)

				Expect(err).To(MatchError("db down"))
			})
		})
	})

	Describe("ListDepartments", func() {
		It("filters out inactive departments", func() {
			repo.add(1, "Engineering", nil, true)
			repo.add(2, "Dissolved", nil, false)

			departments, err := service.ListDepartments(ctx)

			Expect(err).ToNot(HaveOccurred())
			Expect(departments).To(HaveLen(1))
			Expect(departments[0].Name).To(Equal("Engineering"))
		})
	})
})
