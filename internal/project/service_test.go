package project_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal "github.com/taskhive/task-management/internal"
	"github.com/taskhive/task-management/internal/authz"
	"github.com/taskhive/task-management/internal/core/events"
	"github.com/taskhive/task-management/internal/project"
	"github.com/taskhive/task-management/internal/user"
)

func TestProjectService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Project Service Suite")
}

type mockProjectRepository struct {
	projects      map[int64]*project.Project
	grants        map[int64][]int64
	collaborators map[int64][]project.Collaborator
	assignedTasks map[string][]project.AssignedTask
	removeCalls   []string
	nextID        int64
}

func newMockProjectRepository() *mockProjectRepository {
	return &mockProjectRepository{
		projects:      make(map[int64]*project.Project),
		grants:        make(map[int64][]int64),
		collaborators: make(map[int64][]project.Collaborator),
		assignedTasks: make(map[string][]project.AssignedTask),
		nextID:        1,
	}
}

func (m *mockProjectRepository) add(p *project.Project) *project.Project {
	if p.ID == 0 {
		p.ID = m.nextID
		m.nextID++
	}
	m.projects[p.ID] = p
	return p
}

func (m *mockProjectRepository) Create(ctx context.Context, p *project.Project) error {
	m.add(p)
	return nil
}

func (m *mockProjectRepository) GetByID(ctx context.Context, id int64) (*project.Project, error) {
	return m.projects[id], nil
}

func (m *mockProjectRepository) GetAll(ctx context.Context, includeArchived bool) ([]*project.Project, error) {
	var all []*project.Project
	for _, p := range m.projects {
		if !includeArchived && p.IsArchived {
			continue
		}
		all = append(all, p)
	}
	return all, nil
}

func (m *mockProjectRepository) GetVisible(ctx context.Context, departmentIDs []int64, includeArchived bool) ([]*project.Project, error) {
	inSet := make(map[int64]struct{}, len(departmentIDs))
	for _, id := range departmentIDs {
		inSet[id] = struct{}{}
	}
	var visible []*project.Project
	for _, p := range m.projects {
		if !includeArchived && p.IsArchived {
			continue
		}
		if _, ok := inSet[p.DepartmentID]; ok {
			visible = append(visible, p)
			continue
		}
		for _, granted := range m.grants[p.ID] {
			if _, ok := inSet[granted]; ok {
				visible = append(visible, p)
				break
			}
		}
	}
	return visible, nil
}

func (m *mockProjectRepository) GetCollaborators(ctx context.Context, projectID int64) ([]project.Collaborator, error) {
	return m.collaborators[projectID], nil
}

func (m *mockProjectRepository) GetUserAssignedTasks(ctx context.Context, projectID, userID int64) ([]project.AssignedTask, error) {
	return m.assignedTasks[fmt.Sprintf("%d:%d", projectID, userID)], nil
}

func (m *mockProjectRepository) RemoveCollaborator(ctx context.Context, projectID, userID int64) error {
	m.removeCalls = append(m.removeCalls, fmt.Sprintf("%d:%d", projectID, userID))
	return nil
}

func (m *mockProjectRepository) GrantDepartmentAccess(ctx context.Context, projectID, departmentID int64) error {
	m.grants[projectID] = append(m.grants[projectID], departmentID)
	return nil
}

type mockUserStore struct {
	users map[int64]*user.User
}

func (m *mockUserStore) GetByID(ctx context.Context, userID int64) (*user.User, error) {
	return m.users[userID], nil
}

type mockEventPublisher struct {
	published []events.Event
}

func (m *mockEventPublisher) Publish(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

var _ = Describe("ProjectService", func() {
	var (
		service   *project.Service
		repo      *mockProjectRepository
		users     *mockUserStore
		publisher *mockEventPublisher
		ctx       context.Context

		manager authz.UserContext
		staff   authz.UserContext
		hrAdmin authz.UserContext
	)

	BeforeEach(func() {
		repo = newMockProjectRepository()
		users = &mockUserStore{users: map[int64]*user.User{
			100: {ID: 100, Role: authz.RoleManager, DepartmentID: 1, IsActive: true},
			200: {ID: 200, Role: authz.RoleStaff, DepartmentID: 2, IsActive: true},
			300: {ID: 300, Role: authz.RoleHRAdmin, DepartmentID: 4, IsActive: true},
		}}
		publisher = &mockEventPublisher{}
		resolver := authz.HierarchyResolverFunc(func(ctx context.Context, rootID int64) (authz.HierarchySet, error) {
			if rootID == 1 {
				return authz.NewHierarchySet(1, 2, 3), nil
			}
			return authz.NewHierarchySet(rootID), nil
		})
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = project.NewService(repo, users, resolver, publisher, logger)
		ctx = context.Background()

		manager = authz.UserContext{UserID: 100, Role: authz.RoleManager, DepartmentID: 1}
		staff = authz.UserContext{UserID: 200, Role: authz.RoleStaff, DepartmentID: 2}
		hrAdmin = authz.UserContext{UserID: 300, Role: authz.RoleHRAdmin, DepartmentID: 4}
	})

	Describe("VisibleProjects", func() {
		BeforeEach(func() {
			repo.add(&project.Project{ID: 1, Name: "In hierarchy", DepartmentID: 2})
			repo.add(&project.Project{ID: 2, Name: "Elsewhere", DepartmentID: 9})
		})

		It("rejects a missing user id with the authentication message", func() {
			_, err := service.VisibleProjects(ctx, 0, false)

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(Equal("User not authenticated"))
		})

		It("rejects an unknown user with the profile message", func() {
			_, err := service.VisibleProjects(ctx, 12345, false)

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(Equal("User profile not found"))
		})

		It("shows HR admins every project regardless of hierarchy", func() {
			projects, err := service.VisibleProjects(ctx, hrAdmin.UserID, false)

			Expect(err).ToNot(HaveOccurred())
			Expect(projects).To(HaveLen(2))
		})

		It("scopes everyone else to their hierarchy", func() {
			projects, err := service.VisibleProjects(ctx, manager.UserID, false)

			Expect(err).ToNot(HaveOccurred())
			Expect(projects).To(HaveLen(1))
			Expect(projects[0].ID).To(Equal(int64(1)))
		})

		It("includes projects bridged in through a department access grant", func() {
			repo.grants[2] = []int64{3}

			projects, err := service.VisibleProjects(ctx, manager.UserID, false)

			Expect(err).ToNot(HaveOccurred())
			Expect(projects).To(HaveLen(2))
		})

		It("does not extend a staff user's visibility beyond their own subtree", func() {
			projects, err := service.VisibleProjects(ctx, staff.UserID, false)

			Expect(err).ToNot(HaveOccurred())
			Expect(projects).To(HaveLen(1))
			Expect(projects[0].DepartmentID).To(Equal(int64(2)))
		})

		Context("archived projects", func() {
			BeforeEach(func() {
				repo.add(&project.Project{ID: 3, Name: "Shelved", DepartmentID: 2, IsArchived: true})
			})

			It("hides them by default", func() {
				projects, err := service.VisibleProjects(ctx, manager.UserID, false)

				Expect(err).ToNot(HaveOccurred())
				Expect(projects).To(HaveLen(1))
				Expect(projects[0].ID).To(Equal(int64(1)))
			})

			It("includes them when asked for", func() {
				projects, err := service.VisibleProjects(ctx, manager.UserID, true)

				Expect(err).ToNot(HaveOccurred())
				Expect(projects).To(HaveLen(2))
			})

			It("applies the same filter to the HR admin listing", func() {
				projects, err := service.VisibleProjects(ctx, hrAdmin.UserID, false)
				Expect(err).ToNot(HaveOccurred())
				Expect(projects).To(HaveLen(2))

				projects, err = service.VisibleProjects(ctx, hrAdmin.UserID, true)
				Expect(err).ToNot(HaveOccurred())
				Expect(projects).To(HaveLen(3))
			})
		})
	})

	Describe("GetProject", func() {
		BeforeEach(func() {
			repo.add(&project.Project{ID: 1, Name: "Visible", DepartmentID: 2})
			repo.add(&project.Project{ID: 2, Name: "Hidden", DepartmentID: 9})
		})

		It("returns a hierarchy project", func() {
			p, err := service.GetProject(ctx, 1, manager.UserID)

			Expect(err).ToNot(HaveOccurred())
			Expect(p.Name).To(Equal("Visible"))
		})

		It("hides projects outside the hierarchy as not found", func() {
			_, err := service.GetProject(ctx, 2, manager.UserID)

			Expect(err).To(MatchError(internal.ErrProjectNotFound))
		})

		It("honors bridge grants on single project reads", func() {
			repo.grants[2] = []int64{2}

			p, err := service.GetProject(ctx, 2, manager.UserID)

			Expect(err).ToNot(HaveOccurred())
			Expect(p.ID).To(Equal(int64(2)))
		})

		It("lets HR admins read any project", func() {
			p, err := service.GetProject(ctx, 2, hrAdmin.UserID)

			Expect(err).ToNot(HaveOccurred())
			Expect(p.Name).To(Equal("Hidden"))
		})
	})

	Describe("CreateProject", func() {
		It("creates a project with the actor as creator", func() {
			dto := project.CreateProjectDTO{Name: "Platform Revamp", DepartmentID: 1, Status: project.StatusActive}

			p, err := service.CreateProject(ctx, dto, manager)

			Expect(err).ToNot(HaveOccurred())
			Expect(p.ID).To(BeNumerically(">", 0))
			Expect(p.CreatorID).To(Equal(manager.UserID))
		})

		It("rejects an invalid status", func() {
			dto := project.CreateProjectDTO{Name: "Bad", DepartmentID: 1, Status: "PAUSED"}

			_, err := service.CreateProject(ctx, dto, manager)

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("RemoveCollaborator", func() {
		BeforeEach(func() {
			repo.add(&project.Project{ID: 1, Name: "Platform Revamp", DepartmentID: 2})
		})

		It("denies staff with the manager-only message", func() {
			err := service.RemoveCollaborator(ctx, 1, 200, staff)

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(Equal("Only managers can remove collaborators from projects"))
			Expect(repo.removeCalls).To(BeEmpty())
		})

		It("denies HR admins too", func() {
			err := service.RemoveCollaborator(ctx, 1, 200, hrAdmin)

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(Equal("Only managers can remove collaborators from projects"))
		})

		It("blocks removal that would leave a task without assignees", func() {
			repo.assignedTasks["1:200"] = []project.AssignedTask{
				{TaskID: 7, AssigneeCount: 2},
				{TaskID: 8, AssigneeCount: 1},
			}

			err := service.RemoveCollaborator(ctx, 1, 200, manager)

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(Equal("Task 8 must have at least one assignee"))
			Expect(repo.removeCalls).To(BeEmpty())
			Expect(publisher.published).To(BeEmpty())
		})

		It("removes the collaborator and publishes a removal event", func() {
			repo.assignedTasks["1:200"] = []project.AssignedTask{
				{TaskID: 7, AssigneeCount: 2},
			}

			err := service.RemoveCollaborator(ctx, 1, 200, manager)

			Expect(err).ToNot(HaveOccurred())
			Expect(repo.removeCalls).To(Equal([]string{"1:200"}))
			Expect(publisher.published).To(HaveLen(1))
			removed := publisher.published[0].(*events.CollaborationRemovedEvent)
			Expect(removed.ProjectID).To(Equal(int64(1)))
			Expect(removed.ProjectName).To(Equal("Platform Revamp"))
			Expect(removed.UserID).To(Equal(int64(200)))
			Expect(removed.RemovedByID).To(Equal(manager.UserID))
		})

		It("returns not found for an unknown project", func() {
			err := service.RemoveCollaborator(ctx, 42, 200, manager)

			Expect(err).To(MatchError(internal.ErrProjectNotFound))
		})
	})

	Describe("GrantDepartmentAccess", func() {
		It("records the grant", func() {
			repo.add(&project.Project{ID: 1, DepartmentID: 2})

			err := service.GrantDepartmentAccess(ctx, 1, 9, manager)

			Expect(err).ToNot(HaveOccurred())
			Expect(repo.grants[1]).To(Equal([]int64{9}))
		})

		It("returns not found for an unknown project", func() {
			err := service.GrantDepartmentAccess(ctx, 42, 9, manager)

			Expect(err).To(MatchError(internal.ErrProjectNotFound))
		})
	})
})
