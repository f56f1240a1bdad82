package department

import (
	"context"
	"log/slog"

	"github.com/taskhive/task-management/internal/authz"
	departmentDatamodel "github.com/taskhive/task-management/internal/core/datamodel/department"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*departmentDatamodel.Department, error)
	GetByParent(ctx context.Context, parentID int64) ([]*departmentDatamodel.Department, error)
	GetAll(ctx context.Context) ([]*departmentDatamodel.Department, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// SubordinateDepartments walks the department tree downward from rootID and
// returns the hierarchy set: rootID itself plus every transitive descendant.
// The root is always included, even when no such department exists; callers
// filtering by the set then simply match nothing. Inactive departments stay
// in the set so existing task visibility survives department archival.
//
// Traversal is iterative with a visited set, so a malformed cyclic parent
// chain terminates instead of recursing forever.
func (s *Service) SubordinateDepartments(ctx context.Context, rootID int64) (authz.HierarchySet, error) {
	hierarchy := authz.NewHierarchySet(rootID)

	queue := []int64{rootID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		children, err := s.repo.GetByParent(ctx, current)
		if err != nil {
			s.logger.Error("failed to load child departments", "error", err, "department_id", current)
			return nil, err
		}

		for _, child := range children {
			if hierarchy.Contains(child.ID) {
				s.logger.Warn("department tree contains a cycle, skipping revisit",
					"department_id", child.ID, "parent_id", current)
				continue
			}
			hierarchy[child.ID] = struct{}{}
			queue = append(queue, child.ID)
		}
	}

	return hierarchy, nil
}

// GetDepartment returns a single department by id.
func (s *Service) GetDepartment(ctx context.Context, id int64) (*Department, error) {
	dm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if dm == nil {
		return nil, nil
	}
	return FromDataModel(dm), nil
}

// ListDepartments returns the active department forest for pickers.
func (s *Service) ListDepartments(ctx context.Context) ([]*Department, error) {
	dms, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list departments", "error", err)
		return nil, err
	}

	var departments []*Department
	for _, dm := range dms {
		if dm.IsActive {
			departments = append(departments, FromDataModel(dm))
		}
	}

	s.logger.Info("retrieved departments", "count", len(departments))
	return departments, nil
}

var _ authz.HierarchyResolver = (*Service)(nil)
