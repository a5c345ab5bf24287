package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/emeahub/resource-hub-api/internal/models"
	appErrors "github.com/emeahub/resource-hub-api/pkg/errors"
)

type catalogRepository interface {
	ListDepartments(ctx context.Context) ([]models.Department, error)
	ListSubjects(ctx context.Context, departmentID string, semester int) ([]models.Subject, error)
	FindSubject(ctx context.Context, id string) (*models.Subject, error)
	ListModules(ctx context.Context, subjectID string) ([]models.Module, error)
}

// CatalogService reads the academic structure used for upload placement and
// listing filters.
type CatalogService struct {
	repo   catalogRepository
	logger *zap.Logger
}

// NewCatalogService constructs a CatalogService instance.
func NewCatalogService(repo catalogRepository, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, logger: logger}
}

// Departments lists active departments.
func (s *CatalogService) Departments(ctx context.Context) ([]models.Department, error) {
	departments, err := s.repo.ListDepartments(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}
	return departments, nil
}

// Subjects lists subjects filtered by department and semester.
func (s *CatalogService) Subjects(ctx context.Context, departmentID string, semester int) ([]models.Subject, error) {
	subjects, err := s.repo.ListSubjects(ctx, departmentID, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, nil
}

// Modules lists the modules of one subject.
func (s *CatalogService) Modules(ctx context.Context, subjectID string) ([]models.Module, error) {
	if _, err := s.repo.FindSubject(ctx, subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	modules, err := s.repo.ListModules(ctx, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list modules")
	}
	return modules, nil
}
