package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/emeahub/resource-hub-api/internal/models"
)

// CatalogRepository reads the academic structure tables. The catalog is
// seeded out of band; the API only reads it.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new repository instance.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListDepartments returns active departments ordered by name.
func (r *CatalogRepository) ListDepartments(ctx context.Context) ([]models.Department, error) {
	const query = `SELECT id, name, code, active, created_at, updated_at
		FROM departments WHERE active = true ORDER BY name ASC`
	var departments []models.Department
	if err := r.db.SelectContext(ctx, &departments, query); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// ListSubjects returns subjects, optionally scoped to a department and
// semester.
func (r *CatalogRepository) ListSubjects(ctx context.Context, departmentID string, semester int) ([]models.Subject, error) {
	base := `SELECT id, department_id, name, code, semester, created_at, updated_at FROM subjects WHERE 1=1`
	var args []interface{}
	if departmentID != "" {
		base += fmt.Sprintf(" AND department_id = $%d", len(args)+1)
		args = append(args, departmentID)
	}
	if semester > 0 {
		base += fmt.Sprintf(" AND semester = $%d", len(args)+1)
		args = append(args, semester)
	}
	base += " ORDER BY semester ASC, name ASC"

	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, base, args...); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// FindSubject returns one subject by id.
func (r *CatalogRepository) FindSubject(ctx context.Context, id string) (*models.Subject, error) {
	const query = `SELECT id, department_id, name, code, semester, created_at, updated_at
		FROM subjects WHERE id = $1 LIMIT 1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// ListModules returns the modules of a subject in unit order.
func (r *CatalogRepository) ListModules(ctx context.Context, subjectID string) ([]models.Module, error) {
	const query = `SELECT id, subject_id, name, number, created_at
		FROM modules WHERE subject_id = $1 ORDER BY number ASC`
	var modules []models.Module
	if err := r.db.SelectContext(ctx, &modules, query, subjectID); err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return modules, nil
}
