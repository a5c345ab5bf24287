package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/emeahub/resource-hub-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestResourceRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewResourceRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO resources")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	resource := &models.Resource{
		Title:        "Operating Systems Unit 3 Notes",
		Type:         models.TypeNote,
		FileURL:      "resources/1700000000_os-unit-3.pdf",
		FileName:     "os-unit-3.pdf",
		FileSizeKB:   420,
		DepartmentID: "dept-1",
		SubjectID:    "subj-1",
		Semester:     5,
		Status:       models.StatusPending,
		Visibility:   models.VisibilityVisible,
		Version:      1,
		IsLatest:     true,
		UploadedBy:   "user-1",
	}
	require.NoError(t, repo.Create(context.Background(), resource))
	require.NotEmpty(t, resource.ID)

	rows := sqlmock.NewRows([]string{"id", "title", "type", "status", "visibility", "uploaded_by"}).
		AddRow(resource.ID, resource.Title, "note", "pending", "visible", "user-1")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT r.id, r.title")).
		WithArgs(resource.ID).
		WillReturnRows(rows)

	found, err := repo.FindByID(context.Background(), resource.ID)
	require.NoError(t, err)
	require.Equal(t, resource.ID, found.ID)
	require.Equal(t, models.StatusPending, found.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryMarkVerifiedGuard(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewResourceRepository(db)
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE resources SET status")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := repo.MarkVerified(context.Background(), "res-1", "teacher-1", now)
	require.NoError(t, err)
	require.True(t, ok)

	// Second decision races onto the same row and matches nothing.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE resources SET status")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = repo.MarkVerified(context.Background(), "res-1", "teacher-2", now)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryMarkRejectedGuard(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewResourceRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE resources SET status")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err := repo.MarkRejected(context.Background(), "res-1", "duplicate upload", "teacher-1", time.Now())
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryListPublicAppliesPolicy(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewResourceRepository(db)
	rows := sqlmock.NewRows([]string{"id", "title", "status", "visibility"}).
		AddRow("res-1", "DSA PYQ 2024", "verified", "visible")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.status = $1 AND r.visibility = $2")).
		WithArgs(models.StatusVerified, models.VisibilityVisible, models.TypePYQ).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(models.StatusVerified, models.VisibilityVisible, models.TypePYQ).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.ListPublic(context.Background(), models.ResourceFilter{Type: models.TypePYQ})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, list, 1)
	require.Equal(t, "res-1", list[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryRecomputeRating(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewResourceRepository(db)
	rows := sqlmock.NewRows([]string{"rating_avg", "rating_count"}).AddRow(4.5, 2)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE resources SET")).
		WillReturnRows(rows)

	agg, err := repo.RecomputeRating(context.Background(), "res-1")
	require.NoError(t, err)
	require.InDelta(t, 4.5, agg.RatingAvg, 0.001)
	require.Equal(t, 2, agg.RatingCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublicSortClause(t *testing.T) {
	require.Equal(t, "r.download_count DESC", publicSortClause("popular"))
	require.Equal(t, "r.rating_avg DESC", publicSortClause("rating"))
	require.Equal(t, "r.created_at ASC", publicSortClause("oldest"))
	require.Equal(t, "r.created_at DESC", publicSortClause(""))
	require.Equal(t, "r.created_at DESC", publicSortClause("nonsense"))
}
