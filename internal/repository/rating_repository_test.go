package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/emeahub/resource-hub-api/internal/models"
)

func TestRatingRepositoryUpsertFirstTime(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRatingRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO ratings")).
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(true))

	inserted, err := repo.Upsert(context.Background(), &models.Rating{
		ResourceID: "res-1",
		UserID:     "user-1",
		Rating:     5,
	})
	require.NoError(t, err)
	require.True(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingRepositoryUpsertRerate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRatingRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO ratings")).
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(false))

	inserted, err := repo.Upsert(context.Background(), &models.Rating{
		ResourceID: "res-1",
		UserID:     "user-1",
		Rating:     3,
	})
	require.NoError(t, err)
	require.False(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}
