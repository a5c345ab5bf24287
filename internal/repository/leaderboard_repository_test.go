package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/emeahub/resource-hub-api/internal/models"
)

func TestLeaderboardRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewLeaderboardRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO leaderboard_entries")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	badge := "Silver"
	entry := &models.LeaderboardEntry{
		UserID:      "user-1",
		TotalPoints: 120,
		UploadCount: 8,
		Badge:       &badge,
	}
	require.NoError(t, repo.Upsert(context.Background(), entry))
	require.NotEmpty(t, entry.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaderboardRepositoryRank(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewLeaderboardRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM leaderboard_entries WHERE total_points > $1")).
		WithArgs(120).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	rank, err := repo.Rank(context.Background(), 120)
	require.NoError(t, err)
	require.Equal(t, 5, rank)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaderboardSortClause(t *testing.T) {
	require.Equal(t, "le.upload_count DESC, le.total_points DESC", leaderboardSortClause(models.LeaderboardByUploads))
	require.Equal(t, "le.verification_count DESC, le.total_points DESC", leaderboardSortClause(models.LeaderboardByVerifications))
	require.Equal(t, "le.total_points DESC, le.updated_at ASC", leaderboardSortClause(models.LeaderboardByPoints))
	require.Equal(t, "le.total_points DESC, le.updated_at ASC", leaderboardSortClause(""))
}
