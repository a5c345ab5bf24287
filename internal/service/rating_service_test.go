package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emeahub/resource-hub-api/internal/models"
	appErrors "github.com/emeahub/resource-hub-api/pkg/errors"
)

func ratedResourceFixture(resources *resourceRepoStub) {
	_ = resources.Create(context.Background(), &models.Resource{
		ID: "res-1", Title: "Compiler Design Notes", Status: models.StatusVerified,
		Visibility: models.VisibilityVisible, UploadedBy: "uploader-1",
	})
}

func TestRatingServiceFirstRatingAwardsOnce(t *testing.T) {
	resources := newResourceRepoStub()
	ratings := newRatingRepoStub()
	users := newUserRepoStub(&models.User{ID: "rater-1"})
	contributions := &contributionStub{}
	recompute := &recomputeStub{}
	ratedResourceFixture(resources)

	svc := NewRatingService(ratings, resources, users, contributions, recompute, nil, nil, 2)

	_, err := svc.Rate(context.Background(), "res-1", "rater-1", models.RateResourceRequest{Rating: 5})
	require.NoError(t, err)
	require.Equal(t, 2, users.users["rater-1"].ReputationPoints)
	require.Len(t, contributions.byAction(models.ContributionRate), 1)

	// Re-rating changes the stars but never pays twice.
	_, err = svc.Rate(context.Background(), "res-1", "rater-1", models.RateResourceRequest{Rating: 3})
	require.NoError(t, err)
	require.Equal(t, 2, users.users["rater-1"].ReputationPoints)
	require.Len(t, contributions.byAction(models.ContributionRate), 1)
	require.Equal(t, 3, ratings.ratings["res-1|rater-1"].Rating)
	require.Equal(t, []string{"rater-1"}, recompute.userIDs)
}

func TestRatingServiceRejectsOutOfRange(t *testing.T) {
	resources := newResourceRepoStub()
	ratedResourceFixture(resources)
	svc := NewRatingService(newRatingRepoStub(), resources, newUserRepoStub(), &contributionStub{}, nil, nil, nil, 2)

	for _, stars := range []int{0, 6, -1} {
		_, err := svc.Rate(context.Background(), "res-1", "rater-1", models.RateResourceRequest{Rating: stars})
		require.Error(t, err)
		require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestRatingServiceCannotRateOwnResource(t *testing.T) {
	resources := newResourceRepoStub()
	ratedResourceFixture(resources)
	svc := NewRatingService(newRatingRepoStub(), resources, newUserRepoStub(), &contributionStub{}, nil, nil, nil, 2)

	_, err := svc.Rate(context.Background(), "res-1", "uploader-1", models.RateResourceRequest{Rating: 5})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestRatingServiceOnlyPublicResourcesAreRatable(t *testing.T) {
	resources := newResourceRepoStub()
	_ = resources.Create(context.Background(), &models.Resource{
		ID: "res-pending", Status: models.StatusPending, Visibility: models.VisibilityVisible, UploadedBy: "uploader-1",
	})
	svc := NewRatingService(newRatingRepoStub(), resources, newUserRepoStub(), &contributionStub{}, nil, nil, nil, 2)

	_, err := svc.Rate(context.Background(), "res-pending", "rater-1", models.RateResourceRequest{Rating: 4})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
