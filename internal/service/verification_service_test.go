package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emeahub/resource-hub-api/internal/models"
	appErrors "github.com/emeahub/resource-hub-api/pkg/errors"
)

func pendingResourceFixture(resources *resourceRepoStub) {
	_ = resources.Create(context.Background(), &models.Resource{
		ID: "res-1", Title: "DBMS PYQ 2024", Status: models.StatusPending,
		Visibility: models.VisibilityVisible, UploadedBy: "uploader-1",
	})
}

func TestVerificationServiceApproveAwardsUploader(t *testing.T) {
	resources := newResourceRepoStub()
	users := newUserRepoStub(&models.User{ID: "uploader-1"})
	contributions := &contributionStub{}
	recompute := &recomputeStub{}
	pendingResourceFixture(resources)

	svc := NewVerificationService(resources, users, contributions, recompute, nil, nil, 10)

	summary, err := svc.Verify(context.Background(), "res-1", "teacher-1", models.RoleTeacher,
		models.VerifyResourceRequest{Action: models.ActionApprove})
	require.NoError(t, err)
	require.Equal(t, models.StatusVerified, summary.Status)

	require.Equal(t, 10, users.users["uploader-1"].ReputationPoints)
	verifyLogs := contributions.byAction(models.ContributionVerify)
	require.Len(t, verifyLogs, 1)
	require.Equal(t, "uploader-1", verifyLogs[0].UserID)
	require.Equal(t, 10, verifyLogs[0].PointsEarned)
	require.Equal(t, []string{"uploader-1"}, recompute.userIDs)
}

func TestVerificationServiceRejectRequiresReason(t *testing.T) {
	resources := newResourceRepoStub()
	pendingResourceFixture(resources)
	svc := NewVerificationService(resources, newUserRepoStub(), &contributionStub{}, nil, nil, nil, 10)

	_, err := svc.Verify(context.Background(), "res-1", "teacher-1", models.RoleTeacher,
		models.VerifyResourceRequest{Action: models.ActionReject})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	summary, err := svc.Verify(context.Background(), "res-1", "teacher-1", models.RoleTeacher,
		models.VerifyResourceRequest{Action: models.ActionReject, Reason: "duplicate of an existing upload"})
	require.NoError(t, err)
	require.Equal(t, models.StatusRejected, summary.Status)
	require.NotNil(t, resources.resources["res-1"].RejectionReason)
}

func TestVerificationServiceRejectAwardsNothing(t *testing.T) {
	resources := newResourceRepoStub()
	users := newUserRepoStub(&models.User{ID: "uploader-1"})
	contributions := &contributionStub{}
	pendingResourceFixture(resources)
	svc := NewVerificationService(resources, users, contributions, nil, nil, nil, 10)

	_, err := svc.Verify(context.Background(), "res-1", "teacher-1", models.RoleTeacher,
		models.VerifyResourceRequest{Action: models.ActionReject, Reason: "poor scan quality"})
	require.NoError(t, err)
	require.Equal(t, 0, users.users["uploader-1"].ReputationPoints)
	require.Empty(t, contributions.logs)
}

func TestVerificationServiceDecisionsAreTerminal(t *testing.T) {
	resources := newResourceRepoStub()
	users := newUserRepoStub(&models.User{ID: "uploader-1"})
	pendingResourceFixture(resources)
	svc := NewVerificationService(resources, users, &contributionStub{}, nil, nil, nil, 10)

	_, err := svc.Verify(context.Background(), "res-1", "teacher-1", models.RoleTeacher,
		models.VerifyResourceRequest{Action: models.ActionApprove})
	require.NoError(t, err)

	// A second decision of either kind must fail and award nothing more.
	_, err = svc.Verify(context.Background(), "res-1", "teacher-2", models.RoleTeacher,
		models.VerifyResourceRequest{Action: models.ActionReject, Reason: "changed my mind"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrAlreadyProcessed.Code, appErrors.FromError(err).Code)
	require.Equal(t, 10, users.users["uploader-1"].ReputationPoints)
}

func TestVerificationServiceStudentsCannotVerify(t *testing.T) {
	resources := newResourceRepoStub()
	pendingResourceFixture(resources)
	svc := NewVerificationService(resources, newUserRepoStub(), &contributionStub{}, nil, nil, nil, 10)

	_, err := svc.Verify(context.Background(), "res-1", "student-1", models.RoleStudent,
		models.VerifyResourceRequest{Action: models.ActionApprove})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.ListPending(context.Background(), models.RoleStudent, "")
	require.Error(t, err)
}

func TestVerificationServiceListPendingFiltersByType(t *testing.T) {
	resources := newResourceRepoStub()
	_ = resources.Create(context.Background(), &models.Resource{
		ID: "res-note", Type: models.TypeNote, Status: models.StatusPending, Visibility: models.VisibilityVisible,
	})
	_ = resources.Create(context.Background(), &models.Resource{
		ID: "res-pyq", Type: models.TypePYQ, Status: models.StatusPending, Visibility: models.VisibilityVisible,
	})
	svc := NewVerificationService(resources, newUserRepoStub(), &contributionStub{}, nil, nil, nil, 10)

	pending, err := svc.ListPending(context.Background(), models.RoleTeacher, models.TypePYQ)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "res-pyq", pending[0].ID)
}
