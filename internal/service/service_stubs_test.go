package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/emeahub/resource-hub-api/internal/models"
	appErrors "github.com/emeahub/resource-hub-api/pkg/errors"
)

type resourceRepoStub struct {
	resources map[string]*models.Resource
	nextID    int
}

func newResourceRepoStub() *resourceRepoStub {
	return &resourceRepoStub{resources: make(map[string]*models.Resource)}
}

func (r *resourceRepoStub) Create(ctx context.Context, resource *models.Resource) error {
	if resource.ID == "" {
		r.nextID++
		resource.ID = fmt.Sprintf("res-%d", r.nextID)
	}
	resource.CreatedAt = time.Now().UTC()
	copy := *resource
	r.resources[resource.ID] = &copy
	return nil
}

func (r *resourceRepoStub) FindByID(ctx context.Context, id string) (*models.Resource, error) {
	if res, ok := r.resources[id]; ok {
		copy := *res
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (r *resourceRepoStub) FindPublic(ctx context.Context, id string) (*models.Resource, error) {
	res, ok := r.resources[id]
	if !ok || res.Status != models.StatusVerified || res.Visibility != models.VisibilityVisible {
		return nil, sql.ErrNoRows
	}
	copy := *res
	return &copy, nil
}

func (r *resourceRepoStub) ListPublic(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, int, error) {
	var out []models.Resource
	for _, res := range r.resources {
		if res.Status != models.StatusVerified || res.Visibility != models.VisibilityVisible {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(res.Title), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *res)
	}
	return out, len(out), nil
}

func (r *resourceRepoStub) ListByUploader(ctx context.Context, userID string) ([]models.Resource, error) {
	var out []models.Resource
	for _, res := range r.resources {
		if res.UploadedBy == userID {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (r *resourceRepoStub) ListPending(ctx context.Context, resourceType models.ResourceType) ([]models.Resource, error) {
	var out []models.Resource
	for _, res := range r.resources {
		if res.Status != models.StatusPending {
			continue
		}
		if resourceType != "" && res.Type != resourceType {
			continue
		}
		out = append(out, *res)
	}
	return out, nil
}

func (r *resourceRepoStub) MarkVerified(ctx context.Context, id, verifierID string, at time.Time) (bool, error) {
	res, ok := r.resources[id]
	if !ok || res.Status != models.StatusPending {
		return false, nil
	}
	res.Status = models.StatusVerified
	res.VerifiedBy = &verifierID
	res.VerifiedAt = &at
	return true, nil
}

func (r *resourceRepoStub) MarkRejected(ctx context.Context, id, reason, verifierID string, at time.Time) (bool, error) {
	res, ok := r.resources[id]
	if !ok || res.Status != models.StatusPending {
		return false, nil
	}
	res.Status = models.StatusRejected
	res.RejectionReason = &reason
	res.VerifiedBy = &verifierID
	res.VerifiedAt = &at
	return true, nil
}

func (r *resourceRepoStub) Delete(ctx context.Context, id string) error {
	delete(r.resources, id)
	return nil
}

func (r *resourceRepoStub) IncrementViewCount(ctx context.Context, id string) error {
	if res, ok := r.resources[id]; ok {
		res.ViewCount++
	}
	return nil
}

func (r *resourceRepoStub) IncrementDownloadCount(ctx context.Context, id string) error {
	if res, ok := r.resources[id]; ok {
		res.DownloadCount++
	}
	return nil
}

func (r *resourceRepoStub) RecomputeRating(ctx context.Context, id string) (*models.RatingAggregate, error) {
	res, ok := r.resources[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.RatingAggregate{RatingAvg: res.RatingAvg, RatingCount: res.RatingCount}, nil
}

func (r *resourceRepoStub) CountVerifiedBy(ctx context.Context, userID string) (int, error) {
	count := 0
	for _, res := range r.resources {
		if res.VerifiedBy != nil && *res.VerifiedBy == userID && res.Status == models.StatusVerified {
			count++
		}
	}
	return count, nil
}

func (r *resourceRepoStub) AvgRatingByUploader(ctx context.Context, userID string) (float64, error) {
	var sum float64
	count := 0
	for _, res := range r.resources {
		if res.UploadedBy == userID {
			sum += res.RatingAvg
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return sum / float64(count), nil
}

func (r *resourceRepoStub) ListAdmin(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, int, error) {
	var out []models.Resource
	for _, res := range r.resources {
		if filter.Status != "" && res.Status != filter.Status {
			continue
		}
		if filter.Visibility != "" && res.Visibility != filter.Visibility {
			continue
		}
		out = append(out, *res)
	}
	return out, len(out), nil
}

func (r *resourceRepoStub) SetVisibility(ctx context.Context, id string, visibility models.ResourceVisibility, reason *string) error {
	res, ok := r.resources[id]
	if !ok {
		return sql.ErrNoRows
	}
	res.Visibility = visibility
	res.HideReason = reason
	return nil
}

func (r *resourceRepoStub) Count(ctx context.Context) (int, error) {
	return len(r.resources), nil
}

func (r *resourceRepoStub) CountByStatus(ctx context.Context, status models.ResourceStatus) (int, error) {
	count := 0
	for _, res := range r.resources {
		if res.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *resourceRepoStub) CountByVisibility(ctx context.Context, visibility models.ResourceVisibility) (int, error) {
	count := 0
	for _, res := range r.resources {
		if res.Visibility == visibility {
			count++
		}
	}
	return count, nil
}

type userRepoStub struct {
	users map[string]*models.User
}

func newUserRepoStub(users ...*models.User) *userRepoStub {
	stub := &userRepoStub{users: make(map[string]*models.User)}
	for _, u := range users {
		stub.users[u.ID] = u
	}
	return stub
}

func (u *userRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := u.users[id]; ok {
		copy := *user
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (u *userRepoStub) RecordUpload(ctx context.Context, userID string, points int) error {
	if user, ok := u.users[userID]; ok {
		user.TotalUploads++
		user.ReputationPoints += points
	}
	return nil
}

func (u *userRepoStub) AddReputationPoints(ctx context.Context, userID string, points int) error {
	if user, ok := u.users[userID]; ok {
		user.ReputationPoints += points
	}
	return nil
}

func (u *userRepoStub) AllIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for id := range u.users {
		ids = append(ids, id)
	}
	return ids, nil
}

func (u *userRepoStub) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var out []models.User
	for _, user := range u.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if filter.Verified != nil && user.Verified != *filter.Verified {
			continue
		}
		out = append(out, *user)
	}
	return out, len(out), nil
}

func (u *userRepoStub) SetVerified(ctx context.Context, userID string, verified bool) error {
	user, ok := u.users[userID]
	if !ok {
		return sql.ErrNoRows
	}
	user.Verified = verified
	return nil
}

func (u *userRepoStub) CountByRole(ctx context.Context, role models.UserRole) (int, error) {
	count := 0
	for _, user := range u.users {
		if user.Role == role {
			count++
		}
	}
	return count, nil
}

type auditStub struct {
	logs []*models.AuditLog
}

func (a *auditStub) Create(ctx context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func (a *auditStub) Recent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	var out []models.AuditLog
	for _, log := range a.logs {
		out = append(out, *log)
	}
	return out, nil
}

type contributionStub struct {
	logs []*models.ContributionLog
}

func (c *contributionStub) Append(ctx context.Context, log *models.ContributionLog) error {
	c.logs = append(c.logs, log)
	return nil
}

func (c *contributionStub) RecentByUser(ctx context.Context, userID string, limit int) ([]models.ContributionLog, error) {
	var out []models.ContributionLog
	for _, log := range c.logs {
		if log.UserID == userID {
			out = append(out, *log)
		}
	}
	return out, nil
}

func (c *contributionStub) byAction(action models.ContributionAction) []*models.ContributionLog {
	var out []*models.ContributionLog
	for _, log := range c.logs {
		if log.Action == action {
			out = append(out, log)
		}
	}
	return out
}

type achievementStub struct {
	defs   map[string]*models.Achievement
	earned map[string][]models.EarnedAchievement
	nextID int
}

func newAchievementStub(defs ...*models.Achievement) *achievementStub {
	s := &achievementStub{
		defs:   make(map[string]*models.Achievement),
		earned: make(map[string][]models.EarnedAchievement),
	}
	for _, def := range defs {
		_ = s.Create(context.Background(), def)
	}
	return s
}

func (a *achievementStub) ListAll(ctx context.Context) ([]models.Achievement, error) {
	var out []models.Achievement
	for _, def := range a.defs {
		out = append(out, *def)
	}
	return out, nil
}

func (a *achievementStub) FindByID(ctx context.Context, id string) (*models.Achievement, error) {
	if def, ok := a.defs[id]; ok {
		copy := *def
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (a *achievementStub) Create(ctx context.Context, achievement *models.Achievement) error {
	if achievement.ID == "" {
		a.nextID++
		achievement.ID = fmt.Sprintf("ach-%d", a.nextID)
	}
	copy := *achievement
	a.defs[achievement.ID] = &copy
	return nil
}

func (a *achievementStub) Update(ctx context.Context, achievement *models.Achievement) error {
	if _, ok := a.defs[achievement.ID]; !ok {
		return sql.ErrNoRows
	}
	copy := *achievement
	a.defs[achievement.ID] = &copy
	return nil
}

func (a *achievementStub) ListEarnedByUser(ctx context.Context, userID string) ([]models.EarnedAchievement, error) {
	return a.earned[userID], nil
}

func (a *achievementStub) Award(ctx context.Context, userID, achievementID string) error {
	for _, e := range a.earned[userID] {
		if e.ID == achievementID {
			return nil
		}
	}
	def, ok := a.defs[achievementID]
	if !ok {
		return sql.ErrNoRows
	}
	a.earned[userID] = append(a.earned[userID], models.EarnedAchievement{
		Achievement: *def,
		EarnedAt:    time.Now().UTC(),
	})
	return nil
}

type downloadStub struct {
	downloads []*models.Download
}

func (d *downloadStub) Create(ctx context.Context, download *models.Download) error {
	d.downloads = append(d.downloads, download)
	return nil
}

func (d *downloadStub) CountByUser(ctx context.Context, userID string) (int, error) {
	count := 0
	for _, dl := range d.downloads {
		if dl.UserID != nil && *dl.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (d *downloadStub) CountSince(ctx context.Context, since time.Time) (int, error) {
	count := 0
	for _, dl := range d.downloads {
		if !dl.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

type ratingRepoStub struct {
	ratings map[string]*models.Rating
}

func newRatingRepoStub() *ratingRepoStub {
	return &ratingRepoStub{ratings: make(map[string]*models.Rating)}
}

func (r *ratingRepoStub) Upsert(ctx context.Context, rating *models.Rating) (bool, error) {
	key := rating.ResourceID + "|" + rating.UserID
	if existing, ok := r.ratings[key]; ok {
		existing.Rating = rating.Rating
		existing.Review = rating.Review
		return false, nil
	}
	copy := *rating
	r.ratings[key] = &copy
	return true, nil
}

func (r *ratingRepoStub) ListByResource(ctx context.Context, resourceID string) ([]models.Rating, error) {
	var out []models.Rating
	for _, rating := range r.ratings {
		if rating.ResourceID == resourceID {
			out = append(out, *rating)
		}
	}
	return out, nil
}

func (r *ratingRepoStub) CountByUser(ctx context.Context, userID string) (int, error) {
	count := 0
	for _, rating := range r.ratings {
		if rating.UserID == userID {
			count++
		}
	}
	return count, nil
}

type leaderboardStub struct {
	entries map[string]*models.LeaderboardEntry
}

func newLeaderboardStub() *leaderboardStub {
	return &leaderboardStub{entries: make(map[string]*models.LeaderboardEntry)}
}

func (l *leaderboardStub) Upsert(ctx context.Context, entry *models.LeaderboardEntry) error {
	copy := *entry
	l.entries[entry.UserID] = &copy
	return nil
}

func (l *leaderboardStub) FindByUser(ctx context.Context, userID string) (*models.LeaderboardEntry, error) {
	if entry, ok := l.entries[userID]; ok {
		copy := *entry
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (l *leaderboardStub) Rank(ctx context.Context, totalPoints int) (int, error) {
	above := 0
	for _, entry := range l.entries {
		if entry.TotalPoints > totalPoints {
			above++
		}
	}
	return above + 1, nil
}

func (l *leaderboardStub) List(ctx context.Context, sort models.LeaderboardSort, page, size int) ([]models.LeaderboardEntry, int, error) {
	var out []models.LeaderboardEntry
	for _, entry := range l.entries {
		out = append(out, *entry)
	}
	return out, len(out), nil
}

type cacheStub struct {
	store  map[string][]byte
	hits   int
	misses int
}

func newCacheStub() *cacheStub {
	return &cacheStub{store: make(map[string][]byte)}
}

func (c *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c.store[key]
	if !ok {
		c.misses++
		return appErrors.ErrCacheMiss
	}
	c.hits++
	return json.Unmarshal(raw, dest)
}

func (c *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store[key] = raw
	return nil
}

func (c *cacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.store {
		if strings.HasPrefix(key, prefix) {
			delete(c.store, key)
		}
	}
	return nil
}

type recomputeStub struct {
	userIDs []string
}

func (r *recomputeStub) EnqueueRecompute(userID string) {
	r.userIDs = append(r.userIDs, userID)
}

type fileStoreStub struct {
	saved   map[string][]byte
	deleted []string
}

func newFileStoreStub() *fileStoreStub {
	return &fileStoreStub{saved: make(map[string][]byte)}
}

func (f *fileStoreStub) SaveStream(originalName string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	relPath := "resources/" + originalName
	f.saved[relPath] = data
	return relPath, nil
}

func (f *fileStoreStub) Delete(relPath string) error {
	f.deleted = append(f.deleted, relPath)
	delete(f.saved, relPath)
	return nil
}

func makeFileHeader(t *testing.T, filename, contentType string, size int) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename)}
	header["Content-Type"] = []string{contentType}
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("a"), size))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}
