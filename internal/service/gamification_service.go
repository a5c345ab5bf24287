package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/emeahub/resource-hub-api/internal/models"
	"github.com/emeahub/resource-hub-api/pkg/config"
	appErrors "github.com/emeahub/resource-hub-api/pkg/errors"
	"github.com/emeahub/resource-hub-api/pkg/jobs"
)

type gamificationUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	AllIDs(ctx context.Context) ([]string, error)
}

type gamificationResourceRepository interface {
	CountVerifiedBy(ctx context.Context, userID string) (int, error)
	AvgRatingByUploader(ctx context.Context, userID string) (float64, error)
}

type gamificationRatingRepository interface {
	CountByUser(ctx context.Context, userID string) (int, error)
}

type gamificationDownloadRepository interface {
	CountByUser(ctx context.Context, userID string) (int, error)
}

type leaderboardRepository interface {
	Upsert(ctx context.Context, entry *models.LeaderboardEntry) error
	FindByUser(ctx context.Context, userID string) (*models.LeaderboardEntry, error)
	Rank(ctx context.Context, totalPoints int) (int, error)
	List(ctx context.Context, sort models.LeaderboardSort, page, size int) ([]models.LeaderboardEntry, int, error)
}

type contributionReader interface {
	RecentByUser(ctx context.Context, userID string, limit int) ([]models.ContributionLog, error)
}

type achievementReader interface {
	ListAll(ctx context.Context) ([]models.Achievement, error)
	ListEarnedByUser(ctx context.Context, userID string) ([]models.EarnedAchievement, error)
	Award(ctx context.Context, userID, achievementID string) error
}

type leaderboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

const leaderboardCachePrefix = "leaderboard:page:"

// MyStats is the personal gamification summary.
type MyStats struct {
	TotalPoints         int                        `json:"total_points"`
	Rank                int                        `json:"rank"`
	Badge               *string                    `json:"badge,omitempty"`
	NextBadge           *models.BadgeProgress      `json:"next_badge,omitempty"`
	UploadCount         int                        `json:"upload_count"`
	VerificationCount   int                        `json:"verification_count"`
	RatingCount         int                        `json:"rating_count"`
	DownloadCount       int                        `json:"download_count"`
	AvgRating           float64                    `json:"avg_rating"`
	Achievements        []models.EarnedAchievement `json:"achievements"`
	RecentContributions []models.ContributionLog   `json:"recent_contributions"`
}

// GamificationService maintains the leaderboard materialization, badges and
// ranks. Recomputes run on a background queue so lifecycle requests never
// wait for aggregate rebuilds.
type GamificationService struct {
	users         gamificationUserRepository
	resources     gamificationResourceRepository
	ratings       gamificationRatingRepository
	downloads     gamificationDownloadRepository
	leaderboard   leaderboardRepository
	contributions contributionReader
	achievements  achievementReader
	cache         leaderboardCache
	logger        *zap.Logger
	cfg           config.GamificationConfig
	queue         *jobs.Queue
}

// NewGamificationService constructs a GamificationService instance. Call
// Start before enqueueing recomputes.
func NewGamificationService(
	users gamificationUserRepository,
	resources gamificationResourceRepository,
	ratings gamificationRatingRepository,
	downloads gamificationDownloadRepository,
	leaderboard leaderboardRepository,
	contributions contributionReader,
	achievements achievementReader,
	cache leaderboardCache,
	logger *zap.Logger,
	cfg config.GamificationConfig,
	queueCfg config.LeaderboardConfig,
) *GamificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &GamificationService{
		users:         users,
		resources:     resources,
		ratings:       ratings,
		downloads:     downloads,
		leaderboard:   leaderboard,
		contributions: contributions,
		achievements:  achievements,
		cache:         cache,
		logger:        logger,
		cfg:           cfg,
	}
	s.queue = jobs.NewQueue("leaderboard-recompute", s.handleRecomputeJob, jobs.QueueConfig{
		Workers:    queueCfg.WorkerConcurrency,
		MaxRetries: queueCfg.WorkerRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the recompute workers.
func (s *GamificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the recompute workers.
func (s *GamificationService) Stop() {
	s.queue.Stop()
}

// EnqueueRecompute schedules a leaderboard rebuild for one user. Failures
// only log; the triggering request has already succeeded.
func (s *GamificationService) EnqueueRecompute(userID string) {
	if err := s.queue.Enqueue(jobs.Job{ID: userID, Type: "recompute", Payload: userID}); err != nil {
		s.logger.Warn("failed to enqueue leaderboard recompute", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *GamificationService) handleRecomputeJob(ctx context.Context, job jobs.Job) error {
	userID, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("recompute payload must be a user id")
	}
	return s.Recompute(ctx, userID)
}

// Recompute rebuilds one user's leaderboard entry wholesale from the source
// counters and relation counts, then invalidates cached leaderboard pages.
func (s *GamificationService) Recompute(ctx context.Context, userID string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("load user for recompute: %w", err)
	}

	verificationCount, err := s.resources.CountVerifiedBy(ctx, userID)
	if err != nil {
		return fmt.Errorf("count verifications: %w", err)
	}
	ratingCount, err := s.ratings.CountByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("count ratings: %w", err)
	}
	downloadCount, err := s.downloads.CountByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("count downloads: %w", err)
	}
	avgRating, err := s.resources.AvgRatingByUploader(ctx, userID)
	if err != nil {
		return fmt.Errorf("average rating: %w", err)
	}

	entry := &models.LeaderboardEntry{
		UserID:            userID,
		TotalPoints:       user.ReputationPoints,
		UploadCount:       user.TotalUploads,
		VerificationCount: verificationCount,
		RatingCount:       ratingCount,
		AvgRating:         avgRating,
		DownloadCount:     downloadCount,
		Badge:             s.BadgeFor(user.ReputationPoints),
	}
	if err := s.leaderboard.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("upsert leaderboard entry: %w", err)
	}
	s.awardAchievements(ctx, entry)

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, leaderboardCachePrefix+"*"); err != nil {
			s.logger.Warn("failed to invalidate leaderboard cache", zap.Error(err))
		}
	}
	return nil
}

// RecomputeAll rebuilds every active user's entry. Used by the admin
// backfill endpoint.
func (s *GamificationService) RecomputeAll(ctx context.Context) (int, error) {
	ids, err := s.users.AllIDs(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	count := 0
	for _, id := range ids {
		if err := s.Recompute(ctx, id); err != nil {
			s.logger.Warn("failed to recompute user", zap.String("user_id", id), zap.Error(err))
			continue
		}
		count++
	}
	return count, nil
}

// BadgeFor returns the highest badge whose threshold the points meet, or nil
// below the lowest tier.
func (s *GamificationService) BadgeFor(points int) *string {
	thresholds := sortedThresholds(s.cfg.BadgeThresholds)
	for _, t := range thresholds {
		if points >= t.MinPoints {
			name := t.Name
			return &name
		}
	}
	return nil
}

// NextBadge returns the closest unreached progress tier. At or above the
// top tier it reports the highest assignment badge with zero points needed,
// so a maxed-out user still sees a target.
func (s *GamificationService) NextBadge(points int) *models.BadgeProgress {
	thresholds := sortedThresholds(s.cfg.ProgressThresholds)
	var next *models.BadgeProgress
	for _, t := range thresholds {
		if points < t.MinPoints {
			next = &models.BadgeProgress{Name: t.Name, PointsNeeded: t.MinPoints - points}
		}
	}
	if next == nil {
		if top := sortedThresholds(s.cfg.BadgeThresholds); len(top) > 0 {
			next = &models.BadgeProgress{Name: top[0].Name, PointsNeeded: 0}
		}
	}
	return next
}

// awardAchievements unlocks any achievement whose requirements the rebuilt
// entry now meets. Failures only log; the entry itself is already saved.
func (s *GamificationService) awardAchievements(ctx context.Context, entry *models.LeaderboardEntry) {
	if s.achievements == nil {
		return
	}
	defs, err := s.achievements.ListAll(ctx)
	if err != nil {
		s.logger.Warn("failed to list achievements", zap.Error(err))
		return
	}
	for _, def := range defs {
		if !achievementMet(def, entry) {
			continue
		}
		if err := s.achievements.Award(ctx, entry.UserID, def.ID); err != nil {
			s.logger.Warn("failed to award achievement",
				zap.String("achievement", def.Name),
				zap.String("user_id", entry.UserID),
				zap.Error(err))
		}
	}
}

// achievementMet reports whether every set requirement is satisfied. An
// achievement with no requirements is never awarded automatically.
func achievementMet(def models.Achievement, entry *models.LeaderboardEntry) bool {
	if def.PointsRequired == nil && def.UploadsRequired == nil && def.VerificationsRequired == nil {
		return false
	}
	if def.PointsRequired != nil && entry.TotalPoints < *def.PointsRequired {
		return false
	}
	if def.UploadsRequired != nil && entry.UploadCount < *def.UploadsRequired {
		return false
	}
	if def.VerificationsRequired != nil && entry.VerificationCount < *def.VerificationsRequired {
		return false
	}
	return true
}

// Achievements lists every achievement definition.
func (s *GamificationService) Achievements(ctx context.Context) ([]models.Achievement, error) {
	achievements, err := s.achievements.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list achievements")
	}
	return achievements, nil
}

// MyAchievements lists the achievements a user has unlocked.
func (s *GamificationService) MyAchievements(ctx context.Context, userID string) ([]models.EarnedAchievement, error) {
	earned, err := s.achievements.ListEarnedByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list earned achievements")
	}
	return earned, nil
}

// Leaderboard returns a ranked page, served from cache when fresh.
func (s *GamificationService) Leaderboard(ctx context.Context, sortBy models.LeaderboardSort, page, size int) ([]models.RankedEntry, *models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}

	type cachedPage struct {
		Entries    []models.RankedEntry `json:"entries"`
		Pagination models.Pagination    `json:"pagination"`
	}

	key := fmt.Sprintf("%s%s:%d:%d", leaderboardCachePrefix, sortBy, page, size)
	if s.cache != nil {
		var cached cachedPage
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached.Entries, &cached.Pagination, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("leaderboard cache read failed", zap.Error(err))
		}
	}

	entries, total, err := s.leaderboard.List(ctx, sortBy, page, size)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leaderboard")
	}

	ranked := make([]models.RankedEntry, len(entries))
	base := (page - 1) * size
	for i, entry := range entries {
		ranked[i] = models.RankedEntry{Rank: base + i + 1, LeaderboardEntry: entry}
	}
	pagination := models.Pagination{Page: page, PageSize: size, TotalCount: total}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, cachedPage{Entries: ranked, Pagination: pagination}, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("leaderboard cache write failed", zap.Error(err))
		}
	}
	return ranked, &pagination, nil
}

// Stats assembles the personal gamification summary for a user. A missing
// leaderboard entry is rebuilt on demand.
func (s *GamificationService) Stats(ctx context.Context, userID string) (*MyStats, error) {
	entry, err := s.leaderboard.FindByUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		if err := s.Recompute(ctx, userID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build stats")
		}
		entry, err = s.leaderboard.FindByUser(ctx, userID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load stats")
		}
	} else if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load stats")
	}

	rank, err := s.leaderboard.Rank(ctx, entry.TotalPoints)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute rank")
	}

	recent, err := s.contributions.RecentByUser(ctx, userID, 10)
	if err != nil {
		s.logger.Warn("failed to load recent contributions", zap.String("user_id", userID), zap.Error(err))
	}
	earned, err := s.achievements.ListEarnedByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load earned achievements", zap.String("user_id", userID), zap.Error(err))
	}

	return &MyStats{
		TotalPoints:         entry.TotalPoints,
		Rank:                rank,
		Badge:               entry.Badge,
		NextBadge:           s.NextBadge(entry.TotalPoints),
		UploadCount:         entry.UploadCount,
		VerificationCount:   entry.VerificationCount,
		RatingCount:         entry.RatingCount,
		DownloadCount:       entry.DownloadCount,
		AvgRating:           entry.AvgRating,
		Achievements:        earned,
		RecentContributions: recent,
	}, nil
}

func sortedThresholds(thresholds []config.BadgeThreshold) []config.BadgeThreshold {
	sorted := make([]config.BadgeThreshold, len(thresholds))
	copy(sorted, thresholds)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinPoints > sorted[j].MinPoints })
	return sorted
}
