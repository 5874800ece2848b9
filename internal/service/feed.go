package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/CodingKingM/relay/internal/db"
	"github.com/CodingKingM/relay/internal/models"
	"github.com/CodingKingM/relay/pkg/logging"
	"github.com/CodingKingM/relay/pkg/telemetry"
)

// DefaultFeedLimit bounds a timeline when the caller passes no limit.
const DefaultFeedLimit = 20

// FeedService composes the timeline: the union of a user's own posts and
// the posts of everyone they follow, newest first. The follow set is
// read from the ledger at query time on every call.
type FeedService struct {
	db     *db.DB
	logger *zap.Logger
}

// NewFeedService creates a new feed service
func NewFeedService(database *db.DB) *FeedService {
	return &FeedService{
		db:     database,
		logger: logging.GetLogger().With(zap.String("component", "feed")),
	}
}

// Timeline retrieves the user's feed, ordered by creation time
// descending and bounded to limit
func (s *FeedService) Timeline(ctx context.Context, username string, limit int) ([]*models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "feed.timeline")
	defer span.End()

	if limit <= 0 {
		limit = DefaultFeedLimit
	}

	repo := db.NewRepository(s.db.DB)
	exists, err := db.NewUserRepository(repo).Exists(ctx, username)
	if err != nil {
		return nil, storage(err, "failed to check user %s", username)
	}
	if !exists {
		return nil, notFound("user not found: %s", username)
	}

	posts, err := db.NewPostRepository(repo).ListTimeline(ctx, username, limit)
	if err != nil {
		return nil, storage(err, "failed to load timeline")
	}
	return posts, nil
}
