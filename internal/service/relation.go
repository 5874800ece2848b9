package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/CodingKingM/relay/internal/db"
	"github.com/CodingKingM/relay/internal/models"
	"github.com/CodingKingM/relay/pkg/logging"
)

// FollowEdge describes one follower/followed pair for list responses.
type FollowEdge struct {
	Username   string    `json:"username"`
	FollowedAt time.Time `json:"followedAt"`
}

// RelationService manages the follow graph. Edges are rows with a
// composite primary key; follower and following counts are always
// derived by counting those rows.
type RelationService struct {
	db     *db.DB
	logger *zap.Logger
}

// NewRelationService creates a new relation service
func NewRelationService(database *db.DB) *RelationService {
	return &RelationService{
		db:     database,
		logger: logging.GetLogger().With(zap.String("component", "relation")),
	}
}

// Follow creates a follow edge from follower to followed. The insert is
// the single source of truth for uniqueness: when two identical requests
// race, the key constraint guarantees exactly one succeeds and the other
// observes Conflict.
func (s *RelationService) Follow(ctx context.Context, follower, followed string) error {
	if follower == followed {
		return selfReference("cannot follow yourself")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := db.NewRepository(tx)
		if err := s.requireUsers(ctx, repo, follower, followed); err != nil {
			return err
		}

		followRepo := db.NewFollowRepository(repo)
		edge := &models.Follow{
			FollowerUsername: follower,
			FollowedUsername: followed,
			FollowedAt:       time.Now().UTC(),
		}
		if err := followRepo.Create(ctx, edge); err != nil {
			return translateInsert(err, "already following this user")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("Follow edge created",
		zap.String("follower", follower),
		zap.String("followed", followed))
	return nil
}

// Unfollow removes a follow edge. Unlike Unlike, removing an absent edge
// is an error: the API reports NotFound when there is nothing to remove.
func (s *RelationService) Unfollow(ctx context.Context, follower, followed string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := db.NewRepository(tx)
		if err := s.requireUsers(ctx, repo, follower, followed); err != nil {
			return err
		}

		followRepo := db.NewFollowRepository(repo)
		removed, err := followRepo.Delete(ctx, follower, followed)
		if err != nil {
			return storage(err, "failed to delete follow edge")
		}
		if removed == 0 {
			return notFound("not following this user")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("Follow edge removed",
		zap.String("follower", follower),
		zap.String("followed", followed))
	return nil
}

// IsFollowing reports whether the follow edge exists. Both users must
// exist.
func (s *RelationService) IsFollowing(ctx context.Context, follower, followed string) (bool, error) {
	repo := db.NewRepository(s.db.DB)
	if err := s.requireUsers(ctx, repo, follower, followed); err != nil {
		return false, err
	}
	exists, err := db.NewFollowRepository(repo).Exists(ctx, follower, followed)
	if err != nil {
		return false, storage(err, "failed to check follow edge")
	}
	return exists, nil
}

// FollowerCount counts the users following the given user
func (s *RelationService) FollowerCount(ctx context.Context, username string) (int64, error) {
	repo := db.NewRepository(s.db.DB)
	if err := s.requireUsers(ctx, repo, username); err != nil {
		return 0, err
	}
	count, err := db.NewFollowRepository(repo).CountFollowers(ctx, username)
	if err != nil {
		return 0, storage(err, "failed to count followers")
	}
	return count, nil
}

// FollowingCount counts the users the given user follows
func (s *RelationService) FollowingCount(ctx context.Context, username string) (int64, error) {
	repo := db.NewRepository(s.db.DB)
	if err := s.requireUsers(ctx, repo, username); err != nil {
		return 0, err
	}
	count, err := db.NewFollowRepository(repo).CountFollowing(ctx, username)
	if err != nil {
		return 0, storage(err, "failed to count following")
	}
	return count, nil
}

// ListFollowers lists the users following the given user, ordered by
// when they followed
func (s *RelationService) ListFollowers(ctx context.Context, username string) ([]FollowEdge, error) {
	repo := db.NewRepository(s.db.DB)
	if err := s.requireUsers(ctx, repo, username); err != nil {
		return nil, err
	}
	follows, err := db.NewFollowRepository(repo).ListFollowers(ctx, username)
	if err != nil {
		return nil, storage(err, "failed to list followers")
	}
	edges := make([]FollowEdge, 0, len(follows))
	for _, f := range follows {
		edges = append(edges, FollowEdge{Username: f.FollowerUsername, FollowedAt: f.FollowedAt})
	}
	return edges, nil
}

// ListFollowing lists the users the given user follows, ordered by when
// they were followed
func (s *RelationService) ListFollowing(ctx context.Context, username string) ([]FollowEdge, error) {
	repo := db.NewRepository(s.db.DB)
	if err := s.requireUsers(ctx, repo, username); err != nil {
		return nil, err
	}
	follows, err := db.NewFollowRepository(repo).ListFollowing(ctx, username)
	if err != nil {
		return nil, storage(err, "failed to list following")
	}
	edges := make([]FollowEdge, 0, len(follows))
	for _, f := range follows {
		edges = append(edges, FollowEdge{Username: f.FollowedUsername, FollowedAt: f.FollowedAt})
	}
	return edges, nil
}

// requireUsers fails with NotFound when any of the given usernames has
// no user row
func (s *RelationService) requireUsers(ctx context.Context, repo *db.Repository, usernames ...string) error {
	userRepo := db.NewUserRepository(repo)
	for _, username := range usernames {
		exists, err := userRepo.Exists(ctx, username)
		if err != nil {
			return storage(err, "failed to check user %s", username)
		}
		if !exists {
			return notFound("user not found: %s", username)
		}
	}
	return nil
}
