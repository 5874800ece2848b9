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

// ReactionService manages the like ledger. Like counts are always
// derived by counting rows; there is no stored counter to drift.
type ReactionService struct {
	db     *db.DB
	logger *zap.Logger
}

// NewReactionService creates a new reaction service
func NewReactionService(database *db.DB) *ReactionService {
	return &ReactionService{
		db:     database,
		logger: logging.GetLogger().With(zap.String("component", "reaction")),
	}
}

// Like records that a user likes a post. Users cannot like their own
// posts. As with follow edges, the insert itself enforces uniqueness:
// concurrent duplicate likes resolve to one success and Conflict for the
// rest.
func (s *ReactionService) Like(ctx context.Context, username string, postID int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := db.NewRepository(tx)
		post, err := db.NewPostRepository(repo).GetByID(ctx, postID)
		if err != nil {
			return storage(err, "failed to load post %d", postID)
		}
		if post == nil {
			return notFound("post not found: %d", postID)
		}

		exists, err := db.NewUserRepository(repo).Exists(ctx, username)
		if err != nil {
			return storage(err, "failed to check user %s", username)
		}
		if !exists {
			return notFound("user not found: %s", username)
		}

		if post.AuthorUsername == username {
			return forbidden("cannot like your own post")
		}

		like := &models.Like{
			Username: username,
			PostID:   postID,
			LikedAt:  time.Now().UTC(),
		}
		if err := db.NewLikeRepository(repo).Create(ctx, like); err != nil {
			return translateInsert(err, "already liked")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("Like created",
		zap.String("username", username),
		zap.Int64("post_id", postID))
	return nil
}

// Unlike removes a like. Removing an absent like is a successful no-op;
// toggling off an already-off state is a valid terminal state. This is
// deliberately asymmetric with Unfollow, which reports NotFound for an
// absent edge. Only a missing post is an error.
func (s *ReactionService) Unlike(ctx context.Context, username string, postID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := db.NewRepository(tx)
		post, err := db.NewPostRepository(repo).GetByID(ctx, postID)
		if err != nil {
			return storage(err, "failed to load post %d", postID)
		}
		if post == nil {
			return notFound("post not found: %d", postID)
		}

		if _, err := db.NewLikeRepository(repo).DeleteByUserAndPost(ctx, username, postID); err != nil {
			return storage(err, "failed to delete like")
		}
		return nil
	})
}

// LikeCount counts the like rows for a post. A missing post is NotFound,
// not zero.
func (s *ReactionService) LikeCount(ctx context.Context, postID int64) (int64, error) {
	repo := db.NewRepository(s.db.DB)
	post, err := db.NewPostRepository(repo).GetByID(ctx, postID)
	if err != nil {
		return 0, storage(err, "failed to load post %d", postID)
	}
	if post == nil {
		return 0, notFound("post not found: %d", postID)
	}

	count, err := db.NewLikeRepository(repo).CountByPost(ctx, postID)
	if err != nil {
		return 0, storage(err, "failed to count likes")
	}
	return count, nil
}

// HasLiked reports whether the user has liked the post
func (s *ReactionService) HasLiked(ctx context.Context, username string, postID int64) (bool, error) {
	liked, err := db.NewLikeRepository(db.NewRepository(s.db.DB)).Exists(ctx, username, postID)
	if err != nil {
		return false, storage(err, "failed to check like")
	}
	return liked, nil
}
