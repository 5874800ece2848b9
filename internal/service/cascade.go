package service

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/CodingKingM/relay/internal/db"
	"github.com/CodingKingM/relay/pkg/logging"
	"github.com/CodingKingM/relay/pkg/telemetry"
)

// CascadeService executes multi-entity deletions as explicit, ordered
// statements on the caller's transaction. It never relies on ORM-level
// cascade flags or on removing children from an in-memory collection;
// every dependent relation is deleted directly. The caller owns the
// transaction, so either every step commits or none do.
type CascadeService struct {
	logger *zap.Logger
}

// NewCascadeService creates a new cascade service
func NewCascadeService() *CascadeService {
	return &CascadeService{
		logger: logging.GetLogger().With(zap.String("component", "cascade")),
	}
}

// DeletePost removes everything that references a post, then the post
// itself: likes first, then comments, then the post row.
func (s *CascadeService) DeletePost(ctx context.Context, tx *gorm.DB, postID int64) error {
	repo := db.NewRepository(tx)
	likeRepo := db.NewLikeRepository(repo)
	commentRepo := db.NewCommentRepository(repo)
	postRepo := db.NewPostRepository(repo)

	if err := likeRepo.DeleteByPost(ctx, postID); err != nil {
		return storage(err, "failed to delete likes for post %d", postID)
	}
	if err := commentRepo.DeleteByPost(ctx, postID); err != nil {
		return storage(err, "failed to delete comments for post %d", postID)
	}
	if err := postRepo.Delete(ctx, postID); err != nil {
		return storage(err, "failed to delete post %d", postID)
	}

	s.logger.Debug("Cascaded post deletion", zap.Int64("post_id", postID))
	return nil
}

// DeleteUser removes a user and every row that references them: each
// authored post with its dependents, then the user's likes on other
// posts, their comments on other posts, every follow edge on either
// side, and finally the user row.
func (s *CascadeService) DeleteUser(ctx context.Context, tx *gorm.DB, username string) error {
	ctx, span := telemetry.StartSpan(ctx, "cascade.delete_user")
	defer span.End()

	repo := db.NewRepository(tx)
	postRepo := db.NewPostRepository(repo)
	likeRepo := db.NewLikeRepository(repo)
	commentRepo := db.NewCommentRepository(repo)
	followRepo := db.NewFollowRepository(repo)
	userRepo := db.NewUserRepository(repo)

	postIDs, err := postRepo.ListIDsByAuthor(ctx, username)
	if err != nil {
		return storage(err, "failed to list posts for user %s", username)
	}
	for _, postID := range postIDs {
		if err := s.DeletePost(ctx, tx, postID); err != nil {
			return err
		}
	}

	if err := likeRepo.DeleteByUser(ctx, username); err != nil {
		return storage(err, "failed to delete likes by user %s", username)
	}
	if err := commentRepo.DeleteByAuthor(ctx, username); err != nil {
		return storage(err, "failed to delete comments by user %s", username)
	}
	if err := followRepo.DeleteInvolving(ctx, username); err != nil {
		return storage(err, "failed to delete follow edges for user %s", username)
	}
	if err := userRepo.Delete(ctx, username); err != nil {
		return storage(err, "failed to delete user %s", username)
	}

	s.logger.Debug("Cascaded user deletion",
		zap.String("username", username),
		zap.Int("posts", len(postIDs)))
	return nil
}
