package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/CodingKingM/relay/internal/db"
	"github.com/CodingKingM/relay/internal/models"
	"github.com/CodingKingM/relay/pkg/logging"
)

// ContentService manages posts and comments: creation, validation,
// ownership checks, and deletion. Post deletion goes through the cascade
// service so dependent likes and comments never outlive the post.
type ContentService struct {
	db      *db.DB
	cascade *CascadeService
	logger  *zap.Logger
}

// NewContentService creates a new content service
func NewContentService(database *db.DB, cascade *CascadeService) *ContentService {
	return &ContentService{
		db:      database,
		cascade: cascade,
		logger:  logging.GetLogger().With(zap.String("component", "content")),
	}
}

// CreatePost creates a post for the given author. Content is trimmed and
// re-validated here regardless of what the transport did.
func (s *ContentService) CreatePost(ctx context.Context, author, content string) (*models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("post content cannot be empty")
	}
	if len([]rune(content)) > models.MaxPostLength {
		return nil, invalid("post content exceeds %d characters", models.MaxPostLength)
	}

	post := &models.Post{
		AuthorUsername: author,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := db.NewRepository(tx)
		userRepo := db.NewUserRepository(repo)
		exists, err := userRepo.Exists(ctx, author)
		if err != nil {
			return storage(err, "failed to check user %s", author)
		}
		if !exists {
			return notFound("user not found: %s", author)
		}

		if err := db.NewPostRepository(repo).Create(ctx, post); err != nil {
			return storage(err, "failed to create post")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Post created",
		zap.Int64("post_id", post.ID),
		zap.String("author", author))
	return post, nil
}

// GetPost retrieves a post by ID
func (s *ContentService) GetPost(ctx context.Context, postID int64) (*models.Post, error) {
	postRepo := db.NewPostRepository(db.NewRepository(s.db.DB))
	post, err := postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, storage(err, "failed to load post %d", postID)
	}
	if post == nil {
		return nil, notFound("post not found: %d", postID)
	}
	return post, nil
}

// PostsByAuthor retrieves a user's posts, newest first
func (s *ContentService) PostsByAuthor(ctx context.Context, username string, limit int) ([]*models.Post, error) {
	repo := db.NewRepository(s.db.DB)
	userRepo := db.NewUserRepository(repo)
	exists, err := userRepo.Exists(ctx, username)
	if err != nil {
		return nil, storage(err, "failed to check user %s", username)
	}
	if !exists {
		return nil, notFound("user not found: %s", username)
	}

	posts, err := db.NewPostRepository(repo).ListByAuthor(ctx, username, limit)
	if err != nil {
		return nil, storage(err, "failed to list posts")
	}
	return posts, nil
}

// DeletePost removes a post and all its likes and comments as one
// transaction. Only the author may delete it.
func (s *ContentService) DeletePost(ctx context.Context, postID int64, requester string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		postRepo := db.NewPostRepository(db.NewRepository(tx))
		post, err := postRepo.GetByID(ctx, postID)
		if err != nil {
			return storage(err, "failed to load post %d", postID)
		}
		if post == nil {
			return notFound("post not found: %d", postID)
		}
		if post.AuthorUsername != requester {
			return forbidden("only the author may delete a post")
		}
		return s.cascade.DeletePost(ctx, tx, postID)
	})
	if err != nil {
		return err
	}

	s.logger.Debug("Post deleted",
		zap.Int64("post_id", postID),
		zap.String("requester", requester))
	return nil
}

// AddComment creates a comment on a post
func (s *ContentService) AddComment(ctx context.Context, postID int64, author, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("comment content cannot be empty")
	}
	if len([]rune(content)) > models.MaxCommentLength {
		return nil, invalid("comment content exceeds %d characters", models.MaxCommentLength)
	}

	comment := &models.Comment{
		PostID:         postID,
		AuthorUsername: author,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := db.NewRepository(tx)
		post, err := db.NewPostRepository(repo).GetByID(ctx, postID)
		if err != nil {
			return storage(err, "failed to load post %d", postID)
		}
		if post == nil {
			return notFound("post not found: %d", postID)
		}

		exists, err := db.NewUserRepository(repo).Exists(ctx, author)
		if err != nil {
			return storage(err, "failed to check user %s", author)
		}
		if !exists {
			return notFound("user not found: %s", author)
		}

		if err := db.NewCommentRepository(repo).Create(ctx, comment); err != nil {
			return storage(err, "failed to create comment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment. Only the comment's author may delete
// it.
func (s *ContentService) DeleteComment(ctx context.Context, commentID int64, requester string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentRepo := db.NewCommentRepository(db.NewRepository(tx))
		comment, err := commentRepo.GetByID(ctx, commentID)
		if err != nil {
			return storage(err, "failed to load comment %d", commentID)
		}
		if comment == nil {
			return notFound("comment not found: %d", commentID)
		}
		if comment.AuthorUsername != requester {
			return forbidden("only the author may delete a comment")
		}
		if err := commentRepo.Delete(ctx, commentID); err != nil {
			return storage(err, "failed to delete comment %d", commentID)
		}
		return nil
	})
}

// ListComments retrieves the comments on a post in thread order (oldest
// first). A missing post is NotFound, not an empty list.
func (s *ContentService) ListComments(ctx context.Context, postID int64) ([]*models.Comment, error) {
	repo := db.NewRepository(s.db.DB)
	post, err := db.NewPostRepository(repo).GetByID(ctx, postID)
	if err != nil {
		return nil, storage(err, "failed to load post %d", postID)
	}
	if post == nil {
		return nil, notFound("post not found: %d", postID)
	}

	comments, err := db.NewCommentRepository(repo).ListByPost(ctx, postID)
	if err != nil {
		return nil, storage(err, "failed to list comments")
	}
	return comments, nil
}
