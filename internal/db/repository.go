package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/CodingKingM/relay/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UserRepository provides user-related database operations
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Exists reports whether a user with the given username exists
func (r *UserRepository) Exists(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Update updates a user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// SearchByPattern retrieves users whose username contains the given
// fragment, case-insensitively
func (r *UserRepository) SearchByPattern(ctx context.Context, fragment string) ([]*models.User, error) {
	var users []*models.User
	if err := r.db.WithContext(ctx).
		Where("LOWER(username) LIKE LOWER(?)", "%"+fragment+"%").
		Order("username ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Delete removes a user row. Dependent rows are removed by the cascade
// coordinator before this is called.
func (r *UserRepository) Delete(ctx context.Context, username string) error {
	return r.db.WithContext(ctx).
		Where("username = ?", username).
		Delete(&models.User{}).Error
}

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// ListByAuthor retrieves posts by an author, newest first
func (r *PostRepository) ListByAuthor(ctx context.Context, username string, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Where("author_username = ?", username).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// ListIDsByAuthor retrieves the IDs of every post authored by a user
func (r *PostRepository) ListIDsByAuthor(ctx context.Context, username string) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("author_username = ?", username).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ListTimeline retrieves posts authored by the user or by anyone the
// user follows, newest first. The follow set is resolved by subquery at
// query time; it is never denormalized.
func (r *PostRepository) ListTimeline(ctx context.Context, username string, limit int) ([]*models.Post, error) {
	followed := r.db.Model(&models.Follow{}).
		Select("followed_username").
		Where("follower_username = ?", username)

	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Where("author_username = ? OR author_username IN (?)", username, followed).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Delete removes a post row
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Post{}, id).Error
}

// CommentRepository provides comment-related database operations
type CommentRepository struct {
	*Repository
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(repo *Repository) *CommentRepository {
	return &CommentRepository{Repository: repo}
}

// GetByID retrieves a comment by ID
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// Create creates a new comment
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// ListByPost retrieves the comments on a post in thread order (oldest
// first)
func (r *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	var comments []*models.Comment
	if err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// Delete removes a comment row
func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}

// DeleteByPost removes every comment on a post
func (r *CommentRepository) DeleteByPost(ctx context.Context, postID int64) error {
	return r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Delete(&models.Comment{}).Error
}

// DeleteByAuthor removes every comment authored by a user
func (r *CommentRepository) DeleteByAuthor(ctx context.Context, username string) error {
	return r.db.WithContext(ctx).
		Where("author_username = ?", username).
		Delete(&models.Comment{}).Error
}

// LikeRepository provides access to the reaction ledger
type LikeRepository struct {
	*Repository
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(repo *Repository) *LikeRepository {
	return &LikeRepository{Repository: repo}
}

// Create inserts a like row. A duplicate (username, post_id) pair fails
// with gorm.ErrDuplicatedKey; the insert is the single source of truth
// for uniqueness.
func (r *LikeRepository) Create(ctx context.Context, like *models.Like) error {
	return r.db.WithContext(ctx).Create(like).Error
}

// Exists reports whether the user has liked the post
func (r *LikeRepository) Exists(ctx context.Context, username string, postID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("username = ? AND post_id = ?", username, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByPost counts the like rows for a post
func (r *LikeRepository) CountByPost(ctx context.Context, postID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteByUserAndPost removes a single like row, returning the number of
// rows removed (zero when no such like existed)
func (r *LikeRepository) DeleteByUserAndPost(ctx context.Context, username string, postID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("username = ? AND post_id = ?", username, postID).
		Delete(&models.Like{})
	return res.RowsAffected, res.Error
}

// DeleteByPost removes every like on a post
func (r *LikeRepository) DeleteByPost(ctx context.Context, postID int64) error {
	return r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Delete(&models.Like{}).Error
}

// DeleteByUser removes every like placed by a user
func (r *LikeRepository) DeleteByUser(ctx context.Context, username string) error {
	return r.db.WithContext(ctx).
		Where("username = ?", username).
		Delete(&models.Like{}).Error
}

// FollowRepository provides access to the follow ledger
type FollowRepository struct {
	*Repository
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(repo *Repository) *FollowRepository {
	return &FollowRepository{Repository: repo}
}

// Create inserts a follow edge. A duplicate edge fails with
// gorm.ErrDuplicatedKey.
func (r *FollowRepository) Create(ctx context.Context, follow *models.Follow) error {
	return r.db.WithContext(ctx).Create(follow).Error
}

// Exists reports whether the follow edge exists
func (r *FollowRepository) Exists(ctx context.Context, follower, followed string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_username = ? AND followed_username = ?", follower, followed).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes a follow edge, returning the number of rows removed
func (r *FollowRepository) Delete(ctx context.Context, follower, followed string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("follower_username = ? AND followed_username = ?", follower, followed).
		Delete(&models.Follow{})
	return res.RowsAffected, res.Error
}

// CountFollowers counts the edges pointing at a user
func (r *FollowRepository) CountFollowers(ctx context.Context, username string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("followed_username = ?", username).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountFollowing counts the edges originating from a user
func (r *FollowRepository) CountFollowing(ctx context.Context, username string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_username = ?", username).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListFollowers retrieves the edges pointing at a user in a stable order
func (r *FollowRepository) ListFollowers(ctx context.Context, username string) ([]*models.Follow, error) {
	var follows []*models.Follow
	if err := r.db.WithContext(ctx).
		Where("followed_username = ?", username).
		Order("followed_at ASC, follower_username ASC").
		Find(&follows).Error; err != nil {
		return nil, err
	}
	return follows, nil
}

// ListFollowing retrieves the edges originating from a user in a stable
// order
func (r *FollowRepository) ListFollowing(ctx context.Context, username string) ([]*models.Follow, error) {
	var follows []*models.Follow
	if err := r.db.WithContext(ctx).
		Where("follower_username = ?", username).
		Order("followed_at ASC, followed_username ASC").
		Find(&follows).Error; err != nil {
		return nil, err
	}
	return follows, nil
}

// DeleteInvolving removes every follow edge where the user is on either
// side
func (r *FollowRepository) DeleteInvolving(ctx context.Context, username string) error {
	return r.db.WithContext(ctx).
		Where("follower_username = ? OR followed_username = ?", username, username).
		Delete(&models.Follow{}).Error
}
