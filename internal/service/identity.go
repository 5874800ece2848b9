package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/CodingKingM/relay/internal/db"
	"github.com/CodingKingM/relay/internal/models"
	"github.com/CodingKingM/relay/pkg/logging"
)

// UserSearchResult is one hit from a username search, annotated with
// whether the requesting user already follows it.
type UserSearchResult struct {
	Username     string    `json:"username"`
	RegisteredAt time.Time `json:"registeredAt"`
	IsFollowing  bool      `json:"isFollowing"`
}

// IdentityService manages user records. Usernames are opaque,
// case-sensitive, immutable keys; the credential hash is supplied by the
// auth collaborator and stored as-is.
type IdentityService struct {
	db      *db.DB
	cascade *CascadeService
	logger  *zap.Logger
}

// NewIdentityService creates a new identity service
func NewIdentityService(database *db.DB, cascade *CascadeService) *IdentityService {
	return &IdentityService{
		db:      database,
		cascade: cascade,
		logger:  logging.GetLogger().With(zap.String("component", "identity")),
	}
}

// Register creates a new user. The username uniqueness check is the
// primary-key constraint itself; a duplicate insert fails with Conflict
// even when two registrations race.
func (s *IdentityService) Register(ctx context.Context, username, credentialHash string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid("username cannot be empty")
	}
	if len(username) > 50 {
		return nil, invalid("username exceeds 50 characters")
	}
	if credentialHash == "" {
		return nil, invalid("credential hash cannot be empty")
	}

	user := &models.User{
		Username:       username,
		CredentialHash: credentialHash,
		RegisteredAt:   time.Now().UTC(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userRepo := db.NewUserRepository(db.NewRepository(tx))
		if err := userRepo.Create(ctx, user); err != nil {
			return translateInsert(err, "username already exists")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("username", username))
	return user, nil
}

// Get retrieves a user by username
func (s *IdentityService) Get(ctx context.Context, username string) (*models.User, error) {
	userRepo := db.NewUserRepository(db.NewRepository(s.db.DB))
	user, err := userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, storage(err, "failed to load user %s", username)
	}
	if user == nil {
		return nil, notFound("user not found: %s", username)
	}
	return user, nil
}

// Exists reports whether a user exists
func (s *IdentityService) Exists(ctx context.Context, username string) (bool, error) {
	userRepo := db.NewUserRepository(db.NewRepository(s.db.DB))
	exists, err := userRepo.Exists(ctx, username)
	if err != nil {
		return false, storage(err, "failed to check user %s", username)
	}
	return exists, nil
}

// Search retrieves users whose username contains the query fragment,
// case-insensitively. When currentUsername is non-empty each hit is
// annotated with the current follow state.
func (s *IdentityService) Search(ctx context.Context, query, currentUsername string) ([]UserSearchResult, error) {
	repo := db.NewRepository(s.db.DB)
	userRepo := db.NewUserRepository(repo)
	followRepo := db.NewFollowRepository(repo)

	users, err := userRepo.SearchByPattern(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, storage(err, "user search failed")
	}

	results := make([]UserSearchResult, 0, len(users))
	for _, user := range users {
		isFollowing := false
		if currentUsername != "" && currentUsername != user.Username {
			isFollowing, err = followRepo.Exists(ctx, currentUsername, user.Username)
			if err != nil {
				return nil, storage(err, "failed to check follow state")
			}
		}
		results = append(results, UserSearchResult{
			Username:     user.Username,
			RegisteredAt: user.RegisteredAt,
			IsFollowing:  isFollowing,
		})
	}
	return results, nil
}

// UpdateProfile updates the optional profile fields of a user. Empty
// strings clear the corresponding field.
func (s *IdentityService) UpdateProfile(ctx context.Context, username, fullName, email, biography string) (*models.User, error) {
	if len(fullName) > 100 {
		return nil, invalid("full name exceeds 100 characters")
	}
	if len(email) > 100 {
		return nil, invalid("email exceeds 100 characters")
	}
	if len(biography) > 500 {
		return nil, invalid("biography exceeds 500 characters")
	}

	var updated *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userRepo := db.NewUserRepository(db.NewRepository(tx))
		user, err := userRepo.GetByUsername(ctx, username)
		if err != nil {
			return storage(err, "failed to load user %s", username)
		}
		if user == nil {
			return notFound("user not found: %s", username)
		}

		user.FullName = nullString(fullName)
		user.Email = nullString(email)
		user.Biography = nullString(biography)

		if err := userRepo.Update(ctx, user); err != nil {
			return storage(err, "failed to update user %s", username)
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a user and, through the cascade service, every row that
// references them. The whole removal is one transaction.
func (s *IdentityService) Delete(ctx context.Context, username string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userRepo := db.NewUserRepository(db.NewRepository(tx))
		exists, err := userRepo.Exists(ctx, username)
		if err != nil {
			return storage(err, "failed to check user %s", username)
		}
		if !exists {
			return notFound("user not found: %s", username)
		}
		return s.cascade.DeleteUser(ctx, tx, username)
	})
	if err != nil {
		return err
	}

	s.logger.Info("User deleted", zap.String("username", username))
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
