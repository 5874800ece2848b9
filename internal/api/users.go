package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/CodingKingM/relay/internal/auth"
	"github.com/CodingKingM/relay/internal/models"
)

type userResponse struct {
	Username     string    `json:"username"`
	RegisteredAt time.Time `json:"registeredAt"`
	FullName     string    `json:"fullName,omitempty"`
	Email        string    `json:"email,omitempty"`
	Biography    string    `json:"biography,omitempty"`
	Followers    int64     `json:"followers"`
	Following    int64     `json:"following"`
}

type updateProfileRequest struct {
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Biography string `json:"biography"`
}

// toUserResponse builds the user DTO. Follower and following counts are
// counted from the follow ledger on every call, never read from a field.
func (r *Router) toUserResponse(c *gin.Context, user *models.User) (*userResponse, error) {
	followers, err := r.relation.FollowerCount(c.Request.Context(), user.Username)
	if err != nil {
		return nil, err
	}
	following, err := r.relation.FollowingCount(c.Request.Context(), user.Username)
	if err != nil {
		return nil, err
	}
	return &userResponse{
		Username:     user.Username,
		RegisteredAt: user.RegisteredAt,
		FullName:     user.FullName.String,
		Email:        user.Email.String,
		Biography:    user.Biography.String,
		Followers:    followers,
		Following:    following,
	}, nil
}

// register handles POST /api/users/register. Credentials arrive as HTTP
// Basic auth, matching the original client contract.
func (r *Router) register(c *gin.Context) {
	username, password, ok := c.Request.BasicAuth()
	if !ok || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid authorization header"})
		return
	}

	hash, err := auth.HashCredential(password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash credentials"})
		return
	}

	user, err := r.identity.Register(c.Request.Context(), username, hash)
	if err != nil {
		writeError(c, err)
		return
	}

	resp, err := r.toUserResponse(c, user)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// login handles POST /api/users/login
func (r *Router) login(c *gin.Context) {
	username, password, ok := c.Request.BasicAuth()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid authorization header"})
		return
	}

	user, err := r.identity.Get(c.Request.Context(), username)
	if err != nil || !auth.VerifyCredential(user.CredentialHash, password) {
		// Do not reveal whether the user exists
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := r.sessions.Create(c.Request.Context(), username)
	if err != nil {
		r.logger.Error("Failed to create session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	resp, err := r.toUserResponse(c, user)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": resp})
}

// logout handles POST /api/users/logout
func (r *Router) logout(c *gin.Context) {
	r.sessions.Revoke(c.Request.Context(), bearerToken(c))
	c.Status(http.StatusNoContent)
}

// searchUsers handles GET /api/users/search?q=
func (r *Router) searchUsers(c *gin.Context) {
	query := c.Query("q")
	results, err := r.identity.Search(c.Request.Context(), query, currentUsername(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// getUser handles GET /api/users/:username
func (r *Router) getUser(c *gin.Context) {
	user, err := r.identity.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeError(c, err)
		return
	}
	resp, err := r.toUserResponse(c, user)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getCurrentUser handles GET /api/users/me
func (r *Router) getCurrentUser(c *gin.Context) {
	user, err := r.identity.Get(c.Request.Context(), currentUsername(c))
	if err != nil {
		writeError(c, err)
		return
	}
	resp, err := r.toUserResponse(c, user)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// updateCurrentUser handles PUT /api/users/me
func (r *Router) updateCurrentUser(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := r.identity.UpdateProfile(c.Request.Context(), currentUsername(c), req.FullName, req.Email, req.Biography)
	if err != nil {
		writeError(c, err)
		return
	}
	resp, err := r.toUserResponse(c, user)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// deleteCurrentUser handles DELETE /api/users/me. The cascade removes
// the user's posts, likes, comments, and follow edges with the user row
// in one transaction.
func (r *Router) deleteCurrentUser(c *gin.Context) {
	if err := r.identity.Delete(c.Request.Context(), currentUsername(c)); err != nil {
		writeError(c, err)
		return
	}
	r.sessions.Revoke(c.Request.Context(), bearerToken(c))
	c.Status(http.StatusNoContent)
}

// follow handles POST /api/users/:username/follow
func (r *Router) follow(c *gin.Context) {
	if err := r.relation.Follow(c.Request.Context(), currentUsername(c), c.Param("username")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// unfollow handles DELETE /api/users/:username/follow
func (r *Router) unfollow(c *gin.Context) {
	if err := r.relation.Unfollow(c.Request.Context(), currentUsername(c), c.Param("username")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// isFollowing handles GET /api/users/:username/follow
func (r *Router) isFollowing(c *gin.Context) {
	following, err := r.relation.IsFollowing(c.Request.Context(), currentUsername(c), c.Param("username"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": following})
}

// listFollowers handles GET /api/users/:username/followers
func (r *Router) listFollowers(c *gin.Context) {
	edges, err := r.relation.ListFollowers(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, edges)
}

// listFollowing handles GET /api/users/:username/following
func (r *Router) listFollowing(c *gin.Context) {
	edges, err := r.relation.ListFollowing(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, edges)
}
