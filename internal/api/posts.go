package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CodingKingM/relay/internal/models"
)

type postResponse struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	LikeCount int64     `json:"likeCount"`
	LikedByMe bool      `json:"likedByMe"`
}

type createPostRequest struct {
	Content string `json:"content"`
}

type createCommentRequest struct {
	Content string `json:"content"`
}

type commentResponse struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func toCommentResponse(comment *models.Comment) commentResponse {
	return commentResponse{
		ID:        comment.ID,
		PostID:    comment.PostID,
		Author:    comment.AuthorUsername,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
}

// toPostResponses enriches posts with like counts and the requesting
// user's like state, both derived from the reaction ledger per request.
func (r *Router) toPostResponses(c *gin.Context, posts []*models.Post) ([]postResponse, error) {
	viewer := currentUsername(c)
	responses := make([]postResponse, 0, len(posts))
	for _, post := range posts {
		count, err := r.reaction.LikeCount(c.Request.Context(), post.ID)
		if err != nil {
			return nil, err
		}
		liked := false
		if viewer != "" {
			liked, err = r.reaction.HasLiked(c.Request.Context(), viewer, post.ID)
			if err != nil {
				return nil, err
			}
		}
		responses = append(responses, postResponse{
			ID:        post.ID,
			Content:   post.Content,
			Author:    post.AuthorUsername,
			CreatedAt: post.CreatedAt,
			LikeCount: count,
			LikedByMe: liked,
		})
	}
	return responses, nil
}

func parsePostID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("postId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return 0, false
	}
	return id, true
}

// parseLimit reads the optional ?limit= parameter, bounded by config
func (r *Router) parseLimit(c *gin.Context) int {
	limit := r.cfg.Feed.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		if l, err := strconv.Atoi(raw); err == nil && l > 0 {
			limit = l
		}
	}
	if limit > r.cfg.Feed.MaxLimit {
		limit = r.cfg.Feed.MaxLimit
	}
	return limit
}

// createPost handles POST /api/posts
func (r *Router) createPost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	post, err := r.content.CreatePost(c.Request.Context(), currentUsername(c), req.Content)
	if err != nil {
		writeError(c, err)
		return
	}

	responses, err := r.toPostResponses(c, []*models.Post{post})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, responses[0])
}

// timeline handles GET /api/posts/timeline
func (r *Router) timeline(c *gin.Context) {
	posts, err := r.feed.Timeline(c.Request.Context(), currentUsername(c), r.parseLimit(c))
	if err != nil {
		writeError(c, err)
		return
	}
	responses, err := r.toPostResponses(c, posts)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses)
}

// userPosts handles GET /api/posts/user/:username
func (r *Router) userPosts(c *gin.Context) {
	posts, err := r.content.PostsByAuthor(c.Request.Context(), c.Param("username"), r.parseLimit(c))
	if err != nil {
		writeError(c, err)
		return
	}
	responses, err := r.toPostResponses(c, posts)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses)
}

// deletePost handles DELETE /api/posts/:postId
func (r *Router) deletePost(c *gin.Context) {
	postID, ok := parsePostID(c)
	if !ok {
		return
	}
	if err := r.content.DeletePost(c.Request.Context(), postID, currentUsername(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// likePost handles POST /api/posts/:postId/like
func (r *Router) likePost(c *gin.Context) {
	postID, ok := parsePostID(c)
	if !ok {
		return
	}
	if err := r.reaction.Like(c.Request.Context(), currentUsername(c), postID); err != nil {
		writeError(c, err)
		return
	}
	count, err := r.reaction.LikeCount(c.Request.Context(), postID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"likeCount": count})
}

// unlikePost handles DELETE /api/posts/:postId/like. Unliking a post the
// user never liked is a successful no-op.
func (r *Router) unlikePost(c *gin.Context) {
	postID, ok := parsePostID(c)
	if !ok {
		return
	}
	if err := r.reaction.Unlike(c.Request.Context(), currentUsername(c), postID); err != nil {
		writeError(c, err)
		return
	}
	count, err := r.reaction.LikeCount(c.Request.Context(), postID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"likeCount": count})
}

// listComments handles GET /api/posts/:postId/comments
func (r *Router) listComments(c *gin.Context) {
	postID, ok := parsePostID(c)
	if !ok {
		return
	}
	comments, err := r.content.ListComments(c.Request.Context(), postID)
	if err != nil {
		writeError(c, err)
		return
	}
	responses := make([]commentResponse, 0, len(comments))
	for _, comment := range comments {
		responses = append(responses, toCommentResponse(comment))
	}
	c.JSON(http.StatusOK, responses)
}

// addComment handles POST /api/posts/:postId/comments
func (r *Router) addComment(c *gin.Context) {
	postID, ok := parsePostID(c)
	if !ok {
		return
	}
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment, err := r.content.AddComment(c.Request.Context(), postID, currentUsername(c), req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCommentResponse(comment))
}

// deleteComment handles DELETE /api/posts/comments/:commentId
func (r *Router) deleteComment(c *gin.Context) {
	commentID, err := strconv.ParseInt(c.Param("commentId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return
	}
	if err := r.content.DeleteComment(c.Request.Context(), commentID, currentUsername(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
