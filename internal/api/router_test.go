package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/CodingKingM/relay/internal/db"
	"github.com/CodingKingM/relay/pkg/config"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	cfg := &config.Config{
		Session: config.SessionConfig{TTL: time.Hour},
		Feed:    config.FeedConfig{DefaultLimit: 20, MaxLimit: 100},
	}

	engine := gin.New()
	NewRouter(&db.DB{DB: gdb}, nil, cfg).SetupRoutes(engine)
	return engine
}

func doRequest(t *testing.T, engine *gin.Engine, method, path, token string, body interface{}, basicAuth ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if len(basicAuth) == 2 {
		req.SetBasicAuth(basicAuth[0], basicAuth[1])
	}

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, engine *gin.Engine, username string) string {
	t.Helper()

	rec := doRequest(t, engine, http.MethodPost, "/api/users/register", "", nil, username, "password")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status = %d, body = %s", username, rec.Code, rec.Body.String())
	}

	rec = doRequest(t, engine, http.MethodPost, "/api/users/login", "", nil, username, "password")
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status = %d, body = %s", username, rec.Code, rec.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("login returned no token")
	}
	return resp.Token
}

func TestRegisterLoginFlow(t *testing.T) {
	engine := newTestServer(t)

	token := registerAndLogin(t, engine, "alice")

	rec := doRequest(t, engine, http.MethodGet, "/api/users/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /me: status = %d", rec.Code)
	}
	var me struct {
		Username  string `json:"username"`
		Followers int64  `json:"followers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("failed to decode /me: %v", err)
	}
	if me.Username != "alice" || me.Followers != 0 {
		t.Errorf("/me = %+v, want alice with 0 followers", me)
	}

	// Duplicate registration conflicts
	rec = doRequest(t, engine, http.MethodPost, "/api/users/register", "", nil, "alice", "other")
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate register: status = %d, want 409", rec.Code)
	}

	// Wrong password is rejected
	rec = doRequest(t, engine, http.MethodPost, "/api/users/login", "", nil, "alice", "wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login: status = %d, want 401", rec.Code)
	}

	// Missing token is rejected
	rec = doRequest(t, engine, http.MethodGet, "/api/users/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated /me: status = %d, want 401", rec.Code)
	}
}

func TestFollowEndpoints(t *testing.T) {
	engine := newTestServer(t)

	aliceToken := registerAndLogin(t, engine, "alice")
	registerAndLogin(t, engine, "bob")

	rec := doRequest(t, engine, http.MethodPost, "/api/users/bob/follow", aliceToken, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("follow: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// Duplicate follow -> 409
	rec = doRequest(t, engine, http.MethodPost, "/api/users/bob/follow", aliceToken, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate follow: status = %d, want 409", rec.Code)
	}

	// Self-follow -> 400
	rec = doRequest(t, engine, http.MethodPost, "/api/users/alice/follow", aliceToken, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("self follow: status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, engine, http.MethodGet, "/api/users/bob/follow", aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("is-following: status = %d", rec.Code)
	}
	var isf struct {
		Following bool `json:"following"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &isf); err != nil {
		t.Fatalf("failed to decode is-following: %v", err)
	}
	if !isf.Following {
		t.Error("is-following = false, want true")
	}

	rec = doRequest(t, engine, http.MethodDelete, "/api/users/bob/follow", aliceToken, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("unfollow: status = %d, want 204", rec.Code)
	}

	// Unfollow with no edge -> 404
	rec = doRequest(t, engine, http.MethodDelete, "/api/users/bob/follow", aliceToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second unfollow: status = %d, want 404", rec.Code)
	}

	// Following a missing user -> 404
	rec = doRequest(t, engine, http.MethodPost, "/api/users/ghost/follow", aliceToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("follow missing user: status = %d, want 404", rec.Code)
	}
}

func TestPostAndLikeEndpoints(t *testing.T) {
	engine := newTestServer(t)

	aliceToken := registerAndLogin(t, engine, "alice")
	bobToken := registerAndLogin(t, engine, "bob")

	rec := doRequest(t, engine, http.MethodPost, "/api/posts", aliceToken, gin.H{"content": "hi"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create post: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var post struct {
		ID        int64 `json:"id"`
		LikeCount int64 `json:"likeCount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &post); err != nil {
		t.Fatalf("failed to decode post: %v", err)
	}

	// Blank content -> 400
	rec = doRequest(t, engine, http.MethodPost, "/api/posts", aliceToken, gin.H{"content": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank post: status = %d, want 400", rec.Code)
	}

	likePath := fmt.Sprintf("/api/posts/%d/like", post.ID)

	// Author cannot like their own post
	rec = doRequest(t, engine, http.MethodPost, likePath, aliceToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("self like: status = %d, want 403", rec.Code)
	}

	rec = doRequest(t, engine, http.MethodPost, likePath, bobToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("like: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var likeResp struct {
		LikeCount int64 `json:"likeCount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &likeResp); err != nil {
		t.Fatalf("failed to decode like response: %v", err)
	}
	if likeResp.LikeCount != 1 {
		t.Errorf("likeCount after like = %d, want 1", likeResp.LikeCount)
	}

	// Unlike twice: both succeed, second is a no-op
	for i := 0; i < 2; i++ {
		rec = doRequest(t, engine, http.MethodDelete, likePath, bobToken, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("unlike #%d: status = %d", i+1, rec.Code)
		}
	}

	// Delete by non-author -> 403
	postPath := fmt.Sprintf("/api/posts/%d", post.ID)
	rec = doRequest(t, engine, http.MethodDelete, postPath, bobToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("delete by non-author: status = %d, want 403", rec.Code)
	}
	rec = doRequest(t, engine, http.MethodDelete, postPath, aliceToken, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete by author: status = %d, want 204", rec.Code)
	}

	// Liking a deleted post -> 404
	rec = doRequest(t, engine, http.MethodPost, likePath, bobToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("like deleted post: status = %d, want 404", rec.Code)
	}
}

func TestTimelineEndpoint(t *testing.T) {
	engine := newTestServer(t)

	aliceToken := registerAndLogin(t, engine, "alice")
	bobToken := registerAndLogin(t, engine, "bob")
	carolToken := registerAndLogin(t, engine, "carol")

	doRequest(t, engine, http.MethodPost, "/api/users/bob/follow", aliceToken, nil)
	doRequest(t, engine, http.MethodPost, "/api/posts", aliceToken, gin.H{"content": "from alice"})
	doRequest(t, engine, http.MethodPost, "/api/posts", bobToken, gin.H{"content": "from bob"})
	doRequest(t, engine, http.MethodPost, "/api/posts", carolToken, gin.H{"content": "from carol"})

	rec := doRequest(t, engine, http.MethodGet, "/api/posts/timeline", aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("timeline: status = %d", rec.Code)
	}
	var timeline []struct {
		Author string `json:"author"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &timeline); err != nil {
		t.Fatalf("failed to decode timeline: %v", err)
	}
	if len(timeline) != 2 {
		t.Fatalf("timeline has %d posts, want 2", len(timeline))
	}
	for _, entry := range timeline {
		if entry.Author == "carol" {
			t.Error("timeline contains a post from an unfollowed user")
		}
	}
}

func TestCommentEndpoints(t *testing.T) {
	engine := newTestServer(t)

	aliceToken := registerAndLogin(t, engine, "alice")
	bobToken := registerAndLogin(t, engine, "bob")

	rec := doRequest(t, engine, http.MethodPost, "/api/posts", aliceToken, gin.H{"content": "hi"})
	var post struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &post); err != nil {
		t.Fatalf("failed to decode post: %v", err)
	}

	commentsPath := fmt.Sprintf("/api/posts/%d/comments", post.ID)

	rec = doRequest(t, engine, http.MethodPost, commentsPath, bobToken, gin.H{"content": "nice"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add comment: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var comment struct {
		ID     int64  `json:"id"`
		Author string `json:"author"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &comment); err != nil {
		t.Fatalf("failed to decode comment: %v", err)
	}
	if comment.Author != "bob" {
		t.Errorf("comment author = %q, want bob", comment.Author)
	}

	rec = doRequest(t, engine, http.MethodGet, commentsPath, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list comments: status = %d", rec.Code)
	}

	// Delete by non-author -> 403, by author -> 204
	deletePath := fmt.Sprintf("/api/posts/comments/%d", comment.ID)
	rec = doRequest(t, engine, http.MethodDelete, deletePath, aliceToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("delete comment by non-author: status = %d, want 403", rec.Code)
	}
	rec = doRequest(t, engine, http.MethodDelete, deletePath, bobToken, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete comment by author: status = %d, want 204", rec.Code)
	}
}
