package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/CodingKingM/relay/internal/models"
)

func TestLikeAndCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.mustRegister(t, "alice")
	env.mustRegister(t, "bob")
	post := env.mustPost(t, "alice", "hello")

	if err := env.reaction.Like(ctx, "bob", post.ID); err != nil {
		t.Fatalf("Like() error = %v", err)
	}
	count, err := env.reaction.LikeCount(ctx, post.ID)
	if err != nil {
		t.Fatalf("LikeCount() error = %v", err)
	}
	if count != 1 {
		t.Errorf("LikeCount() = %d, want 1", count)
	}

	// Duplicate like observes Conflict
	if err := env.reaction.Like(ctx, "bob", post.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate Like() = %v, want ErrConflict", err)
	}
	count, err = env.reaction.LikeCount(ctx, post.ID)
	if err != nil {
		t.Fatalf("LikeCount() error = %v", err)
	}
	if count != 1 {
		t.Errorf("LikeCount() after duplicate = %d, want 1", count)
	}
}

func TestLikeOwnPostForbidden(t *testing.T) {
	env := newTestEnv(t)
	env.mustRegister(t, "alice")
	post := env.mustPost(t, "alice", "mine")

	if err := env.reaction.Like(context.Background(), "alice", post.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("Like(own post) = %v, want ErrForbidden", err)
	}
}

func TestLikeMissingTargets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.mustRegister(t, "alice")
	post := env.mustPost(t, "alice", "hello")

	if err := env.reaction.Like(ctx, "ghost", post.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Like(missing user) = %v, want ErrNotFound", err)
	}
	if err := env.reaction.Like(ctx, "alice", post.ID+999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Like(missing post) = %v, want ErrNotFound", err)
	}
}

// TestUnlikeIsIdempotent: unliking a post the user never liked is a
// successful no-op, not an error. Only a missing post is NotFound.
func TestUnlikeIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.mustRegister(t, "alice")
	env.mustRegister(t, "bob")
	post := env.mustPost(t, "alice", "hello")

	if err := env.reaction.Unlike(ctx, "bob", post.ID); err != nil {
		t.Errorf("Unlike() with no like = %v, want nil", err)
	}
	count, err := env.reaction.LikeCount(ctx, post.ID)
	if err != nil {
		t.Fatalf("LikeCount() error = %v", err)
	}
	if count != 0 {
		t.Errorf("LikeCount() = %d, want 0", count)
	}

	env.mustLike(t, "bob", post.ID)
	if err := env.reaction.Unlike(ctx, "bob", post.ID); err != nil {
		t.Fatalf("Unlike() error = %v", err)
	}
	if err := env.reaction.Unlike(ctx, "bob", post.ID); err != nil {
		t.Errorf("repeated Unlike() = %v, want nil", err)
	}

	if err := env.reaction.Unlike(ctx, "bob", post.ID+999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Unlike(missing post) = %v, want ErrNotFound", err)
	}
}

func TestHasLiked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.mustRegister(t, "alice")
	env.mustRegister(t, "bob")
	post := env.mustPost(t, "alice", "hello")

	liked, err := env.reaction.HasLiked(ctx, "bob", post.ID)
	if err != nil {
		t.Fatalf("HasLiked() error = %v", err)
	}
	if liked {
		t.Error("HasLiked() = true before like, want false")
	}

	env.mustLike(t, "bob", post.ID)
	liked, err = env.reaction.HasLiked(ctx, "bob", post.ID)
	if err != nil {
		t.Fatalf("HasLiked() error = %v", err)
	}
	if !liked {
		t.Error("HasLiked() = false after like, want true")
	}
}

// TestConcurrentDuplicateLikes fires identical like requests in
// parallel; the composite key on the ledger must let exactly one through
// and the count must never exceed one for the pair.
func TestConcurrentDuplicateLikes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.mustRegister(t, "alice")
	env.mustRegister(t, "bob")
	post := env.mustPost(t, "alice", "hello")

	const workers = 8
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- env.reaction.Like(ctx, "bob", post.ID)
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, conflicted int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrConflict):
			conflicted++
		default:
			t.Errorf("unexpected error kind: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("%d likes succeeded, want exactly 1", succeeded)
	}
	if conflicted != workers-1 {
		t.Errorf("%d likes conflicted, want %d", conflicted, workers-1)
	}

	count, err := env.reaction.LikeCount(ctx, post.ID)
	if err != nil {
		t.Fatalf("LikeCount() error = %v", err)
	}
	if count != 1 {
		t.Errorf("LikeCount() = %d, want 1", count)
	}
	if n := env.countRows(t, &models.Like{}, "username = ? AND post_id = ?", "bob", post.ID); n != 1 {
		t.Errorf("like ledger holds %d rows for the pair, want 1", n)
	}
}
