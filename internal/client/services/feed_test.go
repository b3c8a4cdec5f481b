package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/gophsocial/internal/client/client"
	"github.com/dmitrijs2005/gophsocial/internal/client/gatewaytest"
	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postsN(prefix string, n int) []models.Post {
	out := make([]models.Post, n)
	for i := range out {
		out[i] = models.Post{ID: fmt.Sprintf("%s%d", prefix, i), Content: "c"}
	}
	return out
}

func TestFeed_PaginatesUntilShortPage(t *testing.T) {
	fc := &fakeClient{ListRet: [][]models.Post{postsN("a", 3), postsN("b", 3), postsN("c", 1)}}
	f := NewFeed(fc, 3, nil)
	ctx := context.Background()

	n, err := f.LoadNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.True(t, f.HasMore())

	_, err = f.LoadNext(ctx)
	require.NoError(t, err)
	_, err = f.LoadNext(ctx)
	require.NoError(t, err)

	assert.False(t, f.HasMore())
	assert.Len(t, f.Posts(), 7)
	assert.Equal(t, 3, f.Page())

	// Exhausted: no further requests.
	n, err = f.LoadNext(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, fc.ListCalls)
}

func TestFeed_EmptyFirstPageEndsData(t *testing.T) {
	f := NewFeed(&fakeClient{}, 10, nil)

	_, err := f.LoadNext(context.Background())
	require.NoError(t, err)
	assert.False(t, f.HasMore())
	assert.Empty(t, f.Posts())
}

func TestFeed_ErrorKeepsPageAndClearsLoading(t *testing.T) {
	boom := errors.New("down")
	fc := &fakeClient{ListErr: boom}
	f := NewFeed(fc, 2, nil)

	_, err := f.LoadNext(context.Background())
	require.ErrorIs(t, err, boom)
	assert.False(t, f.Loading())
	assert.Equal(t, 0, f.Page())
	assert.True(t, f.HasMore())

	fc.ListErr = nil
	fc.ListRet = [][]models.Post{postsN("a", 2)}
	_, err = f.LoadNext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 2}, {1, 2}}, fc.ListCalls)
}

// blockingPosts holds ListPosts until released.
type blockingPosts struct {
	fakeClient
	entered chan struct{}
	release chan struct{}
}

func (b *blockingPosts) ListPosts(ctx context.Context, page, limit int) ([]models.Post, error) {
	b.entered <- struct{}{}
	<-b.release
	return b.fakeClient.ListPosts(ctx, page, limit)
}

func TestFeed_IgnoresLoadWhileLoading(t *testing.T) {
	bp := &blockingPosts{
		fakeClient: fakeClient{ListRet: [][]models.Post{postsN("a", 2)}},
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	f := NewFeed(bp, 2, nil)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.LoadNext(ctx)
	}()
	<-bp.entered
	assert.True(t, f.Loading())

	n, err := f.LoadNext(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	close(bp.release)
	<-done
	assert.False(t, f.Loading())
	assert.Len(t, f.Posts(), 2)
}

func TestFeed_ResetDropsInFlightPage(t *testing.T) {
	bp := &blockingPosts{
		fakeClient: fakeClient{ListRet: [][]models.Post{postsN("a", 2)}},
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	f := NewFeed(bp, 2, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.LoadNext(context.Background())
	}()
	<-bp.entered
	f.Reset()
	close(bp.release)
	<-done

	assert.Empty(t, f.Posts())
	assert.Equal(t, 0, f.Page())
	assert.False(t, f.Loading())
}

func TestFeed_ResetStartsOver(t *testing.T) {
	fc := &fakeClient{ListRet: [][]models.Post{postsN("a", 1)}}
	f := NewFeed(fc, 2, nil)
	ctx := context.Background()

	_, err := f.LoadNext(ctx)
	require.NoError(t, err)
	assert.False(t, f.HasMore())

	f.Reset()
	assert.True(t, f.HasMore())
	_, err = f.LoadNext(ctx)
	require.NoError(t, err)
	assert.Len(t, f.Posts(), 1, "page 1 replaces")
}

func TestFeed_CreatePrepends(t *testing.T) {
	fc := &fakeClient{ListRet: [][]models.Post{postsN("a", 2)}}
	f := NewFeed(fc, 5, nil)
	ctx := context.Background()
	_, err := f.LoadNext(ctx)
	require.NoError(t, err)

	_, err = f.Create(ctx, "   ")
	requireValidation(t, err, "content")

	p, err := f.Create(ctx, "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", fc.LastContent)
	assert.Equal(t, p.ID, f.Posts()[0].ID)
	assert.Len(t, f.Posts(), 3)
}

func TestFeed_ToggleLikeReplacesInPlace(t *testing.T) {
	fc := &fakeClient{ListRet: [][]models.Post{postsN("a", 3)}}
	f := NewFeed(fc, 5, nil)
	ctx := context.Background()
	_, err := f.LoadNext(ctx)
	require.NoError(t, err)

	fc.LikeRet = &models.Post{ID: "a1", Content: "c", Likes: []string{"u1"}, LikeCount: 1}
	_, err = f.ToggleLike(ctx, "a1")
	require.NoError(t, err)

	posts := f.Posts()
	assert.Equal(t, "a1", posts[1].ID)
	assert.Equal(t, 1, posts[1].TotalLikes())

	fc.LikeErr = &client.APIError{Status: 404, Message: "Post not found"}
	_, err = f.ToggleLike(ctx, "zzz")
	require.Error(t, err)
	assert.Len(t, f.Posts(), 3)

	_, err = f.ToggleLike(ctx, "")
	requireValidation(t, err, "post")
}

func TestFeed_AgainstAPI(t *testing.T) {
	srv := gatewaytest.New()
	t.Cleanup(srv.Close)
	srv.AddUser("alice", "alice@example.com", "secret1", "")
	for i := 0; i < 5; i++ {
		srv.AddPost("alice@example.com", fmt.Sprintf("post %d", i))
	}
	ctx := context.Background()
	c, err := client.NewHTTPClient(ctx, srv.URL)
	require.NoError(t, err)
	defer c.Close()

	f := NewFeed(c, 2, nil)
	for f.HasMore() {
		_, err := f.LoadNext(ctx)
		require.NoError(t, err)
	}
	posts := f.Posts()
	require.Len(t, posts, 5)
	assert.Equal(t, "post 4", posts[0].Content, "newest first")
	assert.Equal(t, 3, srv.Calls("GET /api/posts"))
}
