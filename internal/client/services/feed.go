package services

import (
	"context"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
)

const DefaultPageSize = 10

// PostsAPI is the posts half of the API.
type PostsAPI interface {
	ListPosts(ctx context.Context, page, limit int) ([]models.Post, error)
	CreatePost(ctx context.Context, content string) (*models.Post, error)
	ToggleLike(ctx context.Context, postID string) (*models.Post, error)
}

// Feed is the paginated post list. Page 1 replaces what is held, later pages
// append, and a page shorter than the limit marks the end of the data.
type Feed struct {
	api   PostsAPI
	limit int
	log   logging.Logger

	mu      sync.Mutex
	posts   []models.Post
	page    int
	hasMore bool
	loading bool
	// epoch changes on Reset so a page requested before it is dropped.
	epoch int
}

func NewFeed(api PostsAPI, limit int, log logging.Logger) *Feed {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Feed{api: api, limit: limit, log: log.With("component", "feed"), hasMore: true}
}

// LoadNext fetches the next page. It does nothing and returns 0 while a load
// is in flight or after the last page.
func (f *Feed) LoadNext(ctx context.Context) (int, error) {
	f.mu.Lock()
	if f.loading || !f.hasMore {
		f.mu.Unlock()
		return 0, nil
	}
	f.loading = true
	next, epoch := f.page+1, f.epoch
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		if f.epoch == epoch {
			f.loading = false
		}
		f.mu.Unlock()
	}()

	posts, err := f.api.ListPosts(ctx, next, f.limit)
	if err != nil {
		return 0, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.epoch != epoch {
		return 0, nil
	}
	if next == 1 {
		f.posts = append([]models.Post(nil), posts...)
	} else {
		f.posts = append(f.posts, posts...)
	}
	f.page = next
	f.hasMore = len(posts) >= f.limit
	f.log.Debug(ctx, "feed page loaded", "page", next, "count", len(posts), "has_more", f.hasMore)
	return len(posts), nil
}

// Reset forgets loaded pages so the next LoadNext starts from page 1.
func (f *Feed) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.epoch++
	f.posts = nil
	f.page = 0
	f.hasMore = true
	f.loading = false
}

// Create publishes a post and puts it at the top of the feed.
func (f *Feed) Create(ctx context.Context, content string) (*models.Post, error) {
	if err := validatePost(content); err != nil {
		return nil, err
	}
	p, err := f.api.CreatePost(ctx, strings.TrimSpace(content))
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append([]models.Post{p.Clone()}, f.posts...)
	return p, nil
}

// ToggleLike likes or unlikes a post and replaces it in place.
func (f *Feed) ToggleLike(ctx context.Context, postID string) (*models.Post, error) {
	postID = strings.TrimSpace(postID)
	if err := required("post", postID, "Post id is required"); err != nil {
		return nil, err
	}
	p, err := f.api.ToggleLike(ctx, postID)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.posts {
		if f.posts[i].ID == p.ID {
			f.posts[i] = p.Clone()
			break
		}
	}
	return p, nil
}

// Posts returns a copy of the loaded posts.
func (f *Feed) Posts() []models.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Post, len(f.posts))
	for i := range f.posts {
		out[i] = f.posts[i].Clone()
	}
	return out
}

func (f *Feed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasMore
}

func (f *Feed) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

func (f *Feed) Page() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.page
}
