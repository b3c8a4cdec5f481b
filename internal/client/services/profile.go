package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"golang.org/x/sync/errgroup"
)

type ProfileAPI interface {
	GetUser(ctx context.Context, userID string) (*models.Identity, error)
	UserPosts(ctx context.Context, userID string) ([]models.Post, error)
}

// Profile is a user together with their posts.
type Profile struct {
	User  *models.Identity
	Posts []models.Post
}

type ProfileService struct {
	api ProfileAPI
}

func NewProfileService(api ProfileAPI) *ProfileService {
	return &ProfileService{api: api}
}

// UserPosts loads a user and their posts in parallel. Either failure fails
// the whole load.
func (s *ProfileService) UserPosts(ctx context.Context, userID string) (*Profile, error) {
	userID = strings.TrimSpace(userID)
	if err := required("user", userID, "User id is required"); err != nil {
		return nil, err
	}

	var p Profile
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.api.GetUser(gctx, userID)
		if err != nil {
			return err
		}
		p.User = u
		return nil
	})
	g.Go(func() error {
		posts, err := s.api.UserPosts(gctx, userID)
		if err != nil {
			return err
		}
		p.Posts = posts
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &p, nil
}
