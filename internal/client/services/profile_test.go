package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophsocial/internal/client/client"
	"github.com/dmitrijs2005/gophsocial/internal/client/gatewaytest"
	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_LoadsUserAndPosts(t *testing.T) {
	fc := &fakeClient{
		UserRet:     &models.Identity{ID: "u1", Username: "alice"},
		UserPostRet: postsN("p", 2),
	}

	p, err := NewProfileService(fc).UserPosts(context.Background(), " u1 ")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.User.Username)
	assert.Len(t, p.Posts, 2)
	assert.Equal(t, "u1", fc.LastUserID)
}

func TestProfile_EitherFailureFails(t *testing.T) {
	notFound := &client.APIError{Status: 404, Message: "User not found"}

	_, err := NewProfileService(&fakeClient{UserErr: notFound}).UserPosts(context.Background(), "u1")
	assert.Equal(t, "User not found", common.UserMessage(err, ""))

	_, err = NewProfileService(&fakeClient{
		UserRet:     &models.Identity{ID: "u1"},
		UserPostErr: client.ErrUnavailable,
	}).UserPosts(context.Background(), "u1")
	assert.ErrorIs(t, err, client.ErrUnavailable)
}

func TestProfile_RequiresID(t *testing.T) {
	_, err := NewProfileService(&fakeClient{}).UserPosts(context.Background(), "")
	requireValidation(t, err, "user")
}

func TestProfile_AgainstAPI(t *testing.T) {
	srv := gatewaytest.New()
	t.Cleanup(srv.Close)
	bob := srv.AddUser("bob", "bob@example.com", "secret1", "bio")
	srv.AddUser("carol", "carol@example.com", "secret1", "")
	srv.AddPost("bob@example.com", "one")
	srv.AddPost("carol@example.com", "other")
	srv.AddPost("bob@example.com", "two")

	c, err := client.NewHTTPClient(context.Background(), srv.URL)
	require.NoError(t, err)
	defer c.Close()

	p, err := NewProfileService(c).UserPosts(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", p.User.Username)
	require.Len(t, p.Posts, 2)
	assert.Equal(t, "two", p.Posts[0].Content)
}
