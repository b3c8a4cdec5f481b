package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
)

// SignupRequest is the signup form as the API expects it.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Bio      string `json:"bio"`
}

// Client is the remote API contract. Methods that only acknowledge an
// action return the server's success message for display.
type Client interface {
	Signup(ctx context.Context, req SignupRequest) (string, error)
	Login(ctx context.Context, email, password string) (*models.Identity, string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	VerifyOtp(ctx context.Context, email, otp string) (string, error)
	ResetPassword(ctx context.Context, newPassword, confirmPassword string) (string, error)
	GetOtpExpiry(ctx context.Context, email string) (time.Time, error)
	CurrentUser(ctx context.Context) (*models.Identity, error)
	Logout(ctx context.Context) (string, error)

	ListPosts(ctx context.Context, page, limit int) ([]models.Post, error)
	CreatePost(ctx context.Context, content string) (*models.Post, error)
	ToggleLike(ctx context.Context, postID string) (*models.Post, error)
	UserPosts(ctx context.Context, userID string) ([]models.Post, error)
	GetUser(ctx context.Context, userID string) (*models.Identity, error)

	// ResetCookies forgets every credential cookie, in memory and persisted.
	ResetCookies(ctx context.Context) error
	Close() error
}
