package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/client/client"
	"github.com/dmitrijs2005/gophsocial/internal/client/models"
)

// fakeClient implements client.Client. Each operation returns its *Ret/*Err
// fields and records its arguments.
type fakeClient struct {
	mu sync.Mutex

	SignupErr   error
	LoginRet    *models.Identity
	LoginErr    error
	ForgotErr   error
	VerifyErr   error
	ResetErr    error
	ExpiryRet   time.Time
	ExpiryErr   error
	CurrentRet  *models.Identity
	CurrentErr  error
	LogoutErr   error
	ListRet     [][]models.Post
	ListErr     error
	CreateErr   error
	LikeRet     *models.Post
	LikeErr     error
	UserRet     *models.Identity
	UserErr     error
	UserPostRet []models.Post
	UserPostErr error
	ResetCkErr  error

	LastSignup       client.SignupRequest
	LastEmail        string
	LastPassword     string
	LastOtp          string
	LastReset        [2]string
	LastContent      string
	LastPostID       string
	LastUserID       string
	ListCalls        [][2]int
	Calls            int
	ResetCookieCalls int
	Logouts          int
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Signup(_ context.Context, req client.SignupRequest) (string, error) {
	f.Calls++
	f.LastSignup = req
	return "User registered successfully", f.SignupErr
}

func (f *fakeClient) Login(_ context.Context, email, password string) (*models.Identity, string, error) {
	f.Calls++
	f.LastEmail, f.LastPassword = email, password
	if f.LoginErr != nil {
		return nil, "", f.LoginErr
	}
	return f.LoginRet, "Login successful", nil
}

func (f *fakeClient) ForgotPassword(_ context.Context, email string) (string, error) {
	f.Calls++
	f.LastEmail = email
	return "OTP sent", f.ForgotErr
}

func (f *fakeClient) VerifyOtp(_ context.Context, email, otp string) (string, error) {
	f.Calls++
	f.LastEmail, f.LastOtp = email, otp
	return "OTP verified", f.VerifyErr
}

func (f *fakeClient) ResetPassword(_ context.Context, newPassword, confirmPassword string) (string, error) {
	f.Calls++
	f.LastReset = [2]string{newPassword, confirmPassword}
	return "Password updated", f.ResetErr
}

func (f *fakeClient) GetOtpExpiry(_ context.Context, email string) (time.Time, error) {
	f.Calls++
	f.LastEmail = email
	return f.ExpiryRet, f.ExpiryErr
}

func (f *fakeClient) CurrentUser(context.Context) (*models.Identity, error) {
	f.Calls++
	return f.CurrentRet, f.CurrentErr
}

func (f *fakeClient) Logout(context.Context) (string, error) {
	f.Calls++
	f.Logouts++
	if f.LogoutErr != nil {
		return "", f.LogoutErr
	}
	return "Logged out successfully", nil
}

func (f *fakeClient) ListPosts(_ context.Context, page, limit int) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	f.ListCalls = append(f.ListCalls, [2]int{page, limit})
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	if page-1 < len(f.ListRet) {
		return f.ListRet[page-1], nil
	}
	return nil, nil
}

func (f *fakeClient) CreatePost(_ context.Context, content string) (*models.Post, error) {
	f.Calls++
	f.LastContent = content
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	return &models.Post{ID: "new", Content: content}, nil
}

func (f *fakeClient) ToggleLike(_ context.Context, postID string) (*models.Post, error) {
	f.Calls++
	f.LastPostID = postID
	return f.LikeRet, f.LikeErr
}

func (f *fakeClient) UserPosts(_ context.Context, userID string) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastUserID = userID
	return f.UserPostRet, f.UserPostErr
}

func (f *fakeClient) GetUser(_ context.Context, userID string) (*models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastUserID = userID
	return f.UserRet, f.UserErr
}

func (f *fakeClient) ResetCookies(context.Context) error {
	f.ResetCookieCalls++
	return f.ResetCkErr
}

func (f *fakeClient) Close() error { return nil }

// fakeSession records SetIdentity calls.
type fakeSession struct {
	identity   *models.Identity
	sets       []*models.Identity
	setErr     error
	refreshErr error
	refreshTo  *models.Identity
}

func (s *fakeSession) SetIdentity(_ context.Context, id *models.Identity) error {
	s.sets = append(s.sets, id)
	s.identity = id
	return s.setErr
}

func (s *fakeSession) Refresh(context.Context) error {
	if s.refreshErr != nil {
		return s.refreshErr
	}
	s.identity = s.refreshTo
	return nil
}

func (s *fakeSession) Identity() *models.Identity { return s.identity }
