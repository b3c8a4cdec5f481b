// Package services holds the client's application services: the auth flows
// that drive the session store, the paginated feed and the profile loader.
// Each validates its input before touching the network.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/client/client"
	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
)

// SignupInput carries the signup form.
type SignupInput struct {
	Username string
	Email    string
	Password string
	Bio      string
}

// Session is the part of the session store the auth flows mutate.
type Session interface {
	SetIdentity(ctx context.Context, id *models.Identity) error
	Refresh(ctx context.Context) error
	Identity() *models.Identity
}

// AuthService runs the account flows.
//
// Login and Logout drive the session store; the password-reset flows only
// talk to the API, which tracks the reset through its own cookie.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (string, error)
	Login(ctx context.Context, email, password string) (*models.Identity, string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResendOtp(ctx context.Context, email string) (string, error)
	VerifyOtp(ctx context.Context, email, otp string) (string, error)
	ResetPassword(ctx context.Context, newPassword, confirmPassword string) (string, error)
	GetOtpExpiry(ctx context.Context, email string) (time.Time, error)
	FetchUser(ctx context.Context) (*models.Identity, error)
	Logout(ctx context.Context) (string, error)
}

type authService struct {
	client  client.Client
	session Session
	log     logging.Logger
}

func NewAuthService(c client.Client, s Session, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Discard()
	}
	return &authService{client: c, session: s, log: log.With("component", "auth")}
}

func (a *authService) Signup(ctx context.Context, in SignupInput) (string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateSignup(in); err != nil {
		return "", err
	}
	return a.client.Signup(ctx, client.SignupRequest{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		Bio:      in.Bio,
	})
}

// Login authenticates and, on success, moves the session to Authenticated.
// A failed login leaves the session untouched.
func (a *authService) Login(ctx context.Context, email, password string) (*models.Identity, string, error) {
	email = strings.TrimSpace(email)
	if err := validateLogin(email, password); err != nil {
		return nil, "", err
	}
	id, msg, err := a.client.Login(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	if err := a.session.SetIdentity(ctx, id); err != nil {
		// The user is signed in; only the snapshot is missing.
		a.log.Warn(ctx, "session cache not updated after login", "error", err)
	}
	a.log.Info(ctx, "logged in", "user", id.Username)
	return id, msg, nil
}

func (a *authService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := required("email", email, "Email is required"); err != nil {
		return "", err
	}
	return a.client.ForgotPassword(ctx, email)
}

// ResendOtp asks for a new code; it is the same request as ForgotPassword.
func (a *authService) ResendOtp(ctx context.Context, email string) (string, error) {
	return a.ForgotPassword(ctx, email)
}

func (a *authService) VerifyOtp(ctx context.Context, email, otp string) (string, error) {
	email = strings.TrimSpace(email)
	otp = strings.TrimSpace(otp)
	if err := required("email", email, "Email is required"); err != nil {
		return "", err
	}
	if err := validateOtp(otp); err != nil {
		return "", err
	}
	return a.client.VerifyOtp(ctx, email, otp)
}

func (a *authService) ResetPassword(ctx context.Context, newPassword, confirmPassword string) (string, error) {
	if err := validateReset(newPassword, confirmPassword); err != nil {
		return "", err
	}
	return a.client.ResetPassword(ctx, newPassword, confirmPassword)
}

func (a *authService) GetOtpExpiry(ctx context.Context, email string) (time.Time, error) {
	email = strings.TrimSpace(email)
	if err := required("email", email, "Email is required"); err != nil {
		return time.Time{}, err
	}
	return a.client.GetOtpExpiry(ctx, email)
}

// FetchUser refetches the signed-in user through the session store.
func (a *authService) FetchUser(ctx context.Context) (*models.Identity, error) {
	if err := a.session.Refresh(ctx); err != nil {
		return nil, err
	}
	return a.session.Identity(), nil
}

// Logout ends the session on the server and then locally. When the server
// says the session is already gone the local state is cleared anyway.
func (a *authService) Logout(ctx context.Context) (string, error) {
	msg, err := a.client.Logout(ctx)
	if err != nil && !errors.Is(err, client.ErrUnauthorized) {
		return "", err
	}

	if rerr := a.client.ResetCookies(ctx); rerr != nil {
		a.log.Warn(ctx, "could not reset cookies", "error", rerr)
	}
	if serr := a.session.SetIdentity(ctx, nil); serr != nil {
		a.log.Warn(ctx, "session cache not cleared after logout", "error", serr)
	}
	if msg == "" {
		msg = "Logged out"
	}
	return msg, nil
}
