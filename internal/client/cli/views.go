package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gophsocial/internal/client/client"
	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/client/otp"
	"github.com/dmitrijs2005/gophsocial/internal/client/services"
	"github.com/dmitrijs2005/gophsocial/internal/common"
)

const timeLayout = "2006-01-02 15:04"

func (a *App) viewHome(context.Context) error {
	fmt.Fprintln(a.out, "gophsocial: share what's on your mind.")
	fmt.Fprintln(a.out, "Type 'login' to sign in or 'signup' to create an account.")
	return nil
}

func (a *App) viewSignup(ctx context.Context) error {
	var in services.SignupInput
	var err error
	if in.Username, err = getSimpleText(a.reader, "Username", a.out); err != nil {
		return err
	}
	if in.Email, err = getSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}
	pw, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	in.Password = string(pw)
	if in.Bio, err = getSimpleText(a.reader, "Bio (optional)", a.out); err != nil {
		return err
	}

	err = a.run(ctx, "Signup failed", func(ctx context.Context) (string, error) {
		return a.auth.Signup(ctx, in)
	})
	if err != nil {
		return nil
	}
	return a.navigate(ctx, "/login")
}

func (a *App) viewLogin(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	pw, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	err = a.run(ctx, "Login failed", func(ctx context.Context) (string, error) {
		_, msg, err := a.auth.Login(ctx, email, string(pw))
		return msg, err
	})
	if err != nil {
		return nil
	}
	a.feed.Reset()
	return a.navigate(ctx, "/posts")
}

func (a *App) viewForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	err = a.run(ctx, "Could not send OTP", func(ctx context.Context) (string, error) {
		return a.auth.ForgotPassword(ctx, email)
	})
	if err != nil {
		return nil
	}
	a.resetEmail = strings.TrimSpace(email)
	a.otpEmail = ""
	return a.navigate(ctx, "/verifyotp")
}

// viewVerifyOtp shows the countdown and takes the code. The countdown only
// runs while the view waits for input.
func (a *App) viewVerifyOtp(ctx context.Context) error {
	if a.resetEmail == "" {
		email, err := getSimpleText(a.reader, "Email", a.out)
		if err != nil {
			return err
		}
		a.resetEmail = strings.TrimSpace(email)
	}

	if a.otpEmail != a.resetEmail {
		err := a.run(ctx, "Could not get OTP expiry", func(ctx context.Context) (string, error) {
			expiry, err := a.auth.GetOtpExpiry(ctx, a.resetEmail)
			if err != nil {
				return "", err
			}
			a.timer.Start(expiry)
			a.otpEmail = a.resetEmail
			return "", nil
		})
		if err != nil {
			return nil
		}
	} else {
		a.timer.Start(a.timer.Expiry())
	}

	if a.timer.Action() == otp.ActionResend {
		fmt.Fprintln(a.out, "The code has expired. Type 'resend' to get a new one.")
		return nil
	}

	tctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.timer.Stop()
	go a.timer.Run(tctx)

	fmt.Fprintf(a.out, "A code was sent to %s. It expires in %s.\n", a.resetEmail, a.timer.Format())
	code, err := getSimpleText(a.reader, "Enter the 6-digit code", a.out)
	if err != nil {
		return err
	}
	if a.timer.Action() == otp.ActionResend {
		a.notifier.Error("OTP expired. Type 'resend' to get a new one.")
		return nil
	}

	err = a.run(ctx, "OTP verification failed", func(ctx context.Context) (string, error) {
		return a.auth.VerifyOtp(ctx, a.resetEmail, code)
	})
	if err != nil {
		return nil
	}
	return a.navigate(ctx, "/resetpassword")
}

func (a *App) viewResetPassword(ctx context.Context) error {
	pw, err := getPassword(a.reader, "New password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	confirm, err := getPassword(a.reader, "Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	err = a.run(ctx, "Password reset failed", func(ctx context.Context) (string, error) {
		return a.auth.ResetPassword(ctx, string(pw), string(confirm))
	})
	if err != nil {
		return nil
	}
	a.resetEmail, a.otpEmail = "", ""
	return a.navigate(ctx, "/login")
}

// viewFeed shows what is loaded, fetching the first page when nothing is.
func (a *App) viewFeed(ctx context.Context) error {
	if a.feed.Page() == 0 {
		if err := a.loadMore(ctx); err != nil {
			return nil
		}
	}
	posts := a.feed.Posts()
	if len(posts) == 0 {
		fmt.Fprintln(a.out, "No posts yet. Type 'post' to write one.")
		return nil
	}
	printPosts(a.out, posts)
	a.printFeedFooter()
	return nil
}

func (a *App) loadMore(ctx context.Context) error {
	return a.run(ctx, "Could not load posts", func(ctx context.Context) (string, error) {
		_, err := a.feed.LoadNext(ctx)
		return "", err
	})
}

func (a *App) printFeedFooter() {
	if a.feed.HasMore() {
		fmt.Fprintln(a.out, "Type 'more' for older posts.")
	} else {
		fmt.Fprintln(a.out, "You're all caught up.")
	}
}

func (a *App) viewProfile(ctx context.Context) error {
	var id *models.Identity
	err := a.run(ctx, "Could not load profile", func(ctx context.Context) (string, error) {
		var err error
		id, err = a.auth.FetchUser(ctx)
		return "", err
	})
	if errors.Is(err, client.ErrUnauthorized) {
		return a.navigate(ctx, "/login")
	}
	if err != nil {
		return nil
	}
	printIdentity(a.out, id)
	if len(id.Posts) == 0 {
		fmt.Fprintln(a.out, "No posts yet.")
		return nil
	}
	printPosts(a.out, id.Posts)
	return nil
}

func (a *App) viewUser(ctx context.Context, userID string) error {
	var p *services.Profile
	err := a.run(ctx, "Could not load user", func(ctx context.Context) (string, error) {
		var err error
		p, err = a.profiles.UserPosts(ctx, userID)
		return "", err
	})
	if err != nil {
		return nil
	}
	printIdentity(a.out, p.User)
	if len(p.Posts) == 0 {
		fmt.Fprintln(a.out, "No posts yet.")
		return nil
	}
	printPosts(a.out, p.Posts)
	return nil
}

func printIdentity(w io.Writer, id *models.Identity) {
	fmt.Fprintf(w, "%s <%s>\n", id.Username, id.Email)
	if id.Bio != "" {
		fmt.Fprintln(w, id.Bio)
	}
	if !id.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Joined %s\n", id.CreatedAt.Local().Format("January 2006"))
	}
}

func printPosts(w io.Writer, posts []models.Post) {
	for _, p := range posts {
		printPost(w, p)
	}
}

func printPost(w io.Writer, p models.Post) {
	fmt.Fprintf(w, "[%s] %s · %s\n", p.ID, p.Author.Username, p.CreatedAt.Local().Format(timeLayout))
	for _, line := range strings.Split(p.Content, "\n") {
		fmt.Fprintf(w, "    %s\n", line)
	}
	fmt.Fprintf(w, "    likes: %d  comments: %d\n", p.TotalLikes(), p.CommentCount)
}
