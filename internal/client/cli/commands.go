package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/client/otp"
)

func (a *App) Help(context.Context) error {
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, signedInHelp)
	} else {
		fmt.Fprintln(a.out, anonymousHelp)
	}
	return nil
}

// GoTo opens any route by path, e.g. "go /users/42".
func (a *App) GoTo(ctx context.Context, path string) error {
	return a.navigate(ctx, path)
}

func (a *App) Back(ctx context.Context) error {
	return a.back(ctx)
}

func (a *App) Home(ctx context.Context) error {
	return a.navigate(ctx, "/")
}

func (a *App) Signup(ctx context.Context) error {
	return a.navigate(ctx, "/signup")
}

func (a *App) Login(ctx context.Context) error {
	return a.navigate(ctx, "/login")
}

func (a *App) Forgot(ctx context.Context) error {
	return a.navigate(ctx, "/forgetpassword")
}

func (a *App) Verify(ctx context.Context) error {
	return a.navigate(ctx, "/verifyotp")
}

// Resend asks for a fresh code once the current one has run out and
// reopens the verification page.
func (a *App) Resend(ctx context.Context) error {
	if a.resetEmail == "" {
		a.notifier.Error("Start with 'forgot' to request a code")
		return nil
	}
	if a.timer.Action() != otp.ActionResend {
		a.notifier.Error(fmt.Sprintf("The current code is still valid for %s", a.timer.Format()))
		return nil
	}
	err := a.run(ctx, "Could not resend OTP", func(ctx context.Context) (string, error) {
		return a.timer.RequestNewExpiry(ctx, a.resetEmail)
	})
	if err != nil {
		return nil
	}
	a.otpEmail = a.resetEmail
	return a.navigate(ctx, "/verifyotp")
}

func (a *App) Reset(ctx context.Context) error {
	return a.navigate(ctx, "/resetpassword")
}

func (a *App) Feed(ctx context.Context) error {
	return a.navigate(ctx, "/posts")
}

// More loads the next page of the feed and prints it.
func (a *App) More(ctx context.Context) error {
	if !a.onFeed() {
		return nil
	}
	if !a.feed.HasMore() {
		fmt.Fprintln(a.out, "You're all caught up.")
		return nil
	}
	before := len(a.feed.Posts())
	if a.feed.Page() == 0 {
		before = 0
	}
	if err := a.loadMore(ctx); err != nil {
		return nil
	}
	posts := a.feed.Posts()
	// Page 1 replaces the list, which may now be shorter.
	if before > len(posts) {
		before = 0
	}
	printPosts(a.out, posts[before:])
	a.printFeedFooter()
	return nil
}

// Post publishes a new post and puts it at the top of the feed.
func (a *App) Post(ctx context.Context) error {
	if !a.onFeed() {
		return nil
	}
	content, err := getMultiline(a.reader, "What's on your mind?", a.out)
	if err != nil {
		return err
	}
	var created *models.Post
	err = a.run(ctx, "Could not create post", func(ctx context.Context) (string, error) {
		var err error
		created, err = a.feed.Create(ctx, content)
		if err != nil {
			return "", err
		}
		return "Post created", nil
	})
	if err != nil {
		return nil
	}
	printPost(a.out, *created)
	return nil
}

func (a *App) Like(ctx context.Context, postID string) error {
	if !a.onFeed() {
		return nil
	}
	var updated *models.Post
	err := a.run(ctx, "Could not update like", func(ctx context.Context) (string, error) {
		var err error
		updated, err = a.feed.ToggleLike(ctx, postID)
		return "", err
	})
	if err != nil {
		return nil
	}
	printPost(a.out, *updated)
	return nil
}

func (a *App) Profile(ctx context.Context) error {
	return a.navigate(ctx, "/profile")
}

func (a *App) User(ctx context.Context, userID string) error {
	return a.navigate(ctx, "/users/"+strings.TrimSpace(userID))
}

func (a *App) WhoAmI(context.Context) error {
	snap := a.session.Snapshot()
	switch snap.State {
	case models.Authenticated:
		fmt.Fprintf(a.out, "%s <%s> (%s)\n", snap.Identity.Username, snap.Identity.Email, snap.Identity.ID)
	default:
		fmt.Fprintln(a.out, snap.State)
	}
	return nil
}

// Logout ends the session on the server and locally, then goes home.
func (a *App) Logout(ctx context.Context) error {
	err := a.run(ctx, "Logout failed", func(ctx context.Context) (string, error) {
		return a.auth.Logout(ctx)
	})
	if err != nil {
		return nil
	}
	a.feed.Reset()
	a.history = nil
	return a.navigate(ctx, "/")
}

// onFeed reports whether the feed page is open, telling the user otherwise.
func (a *App) onFeed() bool {
	if a.current != "/posts" {
		fmt.Fprintln(a.out, "Open the feed first (type 'feed')")
		return false
	}
	return true
}
