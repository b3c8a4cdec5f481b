package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophsocial/internal/client/guard"
)

const maxHops = 5

// navigate opens path through the guard. Redirects are followed, a loading
// decision waits for the startup session check and asks again.
func (a *App) navigate(ctx context.Context, path string) error {
	replace := false
	for hop := 0; hop < maxHops; hop++ {
		d := a.guard.Decide(path)
		a.log.Debug(ctx, "navigation", "path", path, "action", d.Action, "target", d.Target)

		switch d.Action {
		case guard.Loading:
			fmt.Fprintln(a.out, "Loading...")
			select {
			case <-a.session.Done():
			case <-ctx.Done():
				return ctx.Err()
			}
		case guard.Redirect:
			// A replacing redirect takes over the rejected page's entry,
			// so that entry is recorded first.
			if d.Replace {
				a.visit(d.Route.Path, replace)
			}
			path, replace = d.Target, d.Replace
		case guard.NotFound:
			a.visit(d.Route.Path, replace)
			fmt.Fprintln(a.out, "404 - Page Not Found")
			return nil
		default:
			a.visit(d.Route.Path, replace)
			return a.render(ctx, d.Route)
		}
	}
	return fmt.Errorf("too many redirects opening %s", path)
}

func (a *App) visit(path string, replace bool) {
	if replace && len(a.history) > 0 {
		a.history[len(a.history)-1] = path
	} else {
		a.history = append(a.history, path)
	}
	a.current = path
}

// back reopens the previous page, through the guard again.
func (a *App) back(ctx context.Context) error {
	if len(a.history) < 2 {
		fmt.Fprintln(a.out, "Nowhere to go back to")
		return nil
	}
	prev := a.history[len(a.history)-2]
	a.history = a.history[:len(a.history)-2]
	return a.navigate(ctx, prev)
}

func (a *App) render(ctx context.Context, r guard.Route) error {
	switch r.Name {
	case "home":
		return a.viewHome(ctx)
	case "signup":
		return a.viewSignup(ctx)
	case "login":
		return a.viewLogin(ctx)
	case "forgetpassword":
		return a.viewForgotPassword(ctx)
	case "verifyotp":
		return a.viewVerifyOtp(ctx)
	case "resetpassword":
		return a.viewResetPassword(ctx)
	case "posts":
		return a.viewFeed(ctx)
	case "profile":
		return a.viewProfile(ctx)
	case "user":
		return a.viewUser(ctx, r.Param)
	default:
		return fmt.Errorf("no view for route %q", r.Name)
	}
}
