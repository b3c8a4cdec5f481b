// Package guard decides what a navigation should show given the current
// session state.
//
// The guard never grants access. While the session is unresolved it only
// chooses between a loading placeholder and an immediate answer, using the
// prior-session hint to avoid bouncing a signed-in user to the login page.
// The API re-checks every data request on its own.
package guard

import (
	"strings"

	"github.com/dmitrijs2005/gophsocial/internal/client/metrics"
	"github.com/dmitrijs2005/gophsocial/internal/client/models"
)

const (
	LoginPath   = "/login"
	LandingPath = "/posts"
)

type Action int

const (
	Render Action = iota
	Loading
	Redirect
	NotFound
)

func (a Action) String() string {
	switch a {
	case Render:
		return "render"
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

type Access int

const (
	Public Access = iota
	Protected
)

// Route is a matched navigation target. Param holds the {id} segment of
// parameterised routes.
type Route struct {
	Name   string
	Path   string
	Access Access
	Param  string
}

type Decision struct {
	Action Action
	Route  Route
	// Target is the redirect destination; Replace means the redirect
	// replaces the current history entry.
	Target  string
	Replace bool
}

// Session is what the guard reads from the session store.
type Session interface {
	State() models.SessionState
	HasPriorSessionHint() bool
}

type pattern struct {
	name   string
	prefix string
	param  bool
	access Access
}

var routes = []pattern{
	{name: "home", prefix: "/", access: Public},
	{name: "signup", prefix: "/signup", access: Public},
	{name: "login", prefix: "/login", access: Public},
	{name: "forgetpassword", prefix: "/forgetpassword", access: Public},
	{name: "verifyotp", prefix: "/verifyotp", access: Public},
	{name: "resetpassword", prefix: "/resetpassword", access: Public},
	{name: "posts", prefix: "/posts", access: Protected},
	{name: "profile", prefix: "/profile", access: Protected},
	{name: "user", prefix: "/users/", param: true, access: Protected},
}

// Match resolves path against the route table.
func Match(path string) (Route, bool) {
	path = normalize(path)
	for _, p := range routes {
		if p.param {
			rest, ok := strings.CutPrefix(path, p.prefix)
			if !ok || rest == "" || strings.Contains(rest, "/") {
				continue
			}
			return Route{Name: p.name, Path: path, Access: p.access, Param: rest}, true
		}
		if path == p.prefix {
			return Route{Name: p.name, Path: path, Access: p.access}, true
		}
	}
	return Route{Path: path}, false
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

type Guard struct {
	session Session
	metrics *metrics.Metrics
}

func New(s Session, m *metrics.Metrics) *Guard {
	return &Guard{session: s, metrics: m}
}

// Decide applies the navigation policy to path.
func (g *Guard) Decide(path string) Decision {
	d := g.decide(path)
	g.metrics.ObserveGuard(d.Action.String())
	return d
}

func (g *Guard) decide(path string) Decision {
	route, ok := Match(path)
	if !ok {
		return Decision{Action: NotFound, Route: route}
	}

	state := g.session.State()
	if state == models.Unresolved {
		if g.session.HasPriorSessionHint() {
			return Decision{Action: Loading, Route: route}
		}
		// No evidence of a session: answer as if anonymous.
		state = models.Anonymous
	}

	switch {
	case route.Access == Protected && state == models.Authenticated:
		return Decision{Action: Render, Route: route}
	case route.Access == Protected:
		return Decision{Action: Redirect, Route: route, Target: LoginPath, Replace: true}
	case state == models.Authenticated:
		return Decision{Action: Redirect, Route: route, Target: LandingPath, Replace: true}
	default:
		return Decision{Action: Render, Route: route}
	}
}
