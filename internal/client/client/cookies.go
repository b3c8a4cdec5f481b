package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"golang.org/x/net/publicsuffix"
)

// CookieStore persists the credential cookies the API hands out so a
// session survives restarts, the way a browser keeps its cookie jar.
type CookieStore interface {
	LoadCookies(ctx context.Context) ([]*http.Cookie, error)
	SaveCookies(ctx context.Context, cookies []*http.Cookie) error
}

// persistentJar is an http.CookieJar that can be wiped and mirrors its
// API-scoped cookies into a CookieStore.
type persistentJar struct {
	mu    sync.RWMutex
	jar   *cookiejar.Jar
	scope *url.URL
	store CookieStore
}

func newCookieJar() (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return jar, nil
}

func newPersistentJar(scope *url.URL) (*persistentJar, error) {
	jar, err := newCookieJar()
	if err != nil {
		return nil, err
	}
	return &persistentJar{jar: jar, scope: scope}, nil
}

func (j *persistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	j.jar.SetCookies(u, cookies)
}

func (j *persistentJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.jar.Cookies(u)
}

func (j *persistentJar) restore(ctx context.Context) error {
	if j.store == nil {
		return nil
	}
	cookies, err := j.store.LoadCookies(ctx)
	if err != nil {
		return err
	}
	if len(cookies) > 0 {
		j.SetCookies(j.scope, cookies)
	}
	return nil
}

func (j *persistentJar) persist(ctx context.Context) error {
	if j.store == nil {
		return nil
	}
	return j.store.SaveCookies(ctx, j.Cookies(j.scope))
}

// reset drops every cookie from memory and from the store.
func (j *persistentJar) reset(ctx context.Context) error {
	jar, err := newCookieJar()
	if err != nil {
		return err
	}
	j.mu.Lock()
	j.jar = jar
	j.mu.Unlock()

	if j.store == nil {
		return nil
	}
	return j.store.SaveCookies(ctx, nil)
}
