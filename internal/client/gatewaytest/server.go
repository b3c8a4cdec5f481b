// Package gatewaytest runs an in-memory implementation of the social API on
// an httptest server so client, service and CLI tests can exercise the real
// HTTP stack end to end.
package gatewaytest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/labstack/echo/v4"
)

const (
	// SessionCookie is the credential cookie the fake server issues.
	SessionCookie = "token"
	resetCookie   = "reset_token"
)

type account struct {
	identity models.Identity
	password string
}

type otpEntry struct {
	code   string
	expiry time.Time
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	now      func() time.Time
	otpTTL   time.Duration
	accounts map[string]*account // by email
	sessions map[string]string   // session token -> email
	resets   map[string]string   // reset token -> email
	otps     map[string]otpEntry // email -> otp
	posts    []*models.Post
	calls    map[string]int
	seq      int
	hold     chan struct{}
}

// New starts a server. Close it with t.Cleanup(srv.Close).
func New() *Server {
	s := &Server{
		now:      time.Now,
		otpTTL:   5 * time.Minute,
		accounts: map[string]*account{},
		sessions: map[string]string{},
		resets:   map[string]string{},
		otps:     map[string]otpEntry{},
		calls:    map[string]int{},
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(s.count)

	auth := e.Group("/api/auth")
	auth.POST("/signup", s.signup)
	auth.POST("/login", s.login)
	auth.POST("/forgetpassword", s.forgetPassword)
	auth.POST("/verifyotp", s.verifyOtp)
	auth.POST("/resetpassword", s.resetPassword)
	auth.GET("/getotpexpiry", s.otpExpiry)
	auth.GET("/user", s.currentUser)
	auth.POST("/logout", s.logout)

	e.GET("/api/posts", s.listPosts)
	e.POST("/api/posts", s.createPost)
	e.PUT("/api/posts/:id/like", s.toggleLike)
	e.GET("/api/posts/:id/posts", s.userPosts)
	e.GET("/api/users/:id", s.getUser)

	s.Server = httptest.NewServer(e)
	return s
}

// SetNow fixes the server clock used for OTP expiry.
func (s *Server) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// AddUser registers an account directly and returns its identity.
func (s *Server) AddUser(username, email, password, bio string) models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, email, password, bio)
}

func (s *Server) addUserLocked(username, email, password, bio string) models.Identity {
	s.seq++
	id := models.Identity{
		ID:        "u" + strconv.Itoa(s.seq),
		Username:  username,
		Email:     email,
		Bio:       bio,
		CreatedAt: s.now().UTC().Truncate(time.Second),
	}
	s.accounts[email] = &account{identity: id, password: password}
	return id
}

// AddPost creates a post authored by the account with the given email.
func (s *Server) AddPost(email, content string) models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.addPostLocked(s.accounts[email], content)
}

func (s *Server) addPostLocked(a *account, content string) *models.Post {
	s.seq++
	p := &models.Post{
		ID:        "p" + strconv.Itoa(s.seq),
		Content:   content,
		Author:    models.Author{ID: a.identity.ID, Username: a.identity.Username},
		CreatedAt: s.now().UTC().Add(time.Duration(s.seq) * time.Millisecond),
	}
	s.posts = append(s.posts, p)
	return p
}

// OTP returns the outstanding code for email, if any.
func (s *Server) OTP(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.otps[email].code
}

// Calls reports how many requests hit method+path, e.g. "GET /api/auth/user".
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// Password returns the stored password for email.
func (s *Server) Password(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[email]; ok {
		return a.password
	}
	return ""
}

// HoldCurrentUser makes GET /api/auth/user block until release is called.
func (s *Server) HoldCurrentUser() (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.hold = ch
	s.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (s *Server) count(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		s.calls[c.Request().Method+" "+c.Path()]++
		s.mu.Unlock()
		return next(c)
	}
}

func fail(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]any{"success": false, "message": msg})
}

func ok(c echo.Context, body map[string]any) error {
	if body == nil {
		body = map[string]any{}
	}
	body["success"] = true
	return c.JSON(http.StatusOK, body)
}

func (s *Server) token() string {
	s.seq++
	return fmt.Sprintf("tok-%d-%d", s.seq, s.now().UnixNano())
}

// sessionAccount returns the caller's account; s.mu must be held.
func (s *Server) sessionAccount(c echo.Context) *account {
	ck, err := c.Cookie(SessionCookie)
	if err != nil {
		return nil
	}
	email, found := s.sessions[ck.Value]
	if !found {
		return nil
	}
	return s.accounts[email]
}

func (s *Server) signup(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Bio      string `json:"bio"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "All fields are required")
	}
	if _, exists := s.accounts[req.Email]; exists {
		return fail(c, http.StatusConflict, "User already exists")
	}
	s.addUserLocked(req.Username, req.Email, req.Password, req.Bio)
	return ok(c, map[string]any{"message": "User registered successfully"})
}

func (s *Server) login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, exists := s.accounts[req.Email]
	if !exists || a.password != req.Password {
		return fail(c, http.StatusUnauthorized, "Invalid credentials")
	}
	tok := s.token()
	s.sessions[tok] = req.Email
	c.SetCookie(&http.Cookie{Name: SessionCookie, Value: tok, Path: "/", HttpOnly: true})
	return ok(c, map[string]any{"message": "Login successful", "user": a.identity})
}

func (s *Server) forgetPassword(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[req.Email]; !exists {
		return fail(c, http.StatusNotFound, "User not found")
	}
	s.seq++
	s.otps[req.Email] = otpEntry{
		code:   fmt.Sprintf("%06d", (s.seq*7919)%1000000),
		expiry: s.now().Add(s.otpTTL),
	}
	return ok(c, map[string]any{"message": "OTP sent to your email"})
}

func (s *Server) verifyOtp(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, exists := s.otps[req.Email]
	if !exists || entry.code != req.OTP {
		return fail(c, http.StatusBadRequest, "Invalid OTP")
	}
	if s.now().After(entry.expiry) {
		return fail(c, http.StatusBadRequest, "OTP expired")
	}
	delete(s.otps, req.Email)
	tok := s.token()
	s.resets[tok] = req.Email
	c.SetCookie(&http.Cookie{Name: resetCookie, Value: tok, Path: "/", HttpOnly: true})
	return ok(c, map[string]any{"message": "OTP verified"})
}

func (s *Server) resetPassword(c echo.Context) error {
	var req struct {
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ck, err := c.Cookie(resetCookie)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Reset session expired")
	}
	email, exists := s.resets[ck.Value]
	if !exists {
		return fail(c, http.StatusUnauthorized, "Reset session expired")
	}
	if req.NewPassword != req.ConfirmPassword {
		return fail(c, http.StatusBadRequest, "Passwords do not match")
	}
	s.accounts[email].password = req.NewPassword
	delete(s.resets, ck.Value)
	c.SetCookie(&http.Cookie{Name: resetCookie, Value: "", Path: "/", MaxAge: -1})
	return ok(c, map[string]any{"message": "Password updated"})
}

func (s *Server) otpExpiry(c echo.Context) error {
	email := c.QueryParam("email")
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, exists := s.otps[email]
	if !exists {
		return fail(c, http.StatusNotFound, "No OTP requested")
	}
	return ok(c, map[string]any{"otpExpiryTime": entry.expiry.UTC().Format(time.RFC3339Nano)})
}

func (s *Server) currentUser(c echo.Context) error {
	s.mu.Lock()
	hold := s.hold
	s.mu.Unlock()
	if hold != nil {
		select {
		case <-hold:
		case <-c.Request().Context().Done():
			return c.Request().Context().Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.sessionAccount(c)
	if a == nil {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}
	id := a.identity
	for _, p := range s.posts {
		if p.Author.ID == id.ID {
			id.Posts = append(id.Posts, *p)
		}
	}
	return ok(c, map[string]any{"user": id})
}

func (s *Server) logout(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ck, err := c.Cookie(SessionCookie); err == nil {
		delete(s.sessions, ck.Value)
	}
	c.SetCookie(&http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	return ok(c, map[string]any{"message": "Logged out successfully"})
}

func (s *Server) sortedPosts() []*models.Post {
	out := append([]*models.Post(nil), s.posts...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Server) listPosts(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.sortedPosts()
	from := (page - 1) * limit
	if from > len(all) {
		from = len(all)
	}
	to := from + limit
	if to > len(all) {
		to = len(all)
	}
	out := make([]models.Post, 0, to-from)
	for _, p := range all[from:to] {
		out = append(out, *p)
	}
	return c.JSON(http.StatusOK, map[string]any{"posts": out})
}

func (s *Server) createPost(c echo.Context) error {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.sessionAccount(c)
	if a == nil {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}
	if req.Content == "" {
		return fail(c, http.StatusBadRequest, "Content is required")
	}
	p := s.addPostLocked(a, req.Content)
	return c.JSON(http.StatusCreated, map[string]any{"post": p})
}

func (s *Server) toggleLike(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.sessionAccount(c)
	if a == nil {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}
	for _, p := range s.posts {
		if p.ID != c.Param("id") {
			continue
		}
		if p.LikedBy(a.identity.ID) {
			likes := make([]string, 0, len(p.Likes))
			for _, id := range p.Likes {
				if id != a.identity.ID {
					likes = append(likes, id)
				}
			}
			p.Likes = likes
		} else {
			p.Likes = append(p.Likes, a.identity.ID)
		}
		p.LikeCount = len(p.Likes)
		return c.JSON(http.StatusOK, map[string]any{"post": p})
	}
	return fail(c, http.StatusNotFound, "Post not found")
}

func (s *Server) userPosts(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Post{}
	for _, p := range s.sortedPosts() {
		if p.Author.ID == c.Param("id") {
			out = append(out, *p)
		}
	}
	return c.JSON(http.StatusOK, map[string]any{"posts": out})
}

func (s *Server) getUser(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.identity.ID == c.Param("id") {
			return c.JSON(http.StatusOK, map[string]any{"user": a.identity})
		}
	}
	return fail(c, http.StatusNotFound, "User not found")
}
