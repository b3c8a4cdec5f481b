package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/client/metrics"
	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 4 << 20
)

// envelope is the part every API response shares.
type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

// HTTPClient implements Client against the REST API.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	jar     *persistentJar
	limiter *rate.Limiter
	log     logging.Logger
	metrics *metrics.Metrics
}

type Option func(*HTTPClient)

// WithTimeout bounds each request. Zero keeps the default of no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.http.Timeout = d }
}

// WithRateLimit caps outbound requests per second. rps <= 0 disables it.
func WithRateLimit(rps float64) Option {
	return func(c *HTTPClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithCookieStore persists credential cookies between runs.
func WithCookieStore(s CookieStore) Option {
	return func(c *HTTPClient) { c.jar.store = s }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) {
		if l != nil {
			c.log = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *HTTPClient) { c.metrics = m }
}

// WithTransport swaps the round tripper, e.g. for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *HTTPClient) { c.http.Transport = rt }
}

// NewHTTPClient builds a client for the API rooted at baseURL and restores
// any cookies the configured CookieStore holds.
func NewHTTPClient(ctx context.Context, baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: scheme and host required", baseURL)
	}

	jar, err := newPersistentJar(apiScope(u))
	if err != nil {
		return nil, err
	}

	c := &HTTPClient{
		baseURL: u,
		http:    &http.Client{Jar: jar},
		jar:     jar,
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "gateway")

	if err := c.jar.restore(ctx); err != nil {
		c.log.Warn(ctx, "could not restore cookies", "error", err)
	}
	return c, nil
}

func (c *HTTPClient) Signup(ctx context.Context, req SignupRequest) (string, error) {
	return c.do(ctx, "signup", http.MethodPost, "/api/auth/signup", nil, req, true, nil)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.Identity, string, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}

	var out struct {
		User *models.Identity `json:"user"`
	}
	msg, err := c.do(ctx, "login", http.MethodPost, "/api/auth/login", nil, body, true, &out)
	if err != nil {
		return nil, "", err
	}
	if out.User == nil {
		return nil, "", fmt.Errorf("%w: login: no user in response", ErrMalformedResponse)
	}
	return out.User, msg, nil
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) (string, error) {
	body := struct {
		Email string `json:"email"`
	}{email}
	return c.do(ctx, "forget_password", http.MethodPost, "/api/auth/forgetpassword", nil, body, true, nil)
}

func (c *HTTPClient) VerifyOtp(ctx context.Context, email, otp string) (string, error) {
	body := struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}{email, otp}
	return c.do(ctx, "verify_otp", http.MethodPost, "/api/auth/verifyotp", nil, body, true, nil)
}

func (c *HTTPClient) ResetPassword(ctx context.Context, newPassword, confirmPassword string) (string, error) {
	body := struct {
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}{newPassword, confirmPassword}
	return c.do(ctx, "reset_password", http.MethodPost, "/api/auth/resetpassword", nil, body, true, nil)
}

// GetOtpExpiry returns the server's expiry instant for the outstanding code.
// A null expiry comes back as the zero time.
func (c *HTTPClient) GetOtpExpiry(ctx context.Context, email string) (time.Time, error) {
	var out struct {
		OtpExpiryTime json.RawMessage `json:"otpExpiryTime"`
	}
	q := url.Values{"email": []string{email}}
	if _, err := c.do(ctx, "get_otp_expiry", http.MethodGet, "/api/auth/getotpexpiry", q, nil, true, &out); err != nil {
		return time.Time{}, err
	}
	return parseExpiry(out.OtpExpiryTime)
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (*models.Identity, error) {
	var out struct {
		User *models.Identity `json:"user"`
	}
	if _, err := c.do(ctx, "current_user", http.MethodGet, "/api/auth/user", nil, nil, true, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, fmt.Errorf("%w: current user: no user in response", ErrMalformedResponse)
	}
	return out.User, nil
}

func (c *HTTPClient) Logout(ctx context.Context) (string, error) {
	return c.do(ctx, "logout", http.MethodPost, "/api/auth/logout", nil, struct{}{}, true, nil)
}

func (c *HTTPClient) ListPosts(ctx context.Context, page, limit int) ([]models.Post, error) {
	var out struct {
		Posts []models.Post `json:"posts"`
	}
	q := url.Values{}
	q.Set("page", fmt.Sprint(page))
	q.Set("limit", fmt.Sprint(limit))
	if _, err := c.do(ctx, "list_posts", http.MethodGet, "/api/posts", q, nil, false, &out); err != nil {
		return nil, err
	}
	return out.Posts, nil
}

func (c *HTTPClient) CreatePost(ctx context.Context, content string) (*models.Post, error) {
	body := struct {
		Content string `json:"content"`
	}{content}
	var out struct {
		Post *models.Post `json:"post"`
	}
	if _, err := c.do(ctx, "create_post", http.MethodPost, "/api/posts", nil, body, false, &out); err != nil {
		return nil, err
	}
	if out.Post == nil {
		return nil, fmt.Errorf("%w: create post: no post in response", ErrMalformedResponse)
	}
	return out.Post, nil
}

func (c *HTTPClient) ToggleLike(ctx context.Context, postID string) (*models.Post, error) {
	var out struct {
		Post *models.Post `json:"post"`
	}
	path := "/api/posts/" + url.PathEscape(postID) + "/like"
	if _, err := c.do(ctx, "toggle_like", http.MethodPut, path, nil, struct{}{}, false, &out); err != nil {
		return nil, err
	}
	if out.Post == nil {
		return nil, fmt.Errorf("%w: like: no post in response", ErrMalformedResponse)
	}
	return out.Post, nil
}

func (c *HTTPClient) UserPosts(ctx context.Context, userID string) ([]models.Post, error) {
	var out struct {
		Posts []models.Post `json:"posts"`
	}
	path := "/api/posts/" + url.PathEscape(userID) + "/posts"
	if _, err := c.do(ctx, "user_posts", http.MethodGet, path, nil, nil, false, &out); err != nil {
		return nil, err
	}
	return out.Posts, nil
}

func (c *HTTPClient) GetUser(ctx context.Context, userID string) (*models.Identity, error) {
	var out struct {
		User *models.Identity `json:"user"`
	}
	if _, err := c.do(ctx, "get_user", http.MethodGet, "/api/users/"+url.PathEscape(userID), nil, nil, false, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, fmt.Errorf("%w: get user: no user in response", ErrMalformedResponse)
	}
	return out.User, nil
}

func (c *HTTPClient) ResetCookies(ctx context.Context) error {
	return c.jar.reset(ctx)
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// do sends one request and decodes the response into out. It returns the
// envelope's message on success. requireSuccess demands an explicit
// success flag, which the auth endpoints always send.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, query url.Values, body any, requireSuccess bool, out any) (msg string, err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveGateway(op, start, resultLabel(err)) }()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("encode %s request: %w", op, err)
		}
		rdr = bytes.NewReader(b)
	}

	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return "", fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.NewString()
	req.Header.Set(requestIDHeader, reqID)

	log := c.log.With("op", op, "request_id", reqID)
	log.Debug(ctx, "gateway request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		log.Warn(ctx, "gateway request failed", "error", err)
		return "", fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if err := c.jar.persist(ctx); err != nil {
		log.Warn(ctx, "could not persist cookies", "error", err)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read %s response: %v", ErrUnavailable, op, err)
	}

	var env envelope
	envErr := json.Unmarshal(data, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := env.Message
		if envErr != nil || message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		log.Debug(ctx, "gateway rejected request", "status", resp.StatusCode, "message", message)
		return "", &APIError{Status: resp.StatusCode, Message: message}
	}
	if envErr != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrMalformedResponse, op, envErr)
	}
	if env.Success != nil && !*env.Success {
		return "", &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if requireSuccess && env.Success == nil {
		return "", fmt.Errorf("%w: %s: missing success flag", ErrMalformedResponse, op)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrMalformedResponse, op, err)
		}
	}
	return env.Message, nil
}

// apiScope is the URL the credential cookies are stored under. Its path must
// be absolute or the jar never matches it.
func apiScope(base *url.URL) *url.URL {
	scope := *base
	scope.Path = strings.TrimRight(base.Path, "/") + "/api/"
	if !strings.HasPrefix(scope.Path, "/") {
		scope.Path = "/" + scope.Path
	}
	scope.RawPath = ""
	scope.RawQuery = ""
	scope.Fragment = ""
	return &scope
}

func resultLabel(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.As(err, &apiErr):
		return "rejected"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

// parseExpiry accepts what a JavaScript Date constructor would: an ISO-8601
// string or epoch milliseconds, as a number or numeric string.
func parseExpiry(raw json.RawMessage) (time.Time, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return time.Time{}, nil
	}

	var ms float64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return time.UnixMilli(int64(ms)), nil
	}

	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return time.Time{}, fmt.Errorf("%w: otp expiry %s", ErrMalformedResponse, s)
	}
	if str == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, str); err == nil {
		return t, nil
	}
	var n int64
	if _, err := fmt.Sscanf(str, "%d", &n); err == nil && fmt.Sprint(n) == str {
		return time.UnixMilli(n), nil
	}
	return time.Time{}, fmt.Errorf("%w: otp expiry %q", ErrMalformedResponse, str)
}
