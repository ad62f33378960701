package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// Credentials supplies the bearer token for authenticated calls and owns
// the invalidation path. The client calls Invalidate exactly when a 401 or
// 403 comes back, so token expiry is handled in one place.
type Credentials interface {
	AccessToken() string
	Invalidate() error
}

// Client talks to the course platform API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	creds       Credentials
	logger      *zap.Logger
	placeholder string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCredentials attaches a credential source for authenticated calls.
func WithCredentials(creds Credentials) Option {
	return func(c *Client) { c.creds = creds }
}

// WithLogger attaches a request logger. Logging never affects the call.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithPlaceholderImage sets the fallback URL used when a course has no
// thumbnail or cover image.
func WithPlaceholderImage(url string) Option {
	return func(c *Client) { c.placeholder = url }
}

// NewClient creates a client for the platform at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: defaultTimeout},
		logger:      zap.NewNop(),
		placeholder: DefaultPlaceholderImageURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the origin the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges a username and password for a token pair.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	body := map[string]string{"username": username, "password": password}
	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/api/login/", body, &pair, false); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Register creates an account. The platform issues tokens on success so
// the caller can log the new user straight in.
func (c *Client) Register(ctx context.Context, username, email, password string) (*TokenPair, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/api/register/", body, &pair, false); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Profile fetches the authenticated user's identity.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, "/api/users/profile/", nil, &p, true); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListCourses fetches the catalog. Image URLs come back normalized.
func (c *Client) ListCourses(ctx context.Context) ([]Course, error) {
	var courses []Course
	if err := c.do(ctx, http.MethodGet, "/courses/", nil, &courses, false); err != nil {
		return nil, err
	}
	for i := range courses {
		c.normalizeCourseImages(&courses[i])
	}
	return courses, nil
}

// GetCourse fetches a single course by ID.
func (c *Client) GetCourse(ctx context.Context, courseID int) (*Course, error) {
	var course Course
	path := fmt.Sprintf("/courses/%d/", courseID)
	if err := c.do(ctx, http.MethodGet, path, nil, &course, false); err != nil {
		return nil, err
	}
	c.normalizeCourseImages(&course)
	return &course, nil
}

// CheckEnrollment reports whether the user is enrolled in the course.
func (c *Client) CheckEnrollment(ctx context.Context, courseID int) (bool, error) {
	var res struct {
		IsEnrolled bool `json:"is_enrolled"`
	}
	path := fmt.Sprintf("/enrollments/check/%d/", courseID)
	if err := c.do(ctx, http.MethodGet, path, nil, &res, true); err != nil {
		return false, err
	}
	return res.IsEnrolled, nil
}

// Enroll registers the user in a course. A server answer of "already
// enrolled" is reported as success with AlreadyEnrolled set, matching how
// the platform treats re-enrollment as an idempotent request.
func (c *Client) Enroll(ctx context.Context, courseID int) (*EnrollResult, error) {
	var res EnrollResult
	path := fmt.Sprintf("/enrollments/enroll/%d/", courseID)
	err := c.do(ctx, http.MethodPost, path, nil, &res, true)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && strings.Contains(strings.ToLower(apiErr.Message), "already enrolled") {
			return &EnrollResult{Message: apiErr.Message, AlreadyEnrolled: true}, nil
		}
		return nil, err
	}
	return &res, nil
}

// Enrollments fetches the user's enrollments with denormalized course
// fields. Thumbnails come back normalized.
func (c *Client) Enrollments(ctx context.Context) ([]Enrollment, error) {
	var enrollments []Enrollment
	if err := c.do(ctx, http.MethodGet, "/enrollments/enrolled/", nil, &enrollments, true); err != nil {
		return nil, err
	}
	for i := range enrollments {
		enrollments[i].Thumbnail = NormalizeImageURL(c.baseURL, enrollments[i].Thumbnail, c.placeholder)
	}
	return enrollments, nil
}

// Sections fetches the section/lesson tree for a course.
func (c *Client) Sections(ctx context.Context, slug string) ([]Section, error) {
	var sections []Section
	path := fmt.Sprintf("/courses/%s/sections/", slug)
	if err := c.do(ctx, http.MethodGet, path, nil, &sections, false); err != nil {
		return nil, err
	}
	return sections, nil
}

// Progress fetches the user's progress records for a course.
func (c *Client) Progress(ctx context.Context, slug string) ([]ProgressRecord, error) {
	var records []ProgressRecord
	path := fmt.Sprintf("/courses/%s/progress/", slug)
	if err := c.do(ctx, http.MethodGet, path, nil, &records, true); err != nil {
		return nil, err
	}
	return records, nil
}

// MarkAccessed records that the user opened a lesson. Fire-and-forget:
// callers log failures and move on.
func (c *Client) MarkAccessed(ctx context.Context, slug string, lessonID int) error {
	path := fmt.Sprintf("/courses/%s/progress/%d/access/", slug, lessonID)
	return c.do(ctx, http.MethodPost, path, nil, nil, true)
}

// MarkComplete marks a lesson completed and returns the updated record,
// with a fresh enrollment snapshot when the server recomputed one.
func (c *Client) MarkComplete(ctx context.Context, slug string, lessonID int) (*CompleteResult, error) {
	var res CompleteResult
	path := fmt.Sprintf("/courses/%s/progress/%d/complete/", slug, lessonID)
	if err := c.do(ctx, http.MethodPost, path, nil, &res, true); err != nil {
		return nil, err
	}
	return &res, nil
}

// SaveNotes persists the notes text for a lesson and returns the updated
// record.
func (c *Client) SaveNotes(ctx context.Context, slug string, lessonID int, notes string) (*ProgressRecord, error) {
	body := map[string]string{"notes": notes}
	var rec ProgressRecord
	path := fmt.Sprintf("/courses/%s/progress/%d/notes/", slug, lessonID)
	if err := c.do(ctx, http.MethodPost, path, body, &rec, true); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) normalizeCourseImages(course *Course) {
	course.Thumbnail = NormalizeImageURL(c.baseURL, course.Thumbnail, c.placeholder)
	course.CoverImage = NormalizeImageURL(c.baseURL, course.CoverImage, c.placeholder)
}

// do performs one request/response cycle. A 401 or 403 on an authenticated
// call clears the stored credentials and surfaces ErrSessionExpired; this
// is the only place token invalidation happens.
func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token := ""
		if c.creds != nil {
			token = c.creds.AccessToken()
		}
		if token == "" {
			return ErrSessionExpired
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		c.logger.Warn("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", req.Header.Get("X-Request-ID")),
			zap.Duration("latency", latency),
			zap.Error(err),
		)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Info("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", req.Header.Get("X-Request-ID")),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", latency),
	)

	if authed && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		if c.creds != nil {
			_ = c.creds.Invalidate()
		}
		return ErrSessionExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: serverMessage(resp.Body)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// serverMessage extracts the human-readable error the platform puts in
// either a "message" or "detail" field.
func serverMessage(r io.Reader) string {
	var body struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Detail
}
