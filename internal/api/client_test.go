package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCreds counts invalidations so tests can assert the 401/403 path
// runs exactly once per failed call.
type fakeCreds struct {
	token       string
	invalidated int
}

func (f *fakeCreds) AccessToken() string { return f.token }
func (f *fakeCreds) Invalidate() error {
	f.invalidated++
	f.token = ""
	return nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, opts...), srv
}

func TestLogin(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/login/", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "amina", body["username"])
		assert.Equal(t, "s3cret", body["password"])
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		json.NewEncoder(w).Encode(TokenPair{Access: "acc", Refresh: "ref"})
	})

	pair, err := client.Login(context.Background(), "amina", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "acc", pair.Access)
	assert.Equal(t, "ref", pair.Refresh)
}

func TestLoginBadCredentials(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "No active account found"})
	})

	_, err := client.Login(context.Background(), "amina", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "No active account found", apiErr.Message)
}

func TestAuthExpiryInvalidatesOnce(t *testing.T) {
	creds := &fakeCreds{token: "stale"}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer stale", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusForbidden)
	}, WithCredentials(creds))

	_, err := client.Enrollments(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 1, creds.invalidated)

	// The token is gone now, so the next call short-circuits without
	// touching the credentials again.
	_, err = client.Enrollments(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 1, creds.invalidated)
}

func TestMissingTokenFailsBeforeRequest(t *testing.T) {
	called := false
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	err := client.MarkAccessed(context.Background(), "go-basics", 1)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.False(t, called, "no request should reach the server without a token")
}

func TestUnauthenticatedCallIgnoresStatus403Handling(t *testing.T) {
	creds := &fakeCreds{token: "valid"}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"detail": "closed catalog"})
	}, WithCredentials(creds))

	_, err := client.ListCourses(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, creds.invalidated, "catalog calls must not clear credentials")
}

func TestProfile(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/users/profile/", r.URL.Path)
		assert.Equal(t, "Bearer valid", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(Profile{ID: 1, Username: "amina", Email: "amina@example.com"})
	}, WithCredentials(&fakeCreds{token: "valid"}))

	p, err := client.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "amina", p.Username)
	assert.Equal(t, "amina@example.com", p.Email)
}

func TestProfileExpiryInvalidates(t *testing.T) {
	creds := &fakeCreds{token: "stale"}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, WithCredentials(creds))

	_, err := client.Profile(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 1, creds.invalidated)
}

func TestListCoursesNormalizesImages(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Course{
			{ID: 1, Slug: "go-basics", Thumbnail: "/media/go.png", CoverImage: ""},
			{ID: 2, Slug: "sql-deep-dive", Thumbnail: "https://cdn.example.com/sql.png"},
		})
	})

	courses, err := client.ListCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)

	assert.Equal(t, srv.URL+"/media/go.png", courses[0].Thumbnail)
	assert.Equal(t, DefaultPlaceholderImageURL, courses[0].CoverImage)
	assert.Equal(t, "https://cdn.example.com/sql.png", courses[1].Thumbnail)
}

func TestEnrollAlreadyEnrolledIsSuccess(t *testing.T) {
	creds := &fakeCreds{token: "valid"}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "You are already enrolled in this course"})
	}, WithCredentials(creds))

	res, err := client.Enroll(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, res.AlreadyEnrolled)
	assert.Equal(t, 0, creds.invalidated)
}

func TestEnrollOtherErrorsSurface(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "Course is full"})
	}, WithCredentials(&fakeCreds{token: "valid"}))

	_, err := client.Enroll(context.Background(), 7)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Course is full", apiErr.Message)
}

func TestMarkComplete(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/courses/go-basics/progress/4/complete/", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"id": 9, "lesson_id": 4, "completed": true,
			"enrollment": map[string]any{
				"id": 3, "course_id": 7, "progress_percentage": 50.0,
			},
		})
	}, WithCredentials(&fakeCreds{token: "valid"}))

	res, err := client.MarkComplete(context.Background(), "go-basics", 4)
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Equal(t, 4, res.LessonID)
	require.NotNil(t, res.Enrollment)
	assert.Equal(t, 50.0, res.Enrollment.ProgressPercentage)
}

func TestSaveNotes(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "remember the pointer rules", body["notes"])

		json.NewEncoder(w).Encode(ProgressRecord{ID: 9, LessonID: 4, Notes: body["notes"]})
	}, WithCredentials(&fakeCreds{token: "valid"}))

	rec, err := client.SaveNotes(context.Background(), "go-basics", 4, "remember the pointer rules")
	require.NoError(t, err)
	assert.Equal(t, "remember the pointer rules", rec.Notes)
}

func TestServerMessageFallsBackToDetail(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Not found."})
	})

	_, err := client.GetCourse(context.Background(), 99)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Not found.", apiErr.Message)
}
