package learning

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"unicode/utf8"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"campus/internal/api"
	"campus/internal/screen"
)

type staticCreds struct{ token string }

func (c *staticCreds) AccessToken() string { return c.token }
func (c *staticCreds) Invalidate() error {
	c.token = ""
	return nil
}

func loadedCourse() learnLoadedMsg {
	return learnLoadedMsg{
		Sections: []api.Section{
			{
				ID: 1, Title: "Getting Started", Order: 1,
				Lessons: []api.Lesson{
					{ID: 10, Title: "Welcome", ContentType: api.ContentText, TextContent: "hello", Order: 1},
					{ID: 11, Title: "Setup", ContentType: api.ContentVideo, VideoURL: "https://v.example.com/1", Order: 2},
				},
			},
		},
		Records: []api.ProgressRecord{
			{ID: 1, LessonID: 10, Completed: true, Notes: "done already"},
		},
		Enrollment: &api.Enrollment{ID: 3, CourseID: 7, ProgressPercentage: 50},
	}
}

func newLoadedScreen(t *testing.T) *LearningScreen {
	t.Helper()
	s := New(nil, zap.NewNop(), 7, "go-basics", "Go Basics")
	updated, _ := s.Update(loadedCourse())
	return updated.(*LearningScreen)
}

func TestLoadResumesAtFirstIncompleteLesson(t *testing.T) {
	s := newLoadedScreen(t)

	require.NotNil(t, s.tracker)
	assert.Equal(t, 11, s.tracker.CurrentID())
	assert.Equal(t, 1, s.cursor)

	p, ok := s.tracker.Percentage()
	require.True(t, ok)
	assert.Equal(t, 50.0, p)
}

func TestLoadSessionExpiredSignsOut(t *testing.T) {
	s := New(nil, zap.NewNop(), 7, "go-basics", "Go Basics")

	_, cmd := s.Update(learnLoadedMsg{Err: api.ErrSessionExpired})
	require.NotNil(t, cmd)
	_, ok := cmd().(screen.SignedOutMsg)
	assert.True(t, ok, "expected SignedOutMsg")
}

func TestLoadNotEnrolledShowsError(t *testing.T) {
	s := New(nil, zap.NewNop(), 7, "go-basics", "Go Basics")

	updated, _ := s.Update(learnLoadedMsg{Err: api.ErrNotEnrolled})
	s = updated.(*LearningScreen)
	assert.Contains(t, s.View(100, 40), "not enrolled")
}

func TestCompletionUpdatesRecordAndPercentage(t *testing.T) {
	s := newLoadedScreen(t)
	s.completing[11] = true

	updated, _ := s.Update(completeDoneMsg{
		LessonID: 11,
		Result: &api.CompleteResult{
			ProgressRecord: api.ProgressRecord{ID: 2, LessonID: 11, Completed: true},
			Enrollment:     &api.Enrollment{ID: 3, CourseID: 7, ProgressPercentage: 100},
		},
	})
	s = updated.(*LearningScreen)

	assert.True(t, s.tracker.IsCompleted(11))
	assert.False(t, s.completing[11])
	p, _ := s.tracker.Percentage()
	assert.Equal(t, 100.0, p)
}

func TestCompletionKeepsUnsavedDraft(t *testing.T) {
	s := newLoadedScreen(t)
	s.tracker.SetNotesDraft("half-written thought")

	updated, _ := s.Update(completeDoneMsg{
		LessonID: 11,
		Result: &api.CompleteResult{
			ProgressRecord: api.ProgressRecord{ID: 2, LessonID: 11, Completed: true, Notes: ""},
		},
	})
	s = updated.(*LearningScreen)

	assert.Equal(t, "half-written thought", s.tracker.NotesDraft())
}

func TestMarkCompleteKeyGuards(t *testing.T) {
	s := newLoadedScreen(t)

	// First press issues the call.
	updated, cmd := s.Update(tea.KeyPressMsg{Code: 'c'})
	s = updated.(*LearningScreen)
	require.NotNil(t, cmd)
	assert.True(t, s.completing[11])

	// Second press while in flight is a no-op.
	_, cmd = s.Update(tea.KeyPressMsg{Code: 'c'})
	assert.Nil(t, cmd)
}

func TestMarkCompleteIgnoredWhenAlreadyCompleted(t *testing.T) {
	s := newLoadedScreen(t)
	require.True(t, s.tracker.Select(10))

	_, cmd := s.Update(tea.KeyPressMsg{Code: 'c'})
	assert.Nil(t, cmd)
}

func TestStaleNotesResponseDoesNotTouchCurrentDraft(t *testing.T) {
	s := newLoadedScreen(t)
	require.Equal(t, 11, s.tracker.CurrentID())
	s.tracker.SetNotesDraft("notes for lesson 11")
	s.tracker.BeginSave(10)

	// A slow response for lesson 10 lands while lesson 11 is on screen.
	updated, _ := s.Update(notesSavedMsg{
		LessonID: 10,
		Record:   &api.ProgressRecord{ID: 1, LessonID: 10, Completed: true, Notes: "old lesson notes"},
	})
	s = updated.(*LearningScreen)

	assert.Equal(t, "notes for lesson 11", s.tracker.NotesDraft())
	assert.False(t, s.tracker.SavePending(10))

	rec, ok := s.tracker.Record(10)
	require.True(t, ok)
	assert.Equal(t, "old lesson notes", rec.Notes)
}

func TestSaveFailureClearsGuardForRetry(t *testing.T) {
	s := newLoadedScreen(t)
	s.tracker.BeginSave(11)

	updated, _ := s.Update(notesSavedMsg{LessonID: 11, Err: assert.AnError})
	s = updated.(*LearningScreen)

	assert.False(t, s.tracker.SavePending(11))
	assert.Contains(t, s.View(100, 40), "Could not save notes.")
}

// The enrollment-snapshot fetch is the last call in the load sequence, so
// a token expiring mid-load surfaces there. The load must fail over to
// sign-out instead of rendering a signed-in screen on cleared credentials.
func TestLoadFailsWhenSessionExpiresOnSnapshotFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/enrollments/check/7/":
			json.NewEncoder(w).Encode(map[string]bool{"is_enrolled": true})
		case "/courses/go-basics/sections/":
			json.NewEncoder(w).Encode([]api.Section{})
		case "/courses/go-basics/progress/":
			json.NewEncoder(w).Encode([]api.ProgressRecord{})
		case "/enrollments/enrolled/":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, api.WithCredentials(&staticCreds{token: "expiring"}))
	s := New(client, zap.NewNop(), 7, "go-basics", "Go Basics")

	msg, ok := s.Init()().(learnLoadedMsg)
	require.True(t, ok)
	assert.ErrorIs(t, msg.Err, api.ErrSessionExpired)
}

func TestTruncateIsRuneSafe(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"short text untouched", "Welcome", 10, "Welcome"},
		{"ascii gets ellipsis", "A very long lesson title", 10, "A very ..."},
		{"multibyte title", "Введение в программирование", 10, "Введени..."},
		{"cjk title", "日本語のレッスン", 5, "日本..."},
		{"tiny budget", "日本語のレッスン", 2, "日本"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.text, tt.max)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, len([]rune(got)), tt.max)
		})
	}
}

func TestAccessPingFailureIsSwallowed(t *testing.T) {
	s := newLoadedScreen(t)

	updated, cmd := s.Update(accessPingDoneMsg{LessonID: 11, Err: assert.AnError})
	s = updated.(*LearningScreen)

	assert.Nil(t, cmd)
	assert.Empty(t, s.errMsg)
	assert.Empty(t, s.notice)
}
