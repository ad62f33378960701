// Package learning implements the lesson viewer: the section sidebar, the
// content pane for the current lesson, the notes editor, and course
// progress. All mutations round-trip through the API; the screen only
// reflects what the server confirmed.
package learning

import (
	"context"
	"errors"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"campus/internal/api"
	"campus/internal/progress"
	"campus/internal/router"
	"campus/internal/screen"
	"campus/internal/ui/layout"
)

type focusArea int

const (
	focusList focusArea = iota
	focusNotes
)

// LearningScreen drives one course's lesson sequence.
type LearningScreen struct {
	client *api.Client
	logger *zap.Logger

	courseID    int
	slug        string
	courseTitle string

	tracker *progress.Tracker
	cursor  int
	focus   focusArea
	notes   textarea.Model

	completing map[int]bool

	loaded bool
	errMsg string
	notice string
}

var _ screen.Screen = (*LearningScreen)(nil)
var _ screen.KeyHintProvider = (*LearningScreen)(nil)

// New creates a LearningScreen for the given course.
func New(client *api.Client, logger *zap.Logger, courseID int, slug, title string) *LearningScreen {
	ta := textarea.New()
	ta.Placeholder = "Write your notes for this lesson..."
	ta.CharLimit = 0
	return &LearningScreen{
		client:      client,
		logger:      logger,
		courseID:    courseID,
		slug:        slug,
		courseTitle: title,
		notes:       ta,
		completing:  make(map[int]bool),
	}
}

func (s *LearningScreen) Init() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		enrolled, err := s.client.CheckEnrollment(ctx, s.courseID)
		if err != nil {
			return learnLoadedMsg{Err: err}
		}
		if !enrolled {
			return learnLoadedMsg{Err: api.ErrNotEnrolled}
		}

		sections, err := s.client.Sections(ctx, s.slug)
		if err != nil {
			return learnLoadedMsg{Err: err}
		}
		records, err := s.client.Progress(ctx, s.slug)
		if err != nil {
			return learnLoadedMsg{Err: err}
		}

		// The percentage is never computed locally; without a snapshot
		// the bar starts from lesson counts. Only session expiry is
		// worth failing the load for.
		var enrollment *api.Enrollment
		list, err := s.client.Enrollments(ctx)
		if errors.Is(err, api.ErrSessionExpired) {
			return learnLoadedMsg{Err: err}
		}
		if err == nil {
			for i := range list {
				if list[i].CourseID == s.courseID {
					enrollment = &list[i]
					break
				}
			}
		}

		return learnLoadedMsg{Sections: sections, Records: records, Enrollment: enrollment}
	}
}

func (s *LearningScreen) Title() string {
	return s.courseTitle
}

func (s *LearningScreen) KeyHints() []layout.KeyHint {
	if s.focus == focusNotes {
		return []layout.KeyHint{
			{Key: "Ctrl+S", Description: "Save notes"},
			{Key: "Esc", Description: "Back to lessons"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Open lesson"},
		{Key: "C", Description: "Mark complete"},
		{Key: "N", Description: "Edit notes"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LearningScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case learnLoadedMsg:
		return s.handleLoaded(msg)
	case accessPingDoneMsg:
		if msg.Err != nil {
			if errors.Is(msg.Err, api.ErrSessionExpired) {
				return s, func() tea.Msg { return screen.SignedOutMsg{} }
			}
			// Access pings are best effort; a failed one never surfaces.
			s.logger.Debug("lesson access ping failed",
				zap.Int("lesson_id", msg.LessonID), zap.Error(msg.Err))
		}
		return s, nil
	case completeDoneMsg:
		return s.handleCompleted(msg)
	case notesSavedMsg:
		return s.handleNotesSaved(msg)
	case tea.KeyMsg:
		if !s.loaded || s.errMsg != "" {
			if msg.String() == "esc" {
				return s, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return s, nil
		}
		if s.focus == focusNotes {
			return s.updateNotes(msg)
		}
		return s.updateList(msg)
	}
	return s, nil
}

func (s *LearningScreen) handleLoaded(msg learnLoadedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		switch {
		case errors.Is(msg.Err, api.ErrSessionExpired):
			return s, func() tea.Msg { return screen.SignedOutMsg{} }
		case errors.Is(msg.Err, api.ErrNotEnrolled):
			s.errMsg = "You are not enrolled in this course."
		default:
			s.errMsg = "Failed to load the course. Please try again later."
			s.logger.Warn("learning load failed",
				zap.String("course", s.slug), zap.Error(msg.Err))
		}
		s.loaded = true
		return s, nil
	}

	s.tracker = progress.NewTracker(msg.Sections, msg.Records)
	if msg.Enrollment != nil {
		s.tracker.SetPercentage(msg.Enrollment.ProgressPercentage)
	}
	s.loaded = true

	current, ok := s.tracker.Current()
	if !ok {
		return s, nil
	}
	for i, l := range s.tracker.Lessons() {
		if l.ID == current.ID {
			s.cursor = i
			break
		}
	}
	s.notes.SetValue(s.tracker.NotesDraft())
	return s, s.pingAccess(current.ID)
}

func (s *LearningScreen) handleCompleted(msg completeDoneMsg) (screen.Screen, tea.Cmd) {
	delete(s.completing, msg.LessonID)
	if msg.Err != nil {
		if errors.Is(msg.Err, api.ErrSessionExpired) {
			return s, func() tea.Msg { return screen.SignedOutMsg{} }
		}
		s.notice = "Could not mark the lesson complete."
		s.logger.Warn("mark complete failed",
			zap.Int("lesson_id", msg.LessonID), zap.Error(msg.Err))
		return s, nil
	}

	// Completion must not clobber an unsaved notes draft for the lesson
	// on screen.
	draft := s.tracker.NotesDraft()
	s.tracker.Upsert(msg.Result.ProgressRecord)
	if msg.LessonID == s.tracker.CurrentID() {
		s.tracker.SetNotesDraft(draft)
	}
	if msg.Result.Enrollment != nil {
		s.tracker.SetPercentage(msg.Result.Enrollment.ProgressPercentage)
	}
	s.notice = "Lesson marked complete."
	return s, nil
}

func (s *LearningScreen) handleNotesSaved(msg notesSavedMsg) (screen.Screen, tea.Cmd) {
	s.tracker.EndSave(msg.LessonID)
	if msg.Err != nil {
		if errors.Is(msg.Err, api.ErrSessionExpired) {
			return s, func() tea.Msg { return screen.SignedOutMsg{} }
		}
		s.notice = "Could not save notes."
		s.logger.Warn("notes save failed",
			zap.Int("lesson_id", msg.LessonID), zap.Error(msg.Err))
		return s, nil
	}

	s.tracker.Upsert(*msg.Record)
	if msg.LessonID == s.tracker.CurrentID() {
		// The user may have kept typing while the save was in flight;
		// the editor, not the echoed record, owns the draft.
		s.tracker.SetNotesDraft(s.notes.Value())
		s.notice = "Notes saved."
	}
	return s, nil
}

func (s *LearningScreen) updateList(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	lessons := s.tracker.Lessons()
	switch msg.String() {
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
		return s, nil
	case "down", "j":
		if s.cursor < len(lessons)-1 {
			s.cursor++
		}
		return s, nil
	case "enter":
		if s.cursor < 0 || s.cursor >= len(lessons) {
			return s, nil
		}
		id := lessons[s.cursor].ID
		if id == s.tracker.CurrentID() {
			return s, nil
		}
		s.tracker.Select(id)
		s.notes.SetValue(s.tracker.NotesDraft())
		s.notice = ""
		return s, s.pingAccess(id)
	case "c":
		id := s.tracker.CurrentID()
		if id == 0 || s.tracker.IsCompleted(id) || s.completing[id] {
			return s, nil
		}
		s.completing[id] = true
		return s, func() tea.Msg {
			res, err := s.client.MarkComplete(context.Background(), s.slug, id)
			return completeDoneMsg{LessonID: id, Result: res, Err: err}
		}
	case "n", "tab":
		if s.tracker.CurrentID() == 0 {
			return s, nil
		}
		s.focus = focusNotes
		return s, s.notes.Focus()
	}
	return s, nil
}

func (s *LearningScreen) updateNotes(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.focus = focusList
		s.notes.Blur()
		return s, nil
	case "ctrl+s":
		id := s.tracker.CurrentID()
		if id == 0 || !s.tracker.BeginSave(id) {
			return s, nil
		}
		text := s.notes.Value()
		return s, func() tea.Msg {
			rec, err := s.client.SaveNotes(context.Background(), s.slug, id, text)
			return notesSavedMsg{LessonID: id, Record: rec, Err: err}
		}
	}

	var cmd tea.Cmd
	s.notes, cmd = s.notes.Update(msg)
	s.tracker.SetNotesDraft(s.notes.Value())
	return s, cmd
}

func (s *LearningScreen) pingAccess(lessonID int) tea.Cmd {
	return func() tea.Msg {
		err := s.client.MarkAccessed(context.Background(), s.slug, lessonID)
		return accessPingDoneMsg{LessonID: lessonID, Err: err}
	}
}
