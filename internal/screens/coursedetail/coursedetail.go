package coursedetail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"campus/internal/api"
	"campus/internal/router"
	"campus/internal/screen"
	"campus/internal/screens/learning"
	"campus/internal/ui/layout"
	"campus/internal/ui/theme"
)

type detailLoadedMsg struct {
	Course   *api.Course
	Enrolled bool
	Err      error
}

type enrollDoneMsg struct {
	Result *api.EnrollResult
	Err    error
}

// DetailScreen shows one course and the enroll / start-learning action.
type DetailScreen struct {
	client   *api.Client
	logger   *zap.Logger
	courseID int

	course    *api.Course
	enrolled  bool
	enrolling bool
	loaded    bool
	errMsg    string
	notice    string
}

var _ screen.Screen = (*DetailScreen)(nil)
var _ screen.KeyHintProvider = (*DetailScreen)(nil)

// New creates a DetailScreen for courseID.
func New(client *api.Client, logger *zap.Logger, courseID int) *DetailScreen {
	return &DetailScreen{client: client, logger: logger, courseID: courseID}
}

func (s *DetailScreen) Init() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		course, err := s.client.GetCourse(ctx, s.courseID)
		if err != nil {
			return detailLoadedMsg{Err: err}
		}
		enrolled, err := s.client.CheckEnrollment(ctx, s.courseID)
		if err != nil {
			return detailLoadedMsg{Course: course, Err: err}
		}
		return detailLoadedMsg{Course: course, Enrolled: enrolled}
	}
}

func (s *DetailScreen) Title() string {
	if s.course != nil {
		return s.course.Title
	}
	return "Course"
}

func (s *DetailScreen) KeyHints() []layout.KeyHint {
	if s.enrolled {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Start learning"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "E", Description: "Enroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *DetailScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case detailLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			if errors.Is(msg.Err, api.ErrSessionExpired) {
				return s, func() tea.Msg { return screen.SignedOutMsg{} }
			}
			s.errMsg = "Failed to load course details. Please try again later."
			s.logger.Warn("course detail load failed",
				zap.Int("course_id", s.courseID), zap.Error(msg.Err))
			return s, nil
		}
		s.course = msg.Course
		s.enrolled = msg.Enrolled
		return s, nil

	case enrollDoneMsg:
		s.enrolling = false
		if msg.Err != nil {
			if errors.Is(msg.Err, api.ErrSessionExpired) {
				return s, func() tea.Msg { return screen.SignedOutMsg{} }
			}
			s.notice = "Failed to enroll. Please try again."
			s.logger.Warn("enroll failed",
				zap.Int("course_id", s.courseID), zap.Error(msg.Err))
			return s, nil
		}
		s.enrolled = true
		if msg.Result.AlreadyEnrolled {
			s.notice = "You are already enrolled in this course."
		} else {
			s.notice = "Successfully enrolled! Press Enter to start learning."
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "e", "E":
			if s.course != nil && !s.enrolled && !s.enrolling {
				return s.enroll()
			}
			return s, nil
		case "enter":
			if s.course != nil && s.enrolled {
				course := *s.course
				return s, func() tea.Msg {
					return router.PushScreenMsg{
						Screen: learning.New(s.client, s.logger, course.ID, course.Slug, course.Title),
					}
				}
			}
			return s, nil
		}
	}
	return s, nil
}

func (s *DetailScreen) enroll() (screen.Screen, tea.Cmd) {
	s.enrolling = true
	s.notice = ""
	return s, func() tea.Msg {
		res, err := s.client.Enroll(context.Background(), s.courseID)
		return enrollDoneMsg{Result: res, Err: err}
	}
}

func (s *DetailScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("\n\n" + s.errMsg)
	}
	if !s.loaded || s.course == nil {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading course...")
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render(s.course.Title))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render("Instructor: " + s.course.Instructor))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render(s.course.Description))
	b.WriteString("\n\n")

	var facts []string
	if s.course.Category != "" {
		facts = append(facts, "Category: "+s.course.Category)
	}
	if s.course.Difficulty != "" {
		facts = append(facts, "Level: "+s.course.Difficulty)
	}
	if s.course.DurationWeeks > 0 {
		facts = append(facts, fmt.Sprintf("Duration: %d weeks", s.course.DurationWeeks))
	}
	if s.course.Price != "" {
		facts = append(facts, "Price: $"+s.course.Price)
	}
	b.WriteString(theme.Hint.Render(strings.Join(facts, "   ")))
	b.WriteString("\n\n")

	switch {
	case s.enrolling:
		b.WriteString(theme.Hint.Render("Enrolling..."))
	case s.enrolled:
		b.WriteString(theme.Completed.Render("✓ Enrolled"))
	default:
		b.WriteString(theme.ButtonActive.Render(" Enroll (E) "))
	}
	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render(s.notice))
	}

	card := theme.Card.Width(min(width-4, 72)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
