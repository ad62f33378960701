package enrollments

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"campus/internal/api"
	"campus/internal/router"
	"campus/internal/screen"
	"campus/internal/screens/learning"
	"campus/internal/ui/components"
	"campus/internal/ui/layout"
	"campus/internal/ui/theme"
)

type enrollmentsLoadedMsg struct {
	Enrollments []api.Enrollment
	Err         error
}

// EnrollmentsScreen lists the user's enrolled courses with their
// server-reported progress.
type EnrollmentsScreen struct {
	client *api.Client
	logger *zap.Logger

	enrollments []api.Enrollment
	selected    int
	loaded      bool
	errMsg      string
}

var _ screen.Screen = (*EnrollmentsScreen)(nil)
var _ screen.KeyHintProvider = (*EnrollmentsScreen)(nil)

// New creates a new EnrollmentsScreen.
func New(client *api.Client, logger *zap.Logger) *EnrollmentsScreen {
	return &EnrollmentsScreen{client: client, logger: logger}
}

func (s *EnrollmentsScreen) Init() tea.Cmd {
	return func() tea.Msg {
		enrollments, err := s.client.Enrollments(context.Background())
		return enrollmentsLoadedMsg{Enrollments: enrollments, Err: err}
	}
}

func (s *EnrollmentsScreen) Title() string {
	return "My Enrollments"
}

func (s *EnrollmentsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue learning"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *EnrollmentsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case enrollmentsLoadedMsg:
		if msg.Err != nil {
			if errors.Is(msg.Err, api.ErrSessionExpired) {
				return s, func() tea.Msg { return screen.SignedOutMsg{} }
			}
			s.errMsg = "Failed to load enrollments. Please try again later."
			s.logger.Warn("enrollments load failed", zap.Error(msg.Err))
		} else {
			s.enrollments = msg.Enrollments
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.enrollments)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			if s.selected >= 0 && s.selected < len(s.enrollments) {
				e := s.enrollments[s.selected]
				return s, func() tea.Msg {
					return router.PushScreenMsg{
						Screen: learning.New(s.client, s.logger, e.CourseID, e.CourseSlug, e.Title),
					}
				}
			}
			return s, nil
		}
	}
	return s, nil
}

func (s *EnrollmentsScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("\n\n" + s.errMsg)
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading enrollments...")
	}
	if len(s.enrollments) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  You haven't enrolled in any courses yet.")
	}

	var b strings.Builder
	b.WriteString("\n")

	barWidth := min(width-20, 40)
	for i, e := range s.enrollments {
		prefix := "  "
		style := theme.Unselected
		if i == s.selected {
			prefix = "> "
			style = theme.Selected
		}

		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(prefix+e.Title)))
		b.WriteString("\n")

		bar := components.NewProgressBar("", e.ProgressPercentage/100, true, barWidth)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
		b.WriteString("\n\n")
	}

	return b.String()
}
