package catalog

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"campus/internal/api"
	"campus/internal/router"
	"campus/internal/screen"
	"campus/internal/screens/coursedetail"
	"campus/internal/ui/layout"
	"campus/internal/ui/theme"
)

type coursesLoadedMsg struct {
	Courses []api.Course
	Err     error
}

// CatalogScreen lists every available course.
type CatalogScreen struct {
	client *api.Client
	logger *zap.Logger

	courses  []api.Course
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*CatalogScreen)(nil)
var _ screen.KeyHintProvider = (*CatalogScreen)(nil)

// New creates a new CatalogScreen.
func New(client *api.Client, logger *zap.Logger) *CatalogScreen {
	return &CatalogScreen{client: client, logger: logger}
}

func (s *CatalogScreen) Init() tea.Cmd {
	return func() tea.Msg {
		courses, err := s.client.ListCourses(context.Background())
		return coursesLoadedMsg{Courses: courses, Err: err}
	}
}

func (s *CatalogScreen) Title() string {
	return "Courses"
}

func (s *CatalogScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "View details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *CatalogScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case coursesLoadedMsg:
		if msg.Err != nil {
			s.errMsg = "Failed to load courses. Please try again later."
			s.logger.Warn("course list load failed", zap.Error(msg.Err))
		} else {
			s.courses = msg.Courses
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
			if s.selected < len(s.courses)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			if s.selected >= 0 && s.selected < len(s.courses) {
				course := s.courses[s.selected]
				return s, func() tea.Msg {
					return router.PushScreenMsg{
						Screen: coursedetail.New(s.client, s.logger, course.ID),
					}
				}
			}
			return s, nil
		}
	}
	return s, nil
}

func (s *CatalogScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("\n\n" + s.errMsg)
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading courses...")
	}
	if len(s.courses) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No courses available at this time.")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, course := range s.courses {
		prefix := "  "
		titleStyle := theme.Unselected
		if i == s.selected {
			prefix = "> "
			titleStyle = theme.Selected
		}

		line := fmt.Sprintf("%s%s", prefix, course.Title)
		meta := fmt.Sprintf("    %s · %s", course.Instructor, course.Category)
		if course.Price != "" {
			meta += " · $" + course.Price
		}

		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, titleStyle.Render(line)))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hint.Render(meta)))
		b.WriteString("\n")
	}

	return b.String()
}
