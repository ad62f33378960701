package learning

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"campus/internal/api"
	"campus/internal/progress"
	"campus/internal/ui/components"
	"campus/internal/ui/theme"
)

func (s *LearningScreen) View(width, height int) string {
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading course...")
	}
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("\n\n" + s.errMsg)
	}

	lessons := s.tracker.Lessons()
	if len(lessons) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  This course has no lessons yet.")
	}

	sidebarWidth := width / 3
	if sidebarWidth > 40 {
		sidebarWidth = 40
	}
	contentWidth := width - sidebarWidth - 4

	sidebar := s.renderSidebar(lessons, sidebarWidth)
	content := s.renderContent(contentWidth, height)

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(sidebarWidth).Render(sidebar),
		"  ",
		lipgloss.NewStyle().Width(contentWidth).Render(content),
	)

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n\n")
	b.WriteString(s.renderProgress(lessons, width))
	if s.notice != "" {
		b.WriteString("\n" + theme.Hint.Render("  "+s.notice))
	}
	return b.String()
}

func (s *LearningScreen) renderSidebar(lessons []progress.FlatLesson, width int) string {
	var b strings.Builder
	currentID := s.tracker.CurrentID()
	lastSection := 0

	for i, l := range lessons {
		if l.SectionID != lastSection {
			if lastSection != 0 {
				b.WriteString("\n")
			}
			b.WriteString(theme.Subtitle.Render(truncate(l.SectionTitle, width-2)) + "\n")
			lastSection = l.SectionID
		}

		marker := "  "
		if s.focus == focusList && i == s.cursor {
			marker = "> "
		}
		check := "  "
		if s.tracker.IsCompleted(l.ID) {
			check = "✓ "
		}

		line := marker + check + truncate(l.Title, width-6)
		switch {
		case l.ID == currentID:
			b.WriteString(theme.Selected.Render(line))
		case s.tracker.IsCompleted(l.ID):
			b.WriteString(theme.Completed.Render(line))
		default:
			b.WriteString(theme.Unselected.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (s *LearningScreen) renderContent(width, height int) string {
	current, ok := s.tracker.Current()
	if !ok {
		return theme.Hint.Render("Select a lesson to begin.")
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render(current.Title))
	if s.tracker.IsCompleted(current.ID) {
		b.WriteString("  " + theme.Completed.Render("✓ Completed"))
	}
	b.WriteString("\n\n")

	wrap := lipgloss.NewStyle().Width(width).Foreground(theme.Text)
	switch current.ContentType {
	case api.ContentText:
		b.WriteString(wrap.Render(current.TextContent))
	case api.ContentVideo:
		b.WriteString(theme.Body.Render("Video lesson"))
		b.WriteString("\n" + theme.Hint.Render(current.VideoURL))
	case api.ContentFile:
		b.WriteString(theme.Body.Render("Downloadable material"))
		b.WriteString("\n" + theme.Hint.Render(current.File))
	case api.ContentQuiz:
		b.WriteString(theme.Body.Render("This lesson is a quiz. Open the course in your browser to attempt it."))
	default:
		b.WriteString(theme.Hint.Render("This lesson has no viewable content."))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.InputLabel.Render("Notes"))
	if s.tracker.SavePending(current.ID) {
		b.WriteString(" " + theme.Hint.Render("(saving...)"))
	}
	b.WriteString("\n")

	if s.focus == focusNotes {
		s.notes.SetWidth(width)
		b.WriteString(s.notes.View())
	} else if draft := s.tracker.NotesDraft(); draft != "" {
		b.WriteString(lipgloss.NewStyle().Width(width).Foreground(theme.TextDim).Render(draft))
	} else {
		b.WriteString(theme.Hint.Render("No notes yet. Press N to write some."))
	}
	return b.String()
}

func (s *LearningScreen) renderProgress(lessons []progress.FlatLesson, width int) string {
	percent := float64(s.tracker.CompletedCount()) / float64(len(lessons))
	label := fmt.Sprintf("Progress (%d/%d)", s.tracker.CompletedCount(), len(lessons))
	if p, ok := s.tracker.Percentage(); ok {
		percent = p / 100
		label = "Progress"
	}
	bar := components.NewProgressBar(label, percent, true, width-4)
	return "  " + bar.View()
}

// truncate shortens text to max runes. Titles can be non-ASCII, so the
// cut must never land inside a multibyte sequence.
func truncate(text string, max int) string {
	runes := []rune(text)
	if max < 1 || len(runes) <= max {
		return text
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
