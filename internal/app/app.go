// Package app wires the root Bubble Tea model: the screen router, the
// shared frame, and the auth transitions that swap the whole stack.
package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"campus/internal/api"
	"campus/internal/router"
	"campus/internal/screen"
	"campus/internal/screens/home"
	"campus/internal/screens/login"
	"campus/internal/session"
	"campus/internal/ui/layout"
)

// Options carries the shared dependencies every screen draws from.
type Options struct {
	Client  *api.Client
	Session *session.Store
	Logger  *zap.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	opts   Options
	router *router.Router
	width  int
	height int
}

// newAppModel picks the initial screen from the stored session: a valid
// access token goes straight to home, anything else lands on login.
func newAppModel(opts Options) AppModel {
	var initial screen.Screen
	if opts.Session.IsAuthenticated() {
		initial = home.New(opts.Client, opts.Session, opts.Logger)
	} else {
		initial = login.New(opts.Client, opts.Session)
	}
	return AppModel{
		opts:   opts,
		router: router.New(initial),
	}
}

func (m AppModel) Init() tea.Cmd {
	active := m.router.Active()
	if active == nil {
		return nil
	}
	return active.Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.SignedInMsg:
		cmd := m.router.Replace(home.New(m.opts.Client, m.opts.Session, m.opts.Logger))
		return m, cmd

	case screen.SignedOutMsg:
		cmd := m.router.Replace(login.New(m.opts.Client, m.opts.Session))
		return m, cmd

	case tea.KeyMsg:
		// Esc is left to the screens; the notes editor needs it to mean
		// "stop editing", not "leave the course".
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	identity := ""
	if m.opts.Session.IsAuthenticated() {
		identity = m.opts.Session.Identity()
	}
	header := layout.RenderHeader(title, identity, m.width)

	hints := []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	if provider, ok := active.(screen.KeyHintProvider); ok {
		hints = append(provider.KeyHints(), hints...)
	}
	footer := layout.RenderFooter(hints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
