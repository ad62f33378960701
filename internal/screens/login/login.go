package login

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"campus/internal/api"
	"campus/internal/forms"
	"campus/internal/router"
	"campus/internal/screen"
	"campus/internal/screens/register"
	"campus/internal/session"
	"campus/internal/ui/components"
	"campus/internal/ui/layout"
	"campus/internal/ui/theme"
)

type loginDoneMsg struct {
	Err error
}

// LoginScreen collects credentials and exchanges them for a token pair.
type LoginScreen struct {
	client    *api.Client
	sess      *session.Store
	validator *forms.Validator

	fields     []components.Field
	focusIdx   int
	submitting bool
	errMsg     string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates a new LoginScreen.
func New(client *api.Client, sess *session.Store) *LoginScreen {
	fields := []components.Field{
		components.NewField("Username", "your username", false),
		components.NewField("Password", "your password", true),
	}
	return &LoginScreen{
		client:    client,
		sess:      sess,
		validator: forms.New(),
		fields:    fields,
	}
}

func (s *LoginScreen) Init() tea.Cmd {
	return s.fields[0].Focus()
}

func (s *LoginScreen) Title() string {
	return "Sign In"
}

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Sign in"},
		{Key: "Ctrl+R", Description: "Register"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		s.submitting = false
		if msg.Err != nil {
			s.errMsg = loginErrorMessage(msg.Err)
			return s, nil
		}
		return s, func() tea.Msg { return screen.SignedInMsg{} }

	case tea.KeyMsg:
		if s.submitting {
			return s, nil
		}
		switch msg.String() {
		case "tab", "down":
			return s, s.focusField(s.focusIdx + 1)
		case "shift+tab", "up":
			return s, s.focusField(s.focusIdx - 1)
		case "enter":
			return s.submit()
		case "ctrl+r":
			return s, func() tea.Msg {
				return router.PushScreenMsg{Screen: register.New(s.client, s.sess)}
			}
		}
	}

	var cmd tea.Cmd
	s.fields[s.focusIdx], cmd = s.fields[s.focusIdx].Update(msg)
	return s, cmd
}

func (s *LoginScreen) focusField(idx int) tea.Cmd {
	if idx < 0 {
		idx = len(s.fields) - 1
	}
	if idx >= len(s.fields) {
		idx = 0
	}
	s.fields[s.focusIdx].Blur()
	s.focusIdx = idx
	return s.fields[s.focusIdx].Focus()
}

func (s *LoginScreen) submit() (screen.Screen, tea.Cmd) {
	input := forms.LoginInput{
		Username: strings.TrimSpace(s.fields[0].Value()),
		Password: s.fields[1].Value(),
	}
	if msg := s.validator.First(input); msg != "" {
		s.errMsg = msg
		return s, nil
	}

	s.errMsg = ""
	s.submitting = true
	return s, func() tea.Msg {
		pair, err := s.client.Login(context.Background(), input.Username, input.Password)
		if err != nil {
			return loginDoneMsg{Err: err}
		}
		if err := s.sess.Login(pair.Access, pair.Refresh, input.Username); err != nil {
			return loginDoneMsg{Err: err}
		}
		return loginDoneMsg{}
	}
}

func (s *LoginScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Welcome back"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render("Sign in to continue learning"))
	b.WriteString("\n\n")

	for i := range s.fields {
		b.WriteString(s.fields[i].View())
		b.WriteString("\n\n")
	}

	if s.submitting {
		b.WriteString(theme.Hint.Render("Signing in..."))
	} else if s.errMsg != "" {
		b.WriteString(theme.ErrorText.Render(s.errMsg))
	}

	card := theme.Card.Width(48).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

// loginErrorMessage maps errors to the inline form message. Bad
// credentials and network trouble read differently, per the platform's
// web client.
func loginErrorMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && (apiErr.Status == 400 || apiErr.Status == 401) {
		return "Invalid username or password."
	}
	return "Could not reach the server. Please try again later."
}
