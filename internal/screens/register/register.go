package register

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
	"campus/internal/session"
	"campus/internal/ui/components"
	"campus/internal/ui/layout"
	"campus/internal/ui/theme"
)

type registerDoneMsg struct {
	Err error
}

// RegisterScreen collects new account details. Validation runs entirely
// client-side before any request is made; the new user is signed straight
// in on success.
type RegisterScreen struct {
	client    *api.Client
	sess      *session.Store
	validator *forms.Validator

	fields     []components.Field
	focusIdx   int
	submitting bool
	errMsg     string
}

var _ screen.Screen = (*RegisterScreen)(nil)
var _ screen.KeyHintProvider = (*RegisterScreen)(nil)

// New creates a new RegisterScreen.
func New(client *api.Client, sess *session.Store) *RegisterScreen {
	fields := []components.Field{
		components.NewField("Username", "pick a username", false),
		components.NewField("Email", "you@example.com", false),
		components.NewField("Password", "at least 8 characters", true),
		components.NewField("Confirm password", "repeat your password", true),
	}
	return &RegisterScreen{
		client:    client,
		sess:      sess,
		validator: forms.New(),
		fields:    fields,
	}
}

func (s *RegisterScreen) Init() tea.Cmd {
	return s.fields[0].Focus()
}

func (s *RegisterScreen) Title() string {
	return "Register"
}

func (s *RegisterScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Create account"},
		{Key: "Esc", Description: "Back to sign in"},
	}
}

func (s *RegisterScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case registerDoneMsg:
		s.submitting = false
		if msg.Err != nil {
			s.errMsg = registerErrorMessage(msg.Err)
			return s, nil
		}
		return s, func() tea.Msg { return screen.SignedInMsg{} }

	case tea.KeyMsg:
		if s.submitting {
			return s, nil
		}
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "tab", "down":
			return s, s.focusField(s.focusIdx + 1)
		case "shift+tab", "up":
			return s, s.focusField(s.focusIdx - 1)
		case "enter":
			return s.submit()
		}
	}

	var cmd tea.Cmd
	s.fields[s.focusIdx], cmd = s.fields[s.focusIdx].Update(msg)
	return s, cmd
}

func (s *RegisterScreen) focusField(idx int) tea.Cmd {
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

func (s *RegisterScreen) submit() (screen.Screen, tea.Cmd) {
	input := forms.RegisterInput{
		Username:        strings.TrimSpace(s.fields[0].Value()),
		Email:           strings.TrimSpace(s.fields[1].Value()),
		Password:        s.fields[2].Value(),
		ConfirmPassword: s.fields[3].Value(),
	}
	if msg := s.validator.First(input); msg != "" {
		s.errMsg = msg
		return s, nil
	}

	s.errMsg = ""
	s.submitting = true
	return s, func() tea.Msg {
		pair, err := s.client.Register(context.Background(), input.Username, input.Email, input.Password)
		if err != nil {
			return registerDoneMsg{Err: err}
		}
		if err := s.sess.Login(pair.Access, pair.Refresh, input.Username); err != nil {
			return registerDoneMsg{Err: err}
		}
		return registerDoneMsg{}
	}
}

func (s *RegisterScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Create your account"))
	b.WriteString("\n\n")

	for i := range s.fields {
		b.WriteString(s.fields[i].View())
		b.WriteString("\n\n")
	}

	if s.submitting {
		b.WriteString(theme.Hint.Render("Creating account..."))
	} else if s.errMsg != "" {
		b.WriteString(theme.ErrorText.Render(s.errMsg))
	}

	card := theme.Card.Width(52).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func registerErrorMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "Registration failed. Please try again."
	}
	return "Network error. Please try again later."
}
