package home

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"campus/internal/api"
	"campus/internal/router"
	"campus/internal/screen"
	"campus/internal/screens/catalog"
	"campus/internal/screens/enrollments"
	"campus/internal/session"
	"campus/internal/ui/components"
	"campus/internal/ui/theme"
)

// profileLoadedMsg carries the result of the post-sign-in profile fetch.
type profileLoadedMsg struct {
	Profile *api.Profile
	Err     error
}

// HomeScreen is the main menu shown after sign-in.
type HomeScreen struct {
	menu   components.Menu
	client *api.Client
	sess   *session.Store
	logger *zap.Logger
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(client *api.Client, sess *session.Store, logger *zap.Logger) *HomeScreen {
	items := []components.MenuItem{
		{Label: "BROWSE COURSES", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: catalog.New(client, logger)}
			}
		}},
		{Label: "MY ENROLLMENTS", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: enrollments.New(client, logger)}
			}
		}},
		{Label: "LOG OUT", Action: func() tea.Cmd {
			return func() tea.Msg {
				if err := sess.Logout(); err != nil {
					logger.Warn("logout failed", zap.Error(err))
				}
				return screen.SignedOutMsg{}
			}
		}},
		{Label: "EXIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{
		menu:   components.NewMenu(items),
		client: client,
		sess:   sess,
		logger: logger,
	}
}

// Init refreshes the stored identity from the server. This also makes the
// stored token prove itself right after sign-in instead of on the first
// course action.
func (s *HomeScreen) Init() tea.Cmd {
	return func() tea.Msg {
		p, err := s.client.Profile(context.Background())
		return profileLoadedMsg{Profile: p, Err: err}
	}
}

func (s *HomeScreen) Title() string {
	return "Home"
}

func (s *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		if msg.Err != nil {
			if errors.Is(msg.Err, api.ErrSessionExpired) {
				return s, func() tea.Msg { return screen.SignedOutMsg{} }
			}
			// The stored username or JWT claim still serves as identity.
			s.logger.Debug("profile refresh failed", zap.Error(msg.Err))
			return s, nil
		}
		if err := s.sess.SetUsername(msg.Profile.Username); err != nil {
			s.logger.Warn("store username failed", zap.Error(err))
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *HomeScreen) View(width, height int) string {
	greeting := theme.Title.Render("Hello, " + s.sess.Identity())
	sub := theme.Subtitle.Render("What would you like to do?")
	content := greeting + "\n" + sub + "\n\n" + s.menu.View()
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
