package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"campus/internal/api"
	"campus/internal/app"
	"campus/internal/config"
	"campus/internal/logging"
	"campus/internal/session"
)

// runApp loads configuration, opens the session store, builds the API
// client, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLogger, err := logging.New(logging.Config{
		FilePath: cfg.Logging.FilePath,
		Level:    cfg.Logging.Level,
	})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closeLogger()

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve session DB path: %w", err)
	}
	sess, err := session.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer sess.Close()

	client := api.NewClient(cfg.API.BaseURL,
		api.WithCredentials(sess),
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithPlaceholderImage(cfg.Media.PlaceholderURL),
	)

	return app.Run(app.Options{
		Client:  client,
		Session: sess,
		Logger:  logger,
	})
}
