package session

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Storage keys. The store holds exactly these three; there is no
// multi-account support.
const (
	keyAccessToken  = "accessToken"
	keyRefreshToken = "refreshToken"
	keyUsername     = "username"
)

// Store is the single holder of the authenticated user's credentials,
// persisted in a local SQLite file so a session survives restarts.
type Store struct {
	db *sql.DB

	// identity caches the resolved display name until the next
	// login/logout.
	identity string
}

// Open creates a Store backed by the SQLite database at dsn.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS credentials (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create credentials table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Login stores a freshly issued credential set. The username is stored
// verbatim; later identity reads return it without decoding the token.
func (s *Store) Login(accessToken, refreshToken, username string) error {
	if err := s.set(keyAccessToken, accessToken); err != nil {
		return err
	}
	if err := s.set(keyRefreshToken, refreshToken); err != nil {
		return err
	}
	if err := s.set(keyUsername, username); err != nil {
		return err
	}
	s.identity = ""
	return nil
}

// SetUsername refreshes the stored username, typically from a profile
// fetch after sign-in. An empty name is ignored so a thin server response
// cannot erase a known identity.
func (s *Store) SetUsername(username string) error {
	if username == "" {
		return nil
	}
	if err := s.set(keyUsername, username); err != nil {
		return err
	}
	s.identity = ""
	return nil
}

// Logout clears all stored credentials.
func (s *Store) Logout() error {
	s.identity = ""
	_, err := s.db.Exec(`DELETE FROM credentials`)
	if err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// Invalidate is the 401/403 path: same clearing as Logout. Kept separate
// so the API client expresses intent at its single call site.
func (s *Store) Invalidate() error {
	return s.Logout()
}

// IsAuthenticated reports whether an access token is present.
func (s *Store) IsAuthenticated() bool {
	return s.AccessToken() != ""
}

// AccessToken returns the stored access token, or "" when logged out.
func (s *Store) AccessToken() string {
	return s.get(keyAccessToken)
}

// RefreshToken returns the stored refresh token, or "" when logged out.
func (s *Store) RefreshToken() string {
	return s.get(keyRefreshToken)
}

// Identity resolves the display name for the current session: the stored
// username when one exists, otherwise a username-like claim decoded from
// the access token, otherwise the generic label. Never fails; an
// undecodable token degrades to the generic label. The result is cached
// until the next login or logout.
func (s *Store) Identity() string {
	if s.identity != "" {
		return s.identity
	}
	if name := s.get(keyUsername); name != "" {
		s.identity = name
		return name
	}
	if token := s.AccessToken(); token != "" {
		s.identity = usernameFromToken(token)
		return s.identity
	}
	return DefaultIdentity
}

func (s *Store) set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO credentials (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

func (s *Store) get(key string) string {
	var value string
	if err := s.db.QueryRow(`SELECT value FROM credentials WHERE key = ?`, key).Scan(&value); err != nil {
		return ""
	}
	return value
}

// applyPragmas configures SQLite for single-user access.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultPath resolves the session database path in priority order:
// 1. CAMPUS_DB environment variable
// 2. $XDG_DATA_HOME/campus/session.db
// 3. ~/.local/share/campus/session.db
func DefaultPath() (string, error) {
	if p := os.Getenv("CAMPUS_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "campus", "session.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory for path if it does not exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
