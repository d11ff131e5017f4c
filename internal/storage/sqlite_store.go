package storage

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/nutrisnap/internal/logger"
	"github.com/julianstephens/nutrisnap/internal/migration"
	"github.com/julianstephens/nutrisnap/migrations"
)

// sortableTime keeps opened_at lexically ordered
const sortableTime = "2006-01-02T15:04:05.000000000Z"

type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
	}
}

// Init opens the database, creating it if needed, and applies pending
// migrations. It is safe to call on an existing database.
func (s *SQLiteStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if _, err := s.GetPreferences(); err != nil {
		if err := s.SavePreferences(DefaultPreferences()); err != nil {
			return fmt.Errorf("failed to save default preferences: %w", err)
		}
	}
	return nil
}

// Load opens an existing database without migrating it
func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("preferences not initialized at %s", s.path)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	return s.validateSchemaVersion()
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS), nil
}

func (s *SQLiteStore) runMigrations() error {
	runner, err := s.runner()
	if err != nil {
		return err
	}
	_, err = runner.ApplyMigrations(func(msg string) {
		logger.Info(msg, "db", s.path)
	})
	return err
}

func (s *SQLiteStore) validateSchemaVersion() error {
	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

// SchemaVersion reports the applied and the latest known migration
func (s *SQLiteStore) SchemaVersion() (current, latest int, err error) {
	runner, err := s.runner()
	if err != nil {
		return 0, 0, err
	}
	if current, err = runner.GetCurrentVersion(); err != nil {
		return 0, 0, err
	}
	latest, err = runner.GetLatestVersion()
	return current, latest, err
}

func (s *SQLiteStore) GetPreferences() (Preferences, error) {
	if s.db == nil {
		return Preferences{}, fmt.Errorf("storage not loaded")
	}
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return Preferences{}, err
	}
	defer rows.Close()

	prefs := Preferences{}
	count := 0
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Preferences{}, err
		}
		switch key {
		case "tutorial_shown":
			prefs.TutorialShown = value == "true"
		case "dark_mode":
			prefs.DarkMode = value == "true"
		case "email_notifications":
			prefs.EmailNotifications = value == "true"
		case "api_url":
			prefs.APIURL = value
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return Preferences{}, err
	}
	if count == 0 {
		return Preferences{}, fmt.Errorf("preferences not found")
	}
	return prefs, nil
}

func (s *SQLiteStore) SavePreferences(prefs Preferences) error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	values := [][2]string{
		{"tutorial_shown", strconv.FormatBool(prefs.TutorialShown)},
		{"dark_mode", strconv.FormatBool(prefs.DarkMode)},
		{"email_notifications", strconv.FormatBool(prefs.EmailNotifications)},
		{"api_url", prefs.APIURL},
	}
	for _, kv := range values {
		if _, err := stmt.Exec(kv[0], kv[1]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) TouchDate(date string) error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}
	_, err := s.db.Exec("INSERT OR REPLACE INTO recent_dates (date, opened_at) VALUES (?, ?)",
		date, nowFunc().UTC().Format(sortableTime))
	return err
}

func (s *SQLiteStore) RecentDates(limit int) ([]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	rows, err := s.db.Query("SELECT date FROM recent_dates ORDER BY opened_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// GetConfigPath returns the path to the database file.
//
// Running two nutrisnap processes against the same file is safe for reads;
// concurrent preference writes are last-writer-wins.
func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}
