package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

const jsonStoreVersion = 1

type jsonFile struct {
	Version     int                  `json:"version"`
	Preferences Preferences          `json:"preferences"`
	RecentDates map[string]time.Time `json:"recent_dates"`
}

// JSONStore keeps preferences in a single JSON file. Useful where a SQLite
// file is unwelcome, such as a dotfiles repo.
type JSONStore struct {
	path  string
	store *jsonFile
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return s.Load()
	}

	s.store = &jsonFile{
		Version:     jsonStoreVersion,
		Preferences: DefaultPreferences(),
		RecentDates: make(map[string]time.Time),
	}
	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("preferences not initialized at %s", s.path)
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.store = &jsonFile{}
	if err := json.Unmarshal(data, s.store); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if s.store.Version > jsonStoreVersion {
		return fmt.Errorf("preferences file version %d is newer than this build supports (%d)", s.store.Version, jsonStoreVersion)
	}
	if s.store.RecentDates == nil {
		s.store.RecentDates = make(map[string]time.Time)
	}
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

// save writes a temp file and renames it into place
func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (s *JSONStore) GetPreferences() (Preferences, error) {
	if s.store == nil {
		return Preferences{}, fmt.Errorf("storage not loaded")
	}
	return s.store.Preferences, nil
}

func (s *JSONStore) SavePreferences(prefs Preferences) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	s.store.Preferences = prefs
	return s.save()
}

func (s *JSONStore) TouchDate(date string) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	s.store.RecentDates[date] = nowFunc().UTC()
	return s.save()
}

func (s *JSONStore) RecentDates(limit int) ([]string, error) {
	if s.store == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	dates := make([]string, 0, len(s.store.RecentDates))
	for d := range s.store.RecentDates {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, func(a, b string) int {
		return s.store.RecentDates[b].Compare(s.store.RecentDates[a])
	})
	if limit >= 0 && len(dates) > limit {
		dates = dates[:limit]
	}
	return dates, nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
