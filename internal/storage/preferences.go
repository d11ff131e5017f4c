package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Preferences are the client-side settings that survive restarts
type Preferences struct {
	TutorialShown      bool   `json:"tutorial_shown"`
	DarkMode           bool   `json:"dark_mode"`
	EmailNotifications bool   `json:"email_notifications"`
	APIURL             string `json:"api_url,omitempty"`
}

func DefaultPreferences() Preferences {
	return Preferences{EmailNotifications: true}
}

// New picks the backend from the file extension: .json gets the JSON store,
// anything else SQLite.
func New(path string) (Provider, error) {
	if path == "" {
		return nil, fmt.Errorf("storage path is empty")
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return NewJSONStore(path), nil
	}
	return NewSQLiteStore(path), nil
}

// Open creates or loads the store at path
func Open(path string) (Provider, error) {
	p, err := New(path)
	if err != nil {
		return nil, err
	}
	if err := p.Init(); err != nil {
		return nil, err
	}
	return p, nil
}

var nowFunc = time.Now
