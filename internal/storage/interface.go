package storage

// Provider persists local preferences. Nothing here is authoritative
// application data; that lives on the backend.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Preferences
	GetPreferences() (Preferences, error)
	SavePreferences(Preferences) error

	// Recent dates opened in the daily log, newest first
	TouchDate(date string) error
	RecentDates(limit int) ([]string, error)

	// Utils
	GetConfigPath() string
}
