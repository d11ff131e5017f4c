package constants

import "time"

// SessionState represents which TUI overlay currently owns input
type SessionState int

// MealType is the meal slot a record belongs to
type MealType string

const (
	AppName            = "nutrisnap"
	DefaultKeyringUser = "session-cookie"
	DefaultConfigPath  = "~/.config/nutrisnap/nutrisnap.db"
	DefaultAPIURL      = "http://localhost:5001/api"
	DefaultCameraCmd   = "ffmpeg -loglevel error -f v4l2 -i /dev/video0 -f mjpeg -q:v 3 -"
	Version            = "v0.3.0"

	// DateFormat is the ISO date used for the daily log (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the meal time format (HH:MM)
	TimeFormat = "15:04"

	// Timing
	CheckAuthDelay       = 100 * time.Millisecond
	ViewFetchDebounce    = 200 * time.Millisecond
	SecondaryLoadDelay   = 300 * time.Millisecond
	ErrorNotificationTTL = 5 * time.Second
	SuccessNotifyTTL     = 3 * time.Second
	DefaultHTTPTimeout   = 60 * time.Second

	// Food analysis defaults
	AnalysisMealType   = "lunch"
	EstimateAction     = "estimate_nutrition"
	CaptureFileName    = "camera-capture.jpg"
	CaptureJPEGQuality = 90
	MaxUploadBytes     = 16 << 20

	// Meal types
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// Session States
const (
	StateBrowsing SessionState = iota
	StateForm
	StateFilePicker
	StateHelp
	StateConfirmDelete
	StateConfirmLogout
)

// MealTypes lists the selectable meal types in display order
var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}
