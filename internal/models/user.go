package models

import "encoding/json"

// User mirrors the backend user object. Login, stats and profile endpoints
// each return a subset of these fields.
type User struct {
	ID                  int64   `json:"id"`
	Username            string  `json:"username"`
	Email               string  `json:"email,omitempty"`
	Level               string  `json:"level,omitempty"`
	TotalXP             int     `json:"total_xp"`
	StreakDays          int     `json:"streak_days"`
	CurrentWeight       float64 `json:"current_weight,omitempty"`
	TargetWeight        float64 `json:"target_weight,omitempty"`
	MetabolicAge        float64 `json:"metabolic_age,omitempty"`
	Age                 int     `json:"age,omitempty"`
	Height              float64 `json:"height,omitempty"`
	Gender              string  `json:"gender,omitempty"`
	ActivityLevel       string  `json:"activity_level,omitempty"`
	TrackMenstrualCycle bool    `json:"track_menstrual_cycle,omitempty"`
	ProfilePhoto        string  `json:"profile_photo,omitempty"`
	BadgesEarned        int     `json:"badges_earned,omitempty"`

	sent userFields
}

// TracksCycle reports whether cycle data should be fetched for this user.
func (u User) TracksCycle() bool {
	return u.Gender == "female" && u.TrackMenstrualCycle
}

// userFields records which zero-able fields a partial user carries
// explicitly, so Merge can tell "reset to zero" from "not sent".
type userFields uint8

const (
	fieldTotalXP userFields = 1 << iota
	fieldStreakDays
	fieldTrackCycle
	fieldBadges
)

var userFieldKeys = map[string]userFields{
	"total_xp":              fieldTotalXP,
	"streak_days":           fieldStreakDays,
	"track_menstrual_cycle": fieldTrackCycle,
	"badges_earned":         fieldBadges,
}

// UnmarshalJSON decodes the user and remembers which counters and flags
// the payload actually contained.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*u = User(p)
	for key, f := range userFieldKeys {
		if _, ok := raw[key]; ok {
			u.sent |= f
		}
	}
	return nil
}

// WithStreak returns u carrying an explicit streak, zero included
func (u User) WithStreak(days int) User {
	u.StreakDays = days
	u.sent |= fieldStreakDays
	return u
}

// Merge overlays other onto u. Endpoints return partial users, so strings
// and measurements only replace when non-empty; counters and flags also
// replace when other carried them explicitly.
func (u User) Merge(other User) User {
	has := func(f userFields, nonZero bool) bool {
		return nonZero || other.sent&f != 0
	}
	if other.ID != 0 {
		u.ID = other.ID
	}
	if other.Username != "" {
		u.Username = other.Username
	}
	if other.Email != "" {
		u.Email = other.Email
	}
	if other.Level != "" {
		u.Level = other.Level
	}
	if has(fieldTotalXP, other.TotalXP != 0) {
		u.TotalXP = other.TotalXP
	}
	if has(fieldStreakDays, other.StreakDays != 0) {
		u.StreakDays = other.StreakDays
	}
	if other.CurrentWeight != 0 {
		u.CurrentWeight = other.CurrentWeight
	}
	if other.TargetWeight != 0 {
		u.TargetWeight = other.TargetWeight
	}
	if other.MetabolicAge != 0 {
		u.MetabolicAge = other.MetabolicAge
	}
	if other.Age != 0 {
		u.Age = other.Age
	}
	if other.Height != 0 {
		u.Height = other.Height
	}
	if other.Gender != "" {
		u.Gender = other.Gender
	}
	if other.ActivityLevel != "" {
		u.ActivityLevel = other.ActivityLevel
	}
	if has(fieldTrackCycle, other.TrackMenstrualCycle) {
		u.TrackMenstrualCycle = other.TrackMenstrualCycle
	}
	if other.ProfilePhoto != "" {
		u.ProfilePhoto = other.ProfilePhoto
	}
	if has(fieldBadges, other.BadgesEarned != 0) {
		u.BadgesEarned = other.BadgesEarned
	}
	u.sent = 0
	return u
}

// AdvancedStats is the gamification block of /user/stats-advanced.
type AdvancedStats struct {
	TotalAnalyses       int     `json:"total_analyses"`
	FoodMemoriesCount   int     `json:"food_memories_count"`
	ActiveChallenges    int     `json:"active_challenges"`
	RecentPerformance   float64 `json:"recent_performance"`
	PersonalityUnlocked bool    `json:"personality_unlocked"`
	BadgesEarned        int     `json:"badges_earned"`
}

type AchievementProgress struct {
	NextLevelXP          int     `json:"next_level_xp"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

type Badge struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Rarity      string `json:"rarity"`
	UnlockedAt  string `json:"unlocked_at"`
}

// Stats is the session-scoped statistics snapshot.
type Stats struct {
	Advanced     AdvancedStats       `json:"advanced_stats"`
	Progress     AchievementProgress `json:"achievement_progress"`
	RecentBadges []Badge             `json:"recent_badges"`
}

// Session is the authenticated user plus their stats.
type Session struct {
	User  User
	Stats *Stats
}
