package state

import (
	"time"

	"github.com/julianstephens/nutrisnap/internal/models"
)

// Status records where a slot's value came from
type Status int

const (
	Empty Status = iota
	Loaded
	Fallback
)

func (s Status) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Fallback:
		return "fallback"
	default:
		return "empty"
	}
}

// Resource is one remote-backed slot. A read failure puts the slot's
// fallback value in place, so Value is always renderable.
type Resource[T any] struct {
	Value     T
	Status    Status
	UpdatedAt time.Time
}

func loaded[T any](v T, fallback bool, at time.Time) Resource[T] {
	st := Loaded
	if fallback {
		st = Fallback
	}
	return Resource[T]{Value: v, Status: st, UpdatedAt: at}
}

// History is the meal-history slot value
type History struct {
	Entries    []models.HistoryEntry
	Pagination models.Pagination
}

// RecipeOptions is the result of the last recipe generation. Gen increases
// with every generation so late image results for older options are dropped.
type RecipeOptions struct {
	Gen        uint64
	Options    []models.RecipeOption
	Validation *models.IngredientValidation
	Detected   []string
}
