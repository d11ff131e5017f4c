package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/nutrisnap/internal/constants"
	"github.com/julianstephens/nutrisnap/internal/models"
)

// ProblemType classifies a draft validation failure
type ProblemType string

const (
	ProblemRequired   ProblemType = "required"
	ProblemNotNumber  ProblemType = "not_a_number"
	ProblemOutOfRange ProblemType = "out_of_range"
	ProblemNoInput    ProblemType = "no_input"
)

// Problem is one invalid field in a draft
type Problem struct {
	Type        ProblemType
	Field       string
	Description string
}

// Result collects every problem found in a draft
type Result struct {
	Problems []Problem
}

// HasProblems returns true if the draft failed validation
func (r *Result) HasProblems() bool {
	return len(r.Problems) > 0
}

func (r *Result) add(t ProblemType, field, desc string) {
	r.Problems = append(r.Problems, Problem{Type: t, Field: field, Description: desc})
}

// FormatReport returns a human-readable list of problems
func (r *Result) FormatReport() string {
	if !r.HasProblems() {
		return "No problems detected."
	}
	var b strings.Builder
	b.WriteString("Problems detected:\n")
	for _, p := range r.Problems {
		fmt.Fprintf(&b, "- %s\n", p.Description)
	}
	return b.String()
}

// Err returns nil for a clean result, otherwise an *Error
func (r Result) Err() error {
	if !r.HasProblems() {
		return nil
	}
	return &Error{Problems: r.Problems}
}

// Error is returned when a draft is rejected before reaching the network
type Error struct {
	Problems []Problem
}

func (e *Error) Error() string {
	descs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		descs[i] = p.Description
	}
	return "invalid input: " + strings.Join(descs, "; ")
}

// UserMessage shows the first problem, which is what a banner has room for
func (e *Error) UserMessage() string {
	if len(e.Problems) == 0 {
		return "Invalid input"
	}
	return e.Problems[0].Description
}

// Validator turns drafts into requests
type Validator struct {
	now func() time.Time
}

func New() *Validator {
	return &Validator{now: time.Now}
}

// WithClock overrides the time source used for default meal times
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

// Login checks that both credentials are present
func (v *Validator) Login(d models.LoginDraft) Result {
	var r Result
	if strings.TrimSpace(d.Email) == "" || d.Password == "" {
		r.add(ProblemRequired, "credentials", constants.MsgMissingCredentials)
	}
	return r
}

// Register converts the sign-up draft. Blank numeric fields become zero;
// anything else that does not parse is rejected.
func (v *Validator) Register(d models.RegisterDraft) (models.RegisterRequest, Result) {
	var r Result
	req := models.RegisterRequest{
		Username:            strings.TrimSpace(d.Username),
		Email:               strings.TrimSpace(d.Email),
		Password:            d.Password,
		Gender:              d.Gender,
		TrackMenstrualCycle: d.TrackMenstrualCycle && d.Gender == "female",
	}
	if req.Username == "" {
		r.add(ProblemRequired, "username", "Please enter a username")
	}
	if req.Email == "" {
		r.add(ProblemRequired, "email", "Please enter an email")
	}
	if req.Password == "" {
		r.add(ProblemRequired, "password", "Please enter a password")
	}
	if req.Gender == "" {
		req.Gender = models.DefaultRegisterDraft().Gender
	}

	req.Age = parseInt(&r, "age", d.Age, 0, 130)
	req.CurrentWeight = parseFloat(&r, "current weight", d.CurrentWeight, 0, 1000)
	req.TargetWeight = parseFloat(&r, "target weight", d.TargetWeight, 0, 1000)
	req.Height = parseFloat(&r, "height", d.Height, 0, 300)
	return req, r
}

// Meal builds the record that will be appended to the log for date.
func (v *Validator) Meal(d models.MealDraft, date string) (models.Meal, Result) {
	var r Result
	meal := models.Meal{
		ID:       v.now().UnixMilli(),
		Name:     strings.TrimSpace(d.Name),
		MealType: d.MealType,
		Time:     strings.TrimSpace(d.Time),
		Date:     date,
	}
	if meal.Name == "" {
		r.add(ProblemRequired, "name", constants.MsgMealNameRequired)
		return meal, r
	}
	if meal.MealType == "" {
		meal.MealType = string(constants.MealBreakfast)
	}
	if meal.Time == "" {
		meal.Time = v.now().Format(constants.TimeFormat)
	} else if _, err := time.Parse(constants.TimeFormat, meal.Time); err != nil {
		r.add(ProblemNotNumber, "time", "Time must be HH:MM")
	}

	meal.Calories = parseFloat(&r, "calories", d.Calories, 0, 20000)
	meal.Protein = parseFloat(&r, "protein", d.Protein, 0, 2000)
	meal.Carbs = parseFloat(&r, "carbs", d.Carbs, 0, 2000)
	meal.Fat = parseFloat(&r, "fat", d.Fat, 0, 2000)
	if !r.HasProblems() && !meal.HasNutrition() {
		r.add(ProblemNoInput, "nutrition", constants.MsgNutritionRequired)
	}
	return meal, r
}

// Estimate checks there is something to estimate from
func (v *Validator) Estimate(d models.MealDraft) Result {
	var r Result
	if strings.TrimSpace(d.Name) == "" && d.ImagePath == "" {
		r.add(ProblemNoInput, "name", constants.MsgEstimateInput)
	}
	return r
}

// Recipe checks that ingredients or a photo were supplied
func (v *Validator) Recipe(d models.RecipeDraft) Result {
	var r Result
	if strings.TrimSpace(d.Ingredients) == "" && d.ImagePath == "" {
		r.add(ProblemNoInput, "ingredients", constants.MsgRecipeInput)
	}
	return r
}

// Profile converts the profile form; blank fields are left out of the update
func (v *Validator) Profile(d models.ProfileDraft) (models.ProfileUpdate, Result) {
	var r Result
	up := models.ProfileUpdate{
		Username:      strings.TrimSpace(d.Username),
		Email:         strings.TrimSpace(d.Email),
		Gender:        d.Gender,
		ActivityLevel: d.ActivityLevel,
	}
	up.Age = parseInt(&r, "age", d.Age, 0, 130)
	up.CurrentWeight = parseFloat(&r, "current weight", d.CurrentWeight, 0, 1000)
	up.TargetWeight = parseFloat(&r, "target weight", d.TargetWeight, 0, 1000)
	up.Height = parseFloat(&r, "height", d.Height, 0, 300)
	return up, r
}

// CycleLog converts the symptom form
func (v *Validator) CycleLog(d models.CycleLogDraft) (models.CycleLog, Result) {
	var r Result
	entry := models.CycleLog{
		Symptoms: SplitList(d.Symptoms),
		Mood:     strings.TrimSpace(d.Mood),
		Cravings: SplitList(d.Cravings),
	}
	entry.EnergyLevel = parseInt(&r, "energy level", d.EnergyLevel, 0, 10)
	if len(entry.Symptoms) == 0 && entry.Mood == "" && len(entry.Cravings) == 0 && entry.EnergyLevel == 0 {
		r.add(ProblemNoInput, "symptoms", "Log at least one symptom, mood, craving or energy level")
	}
	return entry, r
}

// SplitList splits comma separated input, dropping blanks
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Number is a form field validator accepting blank or a non-negative number
func Number(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("must be a number")
	}
	if f < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

// Required is a form field validator rejecting blank input
func Required(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

func parseFloat(r *Result, field, raw string, min, max float64) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		r.add(ProblemNotNumber, field, fmt.Sprintf("%s must be a number", capitalize(field)))
		return 0
	}
	if f < min || f > max {
		r.add(ProblemOutOfRange, field, fmt.Sprintf("%s must be between %g and %g", capitalize(field), min, max))
		return 0
	}
	return f
}

func parseInt(r *Result, field, raw string, min, max int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		r.add(ProblemNotNumber, field, fmt.Sprintf("%s must be a whole number", capitalize(field)))
		return 0
	}
	if n < min || n > max {
		r.add(ProblemOutOfRange, field, fmt.Sprintf("%s must be between %d and %d", capitalize(field), min, max))
		return 0
	}
	return n
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
