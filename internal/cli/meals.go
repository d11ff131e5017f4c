package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/nutrisnap/internal/constants"
	"github.com/julianstephens/nutrisnap/internal/datasync"
	"github.com/julianstephens/nutrisnap/internal/logger"
	"github.com/julianstephens/nutrisnap/internal/models"
	"github.com/julianstephens/nutrisnap/internal/state"
)

// resolveDate turns "today" or YYYY-MM-DD into YYYY-MM-DD
func resolveDate(s string) (string, error) {
	if s == "" || s == "today" {
		return time.Now().Format(constants.DateFormat), nil
	}
	d, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return "", fmt.Errorf("invalid date format, use YYYY-MM-DD or 'today': %w", err)
	}
	return d.Format(constants.DateFormat), nil
}

type MealsCmd struct {
	Date string `help:"Day to show (YYYY-MM-DD or 'today')." default:"today"`
}

func (c *MealsCmd) Run(ctx *Context) error {
	date, err := resolveDate(c.Date)
	if err != nil {
		return err
	}

	bg := context.Background()
	a, _, err := ctx.OpenSession(bg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.SelectDate(date); err != nil {
		return err
	}
	if err := a.Sync.Load(bg, datasync.SlotDailyMeals); err != nil {
		logger.Debug("Daily meals fell back to samples", "date", date, "error", err)
	}

	s := a.Store.Snapshot()
	printMeals(ctx, date, s.DailyMeals)
	return nil
}

func printMeals(ctx *Context, date string, r state.Resource[[]models.Meal]) {
	ctx.Printf("Meals for %s:\n", date)
	if r.Status == state.Fallback {
		ctx.Println("  (backend unavailable, showing sample data)")
	}
	if len(r.Value) == 0 {
		ctx.Println("  No meals logged")
		return
	}
	for _, m := range r.Value {
		ctx.Printf("  [%d] %s %-9s %s - %.0f kcal (P %.1fg C %.1fg F %.1fg)\n",
			m.ID, m.Time, m.MealType, m.Name, m.Calories, m.Protein, m.Carbs, m.Fat)
	}
	t := models.DailyTotals(r.Value)
	ctx.Printf("  Total: %.0f kcal (P %.1fg C %.1fg F %.1fg)\n", t.Calories, t.Protein, t.Carbs, t.Fat)
}

type MealAddCmd struct {
	Name     string `help:"Meal name." required:""`
	Calories string `help:"Calories (kcal)."`
	Protein  string `help:"Protein (g)."`
	Carbs    string `help:"Carbohydrates (g)."`
	Fat      string `help:"Fat (g)."`
	Type     string `help:"Meal type." enum:"breakfast,lunch,dinner,snack" default:"breakfast"`
	Time     string `help:"Time eaten (HH:MM). Defaults to now."`
	Date     string `help:"Day to log to (YYYY-MM-DD or 'today')." default:"today"`
	Estimate bool   `help:"Fill in nutrition with an AI estimate before saving."`
	Image    string `help:"Photo used for the estimate." type:"existingfile"`
}

func (c *MealAddCmd) Run(ctx *Context) error {
	date, err := resolveDate(c.Date)
	if err != nil {
		return err
	}

	bg := context.Background()
	a, _, err := ctx.OpenSession(bg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.SelectDate(date); err != nil {
		return err
	}

	d := models.MealDraft{
		Name:      c.Name,
		Calories:  c.Calories,
		Protein:   c.Protein,
		Carbs:     c.Carbs,
		Fat:       c.Fat,
		MealType:  c.Type,
		Time:      c.Time,
		ImagePath: c.Image,
	}
	if c.Estimate || c.Image != "" {
		if d, err = a.Sync.EstimateMeal(bg, d, nil); err != nil {
			return err
		}
		// keep the name the user gave over the estimate's title
		d.Name = c.Name
	}

	meal, err := a.Sync.SaveMeal(bg, d)
	if err != nil {
		return err
	}
	ctx.printBanners(a)
	ctx.Printf("  [%d] %s %s - %.0f kcal on %s\n", meal.ID, meal.Time, meal.Name, meal.Calories, date)
	return nil
}

type MealDeleteCmd struct {
	ID int64 `arg:"" help:"ID of the meal to delete."`
}

func (c *MealDeleteCmd) Run(ctx *Context) error {
	bg := context.Background()
	a, _, err := ctx.OpenSession(bg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Sync.DeleteMeal(bg, c.ID); err != nil {
		return err
	}
	// the remote delete runs in the background
	a.Sync.Wait()
	ctx.printBanners(a)
	return nil
}

type HistoryCmd struct {
	Limit int `help:"Maximum entries to show." default:"20"`
}

func (c *HistoryCmd) Run(ctx *Context) error {
	bg := context.Background()
	a, _, err := ctx.OpenSession(bg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Sync.Load(bg, datasync.SlotMealHistory); err != nil {
		logger.Debug("Meal history fell back to samples", "error", err)
	}

	h := a.Store.Snapshot().MealHistory
	if h.Status == state.Fallback {
		ctx.Println("(backend unavailable, showing sample data)")
	}
	if len(h.Value.Entries) == 0 {
		ctx.Println("No meals analysed yet")
		return nil
	}

	ctx.Printf("Meal history (%d total):\n", h.Value.Pagination.Total)
	for i, e := range h.Value.Entries {
		if c.Limit > 0 && i >= c.Limit {
			break
		}
		ctx.Printf("  [%d] %s %-9s %s - %.0f kcal, health %.0f/10\n",
			e.ID, e.CreatedAt, e.MealType, strings.Join(e.FoodsDetected, ", "), e.TotalCalories, e.HealthScore)
	}
	return nil
}

type HistoryDeleteCmd struct {
	ID int64 `arg:"" help:"ID of the history entry to delete."`
}

func (c *HistoryDeleteCmd) Run(ctx *Context) error {
	bg := context.Background()
	a, _, err := ctx.OpenSession(bg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Sync.DeleteHistoryEntry(bg, c.ID); err != nil {
		return err
	}
	ctx.printBanners(a)
	return nil
}
