package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/julianstephens/nutrisnap/internal/app"
	"github.com/julianstephens/nutrisnap/internal/constants"
	"github.com/julianstephens/nutrisnap/internal/datasync"
)

type DebugCmd struct {
	Paths DebugPathsCmd `cmd:"" help:"Show local file paths and the server in use."`
	Dump  DebugDumpCmd  `cmd:"" help:"Fetch one data slot and dump it as JSON."`
}

type DebugPathsCmd struct{}

func (cmd *DebugPathsCmd) Run(ctx *Context) error {
	a, err := ctx.Open(app.WithoutKeyring())
	if err != nil {
		return err
	}
	defer a.Close()

	// Output in machine-readable format
	output := map[string]string{
		"store":  a.Prefs.GetConfigPath(),
		"config": a.Config.ConfigDir,
		"log":    filepath.Join(a.Config.ConfigDir, "logs", constants.AppName+".log"),
		"api":    a.Client.BaseURL(),
	}
	return writeJSON(ctx, output)
}

type DebugDumpCmd struct {
	Slot string `arg:"" help:"Slot to fetch." enum:"daily-meals,meal-history,user-recipes,user-profile,nutrition-plan,cycle-data,dashboard-stats,meal-suggestions"`
	Date string `help:"Day for daily-meals (YYYY-MM-DD or 'today')." default:"today"`
}

func (cmd *DebugDumpCmd) Run(ctx *Context) error {
	slot, ok := slotByName(cmd.Slot)
	if !ok {
		return fmt.Errorf("unknown slot: %s", cmd.Slot)
	}
	date, err := resolveDate(cmd.Date)
	if err != nil {
		return err
	}

	bg := context.Background()
	a, _, err := ctx.OpenSession(bg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Sync.SelectDate(date); err != nil {
		return err
	}
	loadErr := a.Sync.Load(bg, slot)

	s := a.Store.Snapshot()
	out := map[string]any{"slot": slot.String()}
	if loadErr != nil {
		out["error"] = loadErr.Error()
	}
	switch slot {
	case datasync.SlotDailyMeals:
		out["status"], out["value"] = s.DailyMeals.Status.String(), s.DailyMeals.Value
	case datasync.SlotMealHistory:
		out["status"], out["value"] = s.MealHistory.Status.String(), s.MealHistory.Value
	case datasync.SlotUserRecipes:
		out["status"], out["value"] = s.UserRecipes.Status.String(), s.UserRecipes.Value
	case datasync.SlotUserProfile:
		out["status"], out["value"] = s.UserProfile.Status.String(), s.UserProfile.Value
	case datasync.SlotNutritionPlan:
		out["status"], out["value"] = s.NutritionPlan.Status.String(), s.NutritionPlan.Value
	case datasync.SlotCycleData:
		out["status"], out["value"] = s.CycleData.Status.String(), s.CycleData.Value
	case datasync.SlotDashboardStats:
		out["status"], out["value"] = s.DashboardStats.Status.String(), s.DashboardStats.Value
	case datasync.SlotMealSuggestions:
		out["status"], out["value"] = s.MealSuggestions.Status.String(), s.MealSuggestions.Value
	}
	return writeJSON(ctx, out)
}

func slotByName(name string) (datasync.Slot, bool) {
	for s := datasync.SlotDailyMeals; s <= datasync.SlotMealSuggestions; s++ {
		if s.String() == name {
			return s, true
		}
	}
	return 0, false
}

func writeJSON(ctx *Context, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(jsonBytes))
	return nil
}

