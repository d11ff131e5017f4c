package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/nutrisnap/internal/cli"
	"github.com/julianstephens/nutrisnap/internal/config"
	apperr "github.com/julianstephens/nutrisnap/internal/errors"
	"github.com/julianstephens/nutrisnap/internal/logger"
)

var CLI struct {
	config.Flags `embed:""`

	Version kong.VersionFlag

	Init     cli.InitCmd     `cmd:"" help:"Initialize nutrisnap storage."`
	Tui      cli.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Login    cli.LoginCmd    `cmd:"" help:"Sign in to NutriVision."`
	Logout   cli.LogoutCmd   `cmd:"" help:"Sign out and forget the remembered session."`
	Register cli.RegisterCmd `cmd:"" help:"Create a NutriVision account."`
	Doctor   cli.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Meals    cli.MealsCmd    `cmd:"" help:"Show the meals logged for a day."`
	Meal     struct {
		Add    cli.MealAddCmd    `cmd:"" help:"Log a meal."`
		Delete cli.MealDeleteCmd `cmd:"" help:"Delete a logged meal."`
	} `cmd:"" help:"Manage the daily meal log."`
	History struct {
		List   cli.HistoryCmd       `cmd:"" help:"List analysed meals." default:"1"`
		Delete cli.HistoryDeleteCmd `cmd:"" help:"Remove an analysed meal from history."`
	} `cmd:"" help:"Browse the meal analysis history."`
	Recipes cli.RecipesCmd `cmd:"" help:"List saved recipes."`
	Recipe  struct {
		Show     cli.RecipeShowCmd     `cmd:"" help:"Show a saved recipe."`
		Delete   cli.RecipeDeleteCmd   `cmd:"" help:"Delete a saved recipe."`
		Generate cli.RecipeGenerateCmd `cmd:"" help:"Generate personalised recipes."`
	} `cmd:"" help:"Manage recipes."`
	Analyze cli.AnalyzeCmd `cmd:"" help:"Analyse a photo of a meal."`
	Prefs   cli.PrefsCmd   `cmd:"" help:"Show or change local preferences."`
	Debug   cli.DebugCmd   `cmd:"" help:"Debug commands for troubleshooting."`
}

func main() {
	// .env must be loaded before kong reads env tags
	if _, err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, apperr.Format(err))
		os.Exit(1)
	}

	ctx := kong.Parse(&CLI,
		kong.Name("nutrisnap"),
		kong.Description("Terminal client for the NutriVision nutrition tracker"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars(config.Vars()),
	)

	cfg, err := CLI.Flags.Resolve()
	if err != nil {
		apperr.Fatal(err)
	}

	if err := logger.Init(logger.Config{
		Debug:     cfg.Debug,
		ConfigDir: cfg.ConfigDir,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	logger.Debug("Starting", "command", ctx.Command(), "api", cfg.APIURL)

	if err := ctx.Run(cli.NewContext(cfg)); err != nil {
		apperr.Fatal(err)
	}
}
