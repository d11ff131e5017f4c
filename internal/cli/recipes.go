package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/nutrisnap/internal/datasync"
	"github.com/julianstephens/nutrisnap/internal/models"
)

type RecipesCmd struct{}

func (c *RecipesCmd) Run(ctx *Context) error {
	bg := context.Background()
	a, _, err := ctx.OpenSession(bg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Sync.Load(bg, datasync.SlotUserRecipes); err != nil {
		return err
	}

	recipes := a.Store.Snapshot().UserRecipes.Value
	if len(recipes) == 0 {
		ctx.Println("No saved recipes")
		return nil
	}
	ctx.Println("Recipes:")
	for _, r := range recipes {
		ctx.Printf("  [%d] %s - %.0f kcal/serving, %d min\n", r.ID, r.Title, r.Calories(), r.PrepTime+r.CookTime)
	}
	return nil
}

type RecipeShowCmd struct {
	ID int64 `arg:"" help:"ID of the recipe to show."`
}

func (c *RecipeShowCmd) Run(ctx *Context) error {
	bg := context.Background()
	a, _, err := ctx.OpenSession(bg)
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := a.Sync.RecipeDetails(bg, c.ID)
	if err != nil {
		return err
	}
	printRecipe(ctx, *r)
	return nil
}

func printRecipe(ctx *Context, r models.Recipe) {
	ctx.Printf("%s\n", r.Title)
	if r.Description != "" {
		ctx.Printf("  %s\n", r.Description)
	}
	ctx.Printf("  %.0f kcal/serving  prep %d min  cook %d min  serves %d\n",
		r.Calories(), r.PrepTime, r.CookTime, r.Servings)
	if len(r.Ingredients) > 0 {
		ctx.Println("\n  Ingredients:")
		for _, in := range r.Ingredients {
			ctx.Printf("    - %s\n", in.String())
		}
	}
	if len(r.Instructions) > 0 {
		ctx.Println("\n  Instructions:")
		for i, step := range r.Instructions {
			ctx.Printf("    %d. %s\n", i+1, step)
		}
	}
}

type RecipeDeleteCmd struct {
	ID int64 `arg:"" help:"ID of the recipe to delete."`
}

func (c *RecipeDeleteCmd) Run(ctx *Context) error {
	bg := context.Background()
	a, _, err := ctx.OpenSession(bg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Sync.DeleteRecipe(bg, c.ID); err != nil {
		return err
	}
	ctx.printBanners(a)
	return nil
}

type RecipeGenerateCmd struct {
	Ingredients string `help:"Comma-separated ingredients on hand."`
	Image       string `help:"Photo of the ingredients." type:"existingfile"`
	MealType    string `name:"meal-type" help:"Meal type." default:"any"`
	Temperature string `help:"Hot, cold or any." default:"any"`
	CookingTime string `name:"cooking-time" help:"quick, medium or long." default:"medium"`
	Cuisine     string `help:"Cuisine style." default:"any"`
	Diet        string `help:"Dietary preference." default:"none"`
	Save        []int  `help:"Save the numbered options (1-based) to your recipe book."`
}

func (c *RecipeGenerateCmd) Run(ctx *Context) error {
	bg := context.Background()
	a, _, err := ctx.OpenSession(bg)
	if err != nil {
		return err
	}
	defer a.Close()

	opts, err := a.Sync.GenerateRecipe(bg, models.RecipeDraft{
		Ingredients:  c.Ingredients,
		MealType:     c.MealType,
		Temperature:  c.Temperature,
		CookingTime:  c.CookingTime,
		CuisineStyle: c.Cuisine,
		DietaryPref:  c.Diet,
		ImagePath:    c.Image,
	}, nil)
	if err != nil {
		return err
	}
	ctx.printBanners(a)

	for i, o := range opts {
		ctx.Printf("  %d. %s - %.0f kcal, %d min\n", i+1, o.Title, o.Nutrition.Calories, o.PrepTime+o.CookTime)
		if o.Description != "" {
			ctx.Printf("     %s\n", o.Description)
		}
		if len(o.Tags) > 0 {
			ctx.Printf("     %s\n", strings.Join(o.Tags, ", "))
		}
	}

	for _, n := range c.Save {
		id, err := a.Sync.SaveRecipeOption(bg, n-1)
		if err != nil {
			return fmt.Errorf("saving option %d: %w", n, err)
		}
		ctx.Printf("Saved option %d as recipe %d\n", n, id)
	}
	return nil
}
