package cli

import (
	"context"
	"strings"
)

type AnalyzeCmd struct {
	Image string `arg:"" help:"Photo of the meal." type:"existingfile"`
}

func (c *AnalyzeCmd) Run(ctx *Context) error {
	bg := context.Background()
	a, _, err := ctx.OpenSession(bg)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.AnalyzeFile(bg, c.Image)
	if err != nil {
		return err
	}
	ctx.printBanners(a)

	ctx.Printf("Foods: %s\n", strings.Join(res.FoodsDetected, ", "))
	n := res.Nutrition
	ctx.Printf("  %.0f kcal (P %.1fg C %.1fg F %.1fg)\n", n.Calories, n.Protein, n.Carbs, n.Fat)
	ctx.Printf("  Health score: %.0f/10\n", res.HealthAssessment.Score)
	if res.AIFeedback != "" {
		ctx.Printf("  %s\n", res.AIFeedback)
	}
	for _, s := range res.Suggestions {
		ctx.Printf("  - %s\n", s)
	}
	return nil
}
