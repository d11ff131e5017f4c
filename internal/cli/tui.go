package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/nutrisnap/internal/app"
	"github.com/julianstephens/nutrisnap/internal/tui"
)

type TuiCmd struct {
	NoRemember bool `help:"Do not keep the session in the OS keyring after signing in."`
}

func (c *TuiCmd) Run(ctx *Context) error {
	a, err := ctx.Open(app.WithRemember(!c.NoRemember))
	if err != nil {
		return err
	}
	defer a.Close()

	p := tea.NewProgram(tui.NewModel(a), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited: %w", err)
	}
	return nil
}
