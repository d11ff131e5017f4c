package cli

import (
	"github.com/julianstephens/nutrisnap/internal/storage"
)

type InitCmd struct{}

func (c *InitCmd) Run(ctx *Context) error {
	p, err := storage.Open(ctx.Config.StorePath)
	if err != nil {
		return err
	}
	defer p.Close()
	ctx.Printf("Initialized nutrisnap storage at: %s\n", p.GetConfigPath())
	return nil
}
