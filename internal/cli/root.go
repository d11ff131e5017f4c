package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/nutrisnap/internal/app"
	"github.com/julianstephens/nutrisnap/internal/config"
	"github.com/julianstephens/nutrisnap/internal/models"
	"github.com/julianstephens/nutrisnap/internal/notifier"
	"github.com/julianstephens/nutrisnap/internal/session"
)

// ErrNotSignedIn is returned by commands that need a remembered session
var ErrNotSignedIn = errors.New("not signed in; run 'nutrisnap login --remember' first")

type Context struct {
	Config config.Config
	Out    io.Writer
	// Options are applied to every App a command opens
	Options []app.Option
}

func NewContext(cfg config.Config) *Context {
	return &Context{Config: cfg, Out: os.Stdout}
}

// Open builds the application for one command. Callers must Close it.
func (c *Context) Open(opts ...app.Option) (*app.App, error) {
	all := append(append([]app.Option{}, c.Options...), opts...)
	return app.New(c.Config, all...)
}

// OpenSession opens the application and restores the remembered session
func (c *Context) OpenSession(ctx context.Context) (*app.App, *models.Session, error) {
	a, err := c.Open()
	if err != nil {
		return nil, nil, err
	}
	sess, err := a.Session.CheckAuth(ctx)
	if err != nil {
		a.Close()
		if errors.Is(err, session.ErrNoSession) {
			return nil, nil, ErrNotSignedIn
		}
		return nil, nil, err
	}
	return a, sess, nil
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Out, args...)
}

// printBanners echoes the app's current notifications, the way the TUI
// would show them
func (c *Context) printBanners(a *app.App) {
	if n, ok := a.Notify.Current(notifier.KindSuccess); ok {
		c.Printf("✓ %s\n", n.Text)
	}
	if n, ok := a.Notify.Current(notifier.KindError); ok {
		c.Printf("⚠ %s\n", n.Text)
	}
}
