package cli

import (
	"github.com/julianstephens/nutrisnap/internal/app"
	"github.com/julianstephens/nutrisnap/internal/storage"
)

type PrefsCmd struct {
	List               bool  `help:"Print preferences and recent dates."`
	DarkMode           string `name:"dark-mode" help:"Use the dark theme (on|off)." enum:",on,off" default:""`
	EmailNotifications string `name:"email-notifications" help:"Receive email notifications (on|off)." enum:",on,off" default:""`
	ResetTutorial      bool   `name:"reset-tutorial" help:"Show the tips overlay again."`
	RememberServer     bool   `name:"remember-server" help:"Save --api-url as the default server."`
	ForgetServer       bool   `name:"forget-server" help:"Go back to the built-in default server."`
}

func (c *PrefsCmd) Run(ctx *Context) error {
	a, err := ctx.Open(app.WithoutKeyring())
	if err != nil {
		return err
	}
	defer a.Close()

	changed := c.DarkMode != "" || c.EmailNotifications != "" || c.ResetTutorial || c.ForgetServer
	if changed {
		err := a.UpdatePreferences(func(p *storage.Preferences) {
			if c.DarkMode != "" {
				p.DarkMode = c.DarkMode == "on"
			}
			if c.EmailNotifications != "" {
				p.EmailNotifications = c.EmailNotifications == "on"
			}
			if c.ResetTutorial {
				p.TutorialShown = false
			}
			if c.ForgetServer {
				p.APIURL = ""
			}
		})
		if err != nil {
			return err
		}
	}
	if c.RememberServer {
		if err := a.RememberAPIURL(); err != nil {
			return err
		}
		changed = true
	}

	if changed && !c.List {
		ctx.Println("✓ Preferences saved")
		return nil
	}

	p := a.Preferences()
	ctx.Printf("Preferences (%s):\n", a.Prefs.GetConfigPath())
	ctx.Printf("  dark mode:           %s\n", onOff(p.DarkMode))
	ctx.Printf("  email notifications: %s\n", onOff(p.EmailNotifications))
	ctx.Printf("  tutorial shown:      %s\n", onOff(p.TutorialShown))
	server := p.APIURL
	if server == "" {
		server = "(default)"
	}
	ctx.Printf("  server:              %s\n", server)

	dates, err := a.Prefs.RecentDates(5)
	if err != nil {
		return err
	}
	if len(dates) > 0 {
		ctx.Println("  recent days:")
		for _, d := range dates {
			ctx.Printf("    %s\n", d)
		}
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
