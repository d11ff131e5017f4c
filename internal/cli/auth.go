package cli

import (
	"context"

	"github.com/julianstephens/nutrisnap/internal/app"
	"github.com/julianstephens/nutrisnap/internal/models"
)

type LoginCmd struct {
	Email    string `help:"Account email." required:""`
	Password string `help:"Account password." env:"NUTRISNAP_PASSWORD" required:""`
	Remember bool   `help:"Keep the session in the OS keyring for later commands."`
}

func (cmd *LoginCmd) Run(ctx *Context) error {
	a, err := ctx.Open(app.WithRemember(cmd.Remember))
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.Session.Login(context.Background(), models.LoginDraft{Email: cmd.Email, Password: cmd.Password})
	if err != nil {
		return err
	}
	ctx.printBanners(a)
	printUser(ctx, sess.User)
	if !cmd.Remember {
		ctx.Println("Session not remembered; pass --remember to stay signed in.")
	}
	return nil
}

type LogoutCmd struct{}

func (cmd *LogoutCmd) Run(ctx *Context) error {
	a, err := ctx.Open()
	if err != nil {
		return err
	}
	defer a.Close()

	bg := context.Background()
	// restores the remembered cookie so the backend session is ended too
	_, _ = a.Session.CheckAuth(bg)
	if err := a.Session.Logout(bg); err != nil {
		return err
	}
	ctx.printBanners(a)
	return nil
}

type RegisterCmd struct {
	Username      string `help:"Display name." required:""`
	Email         string `help:"Account email." required:""`
	Password      string `help:"Account password." env:"NUTRISNAP_PASSWORD" required:""`
	Age           string `help:"Age in years."`
	CurrentWeight string `name:"weight" help:"Current weight in kg."`
	TargetWeight  string `name:"target-weight" help:"Target weight in kg."`
	Height        string `help:"Height in cm."`
	Gender        string `help:"Gender." enum:"male,female,other" default:"male"`
	TrackCycle    bool   `name:"track-cycle" help:"Track the menstrual cycle."`
	Remember      bool   `help:"Keep the session in the OS keyring for later commands."`
}

func (cmd *RegisterCmd) Run(ctx *Context) error {
	a, err := ctx.Open(app.WithRemember(cmd.Remember))
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.Session.Register(context.Background(), models.RegisterDraft{
		Username:            cmd.Username,
		Email:               cmd.Email,
		Password:            cmd.Password,
		Age:                 cmd.Age,
		CurrentWeight:       cmd.CurrentWeight,
		TargetWeight:        cmd.TargetWeight,
		Height:              cmd.Height,
		Gender:              cmd.Gender,
		TrackMenstrualCycle: cmd.TrackCycle,
	})
	if err != nil {
		return err
	}
	ctx.printBanners(a)
	printUser(ctx, sess.User)
	return nil
}

func printUser(ctx *Context, u models.User) {
	ctx.Printf("Signed in as %s <%s>\n", u.Username, u.Email)
	if u.Level != "" {
		ctx.Printf("  Level: %s  XP: %d\n", u.Level, u.TotalXP)
	}
}
