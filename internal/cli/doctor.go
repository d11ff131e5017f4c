package cli

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/julianstephens/nutrisnap/internal/app"
	"github.com/julianstephens/nutrisnap/internal/keyring"
	"github.com/julianstephens/nutrisnap/internal/media"
	"github.com/julianstephens/nutrisnap/internal/storage"
)

type DoctorCmd struct {
	Timeout time.Duration `help:"How long to wait for the backend." default:"5s"`
}

// keyringAvailable is swapped in tests
var keyringAvailable = keyring.IsAvailable

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	a, err := ctx.Open(app.WithoutKeyring())
	if err != nil {
		ctx.Printf("❌ Preferences store: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		return fmt.Errorf("one or more health checks failed")
	}
	defer a.Close()

	hasError := false

	// Check 1: backend reachable
	if err := checkBackend(a, cmd.Timeout); err != nil {
		ctx.Printf("❌ Backend %s: FAIL\n", a.Client.BaseURL())
		ctx.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.Printf("✓ Backend %s: OK\n", a.Client.BaseURL())
	}

	// Check 2: preferences store
	if err := checkPreferences(a.Prefs); err != nil {
		ctx.Printf("❌ Preferences store: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.Printf("✓ Preferences store %s: OK\n", a.Prefs.GetConfigPath())
	}

	// Check 3: keyring (warning only)
	if keyringAvailable() {
		ctx.Printf("✓ OS keyring: OK\n")
	} else {
		ctx.Printf("⚠ OS keyring: WARNING\n")
		ctx.Printf("   Sessions cannot be remembered between runs\n")
	}

	// Check 4: camera command (warning only)
	if err := checkCamera(a.Config.CameraCmd); err != nil {
		ctx.Printf("⚠ Camera: WARNING\n")
		ctx.Printf("   %v; photos can still be picked from files\n", err)
	} else {
		ctx.Printf("✓ Camera command: OK\n")
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkBackend(a *app.App, timeout time.Duration) error {
	c, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	res, err := a.Client.Health(c)
	if err != nil {
		return err
	}
	if !strings.EqualFold(res.Status, "ok") {
		return fmt.Errorf("backend reports status %q", res.Status)
	}
	return nil
}

func checkPreferences(p storage.Provider) error {
	if _, err := p.GetPreferences(); err != nil {
		return fmt.Errorf("failed to read preferences: %w", err)
	}
	sq, ok := p.(*storage.SQLiteStore)
	if !ok {
		return nil
	}
	current, latest, err := sq.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current != latest {
		return fmt.Errorf("schema version %d, expected %d", current, latest)
	}
	return nil
}

func checkCamera(cmdline string) error {
	dev := media.ParseCommand(cmdline)
	if len(dev.Args) == 0 {
		return fmt.Errorf("no camera command configured")
	}
	if _, err := exec.LookPath(dev.Args[0]); err != nil {
		return fmt.Errorf("%s not found", dev.Args[0])
	}
	return nil
}
