package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/nutrisnap/internal/constants"
)

func fakeHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	old := homeDir
	homeDir = func() (string, error) { return home, nil }
	t.Cleanup(func() { homeDir = old })
	return home
}

func TestExpandPath(t *testing.T) {
	home := fakeHome(t)
	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/.config/nutrisnap/x.db", filepath.Join(home, ".config/nutrisnap/x.db")},
		{"/tmp/x.db", "/tmp/x.db"},
		{"relative.json", "relative.json"},
		{"~other/x.db", "~other/x.db"},
	}
	for _, tt := range tests {
		got, err := ExpandPath(tt.in)
		if err != nil {
			t.Fatalf("ExpandPath(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveDefaults(t *testing.T) {
	home := fakeHome(t)
	cfg, err := Flags{Config: constants.DefaultConfigPath}.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIURL != constants.DefaultAPIURL || cfg.APIURLSet {
		t.Errorf("APIURL = %q (set=%v)", cfg.APIURL, cfg.APIURLSet)
	}
	if want := filepath.Join(home, ".config", "nutrisnap"); cfg.ConfigDir != want {
		t.Errorf("ConfigDir = %q, want %q", cfg.ConfigDir, want)
	}
	if cfg.Timeout != constants.DefaultHTTPTimeout {
		t.Errorf("Timeout = %s", cfg.Timeout)
	}
	if cfg.CameraCmd != constants.DefaultCameraCmd {
		t.Errorf("CameraCmd = %q", cfg.CameraCmd)
	}
}

func TestResolveValidation(t *testing.T) {
	fakeHome(t)
	tests := []struct {
		name    string
		flags   Flags
		wantErr bool
		wantURL string
	}{
		{"explicit url", Flags{APIURL: "https://api.example.com/api/"}, false, "https://api.example.com/api"},
		{"bad scheme", Flags{APIURL: "ftp://api.example.com"}, true, ""},
		{"no host", Flags{APIURL: "http://"}, true, ""},
		{"negative timeout", Flags{Timeout: -time.Second}, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := tt.flags.Resolve()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cfg.APIURL != tt.wantURL {
				t.Errorf("APIURL = %q, want %q", cfg.APIURL, tt.wantURL)
			}
		})
	}
}

func TestWithRemembered(t *testing.T) {
	fakeHome(t)
	cfg, _ := Flags{}.Resolve()
	if got := cfg.WithRemembered("http://remembered:5001/api").APIURL; got != "http://remembered:5001/api" {
		t.Errorf("remembered url not applied: %q", got)
	}
	if got := cfg.WithRemembered("not a url").APIURL; got != constants.DefaultAPIURL {
		t.Errorf("invalid remembered url applied: %q", got)
	}

	explicit, _ := Flags{APIURL: "http://flag:1/api"}.Resolve()
	if got := explicit.WithRemembered("http://remembered:5001/api").APIURL; got != "http://flag:1/api" {
		t.Errorf("explicit url overridden: %q", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	home := fakeHome(t)
	work := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	if err := os.WriteFile(".env", []byte("NUTRISNAP_API_URL=http://from-dotenv/api\nNUTRISNAP_DEBUG=true\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfgDir := filepath.Join(home, ".config", "nutrisnap")
	if err := os.MkdirAll(cfgDir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, ".env"), []byte("NUTRISNAP_CAMERA_CMD=cam --mjpeg\n"), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("NUTRISNAP_DEBUG", "false")
	t.Setenv("NUTRISNAP_API_URL", "")
	os.Unsetenv("NUTRISNAP_API_URL")
	t.Setenv("NUTRISNAP_CAMERA_CMD", "")
	os.Unsetenv("NUTRISNAP_CAMERA_CMD")

	loaded, err := LoadDotEnv()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 {
		t.Errorf("loaded = %v, want both files", loaded)
	}
	if got := os.Getenv("NUTRISNAP_API_URL"); got != "http://from-dotenv/api" {
		t.Errorf("NUTRISNAP_API_URL = %q", got)
	}
	if got := os.Getenv("NUTRISNAP_DEBUG"); got != "false" {
		t.Errorf("real environment overridden: NUTRISNAP_DEBUG = %q", got)
	}
	if got := os.Getenv("NUTRISNAP_CAMERA_CMD"); got != "cam --mjpeg" {
		t.Errorf("NUTRISNAP_CAMERA_CMD = %q", got)
	}
}
