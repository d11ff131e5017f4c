package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/julianstephens/nutrisnap/internal/constants"
)

// Flags are the global options shared by every command. Each can also be set
// through the environment or a .env file.
type Flags struct {
	Config    string        `help:"Preferences file (.db for SQLite, .json for JSON)." default:"${config_path}" env:"NUTRISNAP_CONFIG"`
	APIURL    string        `name:"api-url" help:"NutriVision API base URL." env:"NUTRISNAP_API_URL"`
	Debug     bool          `help:"Enable debug logging." env:"NUTRISNAP_DEBUG"`
	CameraCmd string        `name:"camera-cmd" help:"Command that streams MJPEG frames to stdout." default:"${camera_cmd}" env:"NUTRISNAP_CAMERA_CMD"`
	Timeout   time.Duration `help:"HTTP request timeout." default:"60s" env:"NUTRISNAP_TIMEOUT"`
}

// Vars are the kong interpolation values referenced by Flags
func Vars() map[string]string {
	return map[string]string{
		"config_path": constants.DefaultConfigPath,
		"camera_cmd":  constants.DefaultCameraCmd,
		"version":     constants.Version,
	}
}

// Config holds resolved values
type Config struct {
	APIURL    string
	StorePath string
	ConfigDir string
	Debug     bool
	CameraCmd string
	Timeout   time.Duration
	// APIURLSet is true when the URL came from a flag or the environment
	// rather than the built-in default.
	APIURLSet bool
}

var homeDir = os.UserHomeDir

// ExpandPath replaces a leading ~ with the user's home directory
func ExpandPath(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := homeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// LoadDotEnv loads .env from the working directory and the default config
// directory. Variables already present in the environment win. Missing files
// are skipped.
func LoadDotEnv() ([]string, error) {
	candidates := []string{".env"}
	if p, err := ExpandPath(constants.DefaultConfigPath); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(p), ".env"))
	}

	var loaded []string
	for _, f := range candidates {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return loaded, fmt.Errorf("failed to load %s: %w", f, err)
		}
		loaded = append(loaded, f)
	}
	return loaded, nil
}

// Resolve validates the flags and fills in defaults
func (f Flags) Resolve() (Config, error) {
	path := f.Config
	if path == "" {
		path = constants.DefaultConfigPath
	}
	path, err := ExpandPath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIURL:    constants.DefaultAPIURL,
		StorePath: path,
		ConfigDir: filepath.Dir(path),
		Debug:     f.Debug,
		CameraCmd: strings.TrimSpace(f.CameraCmd),
		Timeout:   f.Timeout,
	}
	if f.APIURL != "" {
		if err := ValidateURL(f.APIURL); err != nil {
			return Config{}, err
		}
		cfg.APIURL = strings.TrimRight(f.APIURL, "/")
		cfg.APIURLSet = true
	}
	if cfg.Timeout < 0 {
		return Config{}, fmt.Errorf("timeout must not be negative, got %s", cfg.Timeout)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = constants.DefaultHTTPTimeout
	}
	if cfg.CameraCmd == "" {
		cfg.CameraCmd = constants.DefaultCameraCmd
	}
	return cfg, nil
}

// WithRemembered applies the API URL saved in preferences unless one was
// given explicitly
func (c Config) WithRemembered(apiURL string) Config {
	if c.APIURLSet || apiURL == "" {
		return c
	}
	if ValidateURL(apiURL) != nil {
		return c
	}
	c.APIURL = strings.TrimRight(apiURL, "/")
	return c
}

// ValidateURL accepts absolute http and https URLs
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid API URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid API URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid API URL %q: missing host", raw)
	}
	return nil
}
