package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultEDTURL is the vendor endpoint the scraper targets when the config
// file does not override it. The date= parameter is rewritten per week.
const DefaultEDTURL = "https://ws-edt-cd.wigorservices.net/WebPsDyn.aspx?action=posEDTLMS&serverID=C"

// Config is the top-level application configuration.
type Config struct {
	// EDTURL is the WS-EDT base URL, including any account-specific
	// query parameters. The date parameter is replaced per request.
	EDTURL string `yaml:"edt_url" json:"edt_url"`

	// CalendarName is the X-WR-CALNAME of the published calendar.
	CalendarName string `yaml:"calendar_name" json:"calendar_name"`

	// Weeks is the number of consecutive weeks to scrape, starting at the
	// ISO Monday of the requested date.
	Weeks int `yaml:"weeks" json:"weeks"`

	// OutputDir receives index.html, ical.ics and weeks/<monday>.json.
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// SiteBase is the public base URL of the published site, used for the
	// webcal:// subscribe link on the index page.
	SiteBase string `yaml:"site_base" json:"site_base"`

	// Listen is the HTTP listen address used in serve mode.
	Listen string `yaml:"listen" json:"listen"`

	// RefreshCron is a cron expression; in serve mode the scrape+publish
	// cycle re-runs on this schedule. Empty disables the scheduler.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// UserEnv / PassEnv name the environment variables holding the CAS
	// credentials.
	UserEnv string `yaml:"user_env" json:"user_env"`
	PassEnv string `yaml:"pass_env" json:"pass_env"`

	// DebugPage, when non-empty, is the path where the last fetched HTML
	// page is dumped for inspection.
	DebugPage string `yaml:"debug_page" json:"debug_page"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		EDTURL:       DefaultEDTURL,
		CalendarName: "EDT Wigor",
		Weeks:        1,
		OutputDir:    "./out",
		SiteBase:     "http://localhost:8080",
		Listen:       "127.0.0.1:8080",
		RefreshCron:  "0 */6 * * *",
		UserEnv:      "WIGOR_USER",
		PassEnv:      "WIGOR_PASS",
		DebugPage:    "edt_page.html",
		LogLevel:     "info",
	}
}

// Normalize fills in missing/zero values so that partially-filled configs
// still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.EDTURL == "" {
		c.EDTURL = def.EDTURL
	}
	if c.CalendarName == "" {
		c.CalendarName = def.CalendarName
	}
	if c.Weeks <= 0 {
		c.Weeks = def.Weeks
	}
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	if c.SiteBase == "" {
		c.SiteBase = def.SiteBase
	}
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.UserEnv == "" {
		c.UserEnv = def.UserEnv
	}
	if c.PassEnv == "" {
		c.PassEnv = def.PassEnv
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there (parent
// directory created as needed, 0600 perms) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration atomically (temp file + rename) with
// 0600 permissions; the URL may carry an account hash, so the file is
// treated as sensitive.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".wigorcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
