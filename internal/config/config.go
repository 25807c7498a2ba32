// Package config holds the YAML configuration of the server.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/simplygenda/backend/internal/grid"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

const (
	defaultListen          = ":8099"
	defaultDataDir         = "/data"
	defaultStaticDir       = "./static"
	defaultSessionTTLHours = 24 * 30
	defaultSnapshotWidth   = 1280
	defaultSnapshotHeight  = 900
	databaseFile           = "simplygenda.db"
)

// DatabaseConfig selects the persistence backend.
type DatabaseConfig struct {
	// Driver is "sqlite3" (default) or "postgres".
	Driver string `yaml:"driver" json:"driver"`
	// DSN is the connection string. For sqlite3 an empty DSN means
	// <data_dir>/simplygenda.db.
	DSN string `yaml:"dsn" json:"dsn"`
}

// SnapshotConfig controls the headless capture of the /calendar page.
type SnapshotConfig struct {
	URL    string `yaml:"url" json:"url"`
	Output string `yaml:"output" json:"output"`
	Width  int    `yaml:"width" json:"width"`
	Height int    `yaml:"height" json:"height"`
}

// Config is the top-level server configuration.
type Config struct {
	Listen    string `yaml:"listen" json:"listen"`
	DataDir   string `yaml:"data_dir" json:"data_dir"`
	StaticDir string `yaml:"static_dir" json:"static_dir"`
	// AvatarDir defaults to <data_dir>/avatars.
	AvatarDir string `yaml:"avatar_dir" json:"avatar_dir"`

	Database DatabaseConfig `yaml:"database" json:"database"`

	// DefaultZoom is the pixels-per-hour of a fresh session.
	DefaultZoom int `yaml:"default_zoom" json:"default_zoom"`

	// CORSOrigins lists the origins allowed to call the API. Empty disables CORS.
	CORSOrigins []string `yaml:"cors_origins" json:"cors_origins"`

	SessionTTLHours int `yaml:"session_ttl_hours" json:"session_ttl_hours"`

	Snapshot SnapshotConfig `yaml:"snapshot" json:"snapshot"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	cfg := &Config{
		Listen:          defaultListen,
		DataDir:         defaultDataDir,
		StaticDir:       defaultStaticDir,
		Database:        DatabaseConfig{Driver: DriverSQLite},
		DefaultZoom:     grid.DefaultZoom,
		CORSOrigins:     []string{},
		SessionTTLHours: defaultSessionTTLHours,
	}
	cfg.Normalize()
	return cfg
}

// Normalize fills in missing values so that partially-filled files still
// behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.DataDir == "" {
		c.DataDir = defaultDataDir
	}
	if c.StaticDir == "" {
		c.StaticDir = defaultStaticDir
	}
	if c.AvatarDir == "" {
		c.AvatarDir = filepath.Join(c.DataDir, "avatars")
	}

	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	case "", "sqlite":
		c.Database.Driver = DriverSQLite
	case "postgresql", "pgx":
		c.Database.Driver = DriverPostgres
	}

	if c.DefaultZoom == 0 {
		c.DefaultZoom = grid.DefaultZoom
	}
	c.DefaultZoom = grid.ClampZoom(c.DefaultZoom)

	if c.CORSOrigins == nil {
		c.CORSOrigins = []string{}
	}
	if c.SessionTTLHours <= 0 {
		c.SessionTTLHours = defaultSessionTTLHours
	}

	if c.Snapshot.URL == "" {
		c.Snapshot.URL = "http://localhost" + c.Listen + "/calendar"
	}
	if c.Snapshot.Output == "" {
		c.Snapshot.Output = filepath.Join(c.DataDir, "calendar.png")
	}
	if c.Snapshot.Width <= 0 {
		c.Snapshot.Width = defaultSnapshotWidth
	}
	if c.Snapshot.Height <= 0 {
		c.Snapshot.Height = defaultSnapshotHeight
	}
}

// Validate reports settings Normalize cannot repair.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	return nil
}

// DatabaseDSN returns the connection string for the configured driver.
func (c *Config) DatabaseDSN() string {
	if c.Database.Driver == DriverSQLite && c.Database.DSN == "" {
		return filepath.Join(c.DataDir, databaseFile)
	}
	return c.Database.DSN
}

// Load reads the configuration at path. A missing file is created with the
// defaults (mode 0600) and the defaults are returned.
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
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically through a temp file and rename. The
// parent directory is created with 0700 and the file ends up 0600.
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

	tmp, err := os.CreateTemp(dir, ".simplygenda-config-*.tmp")
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

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
