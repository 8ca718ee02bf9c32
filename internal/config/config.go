package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/openmined/agentsync/internal/apply"
	"github.com/openmined/agentsync/internal/reconcile"
	"github.com/openmined/agentsync/internal/utils"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "AGENTSYNC"
	ConfigFileName = "config"
	DotEnvFile     = ".env"
	ClientsFile    = "clients.yaml"
	ManifestFile   = "manifest.db"
)

var (
	home, _          = os.UserHomeDir()
	DefaultConfigDir = filepath.Join(home, ".agentsync")
)

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrNoProjectDir  = errors.New("project directory does not exist")
)

// Config is the resolved runtime configuration shared by all commands.
type Config struct {
	ConfigDir    string   `mapstructure:"config_dir"`
	ProjectDir   string   `mapstructure:"project_dir"`
	ClientsFile  string   `mapstructure:"clients_file"`
	ManifestPath string   `mapstructure:"manifest_path"`
	BackupSuffix string   `mapstructure:"backup_suffix"`
	Link         bool     `mapstructure:"link"`
	Concurrency  int      `mapstructure:"concurrency"`
	LocalClient  string   `mapstructure:"local_client"`
	Strategy     string   `mapstructure:"strategy"`
	Priority     []string `mapstructure:"priority"`
	Ignore       []string `mapstructure:"ignore"`

	HomeDir string `mapstructure:"-"`
	// Path is the config file that was read, if any.
	Path string `mapstructure:"-"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("config_dir", DefaultConfigDir)
	v.SetDefault("project_dir", ".")
	v.SetDefault("backup_suffix", apply.DefaultBackupSuffix)
	v.SetDefault("concurrency", runtime.NumCPU())
	v.SetDefault("local_client", "project")
	v.SetDefault("strategy", string(reconcile.StrategyNewest))
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	cfg.Path = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate resolves paths and fills derived defaults.
func (c *Config) Validate() error {
	var err error

	if c.HomeDir == "" {
		c.HomeDir = home
	}

	if c.ConfigDir, err = utils.ResolvePath(c.ConfigDir); err != nil {
		return fmt.Errorf("%w: config_dir: %w", ErrInvalidConfig, err)
	}

	if c.ProjectDir, err = utils.ResolvePath(c.ProjectDir); err != nil {
		return fmt.Errorf("%w: project_dir: %w", ErrInvalidConfig, err)
	}
	if !utils.DirExists(c.ProjectDir) {
		return fmt.Errorf("%w: %s", ErrNoProjectDir, c.ProjectDir)
	}

	if c.ClientsFile == "" {
		c.ClientsFile = filepath.Join(c.ConfigDir, ClientsFile)
	} else if c.ClientsFile, err = utils.ResolvePath(c.ClientsFile); err != nil {
		return fmt.Errorf("%w: clients_file: %w", ErrInvalidConfig, err)
	}

	if c.ManifestPath == "" {
		c.ManifestPath = filepath.Join(c.ConfigDir, ManifestFile)
	} else if c.ManifestPath, err = utils.ResolvePath(c.ManifestPath); err != nil {
		return fmt.Errorf("%w: manifest_path: %w", ErrInvalidConfig, err)
	}

	if c.BackupSuffix == "" {
		c.BackupSuffix = apply.DefaultBackupSuffix
	}
	if !strings.HasPrefix(c.BackupSuffix, ".") || strings.ContainsAny(c.BackupSuffix, `/\`) {
		return fmt.Errorf("%w: backup_suffix %q must start with a dot and contain no separators", ErrInvalidConfig, c.BackupSuffix)
	}

	if c.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency must not be negative", ErrInvalidConfig)
	}

	if c.Strategy != "" {
		if _, err := reconcile.ParseStrategy(c.Strategy); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	return nil
}

// LoadDotEnv loads KEY=value pairs from dir/.env into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, DotEnvFile)
	if !utils.FileExists(path) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
