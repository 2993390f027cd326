package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/hochfrequenz/judgerun/internal/domain"
)

// LocalConfigName is the project config file searched for from the
// working directory upwards
const LocalConfigName = "judgerun.toml"

// Defaults for a run
const (
	DefaultInPattern   = "in/" + domain.TaskPlaceholder + domain.TestPlaceholder + ".in"
	DefaultOutPattern  = "out/" + domain.TaskPlaceholder + domain.TestPlaceholder + ".out"
	DefaultTimeoutSecs = 5
	DefaultParallel    = 5
)

// Config holds all application configuration
type Config struct {
	Run    RunConfig    `toml:"run" yaml:"run"`
	Notify NotifyConfig `toml:"notify" yaml:"notify"`
}

// RunConfig is the read-only configuration of one test run
type RunConfig struct {
	Task        string   `toml:"-" yaml:"-" validate:"required"`
	Command     string   `toml:"command,omitempty" yaml:"command,omitempty"`
	Args        []string `toml:"args,omitempty" yaml:"args,omitempty"`
	InPattern   string   `toml:"in_pattern" yaml:"in_pattern" validate:"required"`
	OutPattern  string   `toml:"out_pattern" yaml:"out_pattern" validate:"required"`
	TimeoutSecs int      `toml:"timeout" yaml:"timeout" validate:"gt=0,lte=86400"`
	Parallel    int      `toml:"parallel" yaml:"parallel" validate:"min=1"`
	Dir         string   `toml:"dir,omitempty" yaml:"dir,omitempty"`
}

// NotifyConfig selects where finished runs are announced
type NotifyConfig struct {
	Desktop      bool   `toml:"desktop" yaml:"desktop"`
	SlackWebhook string `toml:"slack_webhook,omitempty" yaml:"slack_webhook,omitempty"`
}

// Enabled reports whether any notifier is configured
func (c NotifyConfig) Enabled() bool {
	return c.Desktop || c.SlackWebhook != ""
}

// Default returns a Config with the stock patterns, a 5 second timeout and
// 5 parallel tests
func Default() *Config {
	return &Config{
		Run: RunConfig{
			InPattern:   DefaultInPattern,
			OutPattern:  DefaultOutPattern,
			TimeoutSecs: DefaultTimeoutSecs,
			Parallel:    DefaultParallel,
		},
	}
}

// Timeout returns the per-test wall-clock limit
func (c RunConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "-" || name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	return v
}

// Validate checks the invariants of a run configuration
func (c RunConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &domain.ConfigError{Field: fe.Field(), Message: describe(fe)}
		}
		return &domain.ConfigError{Err: err}
	}
	if !strings.Contains(c.InPattern, domain.TestPlaceholder) {
		return &domain.ConfigError{
			Field:   "in_pattern",
			Message: fmt.Sprintf("%s not found in %q", domain.TestPlaceholder, c.InPattern),
		}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// Load reads configuration from a TOML or YAML file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, &domain.ConfigError{Field: path, Err: err}
	}

	cfg.Run.Dir = ExpandPath(cfg.Run.Dir)
	return cfg, nil
}

// LoadWithLocalFallback loads the explicit path if given, else the nearest
// judgerun.toml, else the defaults
func LoadWithLocalFallback(explicitPath string) (*Config, error) {
	if explicitPath != "" {
		return Load(explicitPath)
	}
	if local := FindLocalConfig(); local != "" {
		return Load(local)
	}
	return Default(), nil
}

// FindLocalConfig walks from the working directory to the filesystem root
// looking for judgerun.toml. Returns "" when none exists.
func FindLocalConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, LocalConfigName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Save writes the config as TOML
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(c); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
