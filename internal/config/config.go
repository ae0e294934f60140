package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/geo-placer/pkg/core/placement"
)

// DefaultServerAddr is used by serve when neither config nor flag sets an address
const DefaultServerAddr = ":8080"

const configFileName = "geo_placer_config.yaml"

// CapacityConfig overrides individual capacity policy values. Unset fields keep the defaults.
type CapacityConfig struct {
	IMCUHardCap           *int     `yaml:"imcuHardCap,omitempty" validate:"omitempty,min=1"`
	IMCUSoftTarget        *int     `yaml:"imcuSoftTarget,omitempty" validate:"omitempty,min=0"`
	IMCUOverTargetPenalty *float64 `yaml:"imcuOverTargetPenalty,omitempty" validate:"omitempty,min=0"`
	SoftCap               *int     `yaml:"softCap,omitempty" validate:"omitempty,min=1"`
	MaxNewBeforeSpread    *int     `yaml:"maxNewBeforeSpread,omitempty" validate:"omitempty,min=1"`
	MaxCensusGap          *int     `yaml:"maxCensusGap,omitempty" validate:"omitempty,min=0"`
	CensusWeight          *float64 `yaml:"censusWeight,omitempty" validate:"omitempty,min=0"`
	NewAssignmentWeight   *float64 `yaml:"newAssignmentWeight,omitempty" validate:"omitempty,min=0"`
	PilingOnThreshold     *int     `yaml:"pilingOnThreshold,omitempty" validate:"omitempty,min=0"`
	PilingOnPenalty       *float64 `yaml:"pilingOnPenalty,omitempty" validate:"omitempty,min=0"`
	OverflowThreshold     *int     `yaml:"overflowThreshold,omitempty" validate:"omitempty,min=0"`
}

// TeamClosure closes teams on every date the rule produces
type TeamClosure struct {
	RRule string `yaml:"rrule" validate:"required"`
	Teams []int  `yaml:"teams" validate:"required,min=1,dive,min=1,max=15"`
	Note  string `yaml:"note,omitempty"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty" validate:"omitempty,hostname_port"`
}

// Config represents the application configuration
type Config struct {
	Capacity      CapacityConfig `yaml:"capacity,omitempty"`
	IMCUTeams     []int          `yaml:"imcuTeams,omitempty" validate:"omitempty,dive,min=1,max=15"`
	OverflowTeams []int          `yaml:"overflowTeams,omitempty" validate:"omitempty,dive,min=1,max=15"`
	TeamClosures  []TeamClosure  `yaml:"teamClosures,omitempty" validate:"dive"`
	Server        ServerConfig   `yaml:"server,omitempty"`
	LogDir        string         `yaml:"logDir,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Default returns the configuration used when no config file exists
func Default() *Config {
	return &Config{}
}

// Load loads and validates the configuration for an environment.
// It looks for <env>_geo_placer_config.yaml then geo_placer_config.yaml, in the current
// directory first and then the user's home directory. No file means defaults.
func Load(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}
	if configPath == "" {
		return Default(), nil
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct, rrule syntax and the resulting capacity policy
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, closure := range cfg.TeamClosures {
		if _, err := rrule.StrToRRule(closure.RRule); err != nil {
			return fmt.Errorf("invalid rrule in teamClosures[%d]: %w", i, err)
		}
	}

	if err := cfg.Policy().Validate(); err != nil {
		return fmt.Errorf("invalid capacity settings: %w", err)
	}

	return nil
}

// Policy returns the default capacity policy with the configured overrides applied
func (c *Config) Policy() placement.CapacityPolicy {
	policy := placement.DefaultCapacityPolicy()
	if len(c.IMCUTeams) > 0 {
		policy.IMCUTeams = toTeamIDs(c.IMCUTeams)
	}
	if len(c.OverflowTeams) > 0 {
		policy.OverflowTeams = toTeamIDs(c.OverflowTeams)
	}

	overrides := c.Capacity
	setInt(&policy.IMCUHardCap, overrides.IMCUHardCap)
	setInt(&policy.IMCUSoftTarget, overrides.IMCUSoftTarget)
	setFloat(&policy.IMCUOverTargetPenalty, overrides.IMCUOverTargetPenalty)
	setInt(&policy.SoftCap, overrides.SoftCap)
	setInt(&policy.MaxNewBeforeSpread, overrides.MaxNewBeforeSpread)
	setInt(&policy.MaxCensusGap, overrides.MaxCensusGap)
	setFloat(&policy.CensusWeight, overrides.CensusWeight)
	setFloat(&policy.NewAssignmentWeight, overrides.NewAssignmentWeight)
	setInt(&policy.PilingOnThreshold, overrides.PilingOnThreshold)
	setFloat(&policy.PilingOnPenalty, overrides.PilingOnPenalty)
	setInt(&policy.OverflowThreshold, overrides.OverflowThreshold)

	return policy
}

// ServerAddr returns the configured API address or the default
func (c *Config) ServerAddr() string {
	if c.Server.Addr != "" {
		return c.Server.Addr
	}
	return DefaultServerAddr
}

// ScheduledClosure is a closure rule that applies on a given date
type ScheduledClosure struct {
	Teams []placement.TeamID
	Note  string
	RRule string
}

// ClosuresOn returns the closure rules with an occurrence on date's calendar day
func (c *Config) ClosuresOn(date time.Time) ([]ScheduledClosure, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	searchStart := day.AddDate(0, 0, -7)

	var result []ScheduledClosure
	var errs []error
	for i, closure := range c.TeamClosures {
		rule, err := rrule.StrToRRule(closure.RRule)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to parse rrule for teamClosures[%d]: %w", i, err))
			continue
		}

		// Rules carry no start date of their own; anchor them just before the day we ask about
		rule.DTStart(searchStart)
		if len(rule.Between(day, dayEnd, true)) == 0 {
			continue
		}

		result = append(result, ScheduledClosure{
			Teams: toTeamIDs(closure.Teams),
			Note:  closure.Note,
			RRule: closure.RRule,
		})
	}

	return result, errors.Join(errs...)
}

// ClosedTeams returns the union of the teams named by closures
func ClosedTeams(closures []ScheduledClosure) placement.TeamSet {
	closed := placement.NewTeamSet()
	for _, closure := range closures {
		closed = closed.Union(placement.NewTeamSet(closure.Teams...))
	}
	return closed
}

func toTeamIDs(ids []int) []placement.TeamID {
	teams := make([]placement.TeamID, 0, len(ids))
	for _, id := range ids {
		teams = append(teams, placement.TeamID(id))
	}
	return teams
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// findConfigFile searches the current directory and then the home directory.
// The environment-specific file wins over the shared one. Returns "" when nothing is found.
func findConfigFile(env string) (string, error) {
	names := []string{configFileName}
	if env != "" {
		names = []string{fmt.Sprintf("%s_%s", env, configFileName), configFileName}
	}

	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	for _, name := range names {
		homeConfigPath := filepath.Join(homeDir, name)
		if _, err := os.Stat(homeConfigPath); err == nil {
			return homeConfigPath, nil
		}
	}

	return "", nil
}
