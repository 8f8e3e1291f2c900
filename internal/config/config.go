package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/KianBaghai/fantasy-predictor/internal/models"
)

// Config is the full league and simulation configuration surface.
type Config struct {
	// League settings
	League LeagueConfig `toml:"league"`

	// Per-position roster targets and valuation parameters
	Positions map[string]PositionConfig `toml:"positions"`

	// Simulation pacing
	Pacing PacingConfig `toml:"pacing"`
}

// LeagueConfig contains the draft-wide settings.
type LeagueConfig struct {
	Ruleset   string `toml:"ruleset"`    // STANDARD, HALF_PPR or PPR
	Teams     int    `toml:"teams"`      // Number of franchises
	Rounds    int    `toml:"rounds"`     // Picks per franchise
	RosterCap int    `toml:"roster_cap"` // Hard per-team roster limit
	UserSlot  int    `toml:"user_slot"`  // 1-based draft position of the human
	AutoPick  bool   `toml:"auto_pick"`  // Auto-draft the user's picks
}

// PositionConfig contains one position's targets and valuation inputs.
type PositionConfig struct {
	Min             int     `toml:"min"`              // Roster floor the opponents chase
	Max             int     `toml:"max"`              // Roster ceiling the engine enforces
	Weight          float64 `toml:"weight"`           // Scarcity multiplier on VOR
	ReplacementRank int     `toml:"replacement_rank"` // Rank defining replacement level
}

// PacingConfig maps simulation speed tiers to automated-pick delays.
type PacingConfig struct {
	Speed  string `toml:"speed"`  // slow, medium or fast
	Slow   string `toml:"slow"`   // Delay per tier (e.g. "2s")
	Medium string `toml:"medium"`
	Fast   string `toml:"fast"`
}

// Default returns a 12-team, 15-round half-PPR league.
func Default() *Config {
	return &Config{
		League: LeagueConfig{
			Ruleset:   "HALF_PPR",
			Teams:     12,
			Rounds:    15,
			RosterCap: 15,
			UserSlot:  1,
			AutoPick:  false,
		},
		Positions: map[string]PositionConfig{
			"QB": {Min: 1, Max: 2, Weight: 0.80, ReplacementRank: 12},
			"RB": {Min: 2, Max: 6, Weight: 1.00, ReplacementRank: 24},
			"WR": {Min: 2, Max: 6, Weight: 0.95, ReplacementRank: 24},
			"TE": {Min: 1, Max: 2, Weight: 0.85, ReplacementRank: 12},
		},
		Pacing: PacingConfig{
			Speed:  "medium",
			Slow:   "3s",
			Medium: "1s",
			Fast:   "250ms",
		},
	}
}

// Load reads a TOML config file, layering it over the defaults. A missing
// file is not an error; the defaults are returned as-is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a TOML file.
func Save(path string, cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the constraints the engine relies on.
func (c *Config) Validate() error {
	if c.League.Teams < 2 {
		return fmt.Errorf("league.teams must be at least 2, got %d", c.League.Teams)
	}
	if c.League.Rounds < 1 {
		return fmt.Errorf("league.rounds must be at least 1, got %d", c.League.Rounds)
	}
	if c.League.UserSlot < 1 || c.League.UserSlot > c.League.Teams {
		return fmt.Errorf("league.user_slot must be in 1..%d, got %d", c.League.Teams, c.League.UserSlot)
	}
	if c.League.RosterCap < c.League.Rounds {
		return fmt.Errorf("league.roster_cap %d cannot be below league.rounds %d", c.League.RosterCap, c.League.Rounds)
	}
	for name, pc := range c.Positions {
		if !models.Position(name).Valid() {
			return fmt.Errorf("unknown position %q in config", name)
		}
		if pc.Min > pc.Max {
			return fmt.Errorf("position %s: min %d exceeds max %d", name, pc.Min, pc.Max)
		}
	}
	return nil
}

// PickDelay resolves the active speed tier to a duration. Unparsable or
// unknown tiers fall back to one second.
func (c *Config) PickDelay() time.Duration {
	var raw string
	switch c.Pacing.Speed {
	case "slow":
		raw = c.Pacing.Slow
	case "fast":
		raw = c.Pacing.Fast
	default:
		raw = c.Pacing.Medium
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// DelayFor resolves an arbitrary speed tier name, for the pacing API.
func (c *Config) DelayFor(speed string) (time.Duration, bool) {
	var raw string
	switch speed {
	case "slow":
		raw = c.Pacing.Slow
	case "medium":
		raw = c.Pacing.Medium
	case "fast":
		raw = c.Pacing.Fast
	default:
		return 0, false
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return time.Second, true
	}
	return d, true
}
