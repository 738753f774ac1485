package game

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds optional path overrides loaded from a TOML file. Zero
// fields leave the corresponding convention untouched.
type Config struct {
	// Game is the game name, as accepted by ParseID.
	Game string `toml:"game"`

	// GamePath is the game's install directory.
	GamePath string `toml:"game_path"`

	// LocalPath is the game's local application data directory.
	LocalPath string `toml:"local_path"`

	// ActivePluginsFile overrides the resolved active-plugin list path.
	ActivePluginsFile string `toml:"active_plugins_file"`
}

// LoadConfig reads a Config from a TOML file. A missing file is not an
// error and yields a nil Config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Settings constructs game settings from the config. The Game and
// GamePath fields must be set; LocalPath and ActivePluginsFile apply
// when present.
func (c *Config) Settings() (*Settings, error) {
	id, err := ParseID(c.Game)
	if err != nil {
		return nil, err
	}

	s, err := NewSettings(id, c.GamePath, c.LocalPath)
	if err != nil {
		return nil, err
	}
	if c.ActivePluginsFile != "" {
		s.activePluginsFile = c.ActivePluginsFile
	}
	return s, nil
}
