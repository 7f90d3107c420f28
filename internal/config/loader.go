package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadSisyphus loads the Sisyphus configuration.
// Search order: customPath -> ~/.sisyphus/configs/sisyphus.yaml ->
// ./configs/sisyphus.yaml -> embedded default -> hardcoded default.
//
// Files are decoded over the defaults, so a file only needs the fields it
// changes. Entries under keys are added to the default key map.
func LoadSisyphus(customPath string) (SisyphusConfig, error) {
	// Try custom path first
	if customPath != "" {
		cfg, err := decodeFile(customPath)
		if err != nil {
			return DefaultSisyphusConfig(), err
		}
		return cfg, nil
	}

	// Try user config directory, then local configs directory
	for _, path := range []string{userConfigPath("sisyphus.yaml"), filepath.Join("configs", "sisyphus.yaml")} {
		if path == "" {
			continue
		}
		if cfg, err := decodeFile(path); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := decode(defaultSisyphusYAML)
	if err != nil {
		return DefaultSisyphusConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

func decodeFile(path string) (SisyphusConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SisyphusConfig{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := decode(data)
	if err != nil {
		return SisyphusConfig{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

func decode(data []byte) (SisyphusConfig, error) {
	cfg := DefaultSisyphusConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports the first inconsistency in the configuration.
func (c SisyphusConfig) Validate() error {
	switch {
	case c.Board.Rows <= 0 || c.Board.Cols <= 0:
		return fmt.Errorf("board must be at least 1x1, got %dx%d", c.Board.Rows, c.Board.Cols)
	case c.Board.Symbols == "":
		return errors.New("board symbols must not be empty")
	case len(c.Fade.LadderMS) == 0:
		return errors.New("fade ladder must not be empty")
	case c.Loss.RowMS <= 0:
		return fmt.Errorf("loss row_ms must be positive, got %d", c.Loss.RowMS)
	case c.Title.FadeEndRow <= c.Title.FadeStartRow:
		return fmt.Errorf("title fade rows must increase, got %d..%d", c.Title.FadeStartRow, c.Title.FadeEndRow)
	case c.Scores.Capacity < 0:
		return fmt.Errorf("scores capacity must not be negative, got %d", c.Scores.Capacity)
	}
	for i, ms := range c.Fade.LadderMS {
		if ms <= 0 {
			return fmt.Errorf("fade ladder step %d must be positive, got %d", i, ms)
		}
	}
	for key, sym := range c.Keys {
		if len([]rune(key)) != 1 {
			return fmt.Errorf("key %q must be a single character", key)
		}
		if sym != "" && (len([]rune(sym)) != 1 || !strings.Contains(c.Board.Symbols, sym)) {
			return fmt.Errorf("key %q maps to %q, which is not a board symbol", key, sym)
		}
	}
	return nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sisyphus", "configs", filename)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: cannot expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
