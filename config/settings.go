package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LoadSystemConfig reads settings.toml, writing the template on first run.
func LoadSystemConfig() (*SystemConfig, error) {
	cfg := DefaultSystemConfig()
	if err := decodeOrCreate(GetSettingsFilePath(), GenerateSystemConfigTemplate(), cfg); err != nil {
		return nil, fmt.Errorf("system config: %w", err)
	}
	return cfg, nil
}

// LoadUserConfig reads <dataDir>/config.toml, writing the template on first
// run. Fields missing from the file keep their defaults.
func LoadUserConfig(dataDir string) (*UserConfig, error) {
	cfg := DefaultUserConfig()
	if err := decodeOrCreate(UserConfigPath(dataDir), GenerateUserConfigTemplate(), cfg); err != nil {
		return nil, fmt.Errorf("user config: %w", err)
	}
	return cfg, nil
}

// UserConfigPath returns the location of config.toml inside dataDir.
func UserConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.toml")
}

func SaveUserConfig(cfg *UserConfig, dataDir string) error {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	f, err := os.OpenFile(UserConfigPath(dataDir), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create user config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode user config: %w", err)
	}
	return nil
}

// decodeOrCreate decodes path into v. A missing file is created from
// template and v is left at its defaults.
func decodeOrCreate(path, template string, v any) error {
	if !FileExists(path) {
		return writeTemplate(path, template)
	}
	if _, err := toml.DecodeFile(path, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// writeTemplate never overwrites an existing file.
func writeTemplate(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if FileExists(path) {
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
