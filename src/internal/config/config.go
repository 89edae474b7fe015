package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/ipmerge/ipmerge/src/internal/log"
)

// LoadConfig reads a TOML file on top of DefaultConfig. Keys missing from the
// file keep their default values; arrays present in the file replace the defaults.
func LoadConfig(configPath string) (*Config, error) {
	configFile := filepath.Clean(configPath)

	if !filepath.IsAbs(configFile) {
		if path, err := filepath.Abs(configFile); err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %v", err)
		} else {
			configFile = path
		}
	}

	content, err := os.ReadFile(configFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("configuration file not found: %s", configFile)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	config, err := ParseConfig(content)
	if err != nil {
		return nil, err
	}
	config._absConfigFilePath = configFile

	log.Debugf("Configuration file path: %s", configFile)
	log.Debugf("Work directory: %s", config.GetAbsWorkDir())

	return config, nil
}

// ParseConfig decodes TOML content on top of DefaultConfig.
func ParseConfig(content []byte) (*Config, error) {
	config := DefaultConfig()

	dec := toml.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(config); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			log.Errorf("%s", derr.String())
			row, col := derr.Position()
			return nil, fmt.Errorf("failed to parse config file: error at line %d, column %d: %v", row, col, derr)
		}
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) {
			return nil, fmt.Errorf("failed to parse config file: %s", serr.String())
		}
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}

	return config, nil
}

func (c *Config) SerializeConfig() (*bytes.Buffer, error) {
	buf := bytes.Buffer{}
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return &buf, nil
}
