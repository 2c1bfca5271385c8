package cmd

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/conmale73/myspace-be/internal/cache"
)

type Config struct {
	Apps struct {
		LogLevel string `yaml:"log_level"`
		Rest     struct {
			Port int `yaml:"port"`
			JWT  struct {
				ValidationURL string `yaml:"validation_url"`
				HeaderName    string `yaml:"header_name"`
			} `yaml:"jwt"`
		} `yaml:"rest"`
	} `yaml:"apps"`
	Cache struct {
		Type string `yaml:"type"`
		TTL  int64  `yaml:"ttl"`
	} `yaml:"cache"`
}

func ParseConfig(path string, logger *zap.Logger) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		logger.Error("Failed to open config file", zap.Error(err))
		return nil, fmt.Errorf("error opening file %w", err)
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		logger.Error("Failed to decode config file", zap.Error(err))
		return nil, fmt.Errorf("error decoding file %w", err)
	}

	return &config, nil
}

// DefaultConfig returns the configuration used when no config file is found.
func DefaultConfig() *Config {
	var config Config
	config.Apps.LogLevel = "info"
	config.Apps.Rest.Port = 3000
	config.Apps.Rest.JWT.HeaderName = "Authorization"
	config.Cache.Type = cache.InMemoryCacheType
	config.Cache.TTL = 3600
	return &config
}
