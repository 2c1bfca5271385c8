package main

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/conmale73/myspace-be/cmd"
	"github.com/conmale73/myspace-be/internal/rest"
	"github.com/conmale73/myspace-be/internal/utils"
)

const defaultConfigPath = "config.yaml"

func main() {
	bootLogger, _ := zap.NewDevelopment()
	defer bootLogger.Sync()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}
	config, err := cmd.ParseConfig(configPath, bootLogger)
	if err != nil {
		bootLogger.Warn("Falling back to default config", zap.Error(err))
		config = cmd.DefaultConfig()
	}

	level, err := zapcore.ParseLevel(config.Apps.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	logger, err := utils.NewCustomLogger(level, false)
	if err != nil {
		bootLogger.Fatal("Failed to create logger", zap.Error(err))
	}
	defer logger.Sync()

	restApp := rest.NewRest(&rest.Config{
		Port:             config.Apps.Rest.Port,
		JwtHeaderName:    config.Apps.Rest.JWT.HeaderName,
		JwtValidationURL: config.Apps.Rest.JWT.ValidationURL,
		CacheType:        config.Cache.Type,
		CacheTTL:         config.Cache.TTL,
		Logger:           logger,
	})

	appsManager := cmd.NewAppsManager(logger)

	appsManager.Register(cmd.RestApp, restApp)
	appsManager.RunAll()
	appsManager.WaitForShutdown()
}
