package providers

import (
	"fmt"
	"igmetrics/internal/structures"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.SetDefault("storage.driver", "memory")
	viper.SetDefault("storage.lock.driver", "local")
	viper.SetDefault("storage.lock.ttl", "30s")
	viper.SetDefault("screenshots.driver", "local")
	viper.SetDefault("screenshots.presignTTL", "1h")
	viper.SetDefault("acquisition.timeout", "30s")
	viper.SetDefault("acquisition.attempts", 2)
	viper.SetDefault("llm.timeout", "60s")
	viper.SetDefault("llm.maxTokens", 3000)
	viper.SetDefault("cache.ttl", "5m")
	viper.SetDefault("webServer.maxUploadBytes", 10<<20)

	viper.BindEnv("logger.level", "IGM_LOG_LEVEL")
	viper.BindEnv("persistence.saveInterval", "IGM_SAVE_INTERVAL")
	viper.BindEnv("cache.enabled", "IGM_CACHE_ENABLED")
	viper.BindEnv("cache.size", "IGM_CACHE_SIZE")
	viper.BindEnv("storage.driver", "IGM_STORAGE_DRIVER")
	viper.BindEnv("storage.databaseURL", "IGM_DATABASE_URL")
	viper.BindEnv("storage.lock.driver", "IGM_LOCK_DRIVER")
	viper.BindEnv("storage.lock.redisAddr", "IGM_REDIS_ADDR")
	viper.BindEnv("storage.lock.password", "IGM_REDIS_PASSWORD")
	viper.BindEnv("screenshots.driver", "IGM_SCREENSHOTS_DRIVER")
	viper.BindEnv("screenshots.accessKey", "IGM_S3_ACCESS_KEY")
	viper.BindEnv("screenshots.secretKey", "IGM_S3_SECRET_KEY")
	viper.BindEnv("acquisition.ocrURL", "IGM_OCR_URL")
	viper.BindEnv("acquisition.profileURL", "IGM_PROFILE_URL")
	viper.BindEnv("llm.enabled", "IGM_LLM_ENABLED")
	viper.BindEnv("llm.apiKey", "IGM_LLM_API_KEY")
	viper.BindEnv("llm.model", "IGM_LLM_MODEL")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "InstagramMetricsDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
