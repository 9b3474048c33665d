/**
 * @description
 * This package handles the configuration management for the ledger-service.
 * It uses the Viper library to read configuration from environment
 * variables, with an optional .env file, providing a centralized way to
 * manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the ledger-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort              string `mapstructure:"SERVER_PORT"`
	DatabaseURL             string `mapstructure:"DATABASE_URL"`
	RedisURL                string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix    string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL             string `mapstructure:"RABBITMQ_URL"`
	LedgerEventExchange     string `mapstructure:"LEDGER_EVENT_EXCHANGE"`
	JWTSecret               string `mapstructure:"JWT_SECRET"`
	JWTIssuer               string `mapstructure:"JWT_ISSUER"`
	JWTExpiryMinutes        int    `mapstructure:"JWT_EXPIRY_MINUTES"`
	RefreshTokenTTLHours    int    `mapstructure:"REFRESH_TOKEN_TTL_HOURS"`
	InternalAPIKey          string `mapstructure:"INTERNAL_API_KEY"`
	WithdrawRateLimitPerMin int    `mapstructure:"WITHDRAW_RATE_LIMIT_PER_MINUTE"`
	RepayRateLimitPerMin    int    `mapstructure:"REPAY_RATE_LIMIT_PER_MINUTE"`
}

// LoadConfig reads configuration from environment variables from the given
// path. It uses Viper to automatically bind environment variables to the
// Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "ledger:rate_limit")
	viper.SetDefault("LEDGER_EVENT_EXCHANGE", "esaving.events")
	viper.SetDefault("JWT_ISSUER", "esaving")
	viper.SetDefault("JWT_EXPIRY_MINUTES", 120)
	viper.SetDefault("REFRESH_TOKEN_TTL_HOURS", 24)
	viper.SetDefault("WITHDRAW_RATE_LIMIT_PER_MINUTE", 0)
	viper.SetDefault("REPAY_RATE_LIMIT_PER_MINUTE", 0)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("LEDGER_EVENT_EXCHANGE")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("JWT_ISSUER")
	_ = viper.BindEnv("JWT_EXPIRY_MINUTES")
	_ = viper.BindEnv("REFRESH_TOKEN_TTL_HOURS")
	_ = viper.BindEnv("INTERNAL_API_KEY", "INTERNAL_API_KEY", "LEDGER_SERVICE_INTERNAL_API_KEY")
	_ = viper.BindEnv("WITHDRAW_RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("REPAY_RATE_LIMIT_PER_MINUTE")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
		err = nil
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	config.InternalAPIKey = strings.TrimSpace(config.InternalAPIKey)
	if config.InternalAPIKey == "" {
		config.InternalAPIKey = strings.TrimSpace(os.Getenv("LEDGER_SERVICE_INTERNAL_API_KEY"))
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "ledger:rate_limit"
	}

	if config.JWTExpiryMinutes <= 0 {
		config.JWTExpiryMinutes = 120
	}
	if config.RefreshTokenTTLHours <= 0 {
		config.RefreshTokenTTLHours = 24
	}
	if config.WithdrawRateLimitPerMin < 0 {
		log.Printf("level=warn component=config msg=\"negative withdraw rate limit configured; disabling\" limit=%d", config.WithdrawRateLimitPerMin)
		config.WithdrawRateLimitPerMin = 0
	}
	if config.RepayRateLimitPerMin < 0 {
		log.Printf("level=warn component=config msg=\"negative repay rate limit configured; disabling\" limit=%d", config.RepayRateLimitPerMin)
		config.RepayRateLimitPerMin = 0
	}

	return
}
