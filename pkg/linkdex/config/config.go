package config

import (
	"log/slog"

	"github.com/spf13/viper"
)

type Config struct {
	AppEnv           string `mapstructure:"APP_ENV"`
	Port             string `mapstructure:"PORT"`
	DBPath           string `mapstructure:"LINKDEX_DB_PATH"`
	JWTSecret        string `mapstructure:"JWT_SECRET"`
	JWTExpiryMinutes int    `mapstructure:"JWT_EXPIRY_MINUTES"`
}

func Load() (config Config, err error) {
	viper.SetDefault("APP_ENV", "local")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("LINKDEX_DB_PATH", "linkdex.db")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_EXPIRY_MINUTES", 60)

	viper.AutomaticEnv()

	err = viper.Unmarshal(&config)
	if err != nil {
		slog.Error("unable to decode config", "error", err)
		return
	}

	return
}
