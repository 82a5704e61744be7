package config

import (
	"errors"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	JWT    JWTConfig
	Room   RoomConfig
}

type ServerConfig struct {
	Address string
}

type JWTConfig struct {
	Secret string
}

type RoomConfig struct {
	MaxPlayers           int
	GracePeriodSeconds   int
	SweepIntervalSeconds int
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./pkg/config")
	viper.AddConfigPath(".")

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("room.maxplayers", 16)
	viper.SetDefault("room.graceperiodseconds", 300)
	viper.SetDefault("room.sweepintervalseconds", 60)

	// The yaml file is optional; defaults cover a bare checkout
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
