package models

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type KafkaConfig struct {
	Enabled    bool   `mapstructure:"kafka_enabled"`
	BrokerList string `mapstructure:"kafka_broker_list"`
	Topic      string `mapstructure:"kafka_topic"`
}

type CloudConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Region  string `mapstructure:"region"`
	Bucket  string `mapstructure:"bucket"`
	Prefix  string `mapstructure:"prefix"`
}

type Config struct {
	Problem      string        `mapstructure:"problem"`
	TrucksCount  int           `mapstructure:"trucks_count"`
	DronesCount  int           `mapstructure:"drones_count"`
	DistanceType string        `mapstructure:"distance_type"`
	EnergyModel  string        `mapstructure:"energy_model"`
	SpeedType    string        `mapstructure:"speed_type"`
	RangeType    string        `mapstructure:"range_type"`
	Seed         int64         `mapstructure:"seed"`
	Workers      int           `mapstructure:"workers"`
	TimeLimit    time.Duration `mapstructure:"time_limit"`

	MaxIterations    int     `mapstructure:"max_iterations"`
	TabuSizeFactor   float64 `mapstructure:"tabu_size_factor"`
	ResetAfterFactor float64 `mapstructure:"reset_after_factor"`
	DestroyFraction  float64 `mapstructure:"destroy_fraction"`
	Strategy         string  `mapstructure:"strategy"`

	Verbose      bool   `mapstructure:"verbose"`
	Outputs      string `mapstructure:"outputs"`
	IterationLog bool   `mapstructure:"iteration_log"`
	Extra        string `mapstructure:"extra"`

	Database DatabaseConfig `mapstructure:"database"`
	Kafka    KafkaConfig    `mapstructure:",squash"`
	Cloud    CloudConfig    `mapstructure:"cloud"`
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Default config location
		viper.AddConfigPath("examples")
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	viper.AutomaticEnv() // Read in environment variables that match

	if err := viper.ReadInConfig(); err != nil {
		// A config file is optional; flags and defaults carry a full run.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &config, nil
}
