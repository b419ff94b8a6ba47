package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Horizon    HorizonConfig    `yaml:"horizon"`
	Settlement SettlementConfig `yaml:"settlement"`
}

type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
}

type DatabaseConfig struct {
	Host            string `yaml:"host"`
	Port            string `yaml:"port"`
	User            string `yaml:"user"`
	DBName          string `yaml:"name"`
	Password        string `yaml:"password"`
	SSLMode         string `yaml:"ssl_mode"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime"`
}

type HorizonConfig struct {
	URL               string        `yaml:"url"`
	NetworkPassphrase string        `yaml:"network_passphrase"`
	Timeout           time.Duration `yaml:"timeout"`
	FallbackFee       int64         `yaml:"fallback_fee"`
	SourceReserve     float64       `yaml:"source_reserve"`
	// WalletSeed is the custodial signing secret. Env only, never yaml.
	WalletSeed string `yaml:"-"`
}

type SettlementConfig struct {
	MinWithdrawal   float64       `yaml:"min_withdrawal"`
	PaymentTimeout  time.Duration `yaml:"payment_timeout"`
	RateLimitMax    int           `yaml:"rate_limit_max"`
	RateLimitWindow time.Duration `yaml:"rate_limit_window"`
	DuplicateWindow time.Duration `yaml:"duplicate_window"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	var config Config
	configData, err := os.ReadFile("./config.yaml")
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(configData, &config); err != nil {
		return nil, err
	}

	if seed := os.Getenv("APP_WALLET_SEED"); seed != "" {
		config.Horizon.WalletSeed = seed
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		config.Database.Password = password
	}

	applyDefaults(&config)
	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Horizon.Timeout == 0 {
		config.Horizon.Timeout = 30 * time.Second
	}
	if config.Horizon.FallbackFee == 0 {
		config.Horizon.FallbackFee = 100000
	}
	if config.Horizon.SourceReserve == 0 {
		config.Horizon.SourceReserve = 1.0
	}
	if config.Settlement.MinWithdrawal == 0 {
		config.Settlement.MinWithdrawal = 0.01
	}
	if config.Settlement.PaymentTimeout == 0 {
		config.Settlement.PaymentTimeout = 60 * time.Second
	}
	if config.Settlement.RateLimitMax == 0 {
		config.Settlement.RateLimitMax = 3
	}
	if config.Settlement.RateLimitWindow == 0 {
		config.Settlement.RateLimitWindow = 10 * time.Minute
	}
	if config.Settlement.DuplicateWindow == 0 {
		config.Settlement.DuplicateWindow = time.Minute
	}
}
