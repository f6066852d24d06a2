package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config - параметры запуска сервиса. Источники по возрастанию приоритета:
// значения по умолчанию, YAML-файл из CONFIG_FILE, переменные окружения (.env тоже).
type Config struct {
	Env            string `yaml:"env"`
	ServerAddress  string `yaml:"server_address"`
	MetricsAddress string `yaml:"metrics_address"`

	PostgresConn  string        `yaml:"postgres_conn"`
	RunMigrations bool          `yaml:"run_migrations"`
	StoreTimeout  time.Duration `yaml:"store_timeout"`

	JWTSecret  string        `yaml:"jwt_secret"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`

	UploadDir     string `yaml:"upload_dir"`
	PublicBaseURL string `yaml:"public_base_url"`

	RedisAddr                string `yaml:"redis_addr"`
	RedisNotificationChannel string `yaml:"redis_notification_channel"`

	KafkaBrokers          string `yaml:"kafka_brokers"`
	KafkaTopicBetPlaced   string `yaml:"kafka_topic_bet_placed"`
	KafkaTopicBetAccepted string `yaml:"kafka_topic_bet_accepted"`

	ListingGaugeSchedule string `yaml:"listing_gauge_schedule"`
}

func defaults() Config {
	return Config{
		Env:                      "local",
		ServerAddress:            "0.0.0.0:8080",
		MetricsAddress:           "0.0.0.0:9090",
		RunMigrations:            true,
		StoreTimeout:             5 * time.Second,
		TokenTTL:                 time.Hour,
		BcryptCost:               10,
		UploadDir:                "uploads",
		RedisNotificationChannel: "notifications",
		KafkaTopicBetPlaced:      "bet_placed",
		KafkaTopicBetAccepted:    "bet_accepted",
		ListingGaugeSchedule:     "@every 1m",
	}
}

// Load собирает конфигурацию и проверяет обязательные поля
func Load() (Config, error) {
	// .env не обязателен
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Env, "ENV")
	setString(&cfg.ServerAddress, "SERVER_ADDRESS")
	setString(&cfg.MetricsAddress, "METRICS_ADDRESS")
	setString(&cfg.PostgresConn, "POSTGRES_CONN")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.UploadDir, "UPLOAD_DIR")
	setString(&cfg.PublicBaseURL, "PUBLIC_BASE_URL")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RedisNotificationChannel, "REDIS_NOTIFICATION_CHANNEL")
	setString(&cfg.KafkaBrokers, "KAFKA_BROKERS")
	setString(&cfg.KafkaTopicBetPlaced, "KAFKA_TOPIC_BET_PLACED")
	setString(&cfg.KafkaTopicBetAccepted, "KAFKA_TOPIC_BET_ACCEPTED")
	setString(&cfg.ListingGaugeSchedule, "LISTING_GAUGE_SCHEDULE")

	if err := setBool(&cfg.RunMigrations, "RUN_MIGRATIONS"); err != nil {
		return err
	}
	if err := setDuration(&cfg.StoreTimeout, "STORE_TIMEOUT"); err != nil {
		return err
	}
	if err := setDuration(&cfg.TokenTTL, "TOKEN_TTL"); err != nil {
		return err
	}
	return setInt(&cfg.BcryptCost, "BCRYPT_COST")
}

func (c Config) validate() error {
	if c.PostgresConn == "" {
		return errors.New("POSTGRES_CONN env variable is not set")
	}
	if c.JWTSecret == "" {
		if c.Env != "local" {
			return errors.New("JWT_SECRET env variable is not set")
		}
	}
	if c.StoreTimeout <= 0 {
		return errors.New("STORE_TIMEOUT must be positive")
	}
	return nil
}

// IsLocal - локальный запуск: dev-логгер и подробные ошибки
func (c Config) IsLocal() bool { return c.Env == "local" }

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
