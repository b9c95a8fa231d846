package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Config is read once from the environment at startup. See LoadConfig for defaults.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	JWTSecret string

	PaymentSettlementDelay time.Duration
	SettlementBatchSize    int

	RedisAddr      string
	RedisPassword  string
	IdempotencyTTL time.Duration

	KafkaHost              string
	KafkaOrderChangedTopic string

	LogFile  string
	LogLevel string
}

const (
	defaultHTTPPort               = "8080"
	defaultDBSslMode              = "disable"
	defaultPaymentSettlementDelay = 2 * time.Second
	defaultSettlementBatchSize    = 50
	defaultIdempotencyTTL         = 24 * time.Hour
	defaultOrderChangedTopic      = "order.changed"
	defaultLogLevel               = "info"
)

// LoadConfig reads the configuration through getenv and applies defaults to empty values.
func LoadConfig(getenv func(string) string) (Config, error) {
	cfg := Config{
		HTTPPort:               valueOr(getenv("HTTP_PORT"), defaultHTTPPort),
		DBHost:                 getenv("DB_HOST"),
		DBPort:                 getenv("DB_PORT"),
		DBUser:                 getenv("DB_USER"),
		DBPassword:             getenv("DB_PASSWORD"),
		DBName:                 getenv("DB_NAME"),
		DBSslMode:              valueOr(getenv("DB_SSLMODE"), defaultDBSslMode),
		JWTSecret:              getenv("JWT_SECRET"),
		RedisAddr:              getenv("REDIS_ADDR"),
		RedisPassword:          getenv("REDIS_PASSWORD"),
		KafkaHost:              getenv("KAFKA_HOST"),
		KafkaOrderChangedTopic: valueOr(getenv("KAFKA_ORDER_CHANGED_TOPIC"), defaultOrderChangedTopic),
		LogFile:                getenv("LOG_FILE"),
		LogLevel:               valueOr(getenv("LOG_LEVEL"), defaultLogLevel),
	}

	var errDelay, errBatch, errTTL error
	cfg.PaymentSettlementDelay, errDelay = durationOr("PAYMENT_SETTLEMENT_DELAY", getenv, defaultPaymentSettlementDelay)
	cfg.SettlementBatchSize, errBatch = intOr("SETTLEMENT_BATCH_SIZE", getenv, defaultSettlementBatchSize)
	cfg.IdempotencyTTL, errTTL = durationOr("IDEMPOTENCY_TTL", getenv, defaultIdempotencyTTL)

	if err := errors.Join(errDelay, errBatch, errTTL, cfg.validate()); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var missing []error
	for name, value := range map[string]string{
		"DB_HOST":    c.DBHost,
		"DB_PORT":    c.DBPort,
		"DB_USER":    c.DBUser,
		"DB_NAME":    c.DBName,
		"JWT_SECRET": c.JWTSecret,
	} {
		if value == "" {
			missing = append(missing, fmt.Errorf("%s is required", name))
		}
	}
	if c.SettlementBatchSize <= 0 {
		missing = append(missing, errors.New("SETTLEMENT_BATCH_SIZE must be positive"))
	}
	if c.PaymentSettlementDelay < 0 {
		missing = append(missing, errors.New("PAYMENT_SETTLEMENT_DELAY must not be negative"))
	}
	return errors.Join(missing...)
}

// DSN is the PostgreSQL connection string for gorm.io/driver/postgres.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func durationOr(key string, getenv func(string) string, fallback time.Duration) (time.Duration, error) {
	raw := getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func intOr(key string, getenv func(string) string, fallback int) (int, error) {
	raw := getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
