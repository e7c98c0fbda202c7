package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries everything main wires together. All values come from the
// environment; the service-tier database credential, Stripe key, Redis and
// SMTP settings are optional and gate their features off when absent.
type Config struct {
	Port string

	Database        DatabaseConfig
	ServiceDatabase DatabaseConfig

	SMTP     SMTPConfig
	Payment  PaymentConfig
	RabbitMQ RabbitMQConfig

	RedisAddr string

	OperatorEmail string

	// Production controls whether emails are actually dispatched; any other
	// mode simulates the send with a fixed delay.
	Production bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Configured reports whether enough of the credential is present to open a
// connection. The standard tier is required; the service tier is optional.
func (d DatabaseConfig) Configured() bool {
	return d.Host != "" && d.User != "" && d.Name != ""
}

func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name,
	)
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func (s SMTPConfig) Addr() string {
	return s.Host + ":" + s.Port
}

type PaymentConfig struct {
	StripeSecretKey string
	BaseURL         string
	Timeout         time.Duration
}

type RabbitMQConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	VHost      string
	Exchange   string
	RetryCount int
	RetryDelay time.Duration
}

func (c RabbitMQConfig) ConnectionURL() string {
	vhost := c.VHost
	if vhost != "/" {
		vhost = "/" + vhost
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%d%s", c.Username, c.Password, c.Host, c.Port, vhost)
}

func Load() *Config {
	rabbitPort, _ := strconv.Atoi(getEnvOrDefault("RABBITMQ_PORT", "5672"))
	retryCount, _ := strconv.Atoi(getEnvOrDefault("RABBITMQ_RETRY_COUNT", "3"))

	return &Config{
		Port: getEnvOrDefault("PORT", "8080"),
		Database: DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
		ServiceDatabase: DatabaseConfig{
			Host:     os.Getenv("SERVICE_DB_HOST"),
			Port:     getEnvOrDefault("SERVICE_DB_PORT", "5432"),
			User:     os.Getenv("SERVICE_DB_USER"),
			Password: os.Getenv("SERVICE_DB_PASSWORD"),
			Name:     os.Getenv("SERVICE_DB_NAME"),
		},
		SMTP: SMTPConfig{
			Host:     getEnvOrDefault("SMTP_HOST", "localhost"),
			Port:     getEnvOrDefault("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnvOrDefault("SMTP_FROM", "orders@mindfulpages.bg"),
		},
		Payment: PaymentConfig{
			StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
			BaseURL:         getEnvOrDefault("STRIPE_API_URL", "https://api.stripe.com"),
			Timeout:         time.Second * 15,
		},
		RabbitMQ: RabbitMQConfig{
			Host:       getEnvOrDefault("RABBITMQ_HOST", "localhost"),
			Port:       rabbitPort,
			Username:   getEnvOrDefault("RABBITMQ_USERNAME", "guest"),
			Password:   getEnvOrDefault("RABBITMQ_PASSWORD", "guest"),
			VHost:      getEnvOrDefault("RABBITMQ_VHOST", "/"),
			Exchange:   getEnvOrDefault("RABBITMQ_EXCHANGE", "orders.events"),
			RetryCount: retryCount,
			RetryDelay: time.Second * 5,
		},
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		OperatorEmail: getEnvOrDefault("OPERATOR_EMAIL", "admin@mindfulpages.bg"),
		Production:    getEnvOrDefault("APP_ENV", "development") == "production",
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
