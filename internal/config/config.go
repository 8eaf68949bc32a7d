// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Stripe                  `yaml:"stripe"`
	RabbitMQURL             string        `yaml:"rabbitmq_url"`
	RabbitMQMaxRetries      int           `yaml:"rabbitmq_max_retries"`
	RabbitMQRetryDelay      time.Duration `yaml:"rabbitmq_retry_delay"`
	SMTPHost                string        `yaml:"smtp_host"`
	SMTPPort                string        `yaml:"smtp_port"`
	SMTPUser                string        `yaml:"smtp_user"`
	SMTPPass                string        `yaml:"smtp_pass" env:"SMTP_PASS"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	Addr        string        `yaml:"addr"`
	Password    string        `yaml:"password"`
	User        string        `yaml:"user"`
	DB          int           `yaml:"db"`
	MaxRetries  int           `yaml:"max_retries"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
	Timeout     time.Duration `yaml:"timeout"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

// Stripe структура с настройками для обращения к Stripe API
type Stripe struct {
	SecretKey       string `yaml:"secret_key" env:"STRIPE_SECRET_KEY"`
	WebhookSecret   string `yaml:"webhook_secret" env:"STRIPE_WEBHOOK_SECRET"`
	PriceID         string `yaml:"price_id"`
	PlanAmountCents int    `yaml:"plan_amount_cents"`
	PlanCurrency    string `yaml:"plan_currency"`
	TrialDays       int    `yaml:"trial_days"`
	SuccessURL      string `yaml:"success_url"`
	CancelURL       string `yaml:"cancel_url"`
}

// MustLoad функция для загрузки конфига, путь берется из переменной окружения CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  User: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Stripe:\n"+
			"  PriceID: %s\n"+
			"  SuccessURL: %s\n"+
			"RabbitMQURL: %s\n",
		c.Env,
		c.StorageConnectionString,
		c.Addr,
		c.User,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.PriceID,
		c.SuccessURL,
		c.RabbitMQURL,
	)
}
