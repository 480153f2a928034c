// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
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
	Env                     string `yaml:"env" env:"NEXUS_ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"NEXUS_STORAGE_DSN" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	RabbitMQ                `yaml:"rabbitmq"`
	SMTP                    `yaml:"smtp"`
	Razorpay                `yaml:"razorpay"`
	Billing                 `yaml:"billing"`
	Admin                   `yaml:"admin"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP  string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP  time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env-default:"60s"`
	CookieSecure bool          `yaml:"cookie_secure"`
	RateLimitRPS float64       `yaml:"rate_limit_rps" env-default:"20"`
	RateBurst    int           `yaml:"rate_limit_burst" env-default:"40"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"NEXUS_REDIS_ADDR"`
	Password     string        `yaml:"password" env:"NEXUS_REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
	CacheTTL     time.Duration `yaml:"cache_ttl" env-default:"1h"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"NEXUS_JWT_SECRET"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// RabbitMQ структура для подключения к брокеру сообщений
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"NEXUS_RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// SMTP структура для отправки писем
type SMTP struct {
	SMTPHost string `yaml:"host"`
	SMTPPort string `yaml:"port" env-default:"587"`
	SMTPUser string `yaml:"user"`
	SMTPPass string `yaml:"password" env:"NEXUS_SMTP_PASSWORD"`
}

// Razorpay структура с ключами платёжного шлюза
type Razorpay struct {
	APIURL        string        `yaml:"api_url" env-default:"https://api.razorpay.com/v1"`
	KeyID         string        `yaml:"key_id" env:"NEXUS_RAZORPAY_KEY_ID"`
	KeySecret     string        `yaml:"key_secret" env:"NEXUS_RAZORPAY_KEY_SECRET"`
	WebhookSecret string        `yaml:"webhook_secret" env:"NEXUS_RAZORPAY_WEBHOOK_SECRET"`
	Timeout       time.Duration `yaml:"timeout" env-default:"10s"`
}

// Billing параметры тарифа для подписок групп
type Billing struct {
	PlanID        string        `yaml:"plan_id"`
	Price         int64         `yaml:"price" env-default:"49900"`
	Currency      string        `yaml:"currency" env-default:"INR"`
	TrialPeriod   time.Duration `yaml:"trial_period" env-default:"168h"`
	TotalCount    int           `yaml:"total_count" env-default:"12"`
	IntentTimeout time.Duration `yaml:"intent_timeout" env-default:"15m"`
}

// Admin учётные данные администратора
type Admin struct {
	AdminUsername     string `yaml:"username"`
	AdminPasswordHash string `yaml:"password_hash" env:"NEXUS_ADMIN_PASSWORD_HASH"`
}

// MustLoad функция для загрузки конфига, возвращает конфиг, сгенерированный из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает конфиг из файла и переменных окружения.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file: %s - does not exist", configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
