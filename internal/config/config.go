package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		UseTLS       bool   `yaml:"use_tls"`
		TemplatesDir string `yaml:"templates_dir"`
	} `yaml:"email"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // минуты
	} `yaml:"jwt"`

	// Стартовые финансовые параметры: попадают в commission_config
	// при первом запуске, дальше правятся через админ-API.
	Commission struct {
		Rate                       float64 `yaml:"rate"`
		ServiceFee                 float64 `yaml:"service_fee"`
		PremiumSubscriptionMonthly float64 `yaml:"premium_subscription_monthly"`
	} `yaml:"commission"`

	Orders struct {
		MinPrice float64 `yaml:"min_price"`
		MaxPrice float64 `yaml:"max_price"`
	} `yaml:"orders"`

	Verification struct {
		CodeTTLHours int `yaml:"code_ttl_hours"`
		MaxAttempts  int `yaml:"max_attempts"`
	} `yaml:"verification"`

	// Канонический аккаунт владельца, создается/обновляется при старте.
	Owner struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		Phone    string `yaml:"phone"`
	} `yaml:"owner"`
}

var AppConfig *Config

func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")
	serverEnv := os.Getenv("SERVER_ENV")
	portStr := os.Getenv("SERVER_PORT")
	jwtSecret := os.Getenv("JWT_SECRET")

	if dbURL == "" {
		log.Println("Загрузка из config.yaml (режим НЕ-тест)")

		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	log.Println("✅ Загрузка конфигурации из ПЕРЕМЕННЫХ ОКРУЖЕНИЯ (режим теста)")

	cfg.Database.DSN = dbURL
	cfg.Server.Env = serverEnv
	cfg.Server.Port, _ = strconv.Atoi(portStr)
	cfg.JWT.Secret = jwtSecret
	cfg.JWT.TTL = 60

	cfg.Email.SMTPHost = "smtp.test.com"
	cfg.Email.SMTPPort = 587
	cfg.Email.FromEmail = "test@rapidmandados.com"
	cfg.Email.TemplatesDir = "templates"

	cfg.Owner.Email = "owner@test.com"
	cfg.Owner.Password = "owner-test-password"
	cfg.Owner.Name = "Test Owner"
	cfg.Owner.Phone = "+5200000000"

	applyDefaults(&cfg)
	AppConfig = &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Commission.Rate == 0 {
		cfg.Commission.Rate = 0.15
	}
	if cfg.Commission.ServiceFee == 0 {
		cfg.Commission.ServiceFee = 15.0
	}
	if cfg.Commission.PremiumSubscriptionMonthly == 0 {
		cfg.Commission.PremiumSubscriptionMonthly = 200.0
	}
	if cfg.Orders.MinPrice == 0 {
		cfg.Orders.MinPrice = 50.0
	}
	if cfg.Orders.MaxPrice == 0 {
		cfg.Orders.MaxPrice = 10000.0
	}
	if cfg.Verification.CodeTTLHours == 0 {
		cfg.Verification.CodeTTLHours = 24
	}
	if cfg.Verification.MaxAttempts == 0 {
		cfg.Verification.MaxAttempts = 3
	}
	if cfg.JWT.TTL == 0 {
		cfg.JWT.TTL = 60 * 24
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
