package config

import (
	"flag"
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Server struct {
		Host string `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
		Port int    `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	} `yaml:"server"`

	Database struct {
		// URL takes precedence over the SQLite file when set.
		URL        string `yaml:"url" env:"DATABASE_URL"`
		SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"todo.db"`
	} `yaml:"database"`

	Session struct {
		CookieName string `yaml:"cookie_name" env:"SESSION_COOKIE_NAME" env-default:"tasklist_session"`
		Secret     string `yaml:"secret" env:"SESSION_SECRET" env-default:"dev-secret-change-me"`
		Secure     bool   `yaml:"cookie_secure" env:"SESSION_COOKIE_SECURE" env-default:"false"`
	} `yaml:"session"`
}

func MustLoad() *Config {
	var configPath string
	configPath = os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configflag := flag.String("config", "", "Path to configuration file")
		flag.Parse()
		configPath = *configflag
	}
	var cfg Config
	if configPath == "" {
		// No config file named anywhere: run on env vars and defaults.
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("Failed to read environment: %v", err)
		}
		return &cfg
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("Config file does not exist: %s", configPath)
	}
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}
	return &cfg
}
