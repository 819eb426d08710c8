package app

import (
	"github.com/dealhawk/dealhawk-backend/internal/platform/envutil"
	"github.com/dealhawk/dealhawk-backend/internal/platform/logger"
	"github.com/dealhawk/dealhawk-backend/internal/services"
)

type Config struct {
	ListenAddr         string
	RedisEnabled       bool
	EmailEnabled       bool
	GenerationDefaults *services.GenerationConfig
}

func LoadConfig(log *logger.Logger) (Config, error) {
	defaults, err := services.LoadGenerationConfig()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		ListenAddr:         envutil.String("LISTEN_ADDR", ":8080"),
		RedisEnabled:       envutil.Bool("REDIS_ENABLED", true),
		EmailEnabled:       envutil.Bool("EMAIL_ENABLED", true),
		GenerationDefaults: defaults,
	}
	log.Info("Config loaded",
		"listen_addr", cfg.ListenAddr,
		"redis_enabled", cfg.RedisEnabled,
		"email_enabled", cfg.EmailEnabled,
	)
	return cfg, nil
}
