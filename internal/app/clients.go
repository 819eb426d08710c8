package app

import (
	affclient "github.com/dealhawk/dealhawk-backend/internal/clients/affiliate"
	"github.com/dealhawk/dealhawk-backend/internal/clients/redis"
	"github.com/dealhawk/dealhawk-backend/internal/platform/logger"
	"github.com/dealhawk/dealhawk-backend/internal/platform/openai"
	"github.com/dealhawk/dealhawk-backend/internal/platform/sendgrid"
)

type Clients struct {
	OpenAI    openai.Client
	SendGrid  sendgrid.Client
	Affiliate affclient.Client
	Cache     redis.Cache
}

// wireClients builds the outbound clients. Redis and SendGrid are optional:
// the catalog serves uncached and the newsletter skips sends when they are
// not configured.
func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	ai, err := openai.NewClient(log)
	if err != nil {
		return Clients{}, err
	}

	aff, err := affclient.NewClient(log)
	if err != nil {
		return Clients{}, err
	}

	var mailer sendgrid.Client
	if cfg.EmailEnabled {
		mailer, err = sendgrid.NewFromEnv(log)
		if err != nil {
			log.Warn("SendGrid client unavailable, email disabled", "error", err.Error())
			mailer = nil
		}
	}

	var cache redis.Cache
	if cfg.RedisEnabled {
		cache, err = redis.NewCache(log)
		if err != nil {
			log.Warn("redis cache unavailable, serving uncached", "error", err.Error())
			cache = nil
		}
	}

	return Clients{
		OpenAI:    ai,
		SendGrid:  mailer,
		Affiliate: aff,
		Cache:     cache,
	}, nil
}
