package app

import (
	"strings"
	"time"

	"github.com/oakmart/oakmart-backend/internal/pkg/logger"
	"github.com/oakmart/oakmart-backend/internal/utils"
)

type Config struct {
	JWTSecretKey     string
	AccessTokenTTL   time.Duration
	AllowOrigins     []string
	WebhookEndpoints []string
	Environment      string
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	environment := utils.GetEnv("ENVIRONMENT", "development", log)
	return Config{
		JWTSecretKey:     jwtSecretKey,
		AccessTokenTTL:   time.Duration(accessTokenTTLSeconds) * time.Second,
		AllowOrigins:     splitList(utils.GetEnv("CORS_ORIGINS", "", log)),
		WebhookEndpoints: splitList(utils.GetEnv("WEBHOOK_URLS", "", log)),
		Environment:      environment,
	}
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
