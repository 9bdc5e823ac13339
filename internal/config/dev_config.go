package config

import (
	"fmt"
	"strings"
	"time"
)

type DevServerConfig interface {
	GetPort() string
	GetSigningKey() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
}

type DevServer struct{}

var _ DevServerConfig = DevServer{}

func (DevServer) GetPort() string {
	port := GetEnv("PORT", "8000")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (DevServer) GetSigningKey() string {
	return GetEnv("DEV_SIGNING_KEY", "dev-signing-key")
}

func (DevServer) GetAccessTokenTTL() time.Duration {
	return GetDuration("DEV_ACCESS_TTL", 5*time.Minute)
}

func (DevServer) GetRefreshTokenTTL() time.Duration {
	return GetDuration("DEV_REFRESH_TTL", 24*time.Hour)
}
