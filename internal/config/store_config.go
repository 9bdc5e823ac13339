package config

import (
	"os"
	"path/filepath"
	"strings"
)

type StoreKind string

const (
	StoreMemory StoreKind = "memory"
	StoreFile   StoreKind = "file"
	StoreRedis  StoreKind = "redis"
)

type StoreConfig interface {
	GetStoreKind() StoreKind
	GetTokenFile() string
	GetTokenPassphrase() string
	GetRedisAddr() string
	GetRedisPrefix() string
}

type Store struct{}

var _ StoreConfig = Store{}

func (Store) GetStoreKind() StoreKind {
	switch kind := StoreKind(strings.ToLower(GetEnv("TOKEN_STORE", string(StoreFile)))); kind {
	case StoreMemory, StoreRedis:
		return kind
	default:
		return StoreFile
	}
}

// GetTokenFile defaults to <user config dir>/authclient/session.json.
func (Store) GetTokenFile() string {
	if f := os.Getenv("TOKEN_FILE"); f != "" {
		return f
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "authclient", "session.json")
}

// GetTokenPassphrase returns the passphrase sealing the token file. Empty
// means the file is stored in plain JSON.
func (Store) GetTokenPassphrase() string {
	return os.Getenv("TOKEN_PASSPHRASE")
}

func (Store) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Store) GetRedisPrefix() string {
	return GetEnv("REDIS_PREFIX", "authclient")
}
