package config

import "github.com/joho/godotenv"

type Config interface {
	EnvConfig
	ClientConfig
	StoreConfig
	DevServerConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
	Client
	Store
	DevServer
}

func New() Config {
	return mainConfig{}
}

// Load reads a .env file (if present) into the process environment before
// returning the config. Variables already set in the environment win.
func Load(files ...string) Config {
	_ = godotenv.Load(files...)
	return New()
}
