package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

const defaultEnvPath = "./configs/.env"

var (
	once     sync.Once
	instance *Config
)

type Config struct {
}

// New loads env vars from configs/.env once per process. The path can be
// overridden with QUESTLOG_ENV_PATH before the first call.
func New() *Config {
	once.Do(func() {
		path := os.Getenv("QUESTLOG_ENV_PATH")
		if path == "" {
			path = defaultEnvPath
		}
		err := godotenv.Load(path)
		if err != nil {
			log.Fatal("loading envs error: ", err)
		}
		instance = &Config{}
	})
	return instance
}

func (c *Config) GetString(key string) string {
	return os.Getenv(key)
}
