package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// AppConfig holds the settings shared by the service and the CLIs.
type AppConfig struct {
	Address        string
	DatabasePath   string
	ZonesSeedPath  string
	PolicyPath     string
	MemcachedAddr  string
	DefaultTaxRate float64
}

// Load reads a .env file when present and then the environment. A missing
// .env file is not an error.
func Load(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath...)
	} else {
		err = godotenv.Load()
	}
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env (path: %v): %w", envPath, err)
	}
	if err != nil {
		log.Printf("Info: no .env file loaded (path: %v), using environment only", envPath)
	}

	cfg := &AppConfig{
		Address:        getEnv("API_ADDRESS", ":8080"),
		DatabasePath:   getEnv("DATABASE_PATH", "data/zones.db"),
		ZonesSeedPath:  getEnv("ZONES_SEED_PATH", "data/zones.json"),
		PolicyPath:     getEnv("POLICY_PATH", "configs/policy.yaml"),
		MemcachedAddr:  getEnv("MEMCACHED_ADDR", ""),
		DefaultTaxRate: getEnvAsFloat("DEFAULT_TAX_RATE", 0.21),
	}
	if cfg.DefaultTaxRate < 0 || cfg.DefaultTaxRate >= 1 {
		return nil, fmt.Errorf("DEFAULT_TAX_RATE %v outside [0,1)", cfg.DefaultTaxRate)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvAsFloat logs and falls back to def when the value does not parse.
func getEnvAsFloat(key string, def float64) float64 {
	s, ok := os.LookupEnv(key)
	if !ok || s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Printf("Warning: %s=%q is not a number: %v. Using default %v", key, s, err, def)
		return def
	}
	return v
}
