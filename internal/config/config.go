package config

import (
	"os"
	"strconv"
)

// Config holds every tunable the services need. Values come from the
// environment with sane defaults so a bare `go run` works against localhost.
type Config struct {
	Port        string
	DatabaseURL string

	// TaxRateBps is the order-level tax rate in basis points (250 = 2.5%).
	TaxRateBps int64

	// Barcode pool tuning.
	BarcodeWidth      int // zero-padded width of printed codes
	BarcodeBatchMin   int // smallest batch an admin may generate
	BarcodeBatchMax   int // largest batch an admin may generate
	PoolWarningLevel  int // available count at or below this -> warning
	PoolCriticalLevel int // available count at or below this -> critical
}

// Load reads the configuration from the environment.
func Load() *Config {
	return &Config{
		Port:              getEnv("PORT", "3000"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		TaxRateBps:        int64(getEnvInt("TAX_RATE_BPS", 0)),
		BarcodeWidth:      getEnvInt("BARCODE_WIDTH", 12),
		BarcodeBatchMin:   getEnvInt("BARCODE_BATCH_MIN", 1),
		BarcodeBatchMax:   getEnvInt("BARCODE_BATCH_MAX", 50),
		PoolWarningLevel:  getEnvInt("BARCODE_POOL_WARNING", 20),
		PoolCriticalLevel: getEnvInt("BARCODE_POOL_CRITICAL", 5),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
