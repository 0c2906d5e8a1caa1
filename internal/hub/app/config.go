package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Product       string // Optional: product name used in the TLS certificate subject (default: CyNiT Hub)
	DatabaseFile  string // Optional: path to SQLite database file (default: ./hub.db)
	DataDir       string // Optional: directory for session artifacts (default: ./data)
	CertDir       string // Optional: directory for the localhost TLS material (default: ./certs)
	MasterKeyPath string // Optional: path to master encryption key file (for vault entries)

	TLSEnabled     bool // Optional: serve HTTPS with the generated localhost certificate (default: true)
	TrustLocalCert bool // Optional: import the certificate into the user trust store (default: true)

	AllowedOPBases []string // Optional: allowlisted authorization server base URLs (default: any)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8443)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	cfg := Config{
		Product:             getEnvOrDefault("HUB_PRODUCT", "CyNiT Hub"),
		DatabaseFile:        getEnvOrDefault("HUB_DATABASE_FILE", "hub.db"),
		DataDir:             getEnvOrDefault("HUB_DATA_DIR", "data"),
		CertDir:             getEnvOrDefault("HUB_CERT_DIR", "certs"),
		MasterKeyPath:       os.Getenv("HUB_MASTER_KEY_PATH"), // Optional
		TLSEnabled:          getEnvBoolOrDefault("HUB_TLS", true),
		TrustLocalCert:      getEnvBoolOrDefault("HUB_TRUST_LOCAL_CERT", true),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8443),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	// Comma-separated allowlist of authorization servers; empty allows any
	if raw := os.Getenv("HUB_ALLOWED_OP_BASES"); raw != "" {
		for _, base := range strings.Split(raw, ",") {
			base = strings.TrimSpace(strings.TrimSuffix(base, "/"))
			if base != "" {
				cfg.AllowedOPBases = append(cfg.AllowedOPBases, base)
			}
		}
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Integer seconds also accepted
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
