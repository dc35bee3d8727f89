package config

import (
	"fmt"

	"github.com/kashguard/go-sigauth/internal/util"
)

type EchoServer struct {
	ListenAddress                  string
	HideInternalServerErrorDetails bool
}

type LoggerServer struct {
	Level              string
	PrettyPrintConsole bool
}

type Database struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
	SSLMode  string
}

// ConnectionString renders a lib/pq DSN.
func (d Database) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.Username, d.Password, d.Database, d.SSLMode)
}

type Sig struct {
	// StorageBackend selects where nonce records and the key registry
	// live: "memory" for single-process deployments, "postgresql" for a
	// shared store.
	StorageBackend string

	// DefaultPolicy names the policy the verification middleware applies.
	DefaultPolicy string

	// PoliciesFile optionally layers policy definitions over the
	// built-ins.
	PoliciesFile string

	// KeyRegistryFile seeds the static key registry when the memory
	// backend is active.
	KeyRegistryFile string

	// KeyringFile holds the private signing seeds available to the sign
	// endpoint.
	KeyringFile string
}

type Server struct {
	Echo     EchoServer
	Logger   LoggerServer
	Database Database
	Sig      Sig
}

// DefaultServiceConfigFromEnv assembles the server configuration from the
// environment, with development-friendly defaults.
func DefaultServiceConfigFromEnv() Server {
	return Server{
		Echo: EchoServer{
			ListenAddress:                  util.GetEnv("SERVER_ECHO_LISTEN_ADDRESS", ":8080"),
			HideInternalServerErrorDetails: util.GetEnvAsBool("SERVER_ECHO_HIDE_INTERNAL_SERVER_ERROR_DETAILS", true),
		},
		Logger: LoggerServer{
			Level:              util.GetEnv("SERVER_LOGGER_LEVEL", "info"),
			PrettyPrintConsole: util.GetEnvAsBool("SERVER_LOGGER_PRETTY_PRINT_CONSOLE", false),
		},
		Database: Database{
			Host:     util.GetEnv("PGHOST", "localhost"),
			Port:     util.GetEnvAsInt("PGPORT", 5432),
			Username: util.GetEnv("PGUSER", "sigauth"),
			Password: util.GetEnv("PGPASSWORD", ""),
			Database: util.GetEnv("PGDATABASE", "sigauth"),
			SSLMode:  util.GetEnv("PGSSLMODE", "disable"),
		},
		Sig: Sig{
			StorageBackend:  util.GetEnv("SIG_STORAGE_BACKEND", "memory"),
			DefaultPolicy:   util.GetEnv("SIG_DEFAULT_POLICY", "standard"),
			PoliciesFile:    util.GetEnv("SIG_POLICIES_FILE", ""),
			KeyRegistryFile: util.GetEnv("SIG_KEY_REGISTRY_FILE", ""),
			KeyringFile:     util.GetEnv("SIG_KEYRING_FILE", ""),
		},
	}
}
