package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/dropbox/godropbox/time2"
	"github.com/kashguard/go-sigauth/internal/config"
	"github.com/kashguard/go-sigauth/internal/sig/audit"
	"github.com/kashguard/go-sigauth/internal/sig/keys"
	"github.com/kashguard/go-sigauth/internal/sig/policy"
	"github.com/kashguard/go-sigauth/internal/sig/replay"
	"github.com/kashguard/go-sigauth/internal/sig/signing"
	"github.com/kashguard/go-sigauth/internal/sig/verification"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	// Import postgres driver for database/sql package
	_ "github.com/lib/pq"
)

type Router struct {
	Routes     []*echo.Route
	Root       *echo.Group
	Management *echo.Group
	APIV1Sig   *echo.Group
	APIV1Data  *echo.Group
}

// Server is a central struct keeping all the dependencies.
// It is initialized with wire, which handles making the new instances of the components
// in the right order. To add a new component, 3 steps are required:
// - declaring it in this struct
// - adding a provider function in providers.go
// - adding the provider's function name to the arguments of wire.Build() in wire.go
//
// Components labeled as `wire:"-"` will be skipped and have to be initialized after the InitNewServer* call.
type Server struct {
	// skip wire:
	// -> initialized with router.Init(s) function
	Echo   *echo.Echo `wire:"-"`
	Router *Router    `wire:"-"`

	Config config.Server
	DB     *sql.DB
	Clock  time2.Clock

	Policies    *policy.Set
	KeyRegistry keys.Resolver
	Keyring     *keys.Keyring
	NonceStore  replay.NonceStore
	ReplayGuard *replay.Guard
	AuditLogger audit.Logger

	SignService   signing.Service
	VerifyService verification.Service
}

// newServerWithComponents is used by wire to initialize the server components.
// Components not listed here won't be handled by wire and should be initialized separately.
// Components which shouldn't be handled must be labeled `wire:"-"` in Server struct.
func newServerWithComponents(
	cfg config.Server,
	db *sql.DB,
	clock time2.Clock,
	policies *policy.Set,
	keyRegistry keys.Resolver,
	keyring *keys.Keyring,
	nonceStore replay.NonceStore,
	replayGuard *replay.Guard,
	auditLogger audit.Logger,
	signService signing.Service,
	verifyService verification.Service,
) *Server {
	return &Server{
		Config:        cfg,
		DB:            db,
		Clock:         clock,
		Policies:      policies,
		KeyRegistry:   keyRegistry,
		Keyring:       keyring,
		NonceStore:    nonceStore,
		ReplayGuard:   replayGuard,
		AuditLogger:   auditLogger,
		SignService:   signService,
		VerifyService: verifyService,
	}
}

func NewServer(config config.Server) *Server {
	return &Server{
		Config: config,
	}
}

func (s *Server) Ready() bool {
	if s.Echo == nil || s.Router == nil {
		return false
	}
	if s.Clock == nil || s.Policies == nil || s.KeyRegistry == nil || s.Keyring == nil {
		return false
	}
	if s.NonceStore == nil || s.ReplayGuard == nil || s.AuditLogger == nil {
		return false
	}
	if s.SignService == nil || s.VerifyService == nil {
		return false
	}
	// DB is only part of the graph when the postgresql backend is active.
	if s.Config.Sig.StorageBackend == "postgresql" && s.DB == nil {
		return false
	}

	return true
}

func (s *Server) Start() error {
	if !s.Ready() {
		return errors.New("server is not ready")
	}

	if err := s.Echo.Start(s.Config.Echo.ListenAddress); err != nil {
		return fmt.Errorf("failed to start echo server: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) []error {
	log.Warn().Msg("Shutting down server")

	var errs []error

	if s.DB != nil {
		log.Debug().Msg("Closing database connection")

		if err := s.DB.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			log.Error().Err(err).Msg("Failed to close database connection")
			errs = append(errs, err)
		}
	}

	if s.Echo != nil {
		log.Debug().Msg("Shutting down echo server")

		if err := s.Echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Failed to shutdown echo server")
			errs = append(errs, err)
		}
	}

	return errs
}
