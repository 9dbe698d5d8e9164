package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jrsteele09/go-admin-client/account"
	"github.com/jrsteele09/go-admin-client/api"
	"github.com/jrsteele09/go-admin-client/authapi"
	"github.com/jrsteele09/go-admin-client/claims"
	"github.com/jrsteele09/go-admin-client/integrity"
	"github.com/jrsteele09/go-admin-client/internal/config"
	"github.com/jrsteele09/go-admin-client/kv"
	"github.com/jrsteele09/go-admin-client/metrics"
	"github.com/jrsteele09/go-admin-client/preferences"
	"github.com/jrsteele09/go-admin-client/session"
	"github.com/jrsteele09/go-admin-client/transport"
	"github.com/rs/zerolog"
)

const (
	sessionFile     = "session.dat"
	preferencesFile = "prefs.json"
	sessionLabel    = "session"
)

// App holds the wired client: storage namespaces, device checks, transport chain and facades.
type App struct {
	Config      config.Config
	Sessions    *session.Store
	Preferences *preferences.Preferences
	Integrity   *integrity.Checker
	Metrics     *metrics.Recorder
	Account     *account.Facade
	API         *api.Client
}

type Option func(*options)

type options struct {
	checker []integrity.CheckerOption
}

// WithCheckerOptions overrides device probes, for hosts where the platform defaults do not apply
func WithCheckerOptions(opts ...integrity.CheckerOption) Option {
	return func(o *options) {
		o.checker = append(o.checker, opts...)
	}
}

// New wires the client from cfg. logger is used by every component.
func New(ctx context.Context, cfg config.Config, logger zerolog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	sessionStore, err := openSessionNamespace(cfg, logger)
	if err != nil {
		return nil, err
	}
	prefsStore, err := kv.OpenFile(filepath.Join(cfg.GetDataFolder(), preferencesFile))
	if err != nil {
		return nil, fmt.Errorf("open preferences: %w", err)
	}

	sessions := session.NewStore(sessionStore, session.WithLogger(logger))
	checkerOpts := append([]integrity.CheckerOption{
		integrity.WithCertificateSource(integrity.FileCertificateSource{Path: cfg.GetSigningCertPath()}),
		integrity.WithLogger(logger),
	}, o.checker...)
	checker := integrity.NewChecker(
		integrity.Policy{Release: cfg.IsRelease(), ExpectedCertSHA256: cfg.GetExpectedCertSHA256()},
		checkerOpts...,
	)
	recorder := metrics.New()
	extractor := claimsExtractor(ctx, cfg, logger)

	httpClient, err := transport.NewHTTPClient(cfg, checker, sessions,
		transport.WithLogger(logger),
		transport.WithMetrics(recorder),
		transport.WithClaims(extractor),
	)
	if err != nil {
		return nil, err
	}

	authClient, err := authapi.NewClient(cfg.GetAPIBaseURL(), httpClient, authapi.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	apiClient, err := api.NewClient(cfg.GetAPIBaseURL(), httpClient, api.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return &App{
		Config:      cfg,
		Sessions:    sessions,
		Preferences: preferences.New(prefsStore),
		Integrity:   checker,
		Metrics:     recorder,
		Account:     account.NewFacade(authClient, sessions, account.WithLogger(logger), account.WithClaims(extractor)),
		API:         apiClient,
	}, nil
}

// Close releases the facade's store subscription
func (a *App) Close() {
	a.Account.Close()
}

func openSessionNamespace(cfg config.Config, logger zerolog.Logger) (kv.Store, error) {
	path := filepath.Join(cfg.GetDataFolder(), sessionFile)

	secret := cfg.GetStorageSecret()
	if secret == "" {
		if cfg.IsRelease() {
			return nil, fmt.Errorf("STORAGE_SECRET is required outside DEV")
		}
		logger.Warn().Str("path", path).Msg("STORAGE_SECRET not set, session stored unencrypted")
		return openNamespace(path)
	}

	cipher, err := kv.NewAESCipher([]byte(secret), sessionLabel)
	if err != nil {
		return nil, err
	}
	return openNamespace(path, kv.WithCipher(cipher))
}

func openNamespace(path string, options ...kv.FileStoreOption) (kv.Store, error) {
	store, err := kv.OpenFile(path, options...)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	return store, nil
}

// claimsExtractor verifies tokens against TOKEN_ISSUER when set, otherwise reads them unverified.
func claimsExtractor(ctx context.Context, cfg config.NetworkConfig, logger zerolog.Logger) claims.Extractor {
	issuer := cfg.GetTokenIssuer()
	if issuer == "" {
		return claims.Unverified{}
	}
	verifier, err := claims.NewOIDC(ctx, issuer)
	if err != nil {
		logger.Warn().Err(err).Str("issuer", issuer).Msg("issuer discovery failed, reading token claims unverified")
		return claims.Unverified{}
	}
	return verifier
}
