// Package server wires the authentication core together: key material,
// codec, revocation store, token service, and the gRPC enforcement
// surface, plus signal handling and graceful shutdown.
package server

import (
	"context"
	"crypto/rsa"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brightclass/authcore/internal/logging"
	"github.com/brightclass/authcore/internal/revocation"
	"github.com/brightclass/authcore/internal/server/config"
	"github.com/brightclass/authcore/internal/token"

	gs "github.com/brightclass/authcore/internal/server/grpc"
)

// purgeInterval is how often the Postgres backend sweeps lapsed rows.
const purgeInterval = 1 * time.Hour

type App struct {
	config *config.Config
	logger logging.Logger
	tokens *token.Service
	store  revocation.Store
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	codec, err := buildCodec(cfg)
	if err != nil {
		return nil, fmt.Errorf("codec init error: %w", err)
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("revocation store init error: %w", err)
	}

	tokens := token.NewService(codec, store, token.ServiceOptions{
		AccessTTL:           cfg.AccessTokenValidityDuration,
		RefreshTTL:          cfg.RefreshTokenValidityDuration,
		RevokeFamilyOnReuse: cfg.RevokeFamilyOnReuse,
	})

	return &App{config: cfg, logger: logger, tokens: tokens, store: store}, nil
}

func buildCodec(cfg *config.Config) (*token.Codec, error) {
	switch cfg.Algorithm {
	case "RS256":
		pub, err := token.LoadRSAPublicKey(cfg.PublicKeyPath)
		if err != nil {
			return nil, err
		}
		var priv *rsa.PrivateKey
		if cfg.PrivateKeyPath != "" {
			priv, err = token.LoadRSAPrivateKey(cfg.PrivateKeyPath)
			if err != nil {
				return nil, err
			}
		}
		return token.NewRS256Codec(priv, pub, cfg.Issuer, cfg.Audience, cfg.Leeway), nil

	case "HS256":
		if cfg.SecretKey == "" {
			return nil, fmt.Errorf("HS256 requires a secret key")
		}
		return token.NewHS256Codec([]byte(cfg.SecretKey), cfg.Issuer, cfg.Audience, cfg.Leeway), nil

	default:
		return nil, fmt.Errorf("unsupported algorithm %q", cfg.Algorithm)
	}
}

func buildStore(ctx context.Context, cfg *config.Config) (revocation.Store, error) {
	switch cfg.RevocationBackend {
	case "", "memory":
		return revocation.NewMemoryStore(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return revocation.NewRedisStore(client), nil
	case "postgres":
		return revocation.NewPostgresStore(ctx, cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported revocation backend %q", cfg.RevocationBackend)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewServer(app.config.EndpointAddrGRPC, app.logger, app.tokens)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// startPurgeLoop periodically cleans lapsed revocation rows. Only the
// Postgres backend needs it; memory and redis entries expire on their own.
func (app *App) startPurgeLoop(ctx context.Context, ps *revocation.PostgresStore) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ps.PurgeExpired(ctx); err != nil {
				app.logger.Warn(ctx, "revocation purge failed", "error", err.Error())
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if ps, ok := app.store.(*revocation.PostgresStore); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startPurgeLoop(ctx, ps)
		}()
	}

	wg.Wait()
}
